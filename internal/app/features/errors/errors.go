// internal/app/features/errors/errors.go
package errors

import (
	"net/http"
	"strings"

	"github.com/dalemusser/papilloncast/internal/app/resources"
	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/dalemusser/papilloncast/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// ErrorLogger wraps the zap logger for error logging.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// Log logs an error with the request's path and method. It is a no-op on a
// nil ErrorLogger so tests can omit it.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.LogWithFields(r, msg, err)
}

// LogWithFields logs an error with additional fields.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	if e == nil || e.logger == nil {
		return
	}
	allFields := append([]zap.Field{
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}, fields...)
	e.logger.Error(msg, allFields...)
}

// Handler provides the catch-all error responses.
type Handler struct {
	errLog *ErrorLogger
}

// NewHandler creates a new error Handler.
func NewHandler(errLog *ErrorLogger) *Handler {
	return &Handler{errLog: errLog}
}

func isAPI(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}

// NotFound answers unmatched routes: JSON under /api, the 404 page elsewhere.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		jsonutil.NotFound(w, "Not found")
		return
	}
	if err := resources.RenderPage(w, http.StatusNotFound, "notfound", viewdata.New(r, "Not Found")); err != nil {
		h.errLog.Log(r, "render not found page", err)
		http.NotFound(w, r)
	}
}

// MethodNotAllowed answers a known route called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		jsonutil.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
