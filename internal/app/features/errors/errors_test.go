package errors

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNotFound(t *testing.T) {
	h := NewHandler(nil)
	tests := []struct {
		path        string
		contentType string
		body        string
	}{
		{"/api/nope", "application/json", `"error":"Not found"`},
		{"/nope", "text/html", "Not found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.NotFound(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want %s", ct, tt.contentType)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewHandler(nil)
	rec := httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/waitlist", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestErrorLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&buf), zap.ErrorLevel)
	errLog := NewErrorLogger(zap.New(core))

	req := httptest.NewRequest(http.MethodPost, "/api/generate-content", nil)
	errLog.Log(req, "generation failed", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"generation failed", "boom", "/api/generate-content", "POST"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestErrorLogger_NilSafe(t *testing.T) {
	var errLog *ErrorLogger
	errLog.Log(httptest.NewRequest(http.MethodGet, "/", nil), "ignored", errors.New("x"))
}
