// Package settingsapi serves the signed-in user's reader preferences.
//
// Endpoints:
//   - GET   /api/user/settings - Current preferences
//   - PATCH /api/user/settings - Update feedTimeWindow and/or blueskyConnected
//
// Preferences live on the user's record; there is no separate settings store.
package settingsapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/papilloncast/internal/app/features/errors"
	userstore "github.com/dalemusser/papilloncast/internal/app/store/users"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/dalemusser/papilloncast/internal/domain/models"
	"go.uber.org/zap"
)

// Handler handles user settings requests.
type Handler struct {
	users  *userstore.Store
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new settingsapi handler.
func NewHandler(users *userstore.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{users: users, errLog: errLog, logger: logger}
}

// Settings is the client view of a user's preferences.
type Settings struct {
	Email            string     `json:"email"`
	FeedTimeWindow   string     `json:"feedTimeWindow"`
	BlueskyConnected bool       `json:"blueskyConnected"`
	LastFeedRefresh  *time.Time `json:"lastFeedRefresh"`
}

type settingsResponse struct {
	Settings Settings `json:"settings"`
}

// GetHandler handles GET requests.
//
// Response (200 OK):
//
//	{"settings": {"email": "a@x.com", "feedTimeWindow": "4hours",
//	              "blueskyConnected": false, "lastFeedRefresh": null}}
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	u, err := h.users.Get(r.Context(), me.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			jsonutil.NotFound(w, "User not found")
			return
		}
		h.errLog.Log(r, "settings fetch failed", err)
		jsonutil.InternalError(w)
		return
	}

	window := u.FeedTimeWindow
	if window == "" {
		window = models.DefaultFeedTimeWindow
	}
	jsonutil.OK(w, settingsResponse{Settings: Settings{
		Email:            u.Email,
		FeedTimeWindow:   window,
		BlueskyConnected: u.BlueskyConnected,
		LastFeedRefresh:  u.LastFeedRefresh,
	}})
}

// updateRequest keeps raw values so a wrongly typed field is dropped rather
// than failing the whole body.
type updateRequest struct {
	FeedTimeWindow   json.RawMessage `json:"feedTimeWindow"`
	BlueskyConnected json.RawMessage `json:"blueskyConnected"`
}

var jsonNull = []byte("null")

// present reports whether raw carries a value. JSON null counts as absent.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// toUpdate keeps the fields that are present and valid.
func (in updateRequest) toUpdate() userstore.SettingsUpdate {
	var upd userstore.SettingsUpdate
	var window string
	if present(in.FeedTimeWindow) && json.Unmarshal(in.FeedTimeWindow, &window) == nil && models.IsValidFeedTimeWindow(window) {
		upd.FeedTimeWindow = &window
	}
	var connected bool
	if present(in.BlueskyConnected) && json.Unmarshal(in.BlueskyConnected, &connected) == nil {
		upd.BlueskyConnected = &connected
	}
	return upd
}

// UpdateHandler handles PATCH requests. Unknown or invalid fields are
// ignored; a body with nothing usable is rejected.
//
// Request body:
//
//	{"feedTimeWindow": "8hours", "blueskyConnected": true}
//
// Response (200 OK):
//
//	{"success": true, "message": "Settings updated successfully"}
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	var in updateRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, "No valid updates provided")
		return
	}
	upd := in.toUpdate()
	if upd.IsEmpty() {
		jsonutil.BadRequest(w, "No valid updates provided")
		return
	}

	if err := h.users.UpdateSettings(r.Context(), me.Email, upd); err != nil {
		h.errLog.Log(r, "settings update failed", err)
		jsonutil.InternalError(w)
		return
	}

	h.logger.Debug("settings updated", zap.String("email", me.Email))
	jsonutil.Success(w, "Settings updated successfully")
}
