package jsonutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
		wantBody   string
	}{
		{"200 OK with data", http.StatusOK, map[string]string{"message": "hello"}, http.StatusOK, `{"message":"hello"}`},
		{"404 with data", http.StatusNotFound, map[string]int{"id": 123}, http.StatusNotFound, `{"id":123}`},
		{"nil data", http.StatusOK, nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSON(rec, tt.status, tt.data)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			if body := strings.TrimSpace(rec.Body.String()); body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestSuccess(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"", `{"success":true}`},
		{"Settings updated successfully", `{"message":"Settings updated successfully","success":true}`},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Success(rec, tt.message)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != tt.want {
			t.Errorf("body = %s, want %s", body, tt.want)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter)
		wantStatus int
		wantError  string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "Invalid status") }, 400, "Invalid status"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "Unauthorized") }, 401, "Unauthorized"},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "Unauthorized") }, 403, "Unauthorized"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "User not found") }, 404, "User not found"},
		{"too many", func(w http.ResponseWriter) { TooManyRequests(w, "slow down") }, 429, "slow down"},
		{"internal", InternalError, 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var got map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("json unmarshal error: %v", err)
			}
			if got["error"] != tt.wantError {
				t.Errorf("error = %q, want %q", got["error"], tt.wantError)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	type input struct {
		Email  string `json:"email"`
		Status string `json:"status"`
	}

	tests := []struct {
		name    string
		body    string
		want    input
		wantErr bool
	}{
		{"valid", `{"email":"a@x.com","status":"active"}`, input{"a@x.com", "active"}, false},
		{"unknown fields ignored", `{"email":"a@x.com","extra":1}`, input{Email: "a@x.com"}, false},
		{"malformed", `{"email":`, input{}, true},
		{"wrong type", `{"email":42}`, input{}, true},
		{"empty", ``, input{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got input
			err := Decode(httptest.NewRecorder(), req, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecode_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	var v map[string]any
	if err := Decode(httptest.NewRecorder(), req, &v); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("Decode() error = %v, want ErrEmptyBody", err)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	big := `{"content":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	var v map[string]string
	if err := Decode(httptest.NewRecorder(), req, &v); err == nil {
		t.Error("Decode() of oversized body should fail")
	}
}
