package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/papilloncast/internal/app/system/auth"
)

// AdminSuffix is the trusted admin suffix used across handler tests.
const AdminSuffix = "@peaksynergyai.com"

// TestUser represents a signed-in caller for testing HTTP handlers.
type TestUser struct {
	Email string
}

// AdminUser returns a TestUser inside the trusted admin domain.
func AdminUser() TestUser {
	return TestUser{Email: "ops" + AdminSuffix}
}

// MemberUser returns an ordinary TestUser.
func MemberUser() TestUser {
	return TestUser{Email: "a@x.com"}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		Email:   user.Email,
		Status:  "active",
		IsAdmin: strings.HasSuffix(user.Email, AdminSuffix),
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates an HTTP request whose body is v encoded as JSON.
// A string v is sent verbatim, which lets tests send malformed bodies.
func NewJSONRequest(method, target string, v any) *http.Request {
	var body []byte
	switch b := v.(type) {
	case string:
		body = []byte(b)
	default:
		body, _ = json.Marshal(v)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// NewAuthenticatedJSONRequest creates a JSON request with a user in context.
func NewAuthenticatedJSONRequest(method, target string, v any, user TestUser) *http.Request {
	return WithUser(NewJSONRequest(method, target, v), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

type errorfer interface{ Errorf(string, ...any) }

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t errorfer, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t errorfer, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	if location := r.Header().Get("Location"); location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t errorfer, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t errorfer, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Errorf("decode response body %q: %v", r.Body.String(), err)
	}
}
