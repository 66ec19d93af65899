package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"configuration", Configuration("missing client id"), http.StatusInternalServerError},
		{"missing code", MissingAuthorizationCode(), http.StatusBadRequest},
		{"invalid request", InvalidRequest("bad input"), http.StatusBadRequest},
		{"not authenticated", NotAuthenticated(), http.StatusUnauthorized},
		{"authentication expired", AuthenticationExpired(nil), http.StatusUnauthorized},
		{"refresh failed", RefreshFailed(nil), http.StatusUnauthorized},
		{"upstream", Upstream("provider failure", nil, nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.want {
				t.Errorf("Status = %d, want %d", tt.err.Status, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotAuthenticated())
	if got := KindOf(err); got != KindNotAuthenticated {
		t.Errorf("KindOf() = %q, want %q", got, KindNotAuthenticated)
	}

	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := AuthenticationExpired(cause)
	if !errors.Is(wrapped, cause) {
		t.Error("expected AuthenticationExpired to wrap its cause")
	}
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, Upstream("Failed to create calendar event", map[string]any{"code": 500}, nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var body struct {
		Error   string         `json:"error"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Error != "Failed to create calendar event" {
		t.Errorf("error = %q", body.Error)
	}
	if body.Details["code"] != float64(500) {
		t.Errorf("details = %v", body.Details)
	}
}

func TestWriteUnclassified(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, errors.New("something leaked"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Error != "internal server error" {
		t.Errorf("error = %q, internal details must not leak", body.Error)
	}
}
