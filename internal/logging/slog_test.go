package logging

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "calendar.create_event")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("auth.callback")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "auth.callback" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "auth.callback")
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != "success" {
		t.Errorf("Status value = %q", attr.Value.String())
	}
}

func TestUserIDAttr(t *testing.T) {
	attr := UserID("1b671a64-40d5-491e-99b0-da01ff1f3341")
	if attr.Key != KeyUserID {
		t.Errorf("UserID key = %q, want %q", attr.Key, KeyUserID)
	}
}

func TestErrAttr(t *testing.T) {
	attr := Err(errors.New("test error"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "test error" {
		t.Errorf("Err value = %q", attr.Value.String())
	}
}

func TestErrAttrNil(t *testing.T) {
	attr := Err(nil)
	// A nil error should produce an empty group that slog omits
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty", attr.Key)
	}
}

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{"regular email", "user@example.com"},
		{"another email", "someone.else@company.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)
			if !strings.HasPrefix(got, "user:") {
				t.Errorf("AnonymizeEmail() = %q, want user: prefix", got)
			}
			if strings.Contains(got, tt.email) {
				t.Errorf("AnonymizeEmail() = %q, must not contain the raw email", got)
			}
			// Hashing must be deterministic for correlation
			if again := AnonymizeEmail(tt.email); again != got {
				t.Errorf("AnonymizeEmail() not deterministic: %q vs %q", got, again)
			}
		})
	}
}

func TestAnonymizeEmailEmpty(t *testing.T) {
	if got := AnonymizeEmail(""); got != "" {
		t.Errorf("AnonymizeEmail(\"\") = %q, want empty", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty", "", "<empty>"},
		{"short token", "abc", "[token:3 chars]"},
		{"bearer token", "ya29.a0AfH6SMC7example", "[token:22 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeToken(tt.token); got != tt.want {
				t.Errorf("SanitizeToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
