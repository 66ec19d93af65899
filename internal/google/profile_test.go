package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teemow/calbridge/internal/apierror"
)

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer fresh-access" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"108234","email":"jane@example.com","name":"Jane Doe"}`))
	}))
	defer srv.Close()

	flow, err := NewFlow(testConfig())
	if err != nil {
		t.Fatalf("NewFlow() error = %v", err)
	}
	flow.userinfoURL = srv.URL

	profile, err := flow.FetchProfile(context.Background(), "fresh-access")
	if err != nil {
		t.Fatalf("FetchProfile() error = %v", err)
	}
	if profile.Subject != "108234" {
		t.Errorf("Subject = %q", profile.Subject)
	}
	if profile.Email != "jane@example.com" {
		t.Errorf("Email = %q", profile.Email)
	}
	if profile.Name != "Jane Doe" {
		t.Errorf("Name = %q", profile.Name)
	}
}

func TestFetchProfileRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer srv.Close()

	flow, err := NewFlow(testConfig())
	if err != nil {
		t.Fatalf("NewFlow() error = %v", err)
	}
	flow.userinfoURL = srv.URL

	_, err = flow.FetchProfile(context.Background(), "stale-access")
	if apierror.KindOf(err) != apierror.KindProfileFetchFailed {
		t.Errorf("KindOf() = %q, want %q", apierror.KindOf(err), apierror.KindProfileFetchFailed)
	}
}

func TestFetchProfileMissingSubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"jane@example.com"}`))
	}))
	defer srv.Close()

	flow, err := NewFlow(testConfig())
	if err != nil {
		t.Fatalf("NewFlow() error = %v", err)
	}
	flow.userinfoURL = srv.URL

	_, err = flow.FetchProfile(context.Background(), "fresh-access")
	if apierror.KindOf(err) != apierror.KindProfileFetchFailed {
		t.Errorf("KindOf() = %q, want %q", apierror.KindOf(err), apierror.KindProfileFetchFailed)
	}
}
