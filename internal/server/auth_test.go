package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/calbridge/internal/apierror"
	"github.com/teemow/calbridge/internal/calendar"
	"github.com/teemow/calbridge/internal/google"
	"github.com/teemow/calbridge/internal/store"
)

type stubFlow struct {
	lastState   string
	token       *oauth2.Token
	exchangeErr error
	profile     google.Profile
	profileErr  error
}

func (f *stubFlow) AuthCodeURL(state string) string {
	f.lastState = state
	return "https://accounts.google.com/o/oauth2/v2/auth?state=" + url.QueryEscape(state)
}

func (f *stubFlow) Exchange(context.Context, string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.token, nil
}

func (f *stubFlow) FetchProfile(context.Context, string) (google.Profile, error) {
	if f.profileErr != nil {
		return google.Profile{}, f.profileErr
	}
	return f.profile, nil
}

type stubUsers struct {
	lastInput store.UpsertInput
	user      *store.User
	err       error
}

func (u *stubUsers) Upsert(_ context.Context, in store.UpsertInput) (*store.User, error) {
	u.lastInput = in
	if u.err != nil {
		return nil, u.err
	}
	return u.user, nil
}

type stubEvents struct {
	createCalls int
	listCalls   int
	createRes   *calendar.CreateResult
	listRes     []*calendar.EventSummary
	err         error
}

func (e *stubEvents) CreateEvent(_ context.Context, _ string, _ calendar.EventInput) (*calendar.CreateResult, error) {
	e.createCalls++
	if e.err != nil {
		return nil, e.err
	}
	return e.createRes, nil
}

func (e *stubEvents) ListEvents(_ context.Context, _ string) ([]*calendar.EventSummary, error) {
	e.listCalls++
	if e.err != nil {
		return nil, e.err
	}
	return e.listRes, nil
}

func newTestServer(flow OAuthFlow, events EventService, users UserUpserter) *Server {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	return New(Config{Addr: ":0", FrontendURL: "http://localhost:3000"}, flow, events, users, logger, nil)
}

func happyFlow() *stubFlow {
	return &stubFlow{
		token: &oauth2.Token{
			AccessToken:  "tok-access",
			RefreshToken: "tok-refresh",
			Expiry:       time.Now().Add(time.Hour),
		},
		profile: google.Profile{Subject: "g-123", Email: "ada@example.com", Name: "Ada Lovelace"},
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestGoogleRedirect(t *testing.T) {
	flow := happyFlow()
	srv := newTestServer(flow, &stubEvents{}, &stubUsers{})

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))

	require.Equal(t, http.StatusFound, rr.Code)
	assert.NotEmpty(t, flow.lastState)
	assert.Contains(t, rr.Header().Get("Location"), "accounts.google.com")
}

func TestGoogleRedirectMissingConfig(t *testing.T) {
	srv := newTestServer(nil, &stubEvents{}, &stubUsers{})

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Google OAuth configuration is missing", decodeError(t, rr))
}

func TestGoogleCallbackMissingCode(t *testing.T) {
	srv := newTestServer(happyFlow(), &stubEvents{}, &stubUsers{})

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/google/callback", nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Authorization code not provided", decodeError(t, rr))
}

func TestGoogleCallbackSuccess(t *testing.T) {
	flow := happyFlow()
	users := &stubUsers{user: &store.User{ID: "u1", Email: "ada@example.com", Name: "Ada Lovelace"}}
	srv := newTestServer(flow, &stubEvents{}, users)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc", nil))

	require.Equal(t, http.StatusFound, rr.Code)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/callback", loc.Path)
	assert.Equal(t, "localhost:3000", loc.Host)
	assert.Equal(t, "u1", loc.Query().Get("userId"))
	assert.Equal(t, "ada@example.com", loc.Query().Get("email"))
	assert.Equal(t, "Ada Lovelace", loc.Query().Get("name"))

	// The upsert carries everything the token and profile delivered.
	assert.Equal(t, "g-123", users.lastInput.GoogleID)
	assert.Equal(t, "ada@example.com", users.lastInput.Email)
	assert.Equal(t, "tok-access", users.lastInput.AccessToken)
	assert.Equal(t, "tok-refresh", users.lastInput.RefreshToken)
	assert.False(t, users.lastInput.TokenExpiry.IsZero())
}

func TestGoogleCallbackFailuresRedirectToFrontend(t *testing.T) {
	tests := []struct {
		name  string
		flow  *stubFlow
		users *stubUsers
	}{
		{
			name: "exchange fails",
			flow: func() *stubFlow {
				f := happyFlow()
				f.exchangeErr = apierror.TokenExchangeFailed(errors.New("invalid_grant"))
				return f
			}(),
			users: &stubUsers{},
		},
		{
			name: "profile fetch fails",
			flow: func() *stubFlow {
				f := happyFlow()
				f.profileErr = apierror.ProfileFetchFailed(errors.New("userinfo 500"))
				return f
			}(),
			users: &stubUsers{},
		},
		{
			name:  "upsert fails",
			flow:  happyFlow(),
			users: &stubUsers{err: errors.New("disk full")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.flow, &stubEvents{}, tt.users)

			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc", nil))

			require.Equal(t, http.StatusFound, rr.Code)
			assert.Equal(t, "http://localhost:3000?error=auth_failed", rr.Header().Get("Location"))
		})
	}
}
