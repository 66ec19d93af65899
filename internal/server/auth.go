package server

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/teemow/calbridge/internal/apierror"
	"github.com/teemow/calbridge/internal/google"
	"github.com/teemow/calbridge/internal/instrumentation"
	"github.com/teemow/calbridge/internal/logging"
	"github.com/teemow/calbridge/internal/store"
)

// handleGoogleRedirect sends the browser to Google's consent screen.
func (s *Server) handleGoogleRedirect(w http.ResponseWriter, r *http.Request) {
	if s.flow == nil {
		apierror.Write(w, apierror.Configuration("Google OAuth configuration is missing"))
		return
	}

	http.Redirect(w, r, s.flow.AuthCodeURL(uuid.NewString()), http.StatusFound)
}

// handleGoogleCallback finishes the authorization: code exchange,
// profile lookup, credential upsert, then a redirect back to the
// frontend. A missing code is the caller's fault and gets a 400; every
// later failure sends the browser back with error=auth_failed.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithOperation(s.logger, "oauth.callback")

	code := r.URL.Query().Get("code")
	if code == "" {
		s.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		apierror.Write(w, apierror.MissingAuthorizationCode())
		return
	}

	if s.flow == nil {
		s.failAuth(w, r, logger, apierror.Configuration("Google OAuth configuration is missing"))
		return
	}

	token, err := s.flow.Exchange(ctx, code)
	if err != nil {
		s.failAuth(w, r, logger, err)
		return
	}

	profile, err := s.flow.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		s.failAuth(w, r, logger, err)
		return
	}

	user, err := s.users.Upsert(ctx, upsertInput(profile, token))
	if err != nil {
		s.failAuth(w, r, logger, err)
		return
	}

	s.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	logger.Info("authorization completed",
		logging.UserID(user.ID),
		logging.UserHash(user.Email),
	)

	q := url.Values{}
	q.Set("userId", user.ID)
	q.Set("email", user.Email)
	q.Set("name", user.Name)
	http.Redirect(w, r, s.cfg.FrontendURL+"/auth/callback?"+q.Encode(), http.StatusFound)
}

// failAuth records the failure and sends the browser back to the
// frontend with a generic error marker; details stay in the logs.
func (s *Server) failAuth(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	s.metrics.RecordOAuthAuth(r.Context(), instrumentation.OAuthResultFailure)
	logger.Warn("authorization failed", logging.Err(err))
	http.Redirect(w, r, s.cfg.FrontendURL+"?error=auth_failed", http.StatusFound)
}

func upsertInput(profile google.Profile, token *oauth2.Token) store.UpsertInput {
	return store.UpsertInput{
		GoogleID:     profile.Subject,
		Email:        profile.Email,
		Name:         profile.Name,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
	}
}
