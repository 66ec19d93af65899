package calendar

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/calbridge/internal/apierror"
	"github.com/teemow/calbridge/internal/instrumentation"
	"github.com/teemow/calbridge/internal/logging"
	"github.com/teemow/calbridge/internal/store"
)

const listMaxResults = 20

// CredentialSource supplies stored per-user credentials.
type CredentialSource interface {
	Get(ctx context.Context, id string) (*store.User, error)
	UpdateAccessToken(ctx context.Context, id, accessToken string, expiry time.Time) (*store.User, error)
}

// TokenRefresher trades a refresh token for a fresh access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Service executes calendar operations for stored users.
type Service struct {
	creds     CredentialSource
	refresher TokenRefresher
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	opts      []option.ClientOption
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClientOptions appends options passed to every Google API client,
// such as an alternate endpoint.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *Service) {
		s.opts = append(s.opts, opts...)
	}
}

// WithClock overrides the time source used for list windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a calendar service backed by the given credential
// source and token refresher.
func NewService(creds CredentialSource, refresher TokenRefresher, logger *slog.Logger, metrics *instrumentation.Metrics, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	s := &Service{
		creds:     creds,
		refresher: refresher,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEvent inserts an event into the user's primary calendar. The
// credential check runs first, so an unauthenticated caller sees
// NotAuthenticated even when the input is also invalid; validation still
// precedes any network call.
func (s *Service) CreateEvent(ctx context.Context, userID string, in EventInput) (*CreateResult, error) {
	var (
		event   *calendar.Event
		created *calendar.Event
	)
	err := s.execute(ctx, userID, "create", "Failed to create calendar event", func() error {
		if _, _, err := in.Validate(); err != nil {
			return err
		}
		event = &calendar.Event{
			Summary:     in.Title,
			Description: in.Description,
			Start:       &calendar.EventDateTime{DateTime: in.Start},
			End:         &calendar.EventDateTime{DateTime: in.End},
		}
		return nil
	}, func(svc *calendar.Service) error {
		ev, err := svc.Events.Insert("primary", event).Context(ctx).Do()
		if err != nil {
			return err
		}
		created = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateResult{
		EventID:  created.Id,
		HTMLLink: created.HtmlLink,
		Event:    toEventSummary(created),
	}, nil
}

// ListEvents returns the user's next upcoming events from the primary
// calendar, ordered by start time.
func (s *Service) ListEvents(ctx context.Context, userID string) ([]*EventSummary, error) {
	timeMin := s.now().UTC().Format(time.RFC3339)

	var items []*calendar.Event
	err := s.execute(ctx, userID, "list", "Failed to fetch calendar events", nil, func(svc *calendar.Service) error {
		res, err := svc.Events.List("primary").
			TimeMin(timeMin).
			MaxResults(listMaxResults).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		items = res.Items
		return nil
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]*EventSummary, 0, len(items))
	for _, ev := range items {
		summaries = append(summaries, toEventSummary(ev))
	}
	return summaries, nil
}

// execute runs call with the user's stored access token. The ordering is
// fixed: load credentials, run the operation's validate step, then the
// call. When Google rejects the token with a 401 and a refresh token is
// on file, it refreshes once, persists the new token, and retries once.
// A second 401 or a failed refresh surfaces as an
// authentication-expired error.
func (s *Service) execute(ctx context.Context, userID, operation, failMsg string, validate func() error, call func(*calendar.Service) error) error {
	logger := logging.WithOperation(s.logger, "calendar."+operation)
	started := time.Now()

	err := s.executeOnce(ctx, userID, logger, failMsg, validate, call)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	s.metrics.RecordCalendarOperation(ctx, operation, status, time.Since(started))
	return err
}

func (s *Service) executeOnce(ctx context.Context, userID string, logger *slog.Logger, failMsg string, validate func() error, call func(*calendar.Service) error) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	// Input validation happens after the credential check so that an
	// unauthenticated caller is told to authenticate, not to fix the
	// payload. It still precedes any network call.
	if validate != nil {
		if err := validate(); err != nil {
			return err
		}
	}

	svc, err := s.newClient(ctx, user.AccessToken)
	if err != nil {
		return apierror.Upstream("failed to create calendar client", nil, err)
	}

	err = call(svc)
	if err == nil {
		return nil
	}
	if !isAuthRejection(err) {
		return upstreamError(failMsg, err)
	}

	if user.RefreshToken == "" || s.refresher == nil {
		logger.Warn("access token rejected and no refresh token on file", logging.UserID(user.ID))
		return apierror.AuthenticationExpired(err)
	}

	token, rerr := s.refresher.Refresh(ctx, user.RefreshToken)
	if rerr != nil {
		s.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultFailure)
		logger.Warn("token refresh failed", logging.UserID(user.ID), logging.Err(rerr))
		return apierror.AuthenticationExpired(rerr)
	}
	s.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)

	// The operation proceeds with the fresh token even if persisting it
	// fails; the next request will refresh again.
	if _, perr := s.creds.UpdateAccessToken(ctx, user.ID, token.AccessToken, token.Expiry); perr != nil {
		logger.Warn("failed to persist refreshed access token", logging.UserID(user.ID), logging.Err(perr))
	}

	svc, err = s.newClient(ctx, token.AccessToken)
	if err != nil {
		return apierror.Upstream("failed to create calendar client", nil, err)
	}

	err = call(svc)
	if err == nil {
		return nil
	}
	if isAuthRejection(err) {
		logger.Warn("refreshed token rejected", logging.UserID(user.ID))
		return apierror.AuthenticationExpired(err)
	}
	return upstreamError(failMsg, err)
}

func (s *Service) loadUser(ctx context.Context, userID string) (*store.User, error) {
	user, err := s.creds.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierror.NotAuthenticated()
	}
	if err != nil {
		return nil, apierror.Upstream("failed to load credentials", nil, err)
	}
	if user.AccessToken == "" {
		return nil, apierror.NotAuthenticated()
	}
	return user, nil
}

// newClient builds a Calendar client bound to a single access token. A
// static token source keeps the SDK from refreshing on its own, so the
// stored credentials stay authoritative.
func (s *Service) newClient(ctx context.Context, accessToken string) (*calendar.Service, error) {
	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})),
	}, s.opts...)
	return calendar.NewService(ctx, opts...)
}

// isAuthRejection reports whether err is Google rejecting the access
// token. Only a 401 triggers the refresh path; 403s are permission
// problems a new token will not fix.
func isAuthRejection(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == 401
}

// upstreamError wraps a non-auth provider failure, carrying the
// provider's response body as details when one exists.
func upstreamError(msg string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Body != "" {
		return apierror.Upstream(msg, gerr.Body, err)
	}
	return apierror.Upstream(msg, err.Error(), err)
}
