package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so handlers can translate it into an HTTP
// response without inspecting upstream error strings.
type Kind string

const (
	// KindConfiguration indicates required OAuth settings are missing.
	// Surfaced before any network call is attempted.
	KindConfiguration Kind = "configuration_error"

	// KindMissingAuthorizationCode indicates the OAuth callback arrived
	// without a code query parameter.
	KindMissingAuthorizationCode Kind = "missing_authorization_code"

	// KindInvalidRequest indicates a caller input defect (missing fields,
	// unparseable timestamps, end not after start).
	KindInvalidRequest Kind = "invalid_request"

	// KindNotAuthenticated indicates no credentials are stored for the user.
	KindNotAuthenticated Kind = "not_authenticated"

	// KindAuthenticationExpired indicates the access token was rejected and
	// could not be refreshed; the user must re-authenticate.
	KindAuthenticationExpired Kind = "authentication_expired"

	// KindTokenExchangeFailed indicates the provider rejected the
	// authorization code exchange.
	KindTokenExchangeFailed Kind = "token_exchange_failed"

	// KindProfileFetchFailed indicates the provider rejected the profile
	// lookup performed with a freshly issued access token.
	KindProfileFetchFailed Kind = "profile_fetch_failed"

	// KindRefreshFailed indicates the provider rejected the refresh token.
	KindRefreshFailed Kind = "refresh_failed"

	// KindUpstream indicates any other provider-side failure. Never retried.
	KindUpstream Kind = "upstream_error"
)

// Error is the single error type crossing package boundaries on the way to
// the HTTP layer. Status is the HTTP status the handler should respond with;
// Details carries the provider's response body where one exists.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Configuration reports missing OAuth settings.
func Configuration(msg string) *Error {
	return &Error{Kind: KindConfiguration, Status: http.StatusInternalServerError, Message: msg}
}

// MissingAuthorizationCode reports a callback without a code parameter.
func MissingAuthorizationCode() *Error {
	return &Error{
		Kind:    KindMissingAuthorizationCode,
		Status:  http.StatusBadRequest,
		Message: "Authorization code not provided",
	}
}

// InvalidRequest reports a caller input defect.
func InvalidRequest(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Status: http.StatusBadRequest, Message: msg}
}

// NotAuthenticated reports that no usable credentials are stored.
func NotAuthenticated() *Error {
	return &Error{
		Kind:    KindNotAuthenticated,
		Status:  http.StatusUnauthorized,
		Message: "User not authenticated or access token missing",
	}
}

// AuthenticationExpired reports a rejected token that could not be refreshed.
func AuthenticationExpired(err error) *Error {
	return &Error{
		Kind:    KindAuthenticationExpired,
		Status:  http.StatusUnauthorized,
		Message: "Access token expired. Please re-authenticate.",
		Err:     err,
	}
}

// TokenExchangeFailed reports a rejected authorization code exchange.
func TokenExchangeFailed(err error) *Error {
	return &Error{
		Kind:    KindTokenExchangeFailed,
		Status:  http.StatusBadGateway,
		Message: "failed to exchange authorization code",
		Err:     err,
	}
}

// ProfileFetchFailed reports a rejected profile lookup.
func ProfileFetchFailed(err error) *Error {
	return &Error{
		Kind:    KindProfileFetchFailed,
		Status:  http.StatusBadGateway,
		Message: "failed to fetch user profile",
		Err:     err,
	}
}

// RefreshFailed reports a rejected refresh token. Terminal for the current
// operation; the caller surfaces a re-authentication requirement.
func RefreshFailed(err error) *Error {
	return &Error{
		Kind:    KindRefreshFailed,
		Status:  http.StatusUnauthorized,
		Message: "failed to refresh access token",
		Err:     err,
	}
}

// Upstream reports a provider-side failure unrelated to authentication.
func Upstream(msg string, details any, err error) *Error {
	return &Error{
		Kind:    KindUpstream,
		Status:  http.StatusInternalServerError,
		Message: msg,
		Details: details,
		Err:     err,
	}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// errorResponse is the JSON body written for failed API calls.
type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// Write translates err into a structured JSON error response. Errors that
// are not *Error become a generic 500 so nothing escapes unclassified.
func Write(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	var e *Error
	if !errors.As(err, &e) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "internal server error"})
		return
	}

	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: e.Message, Details: e.Details})
}
