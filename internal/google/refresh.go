package google

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/calbridge/internal/apierror"
)

// Refresh exchanges a refresh token for a new access token. A rejected
// refresh token is terminal for the current operation; the caller must
// surface a re-authentication requirement. No retry happens here, so a
// transient failure never burns more than one refresh attempt.
func (f *Flow) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, apierror.RefreshFailed(errors.New("no refresh token available"))
	}

	if f.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	}

	// Seeding the source with only the refresh token and an expired Expiry
	// forces a form-encoded grant_type=refresh_token exchange on the first
	// Token call.
	ts := f.conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Unix(1, 0),
	})

	token, err := ts.Token()
	if err != nil {
		return nil, apierror.RefreshFailed(err)
	}
	return token, nil
}
