package google

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/calbridge/internal/apierror"
	"github.com/teemow/calbridge/internal/config"
)

// Flow drives the OAuth2 authorization-code flow against Google and
// refreshes access tokens for the calendar executor.
type Flow struct {
	conf        *oauth2.Config
	userinfoURL string
	// httpClient overrides the transport for token and profile calls.
	// Nil means the oauth2 package default. Tests point it at httptest.
	httpClient *http.Client
}

// NewFlow builds a Flow from explicit configuration. It fails with a
// configuration error before any network call when the OAuth settings
// are incomplete.
func NewFlow(cfg config.Config) (*Flow, error) {
	if err := cfg.ValidateOAuth(); err != nil {
		return nil, err
	}

	return &Flow{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       DefaultOAuthScopes,
			Endpoint:     google.Endpoint,
		},
		userinfoURL: userinfoEndpoint,
	}, nil
}

// AuthCodeURL returns the provider authorization URL. access_type=offline
// and prompt=consent force Google to issue a refresh token on every consent.
func (f *Flow) AuthCodeURL(state string) string {
	return f.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange swaps an authorization code for an access/refresh token pair.
func (f *Flow) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if f.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	}

	token, err := f.conf.Exchange(ctx, code)
	if err != nil {
		return nil, apierror.TokenExchangeFailed(err)
	}
	return token, nil
}
