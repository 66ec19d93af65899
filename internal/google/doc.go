// Package google provides OAuth2 authentication and token management for
// the Google APIs used by calbridge.
//
// The Flow type drives the authorization-code flow (authorization URL,
// code exchange, profile fetch) and refreshes access tokens on behalf of
// the calendar executor. All provider endpoints come from
// golang.org/x/oauth2/google; tests substitute httptest servers.
package google
