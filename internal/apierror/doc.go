// Package apierror defines the error taxonomy shared by the OAuth flow,
// the calendar executor, and the HTTP handlers.
//
// Every failure that can reach the transport layer is wrapped into an
// *Error carrying a Kind and the HTTP status it maps to, so handlers
// translate errors mechanically instead of matching on strings.
package apierror
