// Package store persists one credential record per authenticated Google
// user: identity fields plus the current access/refresh token pair.
//
// Records are created on first successful authorization and updated in
// place whenever a new access token is issued. Deletion is an external
// concern. SQLite via uptrace/bun is the only backend; single-row
// atomicity is all the consistency the token lifecycle needs.
package store
