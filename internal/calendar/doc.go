// Package calendar executes Google Calendar operations on behalf of
// stored users. Each operation loads the user's credentials, builds an
// authenticated client, and on a 401 from Google refreshes the access
// token exactly once and retries exactly once before giving up.
package calendar
