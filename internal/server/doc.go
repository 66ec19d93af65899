// Package server exposes the HTTP API: the Google OAuth redirect and
// callback, the calendar event endpoints, health probes, and a
// dedicated Prometheus metrics listener.
package server
