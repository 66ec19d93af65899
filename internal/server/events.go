package server

import (
	"encoding/json"
	"net/http"

	"github.com/teemow/calbridge/internal/apierror"
	"github.com/teemow/calbridge/internal/calendar"
	"github.com/teemow/calbridge/internal/logging"
)

const userIDHeader = "X-User-ID"

type createEventResponse struct {
	Message  string                 `json:"message"`
	EventID  string                 `json:"eventId"`
	HTMLLink string                 `json:"htmlLink"`
	Event    *calendar.EventSummary `json:"event"`
}

type listEventsResponse struct {
	Message string                   `json:"message"`
	Events  []*calendar.EventSummary `json:"events"`
}

// handleCreateEvent inserts an event into the caller's primary calendar.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var in calendar.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apierror.Write(w, apierror.InvalidRequest("invalid JSON body"))
		return
	}

	res, err := s.events.CreateEvent(r.Context(), userID, in)
	if err != nil {
		s.logger.Warn("event creation failed", logging.Operation("calendar.create"), logging.UserID(userID), logging.Err(err))
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createEventResponse{
		Message:  "Event created successfully",
		EventID:  res.EventID,
		HTMLLink: res.HTMLLink,
		Event:    res.Event,
	})
}

// handleListEvents returns the caller's upcoming events.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	events, err := s.events.ListEvents(r.Context(), userID)
	if err != nil {
		s.logger.Warn("event listing failed", logging.Operation("calendar.list"), logging.UserID(userID), logging.Err(err))
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listEventsResponse{
		Message: "Events retrieved successfully",
		Events:  events,
	})
}

// requireUserID reads the calling user's id from the request header.
// A missing id is a caller defect and always answers 400.
func (s *Server) requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		apierror.Write(w, apierror.InvalidRequest("User ID is required"))
		return "", false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
