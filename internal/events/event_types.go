package events

import (
	"time"

	"github.com/spec-kit/darshan-pass-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestSubmitted EventType = "request_submitted"
	EventRequestCompleted EventType = "request_completed"
	EventRequestDeleted   EventType = "request_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role     domain.Role `json:"role"`
	Identity string      `json:"identity"`
}

// ActorFromSession describes the caller behind session.
func ActorFromSession(session domain.Session) Actor {
	actor := Actor{Identity: session.Identity}
	if session.Role != nil {
		actor.Role = *session.Role
	}
	return actor
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	Category      domain.Category `json:"category"`
	GuestCount    int             `json:"guest_count"`
	PreferredDate string          `json:"preferred_date"`
	PreferredTime string          `json:"preferred_time"`
	EntryGate     string          `json:"entry_gate"`
}

// RequestCompletedPayload payload.
type RequestCompletedPayload struct {
	OldStatus         domain.RequestStatus `json:"old_status"`
	NewStatus         domain.RequestStatus `json:"new_status"`
	SubmitterIdentity string               `json:"submitter_identity"`
}

// RequestDeletedPayload payload.
type RequestDeletedPayload struct {
	SubmitterIdentity string `json:"submitter_identity"`
	OwnedByActor      bool   `json:"owned_by_actor"`
}
