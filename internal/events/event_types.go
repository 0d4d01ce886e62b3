package events

import (
	"time"

	"github.com/spec-kit/vacation-manager/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated  EventType = "request_created"
	EventRequestUpdated  EventType = "request_updated"
	EventRequestApproved EventType = "request_approved"
	EventRequestDeleted  EventType = "request_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID int64       `json:"request_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	RequesterID string             `json:"requester_id"`
	Type        domain.RequestType `json:"type"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	HalfDay     bool               `json:"half_day"`
}

// RequestUpdatedPayload payload.
type RequestUpdatedPayload struct {
	Type      domain.RequestType `json:"type"`
	StartDate time.Time          `json:"start_date"`
	EndDate   time.Time          `json:"end_date"`
	HalfDay   bool               `json:"half_day"`
}

// RequestApprovedPayload payload.
type RequestApprovedPayload struct {
	RequesterID string `json:"requester_id"`
	ApproverID  string `json:"approver_id"`
}

// RequestDeletedPayload payload.
type RequestDeletedPayload struct {
	RequesterID string `json:"requester_id"`
	Approved    bool   `json:"approved"`
}
