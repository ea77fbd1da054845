package events

import (
	"time"

	"github.com/inboxpilot/supportdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
	EventMessageAdded  EventType = "ticket_message_added"
)

// Event represents a domain event emitted by services. Events are
// best-effort observers; the audit trail, not the event stream, is the
// durable record of what happened.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject  string                `json:"subject"`
	Priority domain.TicketPriority `json:"priority"`
	Category domain.TicketCategory `json:"category"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Changed map[string]domain.FieldChange `json:"changed"`
}

// MessageAddedPayload payload.
type MessageAddedPayload struct {
	MessageID   int64             `json:"message_id"`
	SenderType  domain.SenderType `json:"sender_type"`
	BodyPreview string            `json:"body_preview"`
}
