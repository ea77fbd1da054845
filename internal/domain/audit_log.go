package domain

import "time"

// Audit action tags.
const (
	ActionTicketCreated = "ticket.created"
	ActionTicketUpdated = "ticket.updated"
	ActionMessageAdded  = "message.added"
)

// AuditLogEntry is an immutable audit trail row tied to a ticket.
// Meta holds the serialized structured payload describing the change.
type AuditLogEntry struct {
	ID        int64
	TicketID  int64
	Actor     string
	Action    string
	Meta      string
	CreatedAt time.Time
}
