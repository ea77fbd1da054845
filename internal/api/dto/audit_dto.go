package dto

import (
	"encoding/json"
	"time"

	"github.com/inboxpilot/supportdesk/internal/domain"
)

// AuditLogResponse response shape. Meta is surfaced as raw JSON so
// readers can inspect the change payload without another parse step.
type AuditLogResponse struct {
	ID        int64           `json:"id"`
	TicketID  int64           `json:"ticket_id"`
	Actor     string          `json:"actor"`
	Action    string          `json:"action"`
	Meta      json.RawMessage `json:"meta"`
	CreatedAt time.Time       `json:"created_at"`
}

// FromAuditLogEntry maps an audit row to its response shape.
func FromAuditLogEntry(e *domain.AuditLogEntry) AuditLogResponse {
	meta := json.RawMessage(e.Meta)
	if !json.Valid(meta) {
		meta, _ = json.Marshal(e.Meta)
	}
	return AuditLogResponse{
		ID:        e.ID,
		TicketID:  e.TicketID,
		Actor:     e.Actor,
		Action:    e.Action,
		Meta:      meta,
		CreatedAt: e.CreatedAt,
	}
}
