package dto

import (
	"time"

	"github.com/inboxpilot/supportdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject  string `json:"subject"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

// UpdateTicketRequest payload. Pointer fields distinguish "not
// provided" from "set to empty"; an empty string clears optional
// fields.
type UpdateTicketRequest struct {
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
	Category *string `json:"category"`
	Assignee *string `json:"assignee"`
	DueAt    *string `json:"due_at"`
}

// TicketResponse response shape.
type TicketResponse struct {
	ID        int64                 `json:"id"`
	Subject   string                `json:"subject"`
	Status    domain.TicketStatus   `json:"status"`
	Priority  domain.TicketPriority `json:"priority"`
	Category  domain.TicketCategory `json:"category"`
	Assignee  *string               `json:"assignee"`
	DueAt     *string               `json:"due_at"`
	CreatedAt time.Time             `json:"created_at"`
}

// FromTicket maps the domain aggregate to its response shape.
func FromTicket(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:        t.ID,
		Subject:   t.Subject,
		Status:    t.Status,
		Priority:  t.Priority,
		Category:  t.Category,
		Assignee:  t.Assignee,
		CreatedAt: t.CreatedAt,
	}
	if t.DueAt != nil {
		formatted := t.DueAt.UTC().Format(time.RFC3339)
		resp.DueAt = &formatted
	}
	return resp
}
