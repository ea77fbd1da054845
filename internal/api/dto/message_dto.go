package dto

import (
	"time"

	"github.com/inboxpilot/supportdesk/internal/domain"
)

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Body       string `json:"body"`
	SenderType string `json:"sender_type"`
}

// MessageResponse response shape.
type MessageResponse struct {
	ID         int64             `json:"id"`
	TicketID   int64             `json:"ticket_id"`
	SenderType domain.SenderType `json:"sender_type"`
	Body       string            `json:"body"`
	CreatedAt  time.Time         `json:"created_at"`
}

// FromMessage maps a thread message to its response shape.
func FromMessage(m *domain.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		TicketID:   m.TicketID,
		SenderType: m.SenderType,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}
