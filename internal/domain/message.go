package domain

import "time"

// SenderType indicates who authored a message.
type SenderType string

const (
	SenderTypeCustomer SenderType = "customer"
	SenderTypeAgent    SenderType = "agent"
	SenderTypeSystem   SenderType = "system"
)

// AllowedSenderTypes lists accepted sender values in display order.
func AllowedSenderTypes() []string {
	return []string{string(SenderTypeCustomer), string(SenderTypeAgent), string(SenderTypeSystem)}
}

// Valid reports whether the sender type is one of the accepted values.
func (s SenderType) Valid() bool {
	return s == SenderTypeCustomer || s == SenderTypeAgent || s == SenderTypeSystem
}

// Message is a single entry in a ticket conversation thread.
// Messages are append-only; no update or delete path exists.
type Message struct {
	ID         int64
	TicketID   int64
	SenderType SenderType
	Body       string
	CreatedAt  time.Time
}
