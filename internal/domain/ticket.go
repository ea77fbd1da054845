package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// TicketCategory enumerates the supported request categories.
type TicketCategory string

const (
	TicketCategoryBilling TicketCategory = "billing"
	TicketCategoryLogin   TicketCategory = "login"
	TicketCategoryRefund  TicketCategory = "refund"
	TicketCategoryOther   TicketCategory = "other"
)

// AllowedStatuses lists accepted status values in display order.
func AllowedStatuses() []string {
	return []string{string(TicketStatusOpen), string(TicketStatusClosed)}
}

// AllowedPriorities lists accepted priority values in display order.
func AllowedPriorities() []string {
	return []string{string(TicketPriorityLow), string(TicketPriorityMedium), string(TicketPriorityHigh)}
}

// AllowedCategories lists accepted category values in display order.
func AllowedCategories() []string {
	return []string{string(TicketCategoryBilling), string(TicketCategoryLogin), string(TicketCategoryRefund), string(TicketCategoryOther)}
}

// Valid reports whether the status is one of the accepted values.
func (s TicketStatus) Valid() bool {
	return s == TicketStatusOpen || s == TicketStatusClosed
}

// Valid reports whether the priority is one of the accepted values.
func (p TicketPriority) Valid() bool {
	return p == TicketPriorityLow || p == TicketPriorityMedium || p == TicketPriorityHigh
}

// Valid reports whether the category is one of the accepted values.
func (c TicketCategory) Valid() bool {
	return c == TicketCategoryBilling || c == TicketCategoryLogin || c == TicketCategoryRefund || c == TicketCategoryOther
}

// Ticket is the aggregate for support requests. Version backs the
// compare-and-swap update path; stale writers never overwrite silently.
type Ticket struct {
	ID        int64
	Subject   string
	Status    TicketStatus
	Priority  TicketPriority
	Category  TicketCategory
	Assignee  *string
	DueAt     *time.Time
	Version   int64
	CreatedAt time.Time
}
