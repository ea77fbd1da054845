package service

import (
	"strings"
	"time"

	"github.com/inboxpilot/supportdesk/internal/domain"
	apperrors "github.com/inboxpilot/supportdesk/pkg/util"
)

// TicketPatch carries the fields a PATCH request actually supplied.
// A nil pointer means "not provided"; the field stays untouched and is
// excluded from the diff. An empty string clears optional fields.
type TicketPatch struct {
	Status   *string
	Priority *string
	Category *string
	Assignee *string
	DueAt    *string
}

// ComputeChanges validates the patch, applies it to a copy of the
// ticket and returns the updated copy together with the per-field
// before/after diff. Validation is all-or-nothing: any invalid value
// fails the whole patch before a single field is applied. An empty diff
// means the patch was a no-op and the caller must skip both the write
// and the audit entry.
func ComputeChanges(before domain.Ticket, patch TicketPatch) (domain.Ticket, map[string]domain.FieldChange, error) {
	if patch.Status != nil && !domain.TicketStatus(*patch.Status).Valid() {
		return before, nil, apperrors.NewInvalidField("status", domain.AllowedStatuses())
	}
	if patch.Priority != nil && !domain.TicketPriority(*patch.Priority).Valid() {
		return before, nil, apperrors.NewInvalidField("priority", domain.AllowedPriorities())
	}
	if patch.Category != nil && !domain.TicketCategory(*patch.Category).Valid() {
		return before, nil, apperrors.NewInvalidField("category", domain.AllowedCategories())
	}
	dueAt, dueProvided, err := normalizeDueAt(patch.DueAt)
	if err != nil {
		return before, nil, err
	}

	after := before
	changed := map[string]domain.FieldChange{}

	if patch.Status != nil {
		next := domain.TicketStatus(*patch.Status)
		if next != before.Status {
			after.Status = next
			changed["status"] = domain.FieldChange{From: string(before.Status), To: string(next)}
		}
	}
	if patch.Priority != nil {
		next := domain.TicketPriority(*patch.Priority)
		if next != before.Priority {
			after.Priority = next
			changed["priority"] = domain.FieldChange{From: string(before.Priority), To: string(next)}
		}
	}
	if patch.Category != nil {
		next := domain.TicketCategory(*patch.Category)
		if next != before.Category {
			after.Category = next
			changed["category"] = domain.FieldChange{From: string(before.Category), To: string(next)}
		}
	}
	if patch.Assignee != nil {
		next := normalizeAssignee(*patch.Assignee)
		if !equalStringPtr(before.Assignee, next) {
			after.Assignee = next
			changed["assignee"] = domain.FieldChange{From: deref(before.Assignee), To: deref(next)}
		}
	}
	if dueProvided {
		if !equalTimePtr(before.DueAt, dueAt) {
			after.DueAt = dueAt
			changed["due_at"] = domain.FieldChange{From: formatDueAt(before.DueAt), To: formatDueAt(dueAt)}
		}
	}

	return after, changed, nil
}

// normalizeAssignee trims and maps the empty string to absent.
func normalizeAssignee(raw string) *string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// normalizeDueAt parses the raw due date. The empty string clears the
// field; anything else must be RFC 3339.
func normalizeDueAt(raw *string) (*time.Time, bool, error) {
	if raw == nil {
		return nil, false, nil
	}
	cleaned := strings.TrimSpace(*raw)
	if cleaned == "" {
		return nil, true, nil
	}
	parsed, err := time.Parse(time.RFC3339, cleaned)
	if err != nil {
		return nil, false, apperrors.NewValidationError(
			"due_at must be RFC 3339 like 2026-01-20T10:00:00Z (or empty string to clear)",
			map[string]any{"field": "due_at"})
	}
	utc := parsed.UTC()
	return &utc, true, nil
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func formatDueAt(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
