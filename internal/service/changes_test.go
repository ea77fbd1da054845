package service

import (
	"testing"
	"time"

	"github.com/inboxpilot/supportdesk/internal/domain"
	apperrors "github.com/inboxpilot/supportdesk/pkg/util"
)

func strPtr(s string) *string { return &s }

func baseTicket() domain.Ticket {
	return domain.Ticket{
		ID:       42,
		Subject:  "Cannot log in",
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityMedium,
		Category: domain.TicketCategoryLogin,
		Version:  1,
	}
}

func TestComputeChangesNoFields(t *testing.T) {
	before := baseTicket()
	after, changed, err := ComputeChanges(before, TicketPatch{})
	if err != nil {
		t.Fatalf("ComputeChanges: %v", err)
	}
	if len(changed) != 0 {
		t.Fatalf("changed = %v, want empty", changed)
	}
	if after != before {
		t.Fatalf("after = %+v, want unchanged %+v", after, before)
	}
}

func TestComputeChangesSameValuesIsNoOp(t *testing.T) {
	before := baseTicket()
	patch := TicketPatch{
		Status:   strPtr("open"),
		Priority: strPtr("medium"),
		Category: strPtr("login"),
	}
	_, changed, err := ComputeChanges(before, patch)
	if err != nil {
		t.Fatalf("ComputeChanges: %v", err)
	}
	if len(changed) != 0 {
		t.Fatalf("changed = %v, want empty", changed)
	}
}

func TestComputeChangesStatusTransition(t *testing.T) {
	before := baseTicket()
	after, changed, err := ComputeChanges(before, TicketPatch{Status: strPtr("closed")})
	if err != nil {
		t.Fatalf("ComputeChanges: %v", err)
	}
	if after.Status != domain.TicketStatusClosed {
		t.Fatalf("after.Status = %q, want closed", after.Status)
	}
	change, ok := changed["status"]
	if !ok || len(changed) != 1 {
		t.Fatalf("changed = %v, want exactly one status entry", changed)
	}
	if change.From != "open" || change.To != "closed" {
		t.Fatalf("status change = %+v, want open->closed", change)
	}
}

func TestComputeChangesInvalidValueFailsWholePatch(t *testing.T) {
	cases := []struct {
		name  string
		patch TicketPatch
		field string
	}{
		{"bad status", TicketPatch{Status: strPtr("pending"), Priority: strPtr("high")}, "status"},
		{"bad priority", TicketPatch{Status: strPtr("closed"), Priority: strPtr("urgent")}, "priority"},
		{"bad category", TicketPatch{Category: strPtr("shipping")}, "category"},
		{"bad due date", TicketPatch{Status: strPtr("closed"), DueAt: strPtr("next tuesday")}, "due_at"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := baseTicket()
			after, changed, err := ComputeChanges(before, tc.patch)
			if err == nil {
				t.Fatal("expected error")
			}
			domainErr := apperrors.ToDomainError(err)
			if domainErr.HTTPStatus != 400 {
				t.Errorf("status = %d, want 400", domainErr.HTTPStatus)
			}
			if got := domainErr.Details["field"]; got != tc.field {
				t.Errorf("details.field = %v, want %q", got, tc.field)
			}
			if changed != nil {
				t.Errorf("changed = %v, want nil on validation failure", changed)
			}
			if after != before {
				t.Errorf("after = %+v, want untouched %+v", after, before)
			}
		})
	}
}

func TestComputeChangesAssignee(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		after, changed, err := ComputeChanges(baseTicket(), TicketPatch{Assignee: strPtr("bob@example.com")})
		if err != nil {
			t.Fatalf("ComputeChanges: %v", err)
		}
		if after.Assignee == nil || *after.Assignee != "bob@example.com" {
			t.Fatalf("assignee = %v, want bob@example.com", after.Assignee)
		}
		change := changed["assignee"]
		if change.From != nil || change.To != "bob@example.com" {
			t.Fatalf("assignee change = %+v, want nil->bob@example.com", change)
		}
	})

	t.Run("clear with empty string", func(t *testing.T) {
		before := baseTicket()
		before.Assignee = strPtr("bob@example.com")
		after, changed, err := ComputeChanges(before, TicketPatch{Assignee: strPtr("")})
		if err != nil {
			t.Fatalf("ComputeChanges: %v", err)
		}
		if after.Assignee != nil {
			t.Fatalf("assignee = %v, want cleared", *after.Assignee)
		}
		change := changed["assignee"]
		if change.From != "bob@example.com" || change.To != nil {
			t.Fatalf("assignee change = %+v, want bob@example.com->nil", change)
		}
	})

	t.Run("clear when already absent is no-op", func(t *testing.T) {
		_, changed, err := ComputeChanges(baseTicket(), TicketPatch{Assignee: strPtr("")})
		if err != nil {
			t.Fatalf("ComputeChanges: %v", err)
		}
		if len(changed) != 0 {
			t.Fatalf("changed = %v, want empty", changed)
		}
	})

	t.Run("whitespace trimmed before compare", func(t *testing.T) {
		before := baseTicket()
		before.Assignee = strPtr("bob@example.com")
		_, changed, err := ComputeChanges(before, TicketPatch{Assignee: strPtr("  bob@example.com  ")})
		if err != nil {
			t.Fatalf("ComputeChanges: %v", err)
		}
		if len(changed) != 0 {
			t.Fatalf("changed = %v, want empty", changed)
		}
	})
}

func TestComputeChangesDueAt(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		after, changed, err := ComputeChanges(baseTicket(), TicketPatch{DueAt: strPtr("2026-09-01T10:00:00Z")})
		if err != nil {
			t.Fatalf("ComputeChanges: %v", err)
		}
		want := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
		if after.DueAt == nil || !after.DueAt.Equal(want) {
			t.Fatalf("due_at = %v, want %v", after.DueAt, want)
		}
		change := changed["due_at"]
		if change.From != nil || change.To != "2026-09-01T10:00:00Z" {
			t.Fatalf("due_at change = %+v", change)
		}
	})

	t.Run("offset form equals stored UTC", func(t *testing.T) {
		before := baseTicket()
		stored := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
		before.DueAt = &stored
		_, changed, err := ComputeChanges(before, TicketPatch{DueAt: strPtr("2026-09-01T12:00:00+02:00")})
		if err != nil {
			t.Fatalf("ComputeChanges: %v", err)
		}
		if len(changed) != 0 {
			t.Fatalf("changed = %v, want empty (same instant)", changed)
		}
	})

	t.Run("clear with empty string", func(t *testing.T) {
		before := baseTicket()
		stored := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
		before.DueAt = &stored
		after, changed, err := ComputeChanges(before, TicketPatch{DueAt: strPtr("")})
		if err != nil {
			t.Fatalf("ComputeChanges: %v", err)
		}
		if after.DueAt != nil {
			t.Fatalf("due_at = %v, want cleared", after.DueAt)
		}
		change := changed["due_at"]
		if change.From != "2026-09-01T10:00:00Z" || change.To != nil {
			t.Fatalf("due_at change = %+v", change)
		}
	})

	t.Run("clear when already absent is no-op", func(t *testing.T) {
		_, changed, err := ComputeChanges(baseTicket(), TicketPatch{DueAt: strPtr("")})
		if err != nil {
			t.Fatalf("ComputeChanges: %v", err)
		}
		if len(changed) != 0 {
			t.Fatalf("changed = %v, want empty", changed)
		}
	})
}

// Applying the same patch to its own result must yield an empty diff.
func TestComputeChangesIdempotent(t *testing.T) {
	patch := TicketPatch{
		Status:   strPtr("closed"),
		Priority: strPtr("high"),
		Assignee: strPtr("bob@example.com"),
		DueAt:    strPtr("2026-09-01T10:00:00Z"),
	}
	after, first, err := ComputeChanges(baseTicket(), patch)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if len(first) != 4 {
		t.Fatalf("first diff has %d entries, want 4: %v", len(first), first)
	}

	_, second, err := ComputeChanges(after, patch)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second diff = %v, want empty", second)
	}
}
