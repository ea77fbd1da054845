package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/inboxpilot/supportdesk/internal/domain"
	"github.com/inboxpilot/supportdesk/internal/events"
	"github.com/inboxpilot/supportdesk/internal/repository"
	apperrors "github.com/inboxpilot/supportdesk/pkg/util"
)

// casRetries bounds the read-diff-write loop for concurrent PATCHes.
const casRetries = 3

// TicketService coordinates ticket workflows. Every mutation lands in
// one transaction together with its audit entry, or not at all.
type TicketService struct {
	store      repository.TxRunner
	repos      repository.Repos
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.TxRunner
	Repos      repository.Repos
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject  string
	Priority string
	Category string
}

// MessageCreateInput describes message creation payload.
type MessageCreateInput struct {
	Body       string
	SenderType string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		store:      deps.Store,
		repos:      deps.Repos,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket creates a ticket with defaults applied and records the
// ticket.created audit entry in the same transaction.
func (s *TicketService) CreateTicket(ctx context.Context, actor string, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	if n := utf8.RuneCountInString(subject); n < 3 || n > 200 {
		return nil, apperrors.NewValidationError("subject must be between 3 and 200 characters",
			map[string]any{"field": "subject"})
	}

	priority := domain.TicketPriorityMedium
	if input.Priority != "" {
		priority = domain.TicketPriority(input.Priority)
		if !priority.Valid() {
			return nil, apperrors.NewInvalidField("priority", domain.AllowedPriorities())
		}
	}
	category := domain.TicketCategoryOther
	if input.Category != "" {
		category = domain.TicketCategory(input.Category)
		if !category.Valid() {
			return nil, apperrors.NewInvalidField("category", domain.AllowedCategories())
		}
	}

	ticket := &domain.Ticket{
		Subject:  subject,
		Status:   domain.TicketStatusOpen,
		Priority: priority,
		Category: category,
	}

	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		if err := r.Tickets.Create(ctx, ticket); err != nil {
			return err
		}
		return recordAudit(ctx, r, ticket.ID, actor, domain.ActionTicketCreated, map[string]any{
			"subject":  ticket.Subject,
			"priority": ticket.Priority,
			"category": ticket.Category,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketCreatedPayload{
			Subject:  ticket.Subject,
			Priority: ticket.Priority,
			Category: ticket.Category,
		},
	})
	return ticket, nil
}

// GetTicket fetches one ticket.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.repos.Tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter, newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.repos.Tickets.ListWithFilter(ctx, filter)
}

// UpdateTicket applies a patch. The diff is computed against the row
// the transaction read; a version conflict re-reads and re-diffs so the
// audit entry always reflects the true before-state of the committed
// write. An empty diff skips both the write and the audit entry.
func (s *TicketService) UpdateTicket(ctx context.Context, actor string, id int64, patch TicketPatch) (*domain.Ticket, map[string]domain.FieldChange, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		before, err := s.repos.Tickets.GetByID(ctx, id)
		if err != nil {
			return nil, nil, mapTicketErr(err)
		}

		after, changed, err := ComputeChanges(*before, patch)
		if err != nil {
			return nil, nil, err
		}
		if len(changed) == 0 {
			return before, changed, nil
		}

		err = s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
			if err := r.Tickets.UpdateVersioned(ctx, &after); err != nil {
				return err
			}
			return recordAudit(ctx, r, after.ID, actor, domain.ActionTicketUpdated, map[string]any{
				"changed": changed,
			})
		})
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: after.ID,
			Actor:    actor,
			Payload:  events.TicketUpdatedPayload{Changed: changed},
		})
		return &after, changed, nil
	}
	return nil, nil, apperrors.NewConflict("ticket was modified concurrently, retry the update", nil)
}

// AddMessage appends a message to a ticket and records the
// message.added audit entry in the same transaction.
func (s *TicketService) AddMessage(ctx context.Context, actor string, ticketID int64, input MessageCreateInput) (*domain.Message, error) {
	body := strings.TrimSpace(input.Body)
	if n := utf8.RuneCountInString(body); n < 1 || n > 5000 {
		return nil, apperrors.NewValidationError("body must be between 1 and 5000 characters",
			map[string]any{"field": "body"})
	}

	senderType := domain.SenderTypeCustomer
	if input.SenderType != "" {
		senderType = domain.SenderType(input.SenderType)
		if !senderType.Valid() {
			return nil, apperrors.NewInvalidField("sender_type", domain.AllowedSenderTypes())
		}
	}

	if _, err := s.repos.Tickets.GetByID(ctx, ticketID); err != nil {
		return nil, mapTicketErr(err)
	}

	msg := &domain.Message{
		TicketID:   ticketID,
		SenderType: senderType,
		Body:       body,
	}

	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		if err := r.Messages.Create(ctx, msg); err != nil {
			return err
		}
		return recordAudit(ctx, r, ticketID, actor, domain.ActionMessageAdded, map[string]any{
			"message_id":  msg.ID,
			"sender_type": msg.SenderType,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventMessageAdded,
		TicketID: ticketID,
		Actor:    actor,
		Payload: events.MessageAddedPayload{
			MessageID:   msg.ID,
			SenderType:  msg.SenderType,
			BodyPreview: stringPreview(msg.Body, 120),
		},
	})
	return msg, nil
}

// ListMessages returns the conversation thread, oldest first.
func (s *TicketService) ListMessages(ctx context.Context, ticketID int64) ([]domain.Message, error) {
	if _, err := s.repos.Tickets.GetByID(ctx, ticketID); err != nil {
		return nil, mapTicketErr(err)
	}
	return s.repos.Messages.ListByTicket(ctx, ticketID)
}

// ListAudit returns the audit trail, newest first.
func (s *TicketService) ListAudit(ctx context.Context, ticketID int64) ([]domain.AuditLogEntry, error) {
	if _, err := s.repos.Tickets.GetByID(ctx, ticketID); err != nil {
		return nil, mapTicketErr(err)
	}
	return s.repos.Audit.ListByTicket(ctx, ticketID)
}

// recordAudit serializes meta and appends the audit row inside the
// caller's transaction. A failure here aborts the whole transaction: an
// unaudited mutation is never acceptable.
func recordAudit(ctx context.Context, r repository.Repos, ticketID int64, actor, action string, meta map[string]any) error {
	serialized, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return r.Audit.Create(ctx, &domain.AuditLogEntry{
		TicketID: ticketID,
		Actor:    actor,
		Action:   action,
		Meta:     string(serialized),
	})
}

func mapTicketErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", nil)
	}
	return err
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// stringPreview truncates on rune boundaries so multibyte bodies never
// yield invalid UTF-8 in event payloads.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
