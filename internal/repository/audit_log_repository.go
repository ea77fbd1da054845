package repository

import (
	"context"

	"github.com/inboxpilot/supportdesk/internal/domain"
)

// AuditLogRepository stores the append-only audit trail. Entries are
// created inside the transaction that carries the mutation they
// document; there is no update or delete path.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLogEntry) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditLogEntry, error)
}

type auditLogRepository struct {
	db DB
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(db DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	const query = `
        INSERT INTO audit_logs (ticket_id, actor, action, meta)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.Actor,
		entry.Action,
		entry.Meta,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditLogRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditLogEntry, error) {
	const query = `
        SELECT id, ticket_id, actor, action, meta, created_at
        FROM audit_logs WHERE ticket_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Actor,
			&entry.Action,
			&entry.Meta,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
