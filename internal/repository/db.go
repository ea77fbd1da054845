package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrVersionConflict signals a compare-and-swap update that lost the
// race: the row changed since the caller read it.
var ErrVersionConflict = errors.New("ticket version conflict")

// DB is the query surface shared by a pgx pool and an open transaction.
// Repositories are bound to either, which is how a mutation and its
// audit row end up in the same transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repos bundles the repositories bound to one DB handle.
type Repos struct {
	Tickets  TicketRepository
	Messages MessageRepository
	Audit    AuditLogRepository
}

// NewRepos binds repositories to the given handle.
func NewRepos(db DB) Repos {
	return Repos{
		Tickets:  NewTicketRepository(db),
		Messages: NewMessageRepository(db),
		Audit:    NewAuditLogRepository(db),
	}
}

// TxRunner runs a function with repositories bound to one transaction.
// The function's mutations either all commit or all roll back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// Store owns the connection pool and hands out pool-bound repositories
// plus transactional execution.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a pgx pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Repos returns repositories bound to the pool for single-statement work.
func (s *Store) Repos() Repos {
	return NewRepos(s.pool)
}

// InTx opens a transaction, binds repositories to it and runs fn.
// Commit happens only when fn returns nil; any error rolls the whole
// transaction back.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
