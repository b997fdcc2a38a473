package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/pkg/database"
)

//go:embed schema.sql
var schema string

// Store is the PostgreSQL contracts.Store
// ⭐ SSOT: coverline.* tables are read and written here only
type Store struct {
	db *database.DB
}

var _ contracts.Store = (*Store)(nil)

// New creates a store on an open pool
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the schema; safe to run repeatedly
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Ping checks the pool
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func queryOne[T any](ctx context.Context, q querier, scan pgx.RowToFunc[T], notFound error, id string, sql string, args ...any) (T, error) {
	var zero T

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, fmt.Errorf("query failed: %w", err)
	}

	v, err := pgx.CollectExactlyOneRow(rows, scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, fmt.Errorf("%w: %s", notFound, id)
	}
	if err != nil {
		return zero, fmt.Errorf("failed to scan row: %w", err)
	}
	return v, nil
}

func queryAll[T any](ctx context.Context, q querier, scan pgx.RowToFunc[T], sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, fmt.Errorf("failed to scan rows: %w", err)
	}
	return out, nil
}

// deleteByID maps "no row deleted" to notFound
func deleteByID(ctx context.Context, q querier, notFound error, sql, id string) error {
	tag, err := q.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}

// lockForReplace takes the row lock on a policy about to be replaced.
// A concurrent replace or cancel blocks here until the first transaction ends,
// then sees the row gone.
func lockForReplace(ctx context.Context, tx pgx.Tx, table, id string) error {
	var locked string
	err := tx.QueryRow(ctx, "SELECT id FROM "+table+" WHERE id = $1 FOR UPDATE", id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", contracts.ErrPolicyNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to lock policy: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func requireID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", contracts.ErrInvalidInput)
	}
	return nil
}
