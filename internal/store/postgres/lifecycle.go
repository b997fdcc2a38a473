package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/coverline/internal/contracts"
)

// snapshot columns hold JSON documents of the insured person, asset and terms
func marshalAll(vs ...any) ([][]byte, error) {
	out := make([][]byte, len(vs))
	for i, v := range vs {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		out[i] = b
	}
	return out, nil
}

func unmarshalAll(pairs ...any) error {
	for i := 0; i < len(pairs); i += 2 {
		if err := json.Unmarshal(pairs[i].([]byte), pairs[i+1]); err != nil {
			return fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
	}
	return nil
}

// === Auto quotes ===

const autoQuoteColumns = "id, user_id, insured_person, vehicle, terms, created_at"

func scanAutoQuote(row pgx.CollectableRow) (contracts.AutoQuote, error) {
	var (
		q                       contracts.AutoQuote
		insured, vehicle, terms []byte
	)
	if err := row.Scan(&q.ID, &q.UserID, &insured, &vehicle, &terms, &q.CreatedAt); err != nil {
		return q, err
	}
	err := unmarshalAll(insured, &q.InsuredPerson, vehicle, &q.Vehicle, terms, &q.Terms)
	return q, err
}

func (s *Store) FindAutoQuoteByID(ctx context.Context, id string) (contracts.AutoQuote, error) {
	return queryOne(ctx, s.db.Pool, scanAutoQuote, contracts.ErrQuoteNotFound, id,
		"SELECT "+autoQuoteColumns+" FROM coverline.auto_quotes WHERE id = $1", id)
}

// SaveAutoQuote inserts a quote; quotes are immutable so an existing id is left untouched
func (s *Store) SaveAutoQuote(ctx context.Context, q contracts.AutoQuote) error {
	if err := requireID(q.ID); err != nil {
		return err
	}
	docs, err := marshalAll(q.InsuredPerson, q.Vehicle, q.Terms)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO coverline.auto_quotes (id, user_id, insured_person, vehicle, terms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := s.db.Pool.Exec(ctx, query, q.ID, q.UserID, docs[0], docs[1], docs[2], q.CreatedAt); err != nil {
		return fmt.Errorf("failed to save auto quote: %w", err)
	}
	return nil
}

func (s *Store) DeleteAutoQuoteByID(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Pool, contracts.ErrQuoteNotFound, "DELETE FROM coverline.auto_quotes WHERE id = $1", id)
}

func (s *Store) ListAutoQuotesByUserID(ctx context.Context, userID string) ([]contracts.AutoQuote, error) {
	return queryAll(ctx, s.db.Pool, scanAutoQuote,
		"SELECT "+autoQuoteColumns+" FROM coverline.auto_quotes WHERE user_id = $1 ORDER BY created_at, id", userID)
}

// === Home quotes ===

const homeQuoteColumns = "id, user_id, insured_person, home, terms, created_at"

func scanHomeQuote(row pgx.CollectableRow) (contracts.HomeQuote, error) {
	var (
		q                    contracts.HomeQuote
		insured, home, terms []byte
	)
	if err := row.Scan(&q.ID, &q.UserID, &insured, &home, &terms, &q.CreatedAt); err != nil {
		return q, err
	}
	err := unmarshalAll(insured, &q.InsuredPerson, home, &q.Home, terms, &q.Terms)
	return q, err
}

func (s *Store) FindHomeQuoteByID(ctx context.Context, id string) (contracts.HomeQuote, error) {
	return queryOne(ctx, s.db.Pool, scanHomeQuote, contracts.ErrQuoteNotFound, id,
		"SELECT "+homeQuoteColumns+" FROM coverline.home_quotes WHERE id = $1", id)
}

// SaveHomeQuote inserts a quote; quotes are immutable so an existing id is left untouched
func (s *Store) SaveHomeQuote(ctx context.Context, q contracts.HomeQuote) error {
	if err := requireID(q.ID); err != nil {
		return err
	}
	docs, err := marshalAll(q.InsuredPerson, q.Home, q.Terms)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO coverline.home_quotes (id, user_id, insured_person, home, terms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := s.db.Pool.Exec(ctx, query, q.ID, q.UserID, docs[0], docs[1], docs[2], q.CreatedAt); err != nil {
		return fmt.Errorf("failed to save home quote: %w", err)
	}
	return nil
}

func (s *Store) DeleteHomeQuoteByID(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Pool, contracts.ErrQuoteNotFound, "DELETE FROM coverline.home_quotes WHERE id = $1", id)
}

func (s *Store) ListHomeQuotesByUserID(ctx context.Context, userID string) ([]contracts.HomeQuote, error) {
	return queryAll(ctx, s.db.Pool, scanHomeQuote,
		"SELECT "+homeQuoteColumns+" FROM coverline.home_quotes WHERE user_id = $1 ORDER BY created_at, id", userID)
}

// === Auto policies ===

const autoPolicyColumns = "id, quote_id, user_id, insured_person, vehicle, terms, start_date, end_date"

func scanAutoPolicy(row pgx.CollectableRow) (contracts.AutoPolicy, error) {
	var (
		p                       contracts.AutoPolicy
		insured, vehicle, terms []byte
	)
	if err := row.Scan(&p.ID, &p.QuoteID, &p.UserID, &insured, &vehicle, &terms, &p.StartDate, &p.EndDate); err != nil {
		return p, err
	}
	err := unmarshalAll(insured, &p.InsuredPerson, vehicle, &p.Vehicle, terms, &p.Terms)
	return p, err
}

func insertAutoPolicy(ctx context.Context, q querier, p contracts.AutoPolicy) error {
	if err := requireID(p.ID); err != nil {
		return err
	}
	docs, err := marshalAll(p.InsuredPerson, p.Vehicle, p.Terms)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO coverline.auto_policies (id, quote_id, user_id, insured_person, vehicle, terms, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := q.Exec(ctx, query, p.ID, p.QuoteID, p.UserID, docs[0], docs[1], docs[2], p.StartDate, p.EndDate); err != nil {
		return fmt.Errorf("failed to insert auto policy: %w", err)
	}
	return nil
}

func (s *Store) FindAutoPolicyByID(ctx context.Context, id string) (contracts.AutoPolicy, error) {
	return queryOne(ctx, s.db.Pool, scanAutoPolicy, contracts.ErrPolicyNotFound, id,
		"SELECT "+autoPolicyColumns+" FROM coverline.auto_policies WHERE id = $1", id)
}

func (s *Store) SaveAutoPolicy(ctx context.Context, p contracts.AutoPolicy) error {
	return insertAutoPolicy(ctx, s.db.Pool, p)
}

func (s *Store) DeleteAutoPolicyByID(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Pool, contracts.ErrPolicyNotFound, "DELETE FROM coverline.auto_policies WHERE id = $1", id)
}

func (s *Store) ListAutoPoliciesByUserID(ctx context.Context, userID string) ([]contracts.AutoPolicy, error) {
	return queryAll(ctx, s.db.Pool, scanAutoPolicy,
		"SELECT "+autoPolicyColumns+" FROM coverline.auto_policies WHERE user_id = $1 ORDER BY created_at, id", userID)
}

// ReplaceAutoPolicy swaps a policy for its successor in one transaction
func (s *Store) ReplaceAutoPolicy(ctx context.Context, oldID string, next contracts.AutoPolicy) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := lockForReplace(ctx, tx, "coverline.auto_policies", oldID); err != nil {
			return err
		}
		if err := deleteByID(ctx, tx, contracts.ErrPolicyNotFound, "DELETE FROM coverline.auto_policies WHERE id = $1", oldID); err != nil {
			return err
		}
		return insertAutoPolicy(ctx, tx, next)
	})
}

func (s *Store) ListAutoPoliciesEndingBefore(ctx context.Context, cutoff time.Time) ([]contracts.AutoPolicy, error) {
	return queryAll(ctx, s.db.Pool, scanAutoPolicy,
		"SELECT "+autoPolicyColumns+" FROM coverline.auto_policies WHERE end_date < $1 ORDER BY end_date, id", cutoff)
}

// === Home policies ===

const homePolicyColumns = "id, quote_id, user_id, insured_person, home, terms, start_date, end_date"

func scanHomePolicy(row pgx.CollectableRow) (contracts.HomePolicy, error) {
	var (
		p                    contracts.HomePolicy
		insured, home, terms []byte
	)
	if err := row.Scan(&p.ID, &p.QuoteID, &p.UserID, &insured, &home, &terms, &p.StartDate, &p.EndDate); err != nil {
		return p, err
	}
	err := unmarshalAll(insured, &p.InsuredPerson, home, &p.Home, terms, &p.Terms)
	return p, err
}

func insertHomePolicy(ctx context.Context, q querier, p contracts.HomePolicy) error {
	if err := requireID(p.ID); err != nil {
		return err
	}
	docs, err := marshalAll(p.InsuredPerson, p.Home, p.Terms)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO coverline.home_policies (id, quote_id, user_id, insured_person, home, terms, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := q.Exec(ctx, query, p.ID, p.QuoteID, p.UserID, docs[0], docs[1], docs[2], p.StartDate, p.EndDate); err != nil {
		return fmt.Errorf("failed to insert home policy: %w", err)
	}
	return nil
}

func (s *Store) FindHomePolicyByID(ctx context.Context, id string) (contracts.HomePolicy, error) {
	return queryOne(ctx, s.db.Pool, scanHomePolicy, contracts.ErrPolicyNotFound, id,
		"SELECT "+homePolicyColumns+" FROM coverline.home_policies WHERE id = $1", id)
}

func (s *Store) SaveHomePolicy(ctx context.Context, p contracts.HomePolicy) error {
	return insertHomePolicy(ctx, s.db.Pool, p)
}

func (s *Store) DeleteHomePolicyByID(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Pool, contracts.ErrPolicyNotFound, "DELETE FROM coverline.home_policies WHERE id = $1", id)
}

func (s *Store) ListHomePoliciesByUserID(ctx context.Context, userID string) ([]contracts.HomePolicy, error) {
	return queryAll(ctx, s.db.Pool, scanHomePolicy,
		"SELECT "+homePolicyColumns+" FROM coverline.home_policies WHERE user_id = $1 ORDER BY created_at, id", userID)
}

// ReplaceHomePolicy swaps a policy for its successor in one transaction
func (s *Store) ReplaceHomePolicy(ctx context.Context, oldID string, next contracts.HomePolicy) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := lockForReplace(ctx, tx, "coverline.home_policies", oldID); err != nil {
			return err
		}
		if err := deleteByID(ctx, tx, contracts.ErrPolicyNotFound, "DELETE FROM coverline.home_policies WHERE id = $1", oldID); err != nil {
			return err
		}
		return insertHomePolicy(ctx, tx, next)
	})
}

func (s *Store) ListHomePoliciesEndingBefore(ctx context.Context, cutoff time.Time) ([]contracts.HomePolicy, error) {
	return queryAll(ctx, s.db.Pool, scanHomePolicy,
		"SELECT "+homePolicyColumns+" FROM coverline.home_policies WHERE end_date < $1 ORDER BY end_date, id", cutoff)
}
