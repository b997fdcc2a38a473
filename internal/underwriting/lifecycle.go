package underwriting

import (
	"context"
	"fmt"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/internal/notify"
	"github.com/wonny/coverline/internal/ownership"
	"github.com/wonny/coverline/pkg/redis"
)

// lifecycle binds one product line's store calls and factory steps so the
// cancel/issue/renew flows below are written once for both lines
type lifecycle[Q, P contracts.Owned] struct {
	product  contracts.Product
	quoteKey func(id string) string
	quoteID  func(Q) string
	policyID func(P) string

	findQuote    func(ctx context.Context, id string) (Q, error)
	deleteQuote  func(ctx context.Context, id string) error
	findPolicy   func(ctx context.Context, id string) (P, error)
	savePolicy   func(ctx context.Context, p P) error
	deletePolicy func(ctx context.Context, id string) error
	replace      func(ctx context.Context, oldID string, next P) error

	issue func(Q) (P, error)
	renew func(P) (contracts.RenewalOutcome[P], error)
}

func getQuote[Q, P contracts.Owned](ctx context.Context, s *Service, lc lifecycle[Q, P], id string) (Q, error) {
	if s.cache == nil {
		return lc.findQuote(ctx, id)
	}

	var q Q
	err := s.cache.GetOrSet(ctx, lc.quoteKey(id), &q, redis.TTLMedium, func() (interface{}, error) {
		return lc.findQuote(ctx, id)
	})
	return q, err
}

func cancelQuote[Q, P contracts.Owned](ctx context.Context, s *Service, lc lifecycle[Q, P], userID, quoteID string) error {
	quote, err := lc.findQuote(ctx, quoteID)
	if err != nil {
		return err
	}
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !ownership.Authorize(user, quote) {
		err := fmt.Errorf("%w: user %s cannot cancel quote %s", contracts.ErrNotAuthorized, userID, quoteID)
		s.reject(lc.product, "cancel_quote", userID, quoteID, err)
		return err
	}

	if err := lc.deleteQuote(ctx, quoteID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, lc.quoteKey(quoteID)); err != nil {
			s.logger.WithError(err).WithField("quote_id", quoteID).Warn("Failed to evict cached quote")
		}
	}

	s.record(ctx, lc.product, "cancel_quote", notify.Event{
		Type:      notify.QuoteCancelled,
		UserID:    userID,
		SubjectID: quoteID,
	})
	return nil
}

func issuePolicy[Q, P contracts.Owned](ctx context.Context, s *Service, lc lifecycle[Q, P], userID, quoteID string) (P, error) {
	var zero P

	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return zero, err
	}
	quote, err := lc.findQuote(ctx, quoteID)
	if err != nil {
		return zero, err
	}
	if !ownership.Authorize(user, quote) {
		err := fmt.Errorf("%w: user %s cannot accept quote %s", contracts.ErrNotAuthorized, userID, quoteID)
		s.reject(lc.product, "issue", userID, quoteID, err)
		return zero, err
	}

	p, err := lc.issue(quote)
	if err != nil {
		s.reject(lc.product, "issue", userID, quoteID, err)
		return zero, err
	}
	if err := lc.savePolicy(ctx, p); err != nil {
		return zero, fmt.Errorf("failed to save %s policy: %w", lc.product, err)
	}

	s.record(ctx, lc.product, "issue", notify.Event{
		Type:       notify.PolicyIssued,
		UserID:     userID,
		SubjectID:  lc.policyID(p),
		PreviousID: lc.quoteID(quote),
	})
	return p, nil
}

// renewPolicy holds the policy lock from lookup to replace, so a concurrent
// cancel or renew of the same policy either finishes first (and this call
// sees ErrPolicyNotFound) or waits for this one
func renewPolicy[Q, P contracts.Owned](ctx context.Context, s *Service, lc lifecycle[Q, P], userID, policyID string) (contracts.RenewalOutcome[P], error) {
	var zero contracts.RenewalOutcome[P]

	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return zero, err
	}

	unlock, err := s.locker.Lock(ctx, redis.PolicyLockKey(policyID))
	if err != nil {
		return zero, fmt.Errorf("failed to lock policy %s: %w", policyID, err)
	}
	defer unlock()

	current, err := lc.findPolicy(ctx, policyID)
	if err != nil {
		return zero, err
	}
	if !ownership.Authorize(user, current) {
		err := fmt.Errorf("%w: user %s cannot renew policy %s", contracts.ErrNotAuthorized, userID, policyID)
		s.reject(lc.product, "renew", userID, policyID, err)
		return zero, err
	}

	outcome, err := lc.renew(current)
	if err != nil {
		return zero, err
	}
	if !outcome.IsRenewed() {
		s.reject(lc.product, "renew", userID, policyID, outcome.Err())
		return outcome, nil
	}

	if err := lc.replace(ctx, policyID, outcome.Policy); err != nil {
		s.reject(lc.product, "renew", userID, policyID, err)
		return zero, err
	}

	s.record(ctx, lc.product, "renew", notify.Event{
		Type:       notify.PolicyRenewed,
		UserID:     userID,
		SubjectID:  lc.policyID(outcome.Policy),
		PreviousID: policyID,
	})
	return outcome, nil
}

func cancelPolicy[Q, P contracts.Owned](ctx context.Context, s *Service, lc lifecycle[Q, P], userID, policyID string) error {
	unlock, err := s.locker.Lock(ctx, redis.PolicyLockKey(policyID))
	if err != nil {
		return fmt.Errorf("failed to lock policy %s: %w", policyID, err)
	}
	defer unlock()

	current, err := lc.findPolicy(ctx, policyID)
	if err != nil {
		return err
	}
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !ownership.Authorize(user, current) {
		err := fmt.Errorf("%w: user %s cannot cancel policy %s", contracts.ErrNotAuthorized, userID, policyID)
		s.reject(lc.product, "cancel_policy", userID, policyID, err)
		return err
	}

	if err := lc.deletePolicy(ctx, policyID); err != nil {
		return err
	}

	s.record(ctx, lc.product, "cancel_policy", notify.Event{
		Type:      notify.PolicyCancelled,
		UserID:    userID,
		SubjectID: policyID,
	})
	return nil
}
