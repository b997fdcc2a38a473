package underwriting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/internal/notify"
	"github.com/wonny/coverline/internal/policy"
	"github.com/wonny/coverline/internal/quoting"
	"github.com/wonny/coverline/pkg/logger"
	"github.com/wonny/coverline/pkg/metrics"
	"github.com/wonny/coverline/pkg/redis"
)

// QuoteCache is a read-through cache for quotes; *redis.Cache satisfies it
type QuoteCache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error
	Delete(ctx context.Context, key string) error
}

// Deps are the collaborators of a Service. Locker, Notifier, Cache and Logger are optional.
type Deps struct {
	Store    contracts.Store
	Quotes   *quoting.Factory
	Policies *policy.Factory
	Locker   Locker
	Notifier notify.Notifier
	Cache    QuoteCache
	Logger   *logger.Logger
	NewID    contracts.IDFunc
}

// Service is the lifecycle orchestrator: it resolves ids through the store,
// calls the factories, enforces ownership and persists the results.
// ⭐ SSOT: every quote/policy state change goes through here
type Service struct {
	store    contracts.Store
	quotes   *quoting.Factory
	policies *policy.Factory
	locker   Locker
	notifier notify.Notifier
	cache    QuoteCache
	logger   *logger.Logger
	newID    contracts.IDFunc

	auto lifecycle[contracts.AutoQuote, contracts.AutoPolicy]
	home lifecycle[contracts.HomeQuote, contracts.HomePolicy]
}

// NewService wires a Service
func NewService(d Deps) *Service {
	s := &Service{
		store:    d.Store,
		quotes:   d.Quotes,
		policies: d.Policies,
		locker:   d.Locker,
		notifier: d.Notifier,
		cache:    d.Cache,
		logger:   d.Logger,
		newID:    d.NewID,
	}
	if s.newID == nil {
		s.newID = contracts.NewID
	}
	if s.locker == nil {
		s.locker = NewKeyedMutex()
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}

	s.auto = lifecycle[contracts.AutoQuote, contracts.AutoPolicy]{
		product:      contracts.ProductAuto,
		quoteKey:     redis.AutoQuoteKey,
		quoteID:      func(q contracts.AutoQuote) string { return q.ID },
		policyID:     func(p contracts.AutoPolicy) string { return p.ID },
		findQuote:    s.store.FindAutoQuoteByID,
		deleteQuote:  s.store.DeleteAutoQuoteByID,
		findPolicy:   s.store.FindAutoPolicyByID,
		savePolicy:   s.store.SaveAutoPolicy,
		deletePolicy: s.store.DeleteAutoPolicyByID,
		replace:      s.store.ReplaceAutoPolicy,
		issue:        s.policies.IssueAuto,
		renew:        s.policies.RenewAuto,
	}
	s.home = lifecycle[contracts.HomeQuote, contracts.HomePolicy]{
		product:      contracts.ProductHome,
		quoteKey:     redis.HomeQuoteKey,
		quoteID:      func(q contracts.HomeQuote) string { return q.ID },
		policyID:     func(p contracts.HomePolicy) string { return p.ID },
		findQuote:    s.store.FindHomeQuoteByID,
		deleteQuote:  s.store.DeleteHomeQuoteByID,
		findPolicy:   s.store.FindHomePolicyByID,
		savePolicy:   s.store.SaveHomePolicy,
		deletePolicy: s.store.DeleteHomePolicyByID,
		replace:      s.store.ReplaceHomePolicy,
		issue:        s.policies.IssueHome,
		renew:        s.policies.RenewHome,
	}
	return s
}

// Health reports whether the store is reachable
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// TermMonths is the policy term in force
func (s *Service) TermMonths() int { return s.policies.TermMonths() }

// RenewalWindowDays is the renewal lookahead in force
func (s *Service) RenewalWindowDays() int { return s.policies.RenewalWindowDays() }

// EligibleFrom is the first day a policy ending on end can be renewed
func (s *Service) EligibleFrom(end time.Time) time.Time { return s.policies.EligibleFrom(end) }

// === Quotes ===

// CreateAutoQuote prices the user's vehicle for the user's driver profile and stores the quote
func (s *Service) CreateAutoQuote(ctx context.Context, userID, vehicleID string) (contracts.AutoQuote, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return contracts.AutoQuote{}, err
	}
	driver, err := s.store.FindDriverByUserID(ctx, userID)
	if err != nil {
		return contracts.AutoQuote{}, err
	}
	vehicle, err := s.store.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return contracts.AutoQuote{}, err
	}

	quote, err := s.quotes.NewAutoQuote(user, vehicle, driver)
	if err != nil {
		s.reject(contracts.ProductAuto, "quote", userID, vehicleID, err)
		return contracts.AutoQuote{}, err
	}
	if err := s.store.SaveAutoQuote(ctx, quote); err != nil {
		return contracts.AutoQuote{}, fmt.Errorf("failed to save auto quote: %w", err)
	}

	metrics.ObserveQuotedPremium(string(contracts.ProductAuto), int64(quote.Terms.TotalPremium))
	s.record(ctx, contracts.ProductAuto, "quote", notify.Event{
		Type:      notify.QuoteCreated,
		UserID:    userID,
		SubjectID: quote.ID,
		Data:      quote.Terms,
	})
	return quote, nil
}

// CreateHomeQuote prices the user's home for the user's homeowner profile and stores the quote
func (s *Service) CreateHomeQuote(ctx context.Context, userID, homeID string) (contracts.HomeQuote, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return contracts.HomeQuote{}, err
	}
	owner, err := s.store.FindHomeOwnerByUserID(ctx, userID)
	if err != nil {
		return contracts.HomeQuote{}, err
	}
	home, err := s.store.FindHomeByID(ctx, homeID)
	if err != nil {
		return contracts.HomeQuote{}, err
	}

	quote, err := s.quotes.NewHomeQuote(user, home, owner)
	if err != nil {
		s.reject(contracts.ProductHome, "quote", userID, homeID, err)
		return contracts.HomeQuote{}, err
	}
	if err := s.store.SaveHomeQuote(ctx, quote); err != nil {
		return contracts.HomeQuote{}, fmt.Errorf("failed to save home quote: %w", err)
	}

	metrics.ObserveQuotedPremium(string(contracts.ProductHome), int64(quote.Terms.TotalPremium))
	s.record(ctx, contracts.ProductHome, "quote", notify.Event{
		Type:      notify.QuoteCreated,
		UserID:    userID,
		SubjectID: quote.ID,
		Data:      quote.Terms,
	})
	return quote, nil
}

// GetAutoQuote reads a quote; reads bypass the ownership guard
func (s *Service) GetAutoQuote(ctx context.Context, id string) (contracts.AutoQuote, error) {
	return getQuote(ctx, s, s.auto, id)
}

// GetHomeQuote reads a quote; reads bypass the ownership guard
func (s *Service) GetHomeQuote(ctx context.Context, id string) (contracts.HomeQuote, error) {
	return getQuote(ctx, s, s.home, id)
}

// ListAutoQuotes lists a user's auto quotes
func (s *Service) ListAutoQuotes(ctx context.Context, userID string) ([]contracts.AutoQuote, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListAutoQuotesByUserID(ctx, userID)
}

// ListHomeQuotes lists a user's home quotes
func (s *Service) ListHomeQuotes(ctx context.Context, userID string) ([]contracts.HomeQuote, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListHomeQuotesByUserID(ctx, userID)
}

// CancelAutoQuote deletes a quote owned by userID
func (s *Service) CancelAutoQuote(ctx context.Context, userID, quoteID string) error {
	return cancelQuote(ctx, s, s.auto, userID, quoteID)
}

// CancelHomeQuote deletes a quote owned by userID
func (s *Service) CancelHomeQuote(ctx context.Context, userID, quoteID string) error {
	return cancelQuote(ctx, s, s.home, userID, quoteID)
}

// === Policies ===

// IssueAutoPolicy binds an accepted auto quote. The quote is kept.
func (s *Service) IssueAutoPolicy(ctx context.Context, userID, quoteID string) (contracts.AutoPolicy, error) {
	return issuePolicy(ctx, s, s.auto, userID, quoteID)
}

// IssueHomePolicy binds an accepted home quote. The quote is kept.
func (s *Service) IssueHomePolicy(ctx context.Context, userID, quoteID string) (contracts.HomePolicy, error) {
	return issuePolicy(ctx, s, s.home, userID, quoteID)
}

// RenewAutoPolicy renews a policy owned by userID. A too-early request is not an error:
// the outcome is NotYetEligible and carries the unchanged policy.
func (s *Service) RenewAutoPolicy(ctx context.Context, userID, policyID string) (contracts.RenewalOutcome[contracts.AutoPolicy], error) {
	return renewPolicy(ctx, s, s.auto, userID, policyID)
}

// RenewHomePolicy renews a policy owned by userID; see RenewAutoPolicy
func (s *Service) RenewHomePolicy(ctx context.Context, userID, policyID string) (contracts.RenewalOutcome[contracts.HomePolicy], error) {
	return renewPolicy(ctx, s, s.home, userID, policyID)
}

// CancelAutoPolicy deletes a policy owned by userID
func (s *Service) CancelAutoPolicy(ctx context.Context, userID, policyID string) error {
	return cancelPolicy(ctx, s, s.auto, userID, policyID)
}

// CancelHomePolicy deletes a policy owned by userID
func (s *Service) CancelHomePolicy(ctx context.Context, userID, policyID string) error {
	return cancelPolicy(ctx, s, s.home, userID, policyID)
}

// GetAutoPolicy reads a policy; reads bypass the ownership guard
func (s *Service) GetAutoPolicy(ctx context.Context, id string) (contracts.AutoPolicy, error) {
	return s.store.FindAutoPolicyByID(ctx, id)
}

// GetHomePolicy reads a policy; reads bypass the ownership guard
func (s *Service) GetHomePolicy(ctx context.Context, id string) (contracts.HomePolicy, error) {
	return s.store.FindHomePolicyByID(ctx, id)
}

// ListAutoPolicies lists a user's auto policies
func (s *Service) ListAutoPolicies(ctx context.Context, userID string) ([]contracts.AutoPolicy, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListAutoPoliciesByUserID(ctx, userID)
}

// ListHomePolicies lists a user's home policies
func (s *Service) ListHomePolicies(ctx context.Context, userID string) ([]contracts.HomePolicy, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListHomePoliciesByUserID(ctx, userID)
}

// DueForRenewal lists every policy that is inside its renewal window today, expired ones included
func (s *Service) DueForRenewal(ctx context.Context) ([]contracts.AutoPolicy, []contracts.HomePolicy, error) {
	// EndDate < today+window+1 ⇔ days until end <= window
	cutoff := s.policies.Today().AddDate(0, 0, s.policies.RenewalWindowDays()+1)

	autos, err := s.store.ListAutoPoliciesEndingBefore(ctx, cutoff)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list auto policies due: %w", err)
	}
	homes, err := s.store.ListHomePoliciesEndingBefore(ctx, cutoff)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list home policies due: %w", err)
	}
	return autos, homes, nil
}

// NotifyRenewalDue emits a policy.renewal_due event; it never renews
func (s *Service) NotifyRenewalDue(ctx context.Context, product contracts.Product, userID, policyID string, endDate time.Time) error {
	return s.notifier.Notify(ctx, notify.Event{
		Type:      notify.PolicyRenewalDue,
		Product:   product,
		UserID:    userID,
		SubjectID: policyID,
		Data:      map[string]string{"end_date": endDate.Format(time.DateOnly)},
	})
}

// record counts, logs and publishes a successful transition. A failed webhook
// is logged only: the transition has already been committed.
func (s *Service) record(ctx context.Context, product contracts.Product, event string, e notify.Event) {
	e.Product = product
	metrics.RecordLifecycle(string(product), event, "ok")

	s.logger.WithFields(map[string]interface{}{
		"product":  product,
		"event":    e.Type,
		"user_id":  e.UserID,
		"subject":  e.SubjectID,
		"previous": e.PreviousID,
	}).Info("Lifecycle transition")

	if err := s.notifier.Notify(ctx, e); err != nil {
		s.logger.WithError(err).WithField("event", e.Type).Warn("Failed to publish lifecycle event")
	}
}

// reject counts and logs a refused transition
func (s *Service) reject(product contracts.Product, event, userID, subjectID string, err error) {
	metrics.RecordLifecycle(string(product), event, outcomeLabel(err))

	s.logger.WithFields(map[string]interface{}{
		"product": product,
		"event":   event,
		"user_id": userID,
		"subject": subjectID,
		"error":   err.Error(),
	}).Warn("Lifecycle transition rejected")
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, contracts.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, contracts.ErrRenewalNotYetEligible):
		return "not_yet_eligible"
	case errors.Is(err, contracts.ErrPolicyNotFound), errors.Is(err, contracts.ErrQuoteNotFound):
		return "not_found"
	default:
		return "error"
	}
}
