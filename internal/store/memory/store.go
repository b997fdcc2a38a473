package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/coverline/internal/contracts"
)

// Store is a process-local contracts.Store.
// One mutex guards every table, so ReplaceAutoPolicy/ReplaceHomePolicy are atomic.
type Store struct {
	mu  sync.RWMutex
	seq int64

	users        table[contracts.User]
	drivers      table[contracts.Driver]
	homeOwners   table[contracts.HomeOwner]
	vehicles     table[contracts.Vehicle]
	homes        table[contracts.Home]
	autoQuotes   table[contracts.AutoQuote]
	homeQuotes   table[contracts.HomeQuote]
	autoPolicies table[contracts.AutoPolicy]
	homePolicies table[contracts.HomePolicy]
}

var _ contracts.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		users:        newTable[contracts.User](),
		drivers:      newTable[contracts.Driver](),
		homeOwners:   newTable[contracts.HomeOwner](),
		vehicles:     newTable[contracts.Vehicle](),
		homes:        newTable[contracts.Home](),
		autoQuotes:   newTable[contracts.AutoQuote](),
		homeQuotes:   newTable[contracts.HomeQuote](),
		autoPolicies: newTable[contracts.AutoPolicy](),
		homePolicies: newTable[contracts.HomePolicy](),
	}
}

// Ping always succeeds
func (s *Store) Ping(_ context.Context) error {
	return nil
}

func find[T any](s *Store, t table[T], id string, notFound error) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := t.get(id)
	if !ok {
		return v, fmt.Errorf("%w: %s", notFound, id)
	}
	return v, nil
}

func save[T any](s *Store, t table[T], id string, v T) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", contracts.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t.put(id, s.seq, v)
	return nil
}

func remove[T any](s *Store, t table[T], id string, notFound error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !t.remove(id) {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}

func list[T any](s *Store, t table[T], keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return t.filter(keep)
}

// saveProfile enforces at most one risk profile of a kind per user
func saveProfile[T any](s *Store, t table[T], id, userID string, v T, owner func(T) string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", contracts.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for existingID, r := range t.rows {
		if existingID != id && owner(r.val) == userID {
			return fmt.Errorf("%w: user %s", contracts.ErrRiskProfileExists, userID)
		}
	}

	s.seq++
	t.put(id, s.seq, v)
	return nil
}

// replace deletes oldID and inserts next under one lock; nothing changes if oldID is gone
func replace[T any](s *Store, t table[T], oldID, newID string, next T) error {
	if newID == "" {
		return fmt.Errorf("%w: id is required", contracts.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !t.remove(oldID) {
		return fmt.Errorf("%w: %s", contracts.ErrPolicyNotFound, oldID)
	}
	s.seq++
	t.put(newID, s.seq, next)
	return nil
}

// === Users ===

func (s *Store) FindUserByID(_ context.Context, id string) (contracts.User, error) {
	return find(s, s.users, id, contracts.ErrUserNotFound)
}

func (s *Store) SaveUser(_ context.Context, u contracts.User) error {
	return save(s, s.users, u.ID, u)
}

// DeleteUserByID removes a user together with every record it owns
func (s *Store) DeleteUserByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.users.remove(id) {
		return fmt.Errorf("%w: %s", contracts.ErrUserNotFound, id)
	}
	s.drivers.removeOwned(id, func(d contracts.Driver) string { return d.UserID })
	s.homeOwners.removeOwned(id, func(o contracts.HomeOwner) string { return o.UserID })
	s.vehicles.removeOwned(id, func(v contracts.Vehicle) string { return v.UserID })
	s.homes.removeOwned(id, func(h contracts.Home) string { return h.UserID })
	s.autoQuotes.removeOwned(id, func(q contracts.AutoQuote) string { return q.UserID })
	s.homeQuotes.removeOwned(id, func(q contracts.HomeQuote) string { return q.UserID })
	s.autoPolicies.removeOwned(id, func(p contracts.AutoPolicy) string { return p.UserID })
	s.homePolicies.removeOwned(id, func(p contracts.HomePolicy) string { return p.UserID })
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]contracts.User, error) {
	return list(s, s.users, nil), nil
}

// === Drivers ===

func (s *Store) FindDriverByID(_ context.Context, id string) (contracts.Driver, error) {
	return find(s, s.drivers, id, contracts.ErrRiskProfileNotFound)
}

func (s *Store) FindDriverByUserID(_ context.Context, userID string) (contracts.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drivers.first(func(d contracts.Driver) bool { return d.UserID == userID })
	if !ok {
		return d, fmt.Errorf("%w: no driver for user %s", contracts.ErrRiskProfileNotFound, userID)
	}
	return d, nil
}

func (s *Store) SaveDriver(_ context.Context, d contracts.Driver) error {
	return saveProfile(s, s.drivers, d.ID, d.UserID, d, func(d contracts.Driver) string { return d.UserID })
}

func (s *Store) DeleteDriverByID(_ context.Context, id string) error {
	return remove(s, s.drivers, id, contracts.ErrRiskProfileNotFound)
}

func (s *Store) ListDriversByUserID(_ context.Context, userID string) ([]contracts.Driver, error) {
	return list(s, s.drivers, func(d contracts.Driver) bool { return d.UserID == userID }), nil
}

// === HomeOwners ===

func (s *Store) FindHomeOwnerByID(_ context.Context, id string) (contracts.HomeOwner, error) {
	return find(s, s.homeOwners, id, contracts.ErrRiskProfileNotFound)
}

func (s *Store) FindHomeOwnerByUserID(_ context.Context, userID string) (contracts.HomeOwner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.homeOwners.first(func(o contracts.HomeOwner) bool { return o.UserID == userID })
	if !ok {
		return o, fmt.Errorf("%w: no homeowner for user %s", contracts.ErrRiskProfileNotFound, userID)
	}
	return o, nil
}

func (s *Store) SaveHomeOwner(_ context.Context, o contracts.HomeOwner) error {
	return saveProfile(s, s.homeOwners, o.ID, o.UserID, o, func(o contracts.HomeOwner) string { return o.UserID })
}

func (s *Store) DeleteHomeOwnerByID(_ context.Context, id string) error {
	return remove(s, s.homeOwners, id, contracts.ErrRiskProfileNotFound)
}

func (s *Store) ListHomeOwnersByUserID(_ context.Context, userID string) ([]contracts.HomeOwner, error) {
	return list(s, s.homeOwners, func(o contracts.HomeOwner) bool { return o.UserID == userID }), nil
}

// === Vehicles ===

func (s *Store) FindVehicleByID(_ context.Context, id string) (contracts.Vehicle, error) {
	return find(s, s.vehicles, id, contracts.ErrAssetNotFound)
}

func (s *Store) SaveVehicle(_ context.Context, v contracts.Vehicle) error {
	return save(s, s.vehicles, v.ID, v)
}

func (s *Store) DeleteVehicleByID(_ context.Context, id string) error {
	return remove(s, s.vehicles, id, contracts.ErrAssetNotFound)
}

func (s *Store) ListVehiclesByUserID(_ context.Context, userID string) ([]contracts.Vehicle, error) {
	return list(s, s.vehicles, func(v contracts.Vehicle) bool { return v.UserID == userID }), nil
}

// === Homes ===

func (s *Store) FindHomeByID(_ context.Context, id string) (contracts.Home, error) {
	return find(s, s.homes, id, contracts.ErrAssetNotFound)
}

func (s *Store) SaveHome(_ context.Context, h contracts.Home) error {
	return save(s, s.homes, h.ID, h)
}

func (s *Store) DeleteHomeByID(_ context.Context, id string) error {
	return remove(s, s.homes, id, contracts.ErrAssetNotFound)
}

func (s *Store) ListHomesByUserID(_ context.Context, userID string) ([]contracts.Home, error) {
	return list(s, s.homes, func(h contracts.Home) bool { return h.UserID == userID }), nil
}

// === Quotes ===

func (s *Store) FindAutoQuoteByID(_ context.Context, id string) (contracts.AutoQuote, error) {
	return find(s, s.autoQuotes, id, contracts.ErrQuoteNotFound)
}

func (s *Store) SaveAutoQuote(_ context.Context, q contracts.AutoQuote) error {
	return save(s, s.autoQuotes, q.ID, q)
}

func (s *Store) DeleteAutoQuoteByID(_ context.Context, id string) error {
	return remove(s, s.autoQuotes, id, contracts.ErrQuoteNotFound)
}

func (s *Store) ListAutoQuotesByUserID(_ context.Context, userID string) ([]contracts.AutoQuote, error) {
	return list(s, s.autoQuotes, func(q contracts.AutoQuote) bool { return q.UserID == userID }), nil
}

func (s *Store) FindHomeQuoteByID(_ context.Context, id string) (contracts.HomeQuote, error) {
	return find(s, s.homeQuotes, id, contracts.ErrQuoteNotFound)
}

func (s *Store) SaveHomeQuote(_ context.Context, q contracts.HomeQuote) error {
	return save(s, s.homeQuotes, q.ID, q)
}

func (s *Store) DeleteHomeQuoteByID(_ context.Context, id string) error {
	return remove(s, s.homeQuotes, id, contracts.ErrQuoteNotFound)
}

func (s *Store) ListHomeQuotesByUserID(_ context.Context, userID string) ([]contracts.HomeQuote, error) {
	return list(s, s.homeQuotes, func(q contracts.HomeQuote) bool { return q.UserID == userID }), nil
}

// === Policies ===

func (s *Store) FindAutoPolicyByID(_ context.Context, id string) (contracts.AutoPolicy, error) {
	return find(s, s.autoPolicies, id, contracts.ErrPolicyNotFound)
}

func (s *Store) SaveAutoPolicy(_ context.Context, p contracts.AutoPolicy) error {
	return save(s, s.autoPolicies, p.ID, p)
}

func (s *Store) DeleteAutoPolicyByID(_ context.Context, id string) error {
	return remove(s, s.autoPolicies, id, contracts.ErrPolicyNotFound)
}

func (s *Store) ListAutoPoliciesByUserID(_ context.Context, userID string) ([]contracts.AutoPolicy, error) {
	return list(s, s.autoPolicies, func(p contracts.AutoPolicy) bool { return p.UserID == userID }), nil
}

func (s *Store) ReplaceAutoPolicy(_ context.Context, oldID string, next contracts.AutoPolicy) error {
	return replace(s, s.autoPolicies, oldID, next.ID, next)
}

func (s *Store) ListAutoPoliciesEndingBefore(_ context.Context, cutoff time.Time) ([]contracts.AutoPolicy, error) {
	return list(s, s.autoPolicies, func(p contracts.AutoPolicy) bool { return p.EndDate.Before(cutoff) }), nil
}

func (s *Store) FindHomePolicyByID(_ context.Context, id string) (contracts.HomePolicy, error) {
	return find(s, s.homePolicies, id, contracts.ErrPolicyNotFound)
}

func (s *Store) SaveHomePolicy(_ context.Context, p contracts.HomePolicy) error {
	return save(s, s.homePolicies, p.ID, p)
}

func (s *Store) DeleteHomePolicyByID(_ context.Context, id string) error {
	return remove(s, s.homePolicies, id, contracts.ErrPolicyNotFound)
}

func (s *Store) ListHomePoliciesByUserID(_ context.Context, userID string) ([]contracts.HomePolicy, error) {
	return list(s, s.homePolicies, func(p contracts.HomePolicy) bool { return p.UserID == userID }), nil
}

func (s *Store) ReplaceHomePolicy(_ context.Context, oldID string, next contracts.HomePolicy) error {
	return replace(s, s.homePolicies, oldID, next.ID, next)
}

func (s *Store) ListHomePoliciesEndingBefore(_ context.Context, cutoff time.Time) ([]contracts.HomePolicy, error) {
	return list(s, s.homePolicies, func(p contracts.HomePolicy) bool { return p.EndDate.Before(cutoff) }), nil
}
