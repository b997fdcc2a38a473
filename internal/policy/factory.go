package policy

import (
	"fmt"
	"time"

	"github.com/wonny/coverline/internal/contracts"
)

const (
	// DefaultTermMonths is one policy term
	DefaultTermMonths = 12
	// DefaultRenewalWindowDays is how far ahead of the end date renewal opens
	DefaultRenewalWindowDays = 60
)

// Options configures a Factory. Zero values take the defaults above.
type Options struct {
	TermMonths        int
	RenewalWindowDays int
	Now               func() time.Time
	NewID             contracts.IDFunc
}

// Factory issues and renews policies. It never touches the store;
// persisting the result (and replacing the predecessor on renewal) is the caller's job.
type Factory struct {
	termMonths int
	windowDays int
	now        func() time.Time
	newID      contracts.IDFunc
}

// NewFactory creates a policy factory
func NewFactory(opts Options) *Factory {
	f := &Factory{
		termMonths: opts.TermMonths,
		windowDays: opts.RenewalWindowDays,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if f.termMonths <= 0 {
		f.termMonths = DefaultTermMonths
	}
	if f.windowDays <= 0 {
		f.windowDays = DefaultRenewalWindowDays
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.newID == nil {
		f.newID = contracts.NewID
	}
	return f
}

// TermMonths returns the configured term length
func (f *Factory) TermMonths() int {
	return f.termMonths
}

// RenewalWindowDays returns the configured lookahead window
func (f *Factory) RenewalWindowDays() int {
	return f.windowDays
}

// Today returns the factory's current day (UTC midnight)
func (f *Factory) Today() time.Time {
	return contracts.Day(f.now())
}

// Eligible reports whether a policy ending on end may be renewed today.
// Expired policies are eligible.
func (f *Factory) Eligible(end time.Time) bool {
	return contracts.DaysBetween(f.now(), end) <= f.windowDays
}

// EligibleFrom returns the first day on which a policy ending on end may be renewed
func (f *Factory) EligibleFrom(end time.Time) time.Time {
	return contracts.Day(end).AddDate(0, 0, -f.windowDays)
}

// IssueAuto materializes an accepted quote. Terms are copied, never re-rated.
func (f *Factory) IssueAuto(quote contracts.AutoQuote) (contracts.AutoPolicy, error) {
	p, err := contracts.NewAutoPolicy(f.newID(), quote.ID, quote.InsuredPerson, quote.Vehicle,
		quote.UserID, quote.Terms, contracts.TermFrom(f.now(), f.termMonths))
	if err != nil {
		return contracts.AutoPolicy{}, fmt.Errorf("failed to issue auto policy from quote %s: %w", quote.ID, err)
	}
	return p, nil
}

// IssueHome materializes an accepted quote. Terms are copied, never re-rated.
func (f *Factory) IssueHome(quote contracts.HomeQuote) (contracts.HomePolicy, error) {
	p, err := contracts.NewHomePolicy(f.newID(), quote.ID, quote.InsuredPerson, quote.Home,
		quote.UserID, quote.Terms, contracts.TermFrom(f.now(), f.termMonths))
	if err != nil {
		return contracts.HomePolicy{}, fmt.Errorf("failed to issue home policy from quote %s: %w", quote.ID, err)
	}
	return p, nil
}

// RenewAuto returns Renewed(successor) inside the window and NotYetEligible(p) before it
func (f *Factory) RenewAuto(p contracts.AutoPolicy) (contracts.RenewalOutcome[contracts.AutoPolicy], error) {
	return renew(f, p, p.EndDate, func(id string, period contracts.Period) (contracts.AutoPolicy, error) {
		return contracts.NewAutoPolicy(id, p.QuoteID, p.InsuredPerson, p.Vehicle, p.UserID, p.Terms, period)
	})
}

// RenewHome returns Renewed(successor) inside the window and NotYetEligible(p) before it
func (f *Factory) RenewHome(p contracts.HomePolicy) (contracts.RenewalOutcome[contracts.HomePolicy], error) {
	return renew(f, p, p.EndDate, func(id string, period contracts.Period) (contracts.HomePolicy, error) {
		return contracts.NewHomePolicy(id, p.QuoteID, p.InsuredPerson, p.Home, p.UserID, p.Terms, period)
	})
}

// renew starts the next term where the current one ends, or today when it has already lapsed,
// so a renewal never backdates or overlaps coverage
func renew[P any](f *Factory, p P, end time.Time, build func(id string, period contracts.Period) (P, error)) (contracts.RenewalOutcome[P], error) {
	if !f.Eligible(end) {
		return contracts.NotYetEligible(p), nil
	}

	start := contracts.Day(end)
	if today := f.Today(); today.After(start) {
		start = today
	}

	next, err := build(f.newID(), contracts.TermFrom(start, f.termMonths))
	if err != nil {
		return contracts.RenewalOutcome[P]{}, fmt.Errorf("failed to build successor policy: %w", err)
	}
	return contracts.Renewed(p, next), nil
}
