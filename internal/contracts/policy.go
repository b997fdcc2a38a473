package contracts

import (
	"fmt"
	"time"
)

// Day truncates t to midnight UTC; coverage periods are whole days
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole days from a to b (negative when b is before a)
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// Period is the coverage span of a policy
type Period struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// TermFrom builds a period of the given number of months starting on start's day
func TermFrom(start time.Time, months int) Period {
	s := Day(start)
	return Period{Start: s, End: s.AddDate(0, months, 0)}
}

// Validate enforces End strictly after Start
func (p Period) Validate() error {
	if !p.End.After(p.Start) {
		return fmt.Errorf("%w: %s..%s", ErrInvalidPeriod, p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
	}
	return nil
}

// AutoPolicy is a binding, time-bounded auto contract.
// A renewal produces a new AutoPolicy; an existing one is never edited.
type AutoPolicy struct {
	ID            string    `json:"id"`
	QuoteID       string    `json:"quote_id"`
	InsuredPerson Driver    `json:"insured_person"`
	Vehicle       Vehicle   `json:"vehicle"`
	UserID        string    `json:"user_id"`
	Terms         AutoTerms `json:"terms"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// NewAutoPolicy is the only way policy values are assembled; it checks the period and ownership binding
func NewAutoPolicy(id, quoteID string, insured Driver, vehicle Vehicle, userID string, terms AutoTerms, period Period) (AutoPolicy, error) {
	if err := checkBinding(id, userID, insured.UserID, period); err != nil {
		return AutoPolicy{}, err
	}
	return AutoPolicy{
		ID:            id,
		QuoteID:       quoteID,
		InsuredPerson: insured,
		Vehicle:       vehicle,
		UserID:        userID,
		Terms:         terms,
		StartDate:     period.Start,
		EndDate:       period.End,
	}, nil
}

// InsuredOwnerID returns the user reachable through the insured driver
func (p AutoPolicy) InsuredOwnerID() string {
	return p.InsuredPerson.UserID
}

// Period returns the coverage span
func (p AutoPolicy) Period() Period {
	return Period{Start: p.StartDate, End: p.EndDate}
}

// HomePolicy is a binding, time-bounded home contract
type HomePolicy struct {
	ID            string    `json:"id"`
	QuoteID       string    `json:"quote_id"`
	InsuredPerson HomeOwner `json:"insured_person"`
	Home          Home      `json:"home"`
	UserID        string    `json:"user_id"`
	Terms         HomeTerms `json:"terms"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// NewHomePolicy is the only way policy values are assembled; it checks the period and ownership binding
func NewHomePolicy(id, quoteID string, insured HomeOwner, home Home, userID string, terms HomeTerms, period Period) (HomePolicy, error) {
	if err := checkBinding(id, userID, insured.UserID, period); err != nil {
		return HomePolicy{}, err
	}
	return HomePolicy{
		ID:            id,
		QuoteID:       quoteID,
		InsuredPerson: insured,
		Home:          home,
		UserID:        userID,
		Terms:         terms,
		StartDate:     period.Start,
		EndDate:       period.End,
	}, nil
}

// InsuredOwnerID returns the user reachable through the insured homeowner
func (p HomePolicy) InsuredOwnerID() string {
	return p.InsuredPerson.UserID
}

// Period returns the coverage span
func (p HomePolicy) Period() Period {
	return Period{Start: p.StartDate, End: p.EndDate}
}

func checkBinding(id, userID, insuredOwnerID string, period Period) error {
	if id == "" {
		return fmt.Errorf("%w: policy id is required", ErrInvalidInput)
	}
	if userID != insuredOwnerID {
		return fmt.Errorf("%w: policy user %s differs from insured person's user %s", ErrNotAuthorized, userID, insuredOwnerID)
	}
	return period.Validate()
}

// RenewalStatus is the two-case result of a renewal check
type RenewalStatus string

const (
	RenewalRenewed        RenewalStatus = "RENEWED"
	RenewalNotYetEligible RenewalStatus = "NOT_YET_ELIGIBLE"
)

// RenewalOutcome carries either the successor policy (Renewed) or the untouched
// original (NotYetEligible). Previous is always the policy that was checked.
type RenewalOutcome[P any] struct {
	Status   RenewalStatus `json:"status"`
	Policy   P             `json:"policy"`
	Previous P             `json:"-"`
}

// Renewed builds the successful outcome
func Renewed[P any](previous, next P) RenewalOutcome[P] {
	return RenewalOutcome[P]{Status: RenewalRenewed, Policy: next, Previous: previous}
}

// NotYetEligible builds the too-early outcome, returning the policy unchanged
func NotYetEligible[P any](policy P) RenewalOutcome[P] {
	return RenewalOutcome[P]{Status: RenewalNotYetEligible, Policy: policy, Previous: policy}
}

// IsRenewed reports whether a successor policy was produced
func (o RenewalOutcome[P]) IsRenewed() bool {
	return o.Status == RenewalRenewed
}

// Err returns ErrRenewalNotYetEligible for the too-early case and nil otherwise,
// for callers that report outcomes as errors
func (o RenewalOutcome[P]) Err() error {
	if o.IsRenewed() {
		return nil
	}
	return ErrRenewalNotYetEligible
}
