package policy

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/coverline/internal/contracts"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func ids() contracts.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("p-%d", n)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func autoQuote() contracts.AutoQuote {
	return contracts.AutoQuote{
		ID:            "q-1",
		InsuredPerson: contracts.Driver{ID: "d-1", UserID: "u-1", Age: 30},
		Vehicle:       contracts.Vehicle{ID: "v-1", UserID: "u-1", Year: 2020, Make: "Toyota", Model: "Corolla"},
		UserID:        "u-1",
		Terms: contracts.AutoTerms{
			LiabilityLimit: contracts.Dollars(1_000_000),
			Deductible:     contracts.Dollars(500),
			BasePremium:    82500,
			Tax:            12375,
			TotalPremium:   94875,
		},
	}
}

func homeQuote() contracts.HomeQuote {
	return contracts.HomeQuote{
		ID:            "q-2",
		InsuredPerson: contracts.HomeOwner{ID: "o-1", UserID: "u-1", Age: 45},
		Home:          contracts.Home{ID: "h-1", UserID: "u-1", Value: contracts.Dollars(300_000)},
		UserID:        "u-1",
		Terms: contracts.HomeTerms{
			LiabilityLimit:     contracts.Dollars(1_000_000),
			Deductible:         contracts.Dollars(1000),
			ContentsLimit:      contracts.Dollars(150_000),
			ContentsDeductible: contracts.Dollars(500),
			BasePremium:        75000,
			Tax:                11250,
			TotalPremium:       86250,
		},
	}
}

func newTestFactory(c *clock) *Factory {
	return NewFactory(Options{Now: c.Now, NewID: ids()})
}

func TestNewFactory_Defaults(t *testing.T) {
	f := NewFactory(Options{})
	assert.Equal(t, DefaultTermMonths, f.TermMonths())
	assert.Equal(t, DefaultRenewalWindowDays, f.RenewalWindowDays())

	f = NewFactory(Options{TermMonths: 6, RenewalWindowDays: 30})
	assert.Equal(t, 6, f.TermMonths())
	assert.Equal(t, 30, f.RenewalWindowDays())
}

func TestIssueAuto_CopiesTermsAndAssignsPeriod(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 10, 17, 45, 0, 0, time.UTC)}
	f := newTestFactory(c)
	q := autoQuote()

	p, err := f.IssueAuto(q)
	require.NoError(t, err)

	assert.Equal(t, q.Terms, p.Terms)
	assert.NotEqual(t, q.ID, p.ID)
	assert.Equal(t, q.ID, p.QuoteID)
	assert.Equal(t, q.UserID, p.UserID)
	assert.Equal(t, q.InsuredPerson, p.InsuredPerson)
	assert.Equal(t, q.Vehicle, p.Vehicle)
	assert.Equal(t, date(2026, 1, 10), p.StartDate)
	assert.Equal(t, date(2027, 1, 10), p.EndDate)
	assert.True(t, p.EndDate.After(p.StartDate))
}

func TestIssueHome_CopiesTermsAndAssignsPeriod(t *testing.T) {
	c := &clock{t: date(2026, 3, 1)}
	f := NewFactory(Options{TermMonths: 6, Now: c.Now, NewID: ids()})
	q := homeQuote()

	p, err := f.IssueHome(q)
	require.NoError(t, err)

	assert.Equal(t, q.Terms, p.Terms)
	assert.Equal(t, q.Home, p.Home)
	assert.Equal(t, date(2026, 9, 1), p.EndDate)
}

func TestIssueAuto_MismatchedOwner(t *testing.T) {
	f := newTestFactory(&clock{t: date(2026, 1, 1)})
	q := autoQuote()
	q.UserID = "u-2"

	_, err := f.IssueAuto(q)
	assert.ErrorIs(t, err, contracts.ErrNotAuthorized)
}

func TestRenewAuto_NotYetEligible(t *testing.T) {
	c := &clock{t: date(2026, 1, 1)}
	f := newTestFactory(c)
	p, err := f.IssueAuto(autoQuote())
	require.NoError(t, err)

	// 70 days before the end date
	c.t = p.EndDate.AddDate(0, 0, -70)
	outcome, err := f.RenewAuto(p)
	require.NoError(t, err)

	assert.False(t, outcome.IsRenewed())
	assert.Equal(t, contracts.RenewalNotYetEligible, outcome.Status)
	assert.Equal(t, p, outcome.Policy)
}

func TestRenewAuto_Renewed(t *testing.T) {
	c := &clock{t: date(2026, 1, 1)}
	f := newTestFactory(c)
	p, err := f.IssueAuto(autoQuote())
	require.NoError(t, err)

	// 30 days before the end date
	c.t = p.EndDate.AddDate(0, 0, -30)
	outcome, err := f.RenewAuto(p)
	require.NoError(t, err)

	require.True(t, outcome.IsRenewed())
	next := outcome.Policy
	assert.NotEqual(t, p.ID, next.ID)
	assert.Equal(t, p.ID, outcome.Previous.ID)
	assert.Equal(t, p.Terms, next.Terms)
	assert.Equal(t, p.QuoteID, next.QuoteID)
	assert.Equal(t, p.EndDate, next.StartDate, "next term starts where the current one ends")
	assert.Equal(t, p.EndDate.AddDate(1, 0, 0), next.EndDate)
}

func TestRenew_WindowBoundary(t *testing.T) {
	end := date(2027, 1, 1)
	p := contracts.HomePolicy{
		ID:            "p-0",
		InsuredPerson: contracts.HomeOwner{UserID: "u-1"},
		UserID:        "u-1",
		StartDate:     date(2026, 1, 1),
		EndDate:       end,
	}

	tests := []struct {
		name     string
		daysLeft int
		renewed  bool
	}{
		{"61 days left", 61, false},
		{"60 days left", 60, true},
		{"59 days left", 59, true},
		{"end day", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &clock{t: end.AddDate(0, 0, -tt.daysLeft).Add(13 * time.Hour)}
			outcome, err := newTestFactory(c).RenewHome(p)
			require.NoError(t, err)
			assert.Equal(t, tt.renewed, outcome.IsRenewed())
		})
	}
}

func TestRenewHome_ExpiredStartsToday(t *testing.T) {
	p := contracts.HomePolicy{
		ID:            "p-0",
		InsuredPerson: contracts.HomeOwner{UserID: "u-1"},
		UserID:        "u-1",
		Terms:         homeQuote().Terms,
		StartDate:     date(2025, 1, 1),
		EndDate:       date(2026, 1, 1),
	}
	c := &clock{t: time.Date(2026, 2, 20, 8, 0, 0, 0, time.UTC)}

	outcome, err := newTestFactory(c).RenewHome(p)
	require.NoError(t, err)

	require.True(t, outcome.IsRenewed())
	assert.Equal(t, date(2026, 2, 20), outcome.Policy.StartDate, "never backdated")
	assert.Equal(t, date(2027, 2, 20), outcome.Policy.EndDate)
	assert.Equal(t, p.Terms, outcome.Policy.Terms)
}

func TestEligibleFrom(t *testing.T) {
	f := newTestFactory(&clock{t: date(2026, 1, 1)})
	assert.Equal(t, date(2026, 11, 2), f.EligibleFrom(date(2027, 1, 1)))
}
