package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_String(t *testing.T) {
	tests := []struct {
		in   Money
		want string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{Dollars(1200), "$1200.00"},
		{123456, "$1234.56"},
		{-250, "-$2.50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}

func TestFromFloat_RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, Money(13), FromFloat(12.5))
	assert.Equal(t, Money(12), FromFloat(12.49))
	assert.Equal(t, Money(-13), FromFloat(-12.5))
}

func TestParseEnums(t *testing.T) {
	d, err := ParseDwellingType(" condo ")
	require.NoError(t, err)
	assert.Equal(t, DwellingCondo, d)

	h, err := ParseHeatingType("Wood")
	require.NoError(t, err)
	assert.Equal(t, HeatingWood, h)

	l, err := ParseLocation("dense_urban")
	require.NoError(t, err)
	assert.Equal(t, LocationDenseUrban, l)

	_, err = ParseDwellingType("CASTLE")
	assert.ErrorIs(t, err, ErrInvalidEnum)
	_, err = ParseHeatingType("NUCLEAR")
	assert.ErrorIs(t, err, ErrInvalidEnum)
	_, err = ParseLocation("")
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestHome_ValidateRejectsUnknownEnum(t *testing.T) {
	home := Home{
		ID:           "h-1",
		UserID:       "u-1",
		DateBuilt:    time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Value:        Dollars(300_000),
		DwellingType: "IGLOO",
		HeatingType:  HeatingGas,
		Location:     LocationUrban,
	}
	assert.ErrorIs(t, home.Validate(), ErrInvalidEnum)

	home.DwellingType = DwellingBungalow
	assert.NoError(t, home.Validate())

	home.Value = 0
	assert.ErrorIs(t, home.Validate(), ErrInvalidInput)
}

func TestProfiles_Validate(t *testing.T) {
	assert.NoError(t, User{Name: "Ada", Email: "ada@example.com"}.Validate())
	assert.ErrorIs(t, User{Name: "", Email: "ada@example.com"}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, User{Name: "Ada", Email: "nope"}.Validate(), ErrInvalidInput)

	assert.NoError(t, Driver{Age: 30}.Validate())
	assert.ErrorIs(t, Driver{Age: 15}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, Driver{Age: 30, Accidents: -1}.Validate(), ErrInvalidInput)

	assert.NoError(t, Vehicle{Year: 2020, Make: "Honda", Model: "Civic"}.Validate())
	assert.ErrorIs(t, Vehicle{Year: 1700, Make: "Honda", Model: "Civic"}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, Vehicle{Year: 2020, Make: "Honda"}.Validate(), ErrInvalidInput)

	assert.NoError(t, HomeOwner{Age: 40}.Validate())
	assert.ErrorIs(t, HomeOwner{Age: 17}.Validate(), ErrInvalidInput)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, 60, DaysBetween(a, b))
	assert.Equal(t, -60, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestTermFrom(t *testing.T) {
	start := time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC)
	p := TermFrom(start, 12)

	assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2027, 2, 10, 0, 0, 0, 0, time.UTC), p.End)
	assert.NoError(t, p.Validate())

	assert.ErrorIs(t, Period{Start: p.Start, End: p.Start}.Validate(), ErrInvalidPeriod)
}

func TestNewAutoPolicy(t *testing.T) {
	driver := Driver{ID: "d-1", UserID: "u-1", Age: 30}
	vehicle := Vehicle{ID: "v-1", UserID: "u-1", Year: 2020, Make: "Honda", Model: "Civic"}
	terms := AutoTerms{BasePremium: 100_00, Tax: 15_00, TotalPremium: 115_00}
	period := TermFrom(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 12)

	t.Run("valid", func(t *testing.T) {
		p, err := NewAutoPolicy("p-1", "q-1", driver, vehicle, "u-1", terms, period)
		require.NoError(t, err)
		assert.Equal(t, "p-1", p.ID)
		assert.Equal(t, terms, p.Terms)
		assert.Equal(t, period, p.Period())
		assert.Equal(t, "u-1", p.InsuredOwnerID())
	})

	t.Run("foreign user", func(t *testing.T) {
		_, err := NewAutoPolicy("p-1", "q-1", driver, vehicle, "u-2", terms, period)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("empty period", func(t *testing.T) {
		_, err := NewAutoPolicy("p-1", "q-1", driver, vehicle, "u-1", terms, Period{Start: period.Start, End: period.Start})
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := NewAutoPolicy("", "q-1", driver, vehicle, "u-1", terms, period)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestNewHomePolicy_ForeignUser(t *testing.T) {
	owner := HomeOwner{ID: "o-1", UserID: "u-1", Age: 40}
	period := TermFrom(time.Now(), 12)

	_, err := NewHomePolicy("p-1", "q-1", owner, Home{UserID: "u-1"}, "u-9", HomeTerms{}, period)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRenewalOutcome(t *testing.T) {
	prev := AutoPolicy{ID: "old"}
	next := AutoPolicy{ID: "new"}

	renewed := Renewed(prev, next)
	assert.True(t, renewed.IsRenewed())
	assert.Equal(t, "new", renewed.Policy.ID)
	assert.Equal(t, "old", renewed.Previous.ID)
	assert.NoError(t, renewed.Err())

	early := NotYetEligible(prev)
	assert.False(t, early.IsRenewed())
	assert.Equal(t, RenewalNotYetEligible, early.Status)
	assert.Equal(t, "old", early.Policy.ID)
	assert.ErrorIs(t, early.Err(), ErrRenewalNotYetEligible)
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
