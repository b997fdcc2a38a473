package quoting

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/internal/rating"
)

func sequentialIDs(prefix string) contracts.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestFactory() *Factory {
	now := func() time.Time { return time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC) }
	return NewFactory(rating.NewEngine(rating.Default(), now), now, sequentialIDs("q"))
}

func TestNewAutoQuote(t *testing.T) {
	f := newTestFactory()
	user := contracts.User{ID: "u-1", Name: "Ada", Email: "ada@example.com"}
	driver := contracts.Driver{ID: "d-1", UserID: "u-1", Age: 30}
	vehicle := contracts.Vehicle{ID: "v-1", UserID: "u-1", Year: 2020, Make: "Toyota", Model: "Corolla"}

	q1, err := f.NewAutoQuote(user, vehicle, driver)
	require.NoError(t, err)
	q2, err := f.NewAutoQuote(user, vehicle, driver)
	require.NoError(t, err)

	assert.Equal(t, "q-1", q1.ID)
	assert.Equal(t, "q-2", q2.ID)
	assert.Equal(t, "u-1", q1.UserID)
	assert.Equal(t, driver, q1.InsuredPerson)
	assert.Equal(t, vehicle, q1.Vehicle)
	assert.Equal(t, q1.Terms, q2.Terms, "same inputs price the same")
	assert.Equal(t, q1.Terms.BasePremium+q1.Terms.Tax, q1.Terms.TotalPremium)
}

func TestNewAutoQuote_CopiesRatedTermsVerbatim(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) }
	engine := rating.NewEngine(rating.Default(), now)
	f := NewFactory(engine, now, nil)

	user := contracts.User{ID: "u-1"}
	driver := contracts.Driver{UserID: "u-1", Age: 22, Accidents: 2}
	vehicle := contracts.Vehicle{UserID: "u-1", Year: 2009}

	q, err := f.NewAutoQuote(user, vehicle, driver)
	require.NoError(t, err)
	assert.Equal(t, engine.RateAuto(vehicle, driver), q.Terms)
	assert.NotEmpty(t, q.ID)
}

func TestNewAutoQuote_ForeignProfileOrAsset(t *testing.T) {
	f := newTestFactory()
	user := contracts.User{ID: "u-1"}

	_, err := f.NewAutoQuote(user, contracts.Vehicle{UserID: "u-1"}, contracts.Driver{UserID: "u-2", Age: 30})
	assert.ErrorIs(t, err, contracts.ErrNotAuthorized)

	_, err = f.NewAutoQuote(user, contracts.Vehicle{UserID: "u-2"}, contracts.Driver{UserID: "u-1", Age: 30})
	assert.ErrorIs(t, err, contracts.ErrNotAuthorized)
}

func TestNewHomeQuote(t *testing.T) {
	f := newTestFactory()
	user := contracts.User{ID: "u-1"}
	owner := contracts.HomeOwner{ID: "o-1", UserID: "u-1", Age: 45}
	home := contracts.Home{
		ID:           "h-1",
		UserID:       "u-1",
		DateBuilt:    time.Date(1995, 5, 1, 0, 0, 0, 0, time.UTC),
		Value:        contracts.Dollars(500_000),
		DwellingType: contracts.DwellingTownhouse,
		HeatingType:  contracts.HeatingGas,
		Location:     contracts.LocationDenseUrban,
	}

	q, err := f.NewHomeQuote(user, home, owner)
	require.NoError(t, err)

	assert.Equal(t, "q-1", q.ID)
	assert.Equal(t, owner, q.InsuredPerson)
	assert.Equal(t, home, q.Home)
	assert.Equal(t, "u-1", q.InsuredOwnerID())
	assert.Positive(t, int64(q.Terms.BasePremium))
	assert.Equal(t, q.Terms.BasePremium+q.Terms.Tax, q.Terms.TotalPremium)
	assert.Equal(t, time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC), q.CreatedAt)

	_, err = f.NewHomeQuote(contracts.User{ID: "u-9"}, home, owner)
	assert.ErrorIs(t, err, contracts.ErrNotAuthorized)
}
