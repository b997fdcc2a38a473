package quoting

import (
	"fmt"
	"time"

	"github.com/wonny/coverline/internal/contracts"
)

// Rater prices assets; *rating.Engine satisfies it
type Rater interface {
	RateAuto(vehicle contracts.Vehicle, driver contracts.Driver) contracts.AutoTerms
	RateHome(home contracts.Home, owner contracts.HomeOwner) contracts.HomeTerms
}

// Factory builds quotes. It resolves nothing and persists nothing:
// callers hand it already-loaded entities and store the result themselves.
type Factory struct {
	rater Rater
	now   func() time.Time
	newID contracts.IDFunc
}

// NewFactory creates a quote factory; nil clock/id funcs fall back to time.Now and contracts.NewID
func NewFactory(rater Rater, now func() time.Time, newID contracts.IDFunc) *Factory {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = contracts.NewID
	}
	return &Factory{rater: rater, now: now, newID: newID}
}

// NewAutoQuote prices vehicle for driver and binds the result to user
func (f *Factory) NewAutoQuote(user contracts.User, vehicle contracts.Vehicle, driver contracts.Driver) (contracts.AutoQuote, error) {
	if err := checkOwner(user, driver.UserID, vehicle.UserID); err != nil {
		return contracts.AutoQuote{}, err
	}

	return contracts.AutoQuote{
		ID:            f.newID(),
		InsuredPerson: driver,
		Vehicle:       vehicle,
		UserID:        user.ID,
		Terms:         f.rater.RateAuto(vehicle, driver),
		CreatedAt:     f.now().UTC(),
	}, nil
}

// NewHomeQuote prices home for owner and binds the result to user
func (f *Factory) NewHomeQuote(user contracts.User, home contracts.Home, owner contracts.HomeOwner) (contracts.HomeQuote, error) {
	if err := checkOwner(user, owner.UserID, home.UserID); err != nil {
		return contracts.HomeQuote{}, err
	}

	return contracts.HomeQuote{
		ID:            f.newID(),
		InsuredPerson: owner,
		Home:          home,
		UserID:        user.ID,
		Terms:         f.rater.RateHome(home, owner),
		CreatedAt:     f.now().UTC(),
	}, nil
}

// both the risk profile and the asset must belong to the quoting user
func checkOwner(user contracts.User, profileOwner, assetOwner string) error {
	if profileOwner != user.ID {
		return fmt.Errorf("%w: risk profile belongs to %s, not %s", contracts.ErrNotAuthorized, profileOwner, user.ID)
	}
	if assetOwner != user.ID {
		return fmt.Errorf("%w: asset belongs to %s, not %s", contracts.ErrNotAuthorized, assetOwner, user.ID)
	}
	return nil
}
