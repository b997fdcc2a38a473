package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: store interfaces are defined here only.
// Every Find* returns the matching *NotFound sentinel when nothing matches,
// and every Delete*ByID does the same when there is nothing to delete.

// UserRepository manages users
type UserRepository interface {
	FindUserByID(ctx context.Context, id string) (User, error)
	SaveUser(ctx context.Context, user User) error
	DeleteUserByID(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]User, error)
}

// DriverRepository manages auto risk profiles (at most one per user)
type DriverRepository interface {
	FindDriverByID(ctx context.Context, id string) (Driver, error)
	FindDriverByUserID(ctx context.Context, userID string) (Driver, error)
	SaveDriver(ctx context.Context, driver Driver) error
	DeleteDriverByID(ctx context.Context, id string) error
	ListDriversByUserID(ctx context.Context, userID string) ([]Driver, error)
}

// HomeOwnerRepository manages home risk profiles (at most one per user)
type HomeOwnerRepository interface {
	FindHomeOwnerByID(ctx context.Context, id string) (HomeOwner, error)
	FindHomeOwnerByUserID(ctx context.Context, userID string) (HomeOwner, error)
	SaveHomeOwner(ctx context.Context, owner HomeOwner) error
	DeleteHomeOwnerByID(ctx context.Context, id string) error
	ListHomeOwnersByUserID(ctx context.Context, userID string) ([]HomeOwner, error)
}

// VehicleRepository manages auto assets
type VehicleRepository interface {
	FindVehicleByID(ctx context.Context, id string) (Vehicle, error)
	SaveVehicle(ctx context.Context, vehicle Vehicle) error
	DeleteVehicleByID(ctx context.Context, id string) error
	ListVehiclesByUserID(ctx context.Context, userID string) ([]Vehicle, error)
}

// HomeRepository manages home assets
type HomeRepository interface {
	FindHomeByID(ctx context.Context, id string) (Home, error)
	SaveHome(ctx context.Context, home Home) error
	DeleteHomeByID(ctx context.Context, id string) error
	ListHomesByUserID(ctx context.Context, userID string) ([]Home, error)
}

// AutoQuoteRepository manages auto quotes
type AutoQuoteRepository interface {
	FindAutoQuoteByID(ctx context.Context, id string) (AutoQuote, error)
	SaveAutoQuote(ctx context.Context, quote AutoQuote) error
	DeleteAutoQuoteByID(ctx context.Context, id string) error
	ListAutoQuotesByUserID(ctx context.Context, userID string) ([]AutoQuote, error)
}

// HomeQuoteRepository manages home quotes
type HomeQuoteRepository interface {
	FindHomeQuoteByID(ctx context.Context, id string) (HomeQuote, error)
	SaveHomeQuote(ctx context.Context, quote HomeQuote) error
	DeleteHomeQuoteByID(ctx context.Context, id string) error
	ListHomeQuotesByUserID(ctx context.Context, userID string) ([]HomeQuote, error)
}

// AutoPolicyRepository manages auto policies.
// ReplaceAutoPolicy deletes oldID and inserts next as one atomic step; when oldID
// is already gone it returns ErrPolicyNotFound and inserts nothing.
type AutoPolicyRepository interface {
	FindAutoPolicyByID(ctx context.Context, id string) (AutoPolicy, error)
	SaveAutoPolicy(ctx context.Context, policy AutoPolicy) error
	DeleteAutoPolicyByID(ctx context.Context, id string) error
	ListAutoPoliciesByUserID(ctx context.Context, userID string) ([]AutoPolicy, error)
	ReplaceAutoPolicy(ctx context.Context, oldID string, next AutoPolicy) error
	ListAutoPoliciesEndingBefore(ctx context.Context, cutoff time.Time) ([]AutoPolicy, error)
}

// HomePolicyRepository manages home policies, with the same Replace contract as AutoPolicyRepository
type HomePolicyRepository interface {
	FindHomePolicyByID(ctx context.Context, id string) (HomePolicy, error)
	SaveHomePolicy(ctx context.Context, policy HomePolicy) error
	DeleteHomePolicyByID(ctx context.Context, id string) error
	ListHomePoliciesByUserID(ctx context.Context, userID string) ([]HomePolicy, error)
	ReplaceHomePolicy(ctx context.Context, oldID string, next HomePolicy) error
	ListHomePoliciesEndingBefore(ctx context.Context, cutoff time.Time) ([]HomePolicy, error)
}

// Store is the full persistence boundary consumed by the lifecycle service
type Store interface {
	UserRepository
	DriverRepository
	HomeOwnerRepository
	VehicleRepository
	HomeRepository
	AutoQuoteRepository
	HomeQuoteRepository
	AutoPolicyRepository
	HomePolicyRepository

	Ping(ctx context.Context) error
}
