package underwriting

import (
	"context"
	"fmt"

	"github.com/wonny/coverline/internal/contracts"
)

// Profile and asset registration. Writes are scoped to the user in the path:
// touching another user's record is ErrNotAuthorized.

func checkOwner(kind, id, owner, userID string) error {
	if owner != userID {
		return fmt.Errorf("%w: %s %s belongs to another user", contracts.ErrNotAuthorized, kind, id)
	}
	return nil
}

// === Users ===

// CreateUser registers a user and assigns its id
func (s *Service) CreateUser(ctx context.Context, u contracts.User) (contracts.User, error) {
	if err := u.Validate(); err != nil {
		return contracts.User{}, err
	}
	u.ID = s.newID()
	if err := s.store.SaveUser(ctx, u); err != nil {
		return contracts.User{}, fmt.Errorf("failed to save user: %w", err)
	}
	s.logger.WithField("user_id", u.ID).Info("User created")
	return u, nil
}

// GetUser reads a user
func (s *Service) GetUser(ctx context.Context, id string) (contracts.User, error) {
	return s.store.FindUserByID(ctx, id)
}

// ListUsers lists every user
func (s *Service) ListUsers(ctx context.Context) ([]contracts.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateUser replaces a user's name and email
func (s *Service) UpdateUser(ctx context.Context, id string, u contracts.User) (contracts.User, error) {
	if _, err := s.store.FindUserByID(ctx, id); err != nil {
		return contracts.User{}, err
	}
	if err := u.Validate(); err != nil {
		return contracts.User{}, err
	}
	u.ID = id
	if err := s.store.SaveUser(ctx, u); err != nil {
		return contracts.User{}, fmt.Errorf("failed to save user: %w", err)
	}
	return u, nil
}

// DeleteUser removes a user with its profiles, assets, quotes and policies
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	var cached []string
	if s.cache != nil {
		cached = s.cachedQuoteKeys(ctx, id)
	}
	if err := s.store.DeleteUserByID(ctx, id); err != nil {
		return err
	}
	for _, key := range cached {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to evict cached quote")
		}
	}
	s.logger.WithField("user_id", id).Info("User deleted")
	return nil
}

func (s *Service) cachedQuoteKeys(ctx context.Context, userID string) []string {
	var keys []string
	if autos, err := s.store.ListAutoQuotesByUserID(ctx, userID); err == nil {
		for _, q := range autos {
			keys = append(keys, s.auto.quoteKey(q.ID))
		}
	}
	if homes, err := s.store.ListHomeQuotesByUserID(ctx, userID); err == nil {
		for _, q := range homes {
			keys = append(keys, s.home.quoteKey(q.ID))
		}
	}
	return keys
}

// === Drivers ===

// CreateDriver registers the user's auto risk profile; a second one is ErrRiskProfileExists
func (s *Service) CreateDriver(ctx context.Context, userID string, d contracts.Driver) (contracts.Driver, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return contracts.Driver{}, err
	}
	if err := d.Validate(); err != nil {
		return contracts.Driver{}, err
	}
	if _, err := s.store.FindDriverByUserID(ctx, userID); err == nil {
		return contracts.Driver{}, fmt.Errorf("%w: user %s already has a driver", contracts.ErrRiskProfileExists, userID)
	}

	d.ID = s.newID()
	d.UserID = userID
	if err := s.store.SaveDriver(ctx, d); err != nil {
		return contracts.Driver{}, err
	}
	return d, nil
}

// GetDriver reads the user's driver profile
func (s *Service) GetDriver(ctx context.Context, userID string) (contracts.Driver, error) {
	return s.store.FindDriverByUserID(ctx, userID)
}

// UpdateDriver replaces the attributes of the user's driver profile
func (s *Service) UpdateDriver(ctx context.Context, userID, driverID string, d contracts.Driver) (contracts.Driver, error) {
	existing, err := s.store.FindDriverByID(ctx, driverID)
	if err != nil {
		return contracts.Driver{}, err
	}
	if err := checkOwner("driver", driverID, existing.UserID, userID); err != nil {
		return contracts.Driver{}, err
	}
	if err := d.Validate(); err != nil {
		return contracts.Driver{}, err
	}

	d.ID = driverID
	d.UserID = userID
	if err := s.store.SaveDriver(ctx, d); err != nil {
		return contracts.Driver{}, err
	}
	return d, nil
}

// DeleteDriver removes the user's driver profile
func (s *Service) DeleteDriver(ctx context.Context, userID, driverID string) error {
	existing, err := s.store.FindDriverByID(ctx, driverID)
	if err != nil {
		return err
	}
	if err := checkOwner("driver", driverID, existing.UserID, userID); err != nil {
		return err
	}
	return s.store.DeleteDriverByID(ctx, driverID)
}

// === HomeOwners ===

// CreateHomeOwner registers the user's home risk profile; a second one is ErrRiskProfileExists
func (s *Service) CreateHomeOwner(ctx context.Context, userID string, o contracts.HomeOwner) (contracts.HomeOwner, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return contracts.HomeOwner{}, err
	}
	if err := o.Validate(); err != nil {
		return contracts.HomeOwner{}, err
	}
	if _, err := s.store.FindHomeOwnerByUserID(ctx, userID); err == nil {
		return contracts.HomeOwner{}, fmt.Errorf("%w: user %s already has a homeowner", contracts.ErrRiskProfileExists, userID)
	}

	o.ID = s.newID()
	o.UserID = userID
	if err := s.store.SaveHomeOwner(ctx, o); err != nil {
		return contracts.HomeOwner{}, err
	}
	return o, nil
}

// GetHomeOwner reads the user's homeowner profile
func (s *Service) GetHomeOwner(ctx context.Context, userID string) (contracts.HomeOwner, error) {
	return s.store.FindHomeOwnerByUserID(ctx, userID)
}

// UpdateHomeOwner replaces the attributes of the user's homeowner profile
func (s *Service) UpdateHomeOwner(ctx context.Context, userID, ownerID string, o contracts.HomeOwner) (contracts.HomeOwner, error) {
	existing, err := s.store.FindHomeOwnerByID(ctx, ownerID)
	if err != nil {
		return contracts.HomeOwner{}, err
	}
	if err := checkOwner("homeowner", ownerID, existing.UserID, userID); err != nil {
		return contracts.HomeOwner{}, err
	}
	if err := o.Validate(); err != nil {
		return contracts.HomeOwner{}, err
	}

	o.ID = ownerID
	o.UserID = userID
	if err := s.store.SaveHomeOwner(ctx, o); err != nil {
		return contracts.HomeOwner{}, err
	}
	return o, nil
}

// DeleteHomeOwner removes the user's homeowner profile
func (s *Service) DeleteHomeOwner(ctx context.Context, userID, ownerID string) error {
	existing, err := s.store.FindHomeOwnerByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if err := checkOwner("homeowner", ownerID, existing.UserID, userID); err != nil {
		return err
	}
	return s.store.DeleteHomeOwnerByID(ctx, ownerID)
}

// === Vehicles ===

// CreateVehicle registers an auto asset for the user
func (s *Service) CreateVehicle(ctx context.Context, userID string, v contracts.Vehicle) (contracts.Vehicle, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return contracts.Vehicle{}, err
	}
	if err := v.Validate(); err != nil {
		return contracts.Vehicle{}, err
	}

	v.ID = s.newID()
	v.UserID = userID
	if err := s.store.SaveVehicle(ctx, v); err != nil {
		return contracts.Vehicle{}, fmt.Errorf("failed to save vehicle: %w", err)
	}
	return v, nil
}

// ListVehicles lists the user's vehicles
func (s *Service) ListVehicles(ctx context.Context, userID string) ([]contracts.Vehicle, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListVehiclesByUserID(ctx, userID)
}

// UpdateVehicle replaces the attributes of one of the user's vehicles
func (s *Service) UpdateVehicle(ctx context.Context, userID, vehicleID string, v contracts.Vehicle) (contracts.Vehicle, error) {
	existing, err := s.store.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return contracts.Vehicle{}, err
	}
	if err := checkOwner("vehicle", vehicleID, existing.UserID, userID); err != nil {
		return contracts.Vehicle{}, err
	}
	if err := v.Validate(); err != nil {
		return contracts.Vehicle{}, err
	}

	v.ID = vehicleID
	v.UserID = userID
	if err := s.store.SaveVehicle(ctx, v); err != nil {
		return contracts.Vehicle{}, fmt.Errorf("failed to save vehicle: %w", err)
	}
	return v, nil
}

// DeleteVehicle removes one of the user's vehicles
func (s *Service) DeleteVehicle(ctx context.Context, userID, vehicleID string) error {
	existing, err := s.store.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if err := checkOwner("vehicle", vehicleID, existing.UserID, userID); err != nil {
		return err
	}
	return s.store.DeleteVehicleByID(ctx, vehicleID)
}

// === Homes ===

// CreateHome registers a home asset for the user
func (s *Service) CreateHome(ctx context.Context, userID string, h contracts.Home) (contracts.Home, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return contracts.Home{}, err
	}
	if err := h.Validate(); err != nil {
		return contracts.Home{}, err
	}

	h.ID = s.newID()
	h.UserID = userID
	h.DateBuilt = contracts.Day(h.DateBuilt)
	if err := s.store.SaveHome(ctx, h); err != nil {
		return contracts.Home{}, fmt.Errorf("failed to save home: %w", err)
	}
	return h, nil
}

// ListHomes lists the user's homes
func (s *Service) ListHomes(ctx context.Context, userID string) ([]contracts.Home, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListHomesByUserID(ctx, userID)
}

// UpdateHome replaces the attributes of one of the user's homes
func (s *Service) UpdateHome(ctx context.Context, userID, homeID string, h contracts.Home) (contracts.Home, error) {
	existing, err := s.store.FindHomeByID(ctx, homeID)
	if err != nil {
		return contracts.Home{}, err
	}
	if err := checkOwner("home", homeID, existing.UserID, userID); err != nil {
		return contracts.Home{}, err
	}
	if err := h.Validate(); err != nil {
		return contracts.Home{}, err
	}

	h.ID = homeID
	h.UserID = userID
	h.DateBuilt = contracts.Day(h.DateBuilt)
	if err := s.store.SaveHome(ctx, h); err != nil {
		return contracts.Home{}, fmt.Errorf("failed to save home: %w", err)
	}
	return h, nil
}

// DeleteHome removes one of the user's homes
func (s *Service) DeleteHome(ctx context.Context, userID, homeID string) error {
	existing, err := s.store.FindHomeByID(ctx, homeID)
	if err != nil {
		return err
	}
	if err := checkOwner("home", homeID, existing.UserID, userID); err != nil {
		return err
	}
	return s.store.DeleteHomeByID(ctx, homeID)
}
