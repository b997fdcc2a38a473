package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/coverline/internal/contracts"
)

// === Users ===

const userColumns = "id, name, email"

func scanUser(row pgx.CollectableRow) (contracts.User, error) {
	var u contracts.User
	err := row.Scan(&u.ID, &u.Name, &u.Email)
	return u, err
}

func (s *Store) FindUserByID(ctx context.Context, id string) (contracts.User, error) {
	return queryOne(ctx, s.db.Pool, scanUser, contracts.ErrUserNotFound, id,
		"SELECT "+userColumns+" FROM coverline.users WHERE id = $1", id)
}

func (s *Store) SaveUser(ctx context.Context, u contracts.User) error {
	if err := requireID(u.ID); err != nil {
		return err
	}

	query := `
		INSERT INTO coverline.users (id, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email
	`
	if _, err := s.db.Pool.Exec(ctx, query, u.ID, u.Name, u.Email); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// ownedTables hold records keyed by user_id; they go with their user
var ownedTables = []string{
	"coverline.auto_policies",
	"coverline.home_policies",
	"coverline.auto_quotes",
	"coverline.home_quotes",
	"coverline.vehicles",
	"coverline.homes",
	"coverline.drivers",
	"coverline.home_owners",
}

// DeleteUserByID removes a user together with every record it owns, in one transaction
func (s *Store) DeleteUserByID(ctx context.Context, id string) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := deleteByID(ctx, tx, contracts.ErrUserNotFound, "DELETE FROM coverline.users WHERE id = $1", id); err != nil {
			return err
		}
		for _, table := range ownedTables {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE user_id = $1", id); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Store) ListUsers(ctx context.Context) ([]contracts.User, error) {
	return queryAll(ctx, s.db.Pool, scanUser,
		"SELECT "+userColumns+" FROM coverline.users ORDER BY created_at, id")
}

// === Drivers ===

const driverColumns = "id, user_id, age, address, accidents"

func scanDriver(row pgx.CollectableRow) (contracts.Driver, error) {
	var d contracts.Driver
	err := row.Scan(&d.ID, &d.UserID, &d.Age, &d.Address, &d.Accidents)
	return d, err
}

func (s *Store) FindDriverByID(ctx context.Context, id string) (contracts.Driver, error) {
	return queryOne(ctx, s.db.Pool, scanDriver, contracts.ErrRiskProfileNotFound, id,
		"SELECT "+driverColumns+" FROM coverline.drivers WHERE id = $1", id)
}

func (s *Store) FindDriverByUserID(ctx context.Context, userID string) (contracts.Driver, error) {
	return queryOne(ctx, s.db.Pool, scanDriver, contracts.ErrRiskProfileNotFound, "driver of user "+userID,
		"SELECT "+driverColumns+" FROM coverline.drivers WHERE user_id = $1", userID)
}

func (s *Store) SaveDriver(ctx context.Context, d contracts.Driver) error {
	if err := requireID(d.ID); err != nil {
		return err
	}

	query := `
		INSERT INTO coverline.drivers (id, user_id, age, address, accidents)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			age = EXCLUDED.age,
			address = EXCLUDED.address,
			accidents = EXCLUDED.accidents
	`
	_, err := s.db.Pool.Exec(ctx, query, d.ID, d.UserID, d.Age, d.Address, d.Accidents)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user %s", contracts.ErrRiskProfileExists, d.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to save driver: %w", err)
	}
	return nil
}

func (s *Store) DeleteDriverByID(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Pool, contracts.ErrRiskProfileNotFound, "DELETE FROM coverline.drivers WHERE id = $1", id)
}

func (s *Store) ListDriversByUserID(ctx context.Context, userID string) ([]contracts.Driver, error) {
	return queryAll(ctx, s.db.Pool, scanDriver,
		"SELECT "+driverColumns+" FROM coverline.drivers WHERE user_id = $1 ORDER BY created_at, id", userID)
}

// === HomeOwners ===

const homeOwnerColumns = "id, user_id, age, address"

func scanHomeOwner(row pgx.CollectableRow) (contracts.HomeOwner, error) {
	var o contracts.HomeOwner
	err := row.Scan(&o.ID, &o.UserID, &o.Age, &o.Address)
	return o, err
}

func (s *Store) FindHomeOwnerByID(ctx context.Context, id string) (contracts.HomeOwner, error) {
	return queryOne(ctx, s.db.Pool, scanHomeOwner, contracts.ErrRiskProfileNotFound, id,
		"SELECT "+homeOwnerColumns+" FROM coverline.home_owners WHERE id = $1", id)
}

func (s *Store) FindHomeOwnerByUserID(ctx context.Context, userID string) (contracts.HomeOwner, error) {
	return queryOne(ctx, s.db.Pool, scanHomeOwner, contracts.ErrRiskProfileNotFound, "homeowner of user "+userID,
		"SELECT "+homeOwnerColumns+" FROM coverline.home_owners WHERE user_id = $1", userID)
}

func (s *Store) SaveHomeOwner(ctx context.Context, o contracts.HomeOwner) error {
	if err := requireID(o.ID); err != nil {
		return err
	}

	query := `
		INSERT INTO coverline.home_owners (id, user_id, age, address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			age = EXCLUDED.age,
			address = EXCLUDED.address
	`
	_, err := s.db.Pool.Exec(ctx, query, o.ID, o.UserID, o.Age, o.Address)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user %s", contracts.ErrRiskProfileExists, o.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to save homeowner: %w", err)
	}
	return nil
}

func (s *Store) DeleteHomeOwnerByID(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Pool, contracts.ErrRiskProfileNotFound, "DELETE FROM coverline.home_owners WHERE id = $1", id)
}

func (s *Store) ListHomeOwnersByUserID(ctx context.Context, userID string) ([]contracts.HomeOwner, error) {
	return queryAll(ctx, s.db.Pool, scanHomeOwner,
		"SELECT "+homeOwnerColumns+" FROM coverline.home_owners WHERE user_id = $1 ORDER BY created_at, id", userID)
}

// === Vehicles ===

const vehicleColumns = "id, user_id, year, make, model"

func scanVehicle(row pgx.CollectableRow) (contracts.Vehicle, error) {
	var v contracts.Vehicle
	err := row.Scan(&v.ID, &v.UserID, &v.Year, &v.Make, &v.Model)
	return v, err
}

func (s *Store) FindVehicleByID(ctx context.Context, id string) (contracts.Vehicle, error) {
	return queryOne(ctx, s.db.Pool, scanVehicle, contracts.ErrAssetNotFound, id,
		"SELECT "+vehicleColumns+" FROM coverline.vehicles WHERE id = $1", id)
}

func (s *Store) SaveVehicle(ctx context.Context, v contracts.Vehicle) error {
	if err := requireID(v.ID); err != nil {
		return err
	}

	query := `
		INSERT INTO coverline.vehicles (id, user_id, year, make, model)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			year = EXCLUDED.year,
			make = EXCLUDED.make,
			model = EXCLUDED.model
	`
	if _, err := s.db.Pool.Exec(ctx, query, v.ID, v.UserID, v.Year, v.Make, v.Model); err != nil {
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

func (s *Store) DeleteVehicleByID(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Pool, contracts.ErrAssetNotFound, "DELETE FROM coverline.vehicles WHERE id = $1", id)
}

func (s *Store) ListVehiclesByUserID(ctx context.Context, userID string) ([]contracts.Vehicle, error) {
	return queryAll(ctx, s.db.Pool, scanVehicle,
		"SELECT "+vehicleColumns+" FROM coverline.vehicles WHERE user_id = $1 ORDER BY created_at, id", userID)
}

// === Homes ===

const homeColumns = "id, user_id, date_built, value_cents, dwelling_type, heating_type, location"

func scanHome(row pgx.CollectableRow) (contracts.Home, error) {
	var (
		h                          contracts.Home
		value                      int64
		dwelling, heating, locName string
	)
	if err := row.Scan(&h.ID, &h.UserID, &h.DateBuilt, &value, &dwelling, &heating, &locName); err != nil {
		return h, err
	}
	h.Value = contracts.Money(value)
	h.DwellingType = contracts.DwellingType(dwelling)
	h.HeatingType = contracts.HeatingType(heating)
	h.Location = contracts.Location(locName)
	return h, nil
}

func (s *Store) FindHomeByID(ctx context.Context, id string) (contracts.Home, error) {
	return queryOne(ctx, s.db.Pool, scanHome, contracts.ErrAssetNotFound, id,
		"SELECT "+homeColumns+" FROM coverline.homes WHERE id = $1", id)
}

func (s *Store) SaveHome(ctx context.Context, h contracts.Home) error {
	if err := requireID(h.ID); err != nil {
		return err
	}

	query := `
		INSERT INTO coverline.homes (id, user_id, date_built, value_cents, dwelling_type, heating_type, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			date_built = EXCLUDED.date_built,
			value_cents = EXCLUDED.value_cents,
			dwelling_type = EXCLUDED.dwelling_type,
			heating_type = EXCLUDED.heating_type,
			location = EXCLUDED.location
	`
	_, err := s.db.Pool.Exec(ctx, query, h.ID, h.UserID, h.DateBuilt, int64(h.Value),
		string(h.DwellingType), string(h.HeatingType), string(h.Location))
	if err != nil {
		return fmt.Errorf("failed to save home: %w", err)
	}
	return nil
}

func (s *Store) DeleteHomeByID(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db.Pool, contracts.ErrAssetNotFound, "DELETE FROM coverline.homes WHERE id = $1", id)
}

func (s *Store) ListHomesByUserID(ctx context.Context, userID string) ([]contracts.Home, error) {
	return queryAll(ctx, s.db.Pool, scanHome,
		"SELECT "+homeColumns+" FROM coverline.homes WHERE user_id = $1 ORDER BY created_at, id", userID)
}
