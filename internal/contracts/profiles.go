package contracts

import (
	"fmt"
	"strings"
	"time"
)

// User is the account that owns risk profiles, assets, quotes and policies
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Driver is the auto risk profile; a user has at most one
type Driver struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Age       int    `json:"age"`
	Address   string `json:"address"`
	Accidents int    `json:"accidents"` // at-fault accidents
}

// Vehicle is an insurable auto asset
type Vehicle struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Year   int    `json:"year"`
	Make   string `json:"make"`
	Model  string `json:"model"`
}

// HomeOwner is the home risk profile; a user has at most one
type HomeOwner struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Age     int    `json:"age"`
	Address string `json:"address"`
}

// Home is an insurable property asset
type Home struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	DateBuilt    time.Time    `json:"date_built"`
	Value        Money        `json:"value"`
	DwellingType DwellingType `json:"dwelling_type"`
	HeatingType  HeatingType  `json:"heating_type"`
	Location     Location     `json:"location"`
}

// Validate checks the fields a user can get wrong
func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("%w: email %q", ErrInvalidInput, u.Email)
	}
	return nil
}

// Validate checks driver attributes
func (d Driver) Validate() error {
	if d.Age < 16 || d.Age > 120 {
		return fmt.Errorf("%w: driver age %d", ErrInvalidInput, d.Age)
	}
	if d.Accidents < 0 {
		return fmt.Errorf("%w: accidents %d", ErrInvalidInput, d.Accidents)
	}
	return nil
}

// Validate checks vehicle attributes
func (v Vehicle) Validate() error {
	if v.Year < 1886 {
		return fmt.Errorf("%w: vehicle year %d", ErrInvalidInput, v.Year)
	}
	if strings.TrimSpace(v.Make) == "" || strings.TrimSpace(v.Model) == "" {
		return fmt.Errorf("%w: make and model are required", ErrInvalidInput)
	}
	return nil
}

// Validate checks homeowner attributes
func (h HomeOwner) Validate() error {
	if h.Age < 18 || h.Age > 120 {
		return fmt.Errorf("%w: homeowner age %d", ErrInvalidInput, h.Age)
	}
	return nil
}

// Validate checks home attributes; enums are re-parsed so hand-built values are caught too
func (h Home) Validate() error {
	if h.Value <= 0 {
		return fmt.Errorf("%w: home value %d", ErrInvalidInput, h.Value)
	}
	if h.DateBuilt.IsZero() {
		return fmt.Errorf("%w: date built is required", ErrInvalidInput)
	}
	if _, err := ParseDwellingType(string(h.DwellingType)); err != nil {
		return err
	}
	if _, err := ParseHeatingType(string(h.HeatingType)); err != nil {
		return err
	}
	if _, err := ParseLocation(string(h.Location)); err != nil {
		return err
	}
	return nil
}
