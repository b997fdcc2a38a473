package contracts

import "github.com/google/uuid"

// IDFunc generates opaque identifiers for new records
type IDFunc func() string

// NewID returns a fresh random identifier
// ⭐ SSOT: every quote/policy/profile id comes from here unless a test injects its own IDFunc
func NewID() string {
	return uuid.NewString()
}
