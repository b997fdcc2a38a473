package contracts

import "time"

// Product identifies a product line
type Product string

const (
	ProductAuto Product = "auto"
	ProductHome Product = "home"
)

// Owned is anything bound to an insured person whose owning user can be checked
type Owned interface {
	InsuredOwnerID() string
}

// AutoQuote is a priced, non-binding auto offer. Never mutated after creation.
type AutoQuote struct {
	ID            string    `json:"id"`
	InsuredPerson Driver    `json:"insured_person"`
	Vehicle       Vehicle   `json:"vehicle"`
	UserID        string    `json:"user_id"`
	Terms         AutoTerms `json:"terms"`
	CreatedAt     time.Time `json:"created_at"`
}

// InsuredOwnerID returns the user reachable through the insured driver
func (q AutoQuote) InsuredOwnerID() string {
	return q.InsuredPerson.UserID
}

// HomeQuote is a priced, non-binding home offer. Never mutated after creation.
type HomeQuote struct {
	ID            string    `json:"id"`
	InsuredPerson HomeOwner `json:"insured_person"`
	Home          Home      `json:"home"`
	UserID        string    `json:"user_id"`
	Terms         HomeTerms `json:"terms"`
	CreatedAt     time.Time `json:"created_at"`
}

// InsuredOwnerID returns the user reachable through the insured homeowner
func (q HomeQuote) InsuredOwnerID() string {
	return q.InsuredPerson.UserID
}
