package contracts

import "errors"

// Sentinel errors surfaced by the lifecycle core. Callers match with errors.Is
// and map each kind to a response; none of them is fatal to the process.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrRiskProfileNotFound = errors.New("risk profile not found")
	ErrQuoteNotFound       = errors.New("quote not found")
	ErrPolicyNotFound      = errors.New("policy not found")
	ErrNotAuthorized       = errors.New("user does not own this record")

	// ErrRenewalNotYetEligible marks the "too early" renewal outcome when it has to travel as an error
	ErrRenewalNotYetEligible = errors.New("policy is not yet eligible for renewal")

	ErrRiskProfileExists = errors.New("user already has a risk profile of this kind")
	ErrInvalidEnum       = errors.New("invalid enumeration value")
	ErrInvalidPeriod     = errors.New("policy end date must be after start date")
	ErrInvalidInput      = errors.New("invalid input")
)
