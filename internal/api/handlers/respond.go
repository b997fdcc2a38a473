package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/pkg/logger"
	"github.com/wonny/coverline/pkg/redis"
)

// API error codes returned in JSON {"error": "...", "code": "..."} for stable client handling
const (
	ErrCodeInvalidRequest      = "invalid_request"
	ErrCodeInvalidInput        = "invalid_input"
	ErrCodeInvalidEnum         = "invalid_enum"
	ErrCodeInvalidPeriod       = "invalid_period"
	ErrCodeUserNotFound        = "user_not_found"
	ErrCodeAssetNotFound       = "asset_not_found"
	ErrCodeRiskProfileNotFound = "risk_profile_not_found"
	ErrCodeQuoteNotFound       = "quote_not_found"
	ErrCodePolicyNotFound      = "policy_not_found"
	ErrCodeNotAuthorized       = "not_authorized"
	ErrCodeRiskProfileExists   = "risk_profile_exists"
	ErrCodeNotYetEligible      = "not_yet_eligible"
	ErrCodeBusy                = "busy"
	ErrCodeInternal            = "internal_error"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorMapping pairs a sentinel with its HTTP status and code; first match wins
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{contracts.ErrUserNotFound, http.StatusNotFound, ErrCodeUserNotFound},
	{contracts.ErrAssetNotFound, http.StatusNotFound, ErrCodeAssetNotFound},
	{contracts.ErrRiskProfileNotFound, http.StatusNotFound, ErrCodeRiskProfileNotFound},
	{contracts.ErrQuoteNotFound, http.StatusNotFound, ErrCodeQuoteNotFound},
	{contracts.ErrPolicyNotFound, http.StatusNotFound, ErrCodePolicyNotFound},
	{contracts.ErrNotAuthorized, http.StatusForbidden, ErrCodeNotAuthorized},
	{contracts.ErrRiskProfileExists, http.StatusConflict, ErrCodeRiskProfileExists},
	{contracts.ErrRenewalNotYetEligible, http.StatusConflict, ErrCodeNotYetEligible},
	{contracts.ErrInvalidEnum, http.StatusBadRequest, ErrCodeInvalidEnum},
	{contracts.ErrInvalidPeriod, http.StatusBadRequest, ErrCodeInvalidPeriod},
	{contracts.ErrInvalidInput, http.StatusBadRequest, ErrCodeInvalidInput},
	{redis.ErrLockTimeout, http.StatusServiceUnavailable, ErrCodeBusy},
}

// statusFor maps a service error to its HTTP status and error code
func statusFor(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError writes the mapped status for err. Unexpected errors are
// logged and reported without internal detail.
func respondServiceError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("op", op).Error("Request failed")
		respondError(w, status, code, "internal server error")
		return
	}
	respondError(w, status, code, err.Error())
}

// validate checks request DTO tags; domain rules stay in contracts Validate methods
var validate = validator.New()

// decodeJSON reads a strict JSON body into dst and checks its validate tags.
// Tag violations wrap contracts.ErrInvalidInput.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", contracts.ErrInvalidInput, err.Error())
	}
	return nil
}

// respondBadRequest reports a decodeJSON failure
func respondBadRequest(w http.ResponseWriter, err error) {
	code := ErrCodeInvalidRequest
	if errors.Is(err, contracts.ErrInvalidInput) {
		code = ErrCodeInvalidInput
	}
	respondError(w, http.StatusBadRequest, code, err.Error())
}
