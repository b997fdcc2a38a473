package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/internal/underwriting"
	"github.com/wonny/coverline/pkg/logger"
)

// PolicyHandler handles auto and home policies
type PolicyHandler struct {
	svc    *underwriting.Service
	logger *logger.Logger
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(svc *underwriting.Service, log *logger.Logger) *PolicyHandler {
	return &PolicyHandler{svc: svc, logger: log}
}

// RenewedResponse is the 201 body of a successful renewal
type RenewedResponse[P any] struct {
	Status     contracts.RenewalStatus `json:"status"`
	Policy     P                       `json:"policy"`
	PreviousID string                  `json:"previous_id"`
}

// NotYetEligibleResponse is the 409 body of a too-early renewal; Policy is unchanged
type NotYetEligibleResponse[P any] struct {
	ErrorResponse
	Policy       P      `json:"policy"`
	EligibleFrom string `json:"eligible_from"`
}

func respondRenewal[P any](w http.ResponseWriter, outcome contracts.RenewalOutcome[P], previousID string, end, eligibleFrom time.Time) {
	if outcome.IsRenewed() {
		respondJSON(w, http.StatusCreated, RenewedResponse[P]{
			Status:     outcome.Status,
			Policy:     outcome.Policy,
			PreviousID: previousID,
		})
		return
	}

	respondJSON(w, http.StatusConflict, NotYetEligibleResponse[P]{
		ErrorResponse: ErrorResponse{
			Error: outcome.Err().Error() + ": ends " + end.Format(time.DateOnly),
			Code:  ErrCodeNotYetEligible,
		},
		Policy:       outcome.Policy,
		EligibleFrom: eligibleFrom.Format(time.DateOnly),
	})
}

// === Auto ===

// IssueAutoPolicy binds one of the user's auto quotes
// POST /api/v1/users/{user_id}/autopolicies/{quote_id}
func (h *PolicyHandler) IssueAutoPolicy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	policy, err := h.svc.IssueAutoPolicy(r.Context(), vars["user_id"], vars["quote_id"])
	if err != nil {
		respondServiceError(w, h.logger, "issue_auto_policy", err)
		return
	}
	respondJSON(w, http.StatusCreated, policy)
}

// RenewAutoPolicy renews one of the user's auto policies
// POST /api/v1/users/{user_id}/autopolicies/renew/{policy_id}
func (h *PolicyHandler) RenewAutoPolicy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	outcome, err := h.svc.RenewAutoPolicy(r.Context(), vars["user_id"], vars["policy_id"])
	if err != nil {
		respondServiceError(w, h.logger, "renew_auto_policy", err)
		return
	}
	end := outcome.Previous.EndDate
	respondRenewal(w, outcome, vars["policy_id"], end, h.svc.EligibleFrom(end))
}

// CancelAutoPolicy deletes one of the user's auto policies
// DELETE /api/v1/users/{user_id}/autopolicies/{policy_id}
func (h *PolicyHandler) CancelAutoPolicy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.CancelAutoPolicy(r.Context(), vars["user_id"], vars["policy_id"]); err != nil {
		respondServiceError(w, h.logger, "cancel_auto_policy", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAutoPolicies lists the user's auto policies
// GET /api/v1/users/{user_id}/autopolicies
func (h *PolicyHandler) ListAutoPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.svc.ListAutoPolicies(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		respondServiceError(w, h.logger, "list_auto_policies", err)
		return
	}
	respondJSON(w, http.StatusOK, policies)
}

// GetAutoPolicy returns one auto policy
// GET /api/v1/autopolicies/{policy_id}
func (h *PolicyHandler) GetAutoPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.svc.GetAutoPolicy(r.Context(), mux.Vars(r)["policy_id"])
	if err != nil {
		respondServiceError(w, h.logger, "get_auto_policy", err)
		return
	}
	respondJSON(w, http.StatusOK, policy)
}

// === Home ===

// IssueHomePolicy binds one of the user's home quotes
// POST /api/v1/users/{user_id}/homepolicies/{quote_id}
func (h *PolicyHandler) IssueHomePolicy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	policy, err := h.svc.IssueHomePolicy(r.Context(), vars["user_id"], vars["quote_id"])
	if err != nil {
		respondServiceError(w, h.logger, "issue_home_policy", err)
		return
	}
	respondJSON(w, http.StatusCreated, policy)
}

// RenewHomePolicy renews one of the user's home policies
// POST /api/v1/users/{user_id}/homepolicies/renew/{policy_id}
func (h *PolicyHandler) RenewHomePolicy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	outcome, err := h.svc.RenewHomePolicy(r.Context(), vars["user_id"], vars["policy_id"])
	if err != nil {
		respondServiceError(w, h.logger, "renew_home_policy", err)
		return
	}
	end := outcome.Previous.EndDate
	respondRenewal(w, outcome, vars["policy_id"], end, h.svc.EligibleFrom(end))
}

// CancelHomePolicy deletes one of the user's home policies
// DELETE /api/v1/users/{user_id}/homepolicies/{policy_id}
func (h *PolicyHandler) CancelHomePolicy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.CancelHomePolicy(r.Context(), vars["user_id"], vars["policy_id"]); err != nil {
		respondServiceError(w, h.logger, "cancel_home_policy", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListHomePolicies lists the user's home policies
// GET /api/v1/users/{user_id}/homepolicies
func (h *PolicyHandler) ListHomePolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.svc.ListHomePolicies(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		respondServiceError(w, h.logger, "list_home_policies", err)
		return
	}
	respondJSON(w, http.StatusOK, policies)
}

// GetHomePolicy returns one home policy
// GET /api/v1/homepolicies/{policy_id}
func (h *PolicyHandler) GetHomePolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.svc.GetHomePolicy(r.Context(), mux.Vars(r)["policy_id"])
	if err != nil {
		respondServiceError(w, h.logger, "get_home_policy", err)
		return
	}
	respondJSON(w, http.StatusOK, policy)
}
