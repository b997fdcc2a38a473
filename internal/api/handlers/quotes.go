package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/coverline/internal/underwriting"
	"github.com/wonny/coverline/pkg/logger"
)

// QuoteHandler handles auto and home quotes
type QuoteHandler struct {
	svc    *underwriting.Service
	logger *logger.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(svc *underwriting.Service, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{svc: svc, logger: log}
}

// CreateAutoQuote prices one of the user's vehicles
// POST /api/v1/users/{user_id}/autoquotes/{auto_id}
func (h *QuoteHandler) CreateAutoQuote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	quote, err := h.svc.CreateAutoQuote(r.Context(), vars["user_id"], vars["auto_id"])
	if err != nil {
		respondServiceError(w, h.logger, "create_auto_quote", err)
		return
	}
	respondJSON(w, http.StatusCreated, quote)
}

// ListAutoQuotes lists the user's auto quotes
// GET /api/v1/users/{user_id}/autoquotes
func (h *QuoteHandler) ListAutoQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.svc.ListAutoQuotes(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		respondServiceError(w, h.logger, "list_auto_quotes", err)
		return
	}
	respondJSON(w, http.StatusOK, quotes)
}

// GetAutoQuote returns one auto quote
// GET /api/v1/autoquotes/{quote_id}
func (h *QuoteHandler) GetAutoQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.svc.GetAutoQuote(r.Context(), mux.Vars(r)["quote_id"])
	if err != nil {
		respondServiceError(w, h.logger, "get_auto_quote", err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// CancelAutoQuote deletes one of the user's auto quotes
// DELETE /api/v1/users/{user_id}/autoquotes/{quote_id}
func (h *QuoteHandler) CancelAutoQuote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.CancelAutoQuote(r.Context(), vars["user_id"], vars["quote_id"]); err != nil {
		respondServiceError(w, h.logger, "cancel_auto_quote", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateHomeQuote prices one of the user's homes
// POST /api/v1/users/{user_id}/homequotes/{home_id}
func (h *QuoteHandler) CreateHomeQuote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	quote, err := h.svc.CreateHomeQuote(r.Context(), vars["user_id"], vars["home_id"])
	if err != nil {
		respondServiceError(w, h.logger, "create_home_quote", err)
		return
	}
	respondJSON(w, http.StatusCreated, quote)
}

// ListHomeQuotes lists the user's home quotes
// GET /api/v1/users/{user_id}/homequotes
func (h *QuoteHandler) ListHomeQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.svc.ListHomeQuotes(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		respondServiceError(w, h.logger, "list_home_quotes", err)
		return
	}
	respondJSON(w, http.StatusOK, quotes)
}

// GetHomeQuote returns one home quote
// GET /api/v1/homequotes/{quote_id}
func (h *QuoteHandler) GetHomeQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.svc.GetHomeQuote(r.Context(), mux.Vars(r)["quote_id"])
	if err != nil {
		respondServiceError(w, h.logger, "get_home_quote", err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// CancelHomeQuote deletes one of the user's home quotes
// DELETE /api/v1/users/{user_id}/homequotes/{quote_id}
func (h *QuoteHandler) CancelHomeQuote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.CancelHomeQuote(r.Context(), vars["user_id"], vars["quote_id"]); err != nil {
		respondServiceError(w, h.logger, "cancel_home_quote", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
