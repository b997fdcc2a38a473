package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/coverline/internal/api/handlers"
	"github.com/wonny/coverline/pkg/logger"
)

// Handlers groups every endpoint handler the router mounts
type Handlers struct {
	Users    *handlers.UserHandler
	Quotes   *handlers.QuoteHandler
	Policies *handlers.PolicyHandler
	Health   *handlers.HealthHandler
}

// NewRouter creates and configures the HTTP router. limiter may be nil.
// ⭐ SSOT: every route is registered in this function only
func NewRouter(h Handlers, limiter *RateLimiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.Health.Check).Methods("GET")

	// API v1
	api := r.PathPrefix("/api/v1").Subrouter()

	// Users
	api.HandleFunc("/users", h.Users.CreateUser).Methods("POST")
	api.HandleFunc("/users", h.Users.ListUsers).Methods("GET")
	api.HandleFunc("/users/{user_id}", h.Users.GetUser).Methods("GET")
	api.HandleFunc("/users/{user_id}", h.Users.UpdateUser).Methods("PUT")
	api.HandleFunc("/users/{user_id}", h.Users.DeleteUser).Methods("DELETE")

	// Risk profiles (one of each per user)
	api.HandleFunc("/users/{user_id}/drivers", h.Users.CreateDriver).Methods("POST")
	api.HandleFunc("/users/{user_id}/drivers", h.Users.GetDriver).Methods("GET")
	api.HandleFunc("/users/{user_id}/drivers/{driver_id}", h.Users.UpdateDriver).Methods("PUT")
	api.HandleFunc("/users/{user_id}/drivers/{driver_id}", h.Users.DeleteDriver).Methods("DELETE")
	api.HandleFunc("/users/{user_id}/homeowners", h.Users.CreateHomeOwner).Methods("POST")
	api.HandleFunc("/users/{user_id}/homeowners", h.Users.GetHomeOwner).Methods("GET")
	api.HandleFunc("/users/{user_id}/homeowners/{homeowner_id}", h.Users.UpdateHomeOwner).Methods("PUT")
	api.HandleFunc("/users/{user_id}/homeowners/{homeowner_id}", h.Users.DeleteHomeOwner).Methods("DELETE")

	// Assets
	api.HandleFunc("/users/{user_id}/autos", h.Users.CreateVehicle).Methods("POST")
	api.HandleFunc("/users/{user_id}/autos", h.Users.ListVehicles).Methods("GET")
	api.HandleFunc("/users/{user_id}/autos/{auto_id}", h.Users.UpdateVehicle).Methods("PUT")
	api.HandleFunc("/users/{user_id}/autos/{auto_id}", h.Users.DeleteVehicle).Methods("DELETE")
	api.HandleFunc("/users/{user_id}/homes", h.Users.CreateHome).Methods("POST")
	api.HandleFunc("/users/{user_id}/homes", h.Users.ListHomes).Methods("GET")
	api.HandleFunc("/users/{user_id}/homes/{home_id}", h.Users.UpdateHome).Methods("PUT")
	api.HandleFunc("/users/{user_id}/homes/{home_id}", h.Users.DeleteHome).Methods("DELETE")

	// Quotes
	api.HandleFunc("/users/{user_id}/autoquotes", h.Quotes.ListAutoQuotes).Methods("GET")
	api.HandleFunc("/users/{user_id}/autoquotes/{auto_id}", h.Quotes.CreateAutoQuote).Methods("POST")
	api.HandleFunc("/users/{user_id}/autoquotes/{quote_id}", h.Quotes.CancelAutoQuote).Methods("DELETE")
	api.HandleFunc("/autoquotes/{quote_id}", h.Quotes.GetAutoQuote).Methods("GET")
	api.HandleFunc("/users/{user_id}/homequotes", h.Quotes.ListHomeQuotes).Methods("GET")
	api.HandleFunc("/users/{user_id}/homequotes/{home_id}", h.Quotes.CreateHomeQuote).Methods("POST")
	api.HandleFunc("/users/{user_id}/homequotes/{quote_id}", h.Quotes.CancelHomeQuote).Methods("DELETE")
	api.HandleFunc("/homequotes/{quote_id}", h.Quotes.GetHomeQuote).Methods("GET")

	// Policies
	api.HandleFunc("/users/{user_id}/autopolicies", h.Policies.ListAutoPolicies).Methods("GET")
	api.HandleFunc("/users/{user_id}/autopolicies/renew/{policy_id}", h.Policies.RenewAutoPolicy).Methods("POST")
	api.HandleFunc("/users/{user_id}/autopolicies/{quote_id}", h.Policies.IssueAutoPolicy).Methods("POST")
	api.HandleFunc("/users/{user_id}/autopolicies/{policy_id}", h.Policies.CancelAutoPolicy).Methods("DELETE")
	api.HandleFunc("/autopolicies/{policy_id}", h.Policies.GetAutoPolicy).Methods("GET")
	api.HandleFunc("/users/{user_id}/homepolicies", h.Policies.ListHomePolicies).Methods("GET")
	api.HandleFunc("/users/{user_id}/homepolicies/renew/{policy_id}", h.Policies.RenewHomePolicy).Methods("POST")
	api.HandleFunc("/users/{user_id}/homepolicies/{quote_id}", h.Policies.IssueHomePolicy).Methods("POST")
	api.HandleFunc("/users/{user_id}/homepolicies/{policy_id}", h.Policies.CancelHomePolicy).Methods("DELETE")
	api.HandleFunc("/homepolicies/{policy_id}", h.Policies.GetHomePolicy).Methods("GET")

	// Apply middleware
	r.Use(recoveryMiddleware(log))
	r.Use(loggingMiddleware(log))
	r.Use(metricsMiddleware)
	if limiter != nil {
		api.Use(limiter.Middleware)
	}

	return r
}
