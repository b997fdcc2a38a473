package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/internal/underwriting"
	"github.com/wonny/coverline/pkg/logger"
)

// UserHandler handles users, risk profiles and insurable assets
// ⭐ SSOT: registration endpoints are served by this struct only
type UserHandler struct {
	svc    *underwriting.Service
	logger *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc *underwriting.Service, log *logger.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: log}
}

type userRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email,max=254"`
}

type driverRequest struct {
	Age       int    `json:"age" validate:"min=16,max=120"`
	Address   string `json:"address" validate:"max=500"`
	Accidents int    `json:"accidents" validate:"min=0"`
}

type homeOwnerRequest struct {
	Age     int    `json:"age" validate:"min=18,max=120"`
	Address string `json:"address" validate:"max=500"`
}

type vehicleRequest struct {
	Year  int    `json:"year" validate:"min=1886"`
	Make  string `json:"make" validate:"required,max=100"`
	Model string `json:"model" validate:"required,max=100"`
}

// homeRequest takes the value in cents and the build date as YYYY-MM-DD
type homeRequest struct {
	DateBuilt    string `json:"date_built" validate:"required,datetime=2006-01-02"`
	Value        int64  `json:"value" validate:"gt=0"`
	DwellingType string `json:"dwelling_type" validate:"required"`
	HeatingType  string `json:"heating_type" validate:"required"`
	Location     string `json:"location" validate:"required"`
}

func (req homeRequest) toHome() (contracts.Home, error) {
	built, err := time.Parse(time.DateOnly, req.DateBuilt)
	if err != nil {
		return contracts.Home{}, fmt.Errorf("%w: date_built %q (want YYYY-MM-DD)", contracts.ErrInvalidInput, req.DateBuilt)
	}
	dwelling, err := contracts.ParseDwellingType(req.DwellingType)
	if err != nil {
		return contracts.Home{}, err
	}
	heating, err := contracts.ParseHeatingType(req.HeatingType)
	if err != nil {
		return contracts.Home{}, err
	}
	location, err := contracts.ParseLocation(req.Location)
	if err != nil {
		return contracts.Home{}, err
	}

	return contracts.Home{
		DateBuilt:    built,
		Value:        contracts.Money(req.Value),
		DwellingType: dwelling,
		HeatingType:  heating,
		Location:     location,
	}, nil
}

// === Users ===

// CreateUser registers a user
// POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	user, err := h.svc.CreateUser(r.Context(), contracts.User{Name: req.Name, Email: req.Email})
	if err != nil {
		respondServiceError(w, h.logger, "create_user", err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// ListUsers lists every user
// GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "list_users", err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GetUser returns one user
// GET /api/v1/users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		respondServiceError(w, h.logger, "get_user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateUser replaces a user's name and email
// PUT /api/v1/users/{user_id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), mux.Vars(r)["user_id"], contracts.User{Name: req.Name, Email: req.Email})
	if err != nil {
		respondServiceError(w, h.logger, "update_user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user
// DELETE /api/v1/users/{user_id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), mux.Vars(r)["user_id"]); err != nil {
		respondServiceError(w, h.logger, "delete_user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Drivers ===

// CreateDriver registers the user's driver profile
// POST /api/v1/users/{user_id}/drivers
func (h *UserHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req driverRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	driver, err := h.svc.CreateDriver(r.Context(), mux.Vars(r)["user_id"], contracts.Driver{
		Age: req.Age, Address: req.Address, Accidents: req.Accidents,
	})
	if err != nil {
		respondServiceError(w, h.logger, "create_driver", err)
		return
	}
	respondJSON(w, http.StatusCreated, driver)
}

// GetDriver returns the user's driver profile
// GET /api/v1/users/{user_id}/drivers
func (h *UserHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	driver, err := h.svc.GetDriver(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		respondServiceError(w, h.logger, "get_driver", err)
		return
	}
	respondJSON(w, http.StatusOK, driver)
}

// UpdateDriver replaces the driver's attributes
// PUT /api/v1/users/{user_id}/drivers/{driver_id}
func (h *UserHandler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	var req driverRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	vars := mux.Vars(r)
	driver, err := h.svc.UpdateDriver(r.Context(), vars["user_id"], vars["driver_id"], contracts.Driver{
		Age: req.Age, Address: req.Address, Accidents: req.Accidents,
	})
	if err != nil {
		respondServiceError(w, h.logger, "update_driver", err)
		return
	}
	respondJSON(w, http.StatusOK, driver)
}

// DeleteDriver removes the driver profile
// DELETE /api/v1/users/{user_id}/drivers/{driver_id}
func (h *UserHandler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteDriver(r.Context(), vars["user_id"], vars["driver_id"]); err != nil {
		respondServiceError(w, h.logger, "delete_driver", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Homeowners ===

// CreateHomeOwner registers the user's homeowner profile
// POST /api/v1/users/{user_id}/homeowners
func (h *UserHandler) CreateHomeOwner(w http.ResponseWriter, r *http.Request) {
	var req homeOwnerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	owner, err := h.svc.CreateHomeOwner(r.Context(), mux.Vars(r)["user_id"], contracts.HomeOwner{
		Age: req.Age, Address: req.Address,
	})
	if err != nil {
		respondServiceError(w, h.logger, "create_homeowner", err)
		return
	}
	respondJSON(w, http.StatusCreated, owner)
}

// GetHomeOwner returns the user's homeowner profile
// GET /api/v1/users/{user_id}/homeowners
func (h *UserHandler) GetHomeOwner(w http.ResponseWriter, r *http.Request) {
	owner, err := h.svc.GetHomeOwner(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		respondServiceError(w, h.logger, "get_homeowner", err)
		return
	}
	respondJSON(w, http.StatusOK, owner)
}

// UpdateHomeOwner replaces the homeowner's attributes
// PUT /api/v1/users/{user_id}/homeowners/{homeowner_id}
func (h *UserHandler) UpdateHomeOwner(w http.ResponseWriter, r *http.Request) {
	var req homeOwnerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	vars := mux.Vars(r)
	owner, err := h.svc.UpdateHomeOwner(r.Context(), vars["user_id"], vars["homeowner_id"], contracts.HomeOwner{
		Age: req.Age, Address: req.Address,
	})
	if err != nil {
		respondServiceError(w, h.logger, "update_homeowner", err)
		return
	}
	respondJSON(w, http.StatusOK, owner)
}

// DeleteHomeOwner removes the homeowner profile
// DELETE /api/v1/users/{user_id}/homeowners/{homeowner_id}
func (h *UserHandler) DeleteHomeOwner(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteHomeOwner(r.Context(), vars["user_id"], vars["homeowner_id"]); err != nil {
		respondServiceError(w, h.logger, "delete_homeowner", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Vehicles ===

// CreateVehicle registers a vehicle
// POST /api/v1/users/{user_id}/autos
func (h *UserHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	vehicle, err := h.svc.CreateVehicle(r.Context(), mux.Vars(r)["user_id"], contracts.Vehicle{
		Year: req.Year, Make: req.Make, Model: req.Model,
	})
	if err != nil {
		respondServiceError(w, h.logger, "create_vehicle", err)
		return
	}
	respondJSON(w, http.StatusCreated, vehicle)
}

// ListVehicles lists the user's vehicles
// GET /api/v1/users/{user_id}/autos
func (h *UserHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.svc.ListVehicles(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		respondServiceError(w, h.logger, "list_vehicles", err)
		return
	}
	respondJSON(w, http.StatusOK, vehicles)
}

// UpdateVehicle replaces a vehicle's attributes
// PUT /api/v1/users/{user_id}/autos/{auto_id}
func (h *UserHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	vars := mux.Vars(r)
	vehicle, err := h.svc.UpdateVehicle(r.Context(), vars["user_id"], vars["auto_id"], contracts.Vehicle{
		Year: req.Year, Make: req.Make, Model: req.Model,
	})
	if err != nil {
		respondServiceError(w, h.logger, "update_vehicle", err)
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

// DeleteVehicle removes a vehicle
// DELETE /api/v1/users/{user_id}/autos/{auto_id}
func (h *UserHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteVehicle(r.Context(), vars["user_id"], vars["auto_id"]); err != nil {
		respondServiceError(w, h.logger, "delete_vehicle", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Homes ===

// CreateHome registers a home
// POST /api/v1/users/{user_id}/homes
func (h *UserHandler) CreateHome(w http.ResponseWriter, r *http.Request) {
	var req homeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}
	home, err := req.toHome()
	if err != nil {
		respondServiceError(w, h.logger, "create_home", err)
		return
	}

	home, err = h.svc.CreateHome(r.Context(), mux.Vars(r)["user_id"], home)
	if err != nil {
		respondServiceError(w, h.logger, "create_home", err)
		return
	}
	respondJSON(w, http.StatusCreated, home)
}

// ListHomes lists the user's homes
// GET /api/v1/users/{user_id}/homes
func (h *UserHandler) ListHomes(w http.ResponseWriter, r *http.Request) {
	homes, err := h.svc.ListHomes(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		respondServiceError(w, h.logger, "list_homes", err)
		return
	}
	respondJSON(w, http.StatusOK, homes)
}

// UpdateHome replaces a home's attributes
// PUT /api/v1/users/{user_id}/homes/{home_id}
func (h *UserHandler) UpdateHome(w http.ResponseWriter, r *http.Request) {
	var req homeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}
	home, err := req.toHome()
	if err != nil {
		respondServiceError(w, h.logger, "update_home", err)
		return
	}

	vars := mux.Vars(r)
	home, err = h.svc.UpdateHome(r.Context(), vars["user_id"], vars["home_id"], home)
	if err != nil {
		respondServiceError(w, h.logger, "update_home", err)
		return
	}
	respondJSON(w, http.StatusOK, home)
}

// DeleteHome removes a home
// DELETE /api/v1/users/{user_id}/homes/{home_id}
func (h *UserHandler) DeleteHome(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteHome(r.Context(), vars["user_id"], vars["home_id"]); err != nil {
		respondServiceError(w, h.logger, "delete_home", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
