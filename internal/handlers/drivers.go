package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"fleetsync-backend/internal/middleware"
	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/services"
	"fleetsync-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

type StatusRequest struct {
	Status string `json:"status"`
}

type LocationRequest struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Speed   *float64 `json:"speed"`
	Heading *float64 `json:"heading"`
}

type LoginRequest struct {
	Email string `json:"email"`
}

type PushTokenRequest struct {
	Token string `json:"token"`
}

// GetDrivers lists every driver in roster order
func GetDrivers(fleet *services.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.Success(w, fleet.Drivers())
	}
}

func GetDriver(fleet *services.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driver, err := fleet.Driver(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, err)
			return
		}
		utils.Success(w, driver)
	}
}

// UpdateDriverStatus handles PATCH /drivers/{id}/status
func UpdateDriverStatus(fleet *services.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		driver, err := fleet.ChangeDriverStatus(chi.URLParam(r, "id"), req.Status)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.Success(w, driver)
	}
}

// UpdateDriverLocation handles POST /drivers/{id}/location
func UpdateDriverLocation(fleet *services.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LocationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Lat == nil || req.Lng == nil {
			utils.Error(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}

		_, err := fleet.ReportLocation(chi.URLParam(r, "id"), models.LocationReport{
			Lat:     *req.Lat,
			Lng:     *req.Lng,
			Speed:   req.Speed,
			Heading: req.Heading,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		utils.Acknowledge(w)
	}
}

// GetDriverLocations handles GET /drivers/{id}/locations?limit=N.
// A missing or unparsable limit means the default of 100.
func GetDriverLocations(fleet *services.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		utils.Success(w, fleet.Locations(chi.URLParam(r, "id"), limit))
	}
}

// Login identifies a driver by email and marks it available. When a secret
// is configured the response carries a session token in X-Session-Token.
func Login(fleet *services.Fleet, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		log.Printf("🔐 Login attempt for: %s", req.Email)

		driver, err := fleet.Login(req.Email)
		if err != nil {
			log.Printf("❌ Login failed for %q: %v", req.Email, err)
			respondError(w, err)
			return
		}

		if secret != "" {
			token, err := middleware.IssueSessionToken(secret, driver, *driver.LastSeen)
			if err != nil {
				log.Printf("❌ Failed to create token: %v", err)
				utils.Error(w, http.StatusInternalServerError, "Failed to create token")
				return
			}
			w.Header().Set("X-Session-Token", token)
		}
		utils.Success(w, driver)
	}
}

// RegisterPushToken handles POST /drivers/{id}/push-token
func RegisterPushToken(fleet *services.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PushTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := fleet.RegisterPushToken(chi.URLParam(r, "id"), req.Token); err != nil {
			respondError(w, err)
			return
		}
		utils.Acknowledge(w)
	}
}
