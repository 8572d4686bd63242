package handlers

import (
	"encoding/json"
	"net/http"

	"fleetsync-backend/internal/database"
	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/services"
	"fleetsync-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

type DeliveryStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// GetDeliveries handles GET /deliveries?driver_id=&status=
func GetDeliveries(fleet *services.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		utils.Success(w, fleet.Deliveries(database.DeliveryFilter{
			DriverID: query.Get("driver_id"),
			Status:   models.DeliveryStatus(query.Get("status")),
		}))
	}
}

func GetDelivery(fleet *services.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		delivery, err := fleet.Delivery(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, err)
			return
		}
		utils.Success(w, delivery)
	}
}

// CreateDelivery handles POST /deliveries. Any status in the body is ignored.
func CreateDelivery(fleet *services.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.NewDelivery
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		utils.JSON(w, http.StatusCreated, fleet.CreateDelivery(req))
	}
}

// UpdateDeliveryStatus handles PATCH /deliveries/{id}/status
func UpdateDeliveryStatus(fleet *services.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DeliveryStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		delivery, err := fleet.UpdateDeliveryStatus(chi.URLParam(r, "id"), req.Status, req.Notes)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.Success(w, delivery)
	}
}

// GetDriverDeliveries handles GET /deliveries/driver/{id}, sorted by work priority
func GetDriverDeliveries(fleet *services.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.Success(w, fleet.DriverDeliveries(chi.URLParam(r, "id")))
	}
}
