package handlers

import (
	"errors"
	"log"
	"net/http"

	"fleetsync-backend/internal/database"
	"fleetsync-backend/internal/rules"
	"fleetsync-backend/internal/services"
	"fleetsync-backend/pkg/utils"
)

// respondError maps pipeline errors onto HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrDriverNotFound):
		utils.Error(w, http.StatusNotFound, "Driver not found")
	case errors.Is(err, database.ErrDeliveryNotFound):
		utils.Error(w, http.StatusNotFound, "Delivery not found")
	case errors.Is(err, rules.ErrInvalidStatus):
		utils.Error(w, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, rules.ErrInvalidCoordinates):
		utils.Error(w, http.StatusBadRequest, "Invalid coordinates")
	case errors.Is(err, services.ErrMissingEmail):
		utils.Error(w, http.StatusBadRequest, "Email is required")
	case errors.Is(err, services.ErrMissingToken):
		utils.Error(w, http.StatusBadRequest, "Token is required")
	case errors.Is(err, services.ErrUnauthorized):
		utils.Error(w, http.StatusUnauthorized, "Driver not found")
	default:
		log.Printf("❌ Unhandled error: %v", err)
		utils.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
