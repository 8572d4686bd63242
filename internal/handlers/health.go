package handlers

import (
	"net/http"
	"time"

	"fleetsync-backend/internal/database"
	"fleetsync-backend/internal/services"
	"fleetsync-backend/pkg/utils"
)

// SubscriberCounter reports connected real-time subscribers
type SubscriberCounter interface {
	SubscriberCount() int
}

type HealthResponse struct {
	Status      string         `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Store       database.Stats `json:"store"`
	Subscribers int            `json:"subscribers"`
}

// Health is the liveness probe
func Health(fleet *services.Fleet, hub SubscriberCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.Success(w, HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Store:       fleet.Stats(),
			Subscribers: hub.SubscriberCount(),
		})
	}
}
