package handlers

import (
	"fleetsync-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the REST surface on r
func RegisterRoutes(r chi.Router, fleet *services.Fleet, hub SubscriberCounter, secret string) {
	r.Get("/health", Health(fleet, hub))

	r.Route("/drivers", func(r chi.Router) {
		r.Get("/", GetDrivers(fleet))
		r.Post("/login", Login(fleet, secret))
		r.Get("/{id}", GetDriver(fleet))
		r.Patch("/{id}/status", UpdateDriverStatus(fleet))
		r.Post("/{id}/location", UpdateDriverLocation(fleet))
		r.Get("/{id}/locations", GetDriverLocations(fleet))
		r.Post("/{id}/push-token", RegisterPushToken(fleet))
	})

	r.Route("/deliveries", func(r chi.Router) {
		r.Get("/", GetDeliveries(fleet))
		r.Post("/", CreateDelivery(fleet))
		r.Get("/driver/{id}", GetDriverDeliveries(fleet))
		r.Get("/{id}", GetDelivery(fleet))
		r.Patch("/{id}/status", UpdateDeliveryStatus(fleet))
	})
}
