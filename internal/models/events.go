package models

import "time"

// Audiences
const (
	AudienceDashboard = "dashboard"
	driverAudience    = "driver:"
)

// DriverAudience names the audience reserved for one driver's own connections.
func DriverAudience(driverID string) string {
	return driverAudience + driverID
}

// Server → client events
const (
	EventDriversUpdate        = "drivers:update"
	EventDriverLocationUpdate = "driver:location:update"
	EventDeliveryUpdated      = "delivery:updated"
	EventDeliveryCreated      = "delivery:created"
	EventDeliveryAssigned     = "delivery:assigned"
	EventPong                 = "pong"
	EventError                = "error"
)

// Client → server events
const (
	EventDriverJoin     = "driver:join"
	EventDashboardJoin  = "dashboard:join"
	EventDriverLocation = "driver:location"
	EventDriverStatus   = "driver:status"
	EventDeliveryUpdate = "delivery:update"
	EventPing           = "ping"
)

// LocationDelta is the single-driver telemetry event sent alongside a full snapshot
type LocationDelta struct {
	DriverID  string    `json:"driverId"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Speed     float64   `json:"speed"`
	Heading   float64   `json:"heading"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorEvent tells a real-time sender that its message was dropped
type ErrorEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}
