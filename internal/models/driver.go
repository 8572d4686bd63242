package models

import "time"

// DriverStatus is the availability state of a fleet driver
type DriverStatus string

const (
	DriverStatusOffline   DriverStatus = "offline"
	DriverStatusAvailable DriverStatus = "available"
	DriverStatusOnRoute   DriverStatus = "on_route"
	DriverStatusOnBreak   DriverStatus = "on_break"
)

// Valid reports whether the status is one of the four driver states.
func (s DriverStatus) Valid() bool {
	switch s {
	case DriverStatusOffline, DriverStatusAvailable, DriverStatusOnRoute, DriverStatusOnBreak:
		return true
	default:
		return false
	}
}

// Driver is a fleet agent and its live telemetry
type Driver struct {
	ID         string       `json:"id" db:"id" yaml:"id"`
	Name       string       `json:"name" db:"name" yaml:"name"`
	Email      string       `json:"email" db:"email" yaml:"email"`
	Phone      string       `json:"phone" db:"phone" yaml:"phone"`
	Status     DriverStatus `json:"status" db:"status" yaml:"status"`
	CurrentLat *float64     `json:"current_lat" db:"current_lat" yaml:"current_lat"`
	CurrentLng *float64     `json:"current_lng" db:"current_lng" yaml:"current_lng"`
	Heading    *float64     `json:"heading" db:"heading" yaml:"heading"` // degrees
	Speed      *float64     `json:"speed" db:"speed" yaml:"speed"`       // km/h
	LastSeen   *time.Time   `json:"last_seen" db:"last_seen" yaml:"last_seen"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at" yaml:"created_at"`

	// Device token for push notifications, registered by the mobile app
	PushToken string `json:"-" db:"-" yaml:"-"`
}

// DriverPatch lists the driver fields an update may touch. Nil fields are left unchanged.
type DriverPatch struct {
	Name       *string
	Phone      *string
	Status     *DriverStatus
	CurrentLat *float64
	CurrentLng *float64
	Heading    *float64
	Speed      *float64
	LastSeen   *time.Time
	PushToken  *string
}

// Apply merges the patch into d and returns the result.
func (p DriverPatch) Apply(d Driver) Driver {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Phone != nil {
		d.Phone = *p.Phone
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.CurrentLat != nil {
		d.CurrentLat = p.CurrentLat
	}
	if p.CurrentLng != nil {
		d.CurrentLng = p.CurrentLng
	}
	if p.Heading != nil {
		d.Heading = p.Heading
	}
	if p.Speed != nil {
		d.Speed = p.Speed
	}
	if p.LastSeen != nil {
		d.LastSeen = p.LastSeen
	}
	if p.PushToken != nil {
		d.PushToken = *p.PushToken
	}
	return d
}
