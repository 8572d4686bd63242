package models

import "time"

// DeliveryStatus is the lifecycle state of a delivery
type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "pending"
	DeliveryStatusInProgress DeliveryStatus = "in_progress"
	DeliveryStatusCompleted  DeliveryStatus = "completed"
	DeliveryStatusFailed     DeliveryStatus = "failed"
)

// Valid reports whether the status is one of the four delivery states.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusInProgress, DeliveryStatusCompleted, DeliveryStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status closes the delivery (completed or failed).
func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryStatusCompleted || s == DeliveryStatusFailed
}

// Priority orders deliveries on a driver's work list. Unknown statuses sort last.
func (s DeliveryStatus) Priority() int {
	switch s {
	case DeliveryStatusInProgress:
		return 1
	case DeliveryStatusPending:
		return 2
	case DeliveryStatusCompleted:
		return 3
	case DeliveryStatusFailed:
		return 4
	default:
		return 5
	}
}

// Delivery is one unit of work assigned to a driver.
// DriverID is a weak reference and is not checked against the driver roster.
type Delivery struct {
	ID           string         `json:"id" db:"id" yaml:"id"`
	DriverID     string         `json:"driver_id" db:"driver_id" yaml:"driver_id"`
	CustomerName string         `json:"customer_name" db:"customer_name" yaml:"customer_name"`
	Address      string         `json:"address" db:"address" yaml:"address"`
	Lat          *float64       `json:"lat" db:"lat" yaml:"lat"`
	Lng          *float64       `json:"lng" db:"lng" yaml:"lng"`
	Status       DeliveryStatus `json:"status" db:"status" yaml:"status"`
	Notes        *string        `json:"notes" db:"notes" yaml:"notes"`
	CompletedAt  *time.Time     `json:"completed_at" db:"completed_at" yaml:"completed_at"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at" yaml:"created_at"`
}

// DeliveryPatch lists the delivery fields an update may touch.
// CompletedAt is set when non-nil and cleared when ClearCompletedAt is true.
type DeliveryPatch struct {
	Status           *DeliveryStatus
	Notes            *string
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// Apply merges the patch into d and returns the result.
func (p DeliveryPatch) Apply(d Delivery) Delivery {
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.Notes != nil {
		d.Notes = p.Notes
	}
	switch {
	case p.ClearCompletedAt:
		d.CompletedAt = nil
	case p.CompletedAt != nil:
		d.CompletedAt = p.CompletedAt
	}
	return d
}

// NewDelivery is the caller-supplied part of a delivery at creation time
type NewDelivery struct {
	DriverID     string   `json:"driver_id"`
	CustomerName string   `json:"customer_name"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	Notes        *string  `json:"notes"`
}
