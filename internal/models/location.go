package models

import "time"

// LocationSample is one immutable point of a driver's location history
type LocationSample struct {
	ID         int64     `json:"id"`
	DriverID   string    `json:"driver_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Speed      float64   `json:"speed"`   // km/h
	Heading    float64   `json:"heading"` // degrees
	RecordedAt time.Time `json:"recorded_at"`
}

// LocationReport is a position fix sent by a driver's device.
// Speed and Heading are optional and default to 0.
type LocationReport struct {
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Speed   *float64 `json:"speed,omitempty"`
	Heading *float64 `json:"heading,omitempty"`
}
