// Package rules decides whether a requested driver or delivery change is
// legal and computes the fields it implies. Nothing here touches the store.
package rules

import (
	"errors"
	"math"
	"strings"
	"time"

	"fleetsync-backend/internal/models"
)

var (
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// DriverStatus accepts any of the four driver states from any prior state and
// stamps last_seen.
func DriverStatus(status string, now time.Time) (models.DriverPatch, error) {
	s := models.DriverStatus(status)
	if !s.Valid() {
		return models.DriverPatch{}, ErrInvalidStatus
	}
	return models.DriverPatch{Status: &s, LastSeen: &now}, nil
}

// Login marks a driver available, as if it had just come on shift.
func Login(now time.Time) models.DriverPatch {
	s := models.DriverStatusAvailable
	return models.DriverPatch{Status: &s, LastSeen: &now}
}

// DeliveryStatus accepts any of the four delivery states from any prior state.
// Terminal states stamp completed_at; pending and in_progress clear it.
// Empty or absent notes leave the stored notes untouched.
func DeliveryStatus(status string, notes *string, now time.Time) (models.DeliveryPatch, error) {
	s := models.DeliveryStatus(status)
	if !s.Valid() {
		return models.DeliveryPatch{}, ErrInvalidStatus
	}

	patch := models.DeliveryPatch{Status: &s}
	if s.Terminal() {
		patch.CompletedAt = &now
	} else {
		patch.ClearCompletedAt = true
	}
	if notes != nil && strings.TrimSpace(*notes) != "" {
		n := *notes
		patch.Notes = &n
	}
	return patch, nil
}

// Location validates a position report and returns the driver patch that
// moves the driver there, along with the report with speed and heading
// defaulted to 0.
func Location(report models.LocationReport, now time.Time) (models.DriverPatch, models.LocationReport, error) {
	if !ValidCoordinates(report.Lat, report.Lng) {
		return models.DriverPatch{}, report, ErrInvalidCoordinates
	}

	speed, heading := 0.0, 0.0
	if report.Speed != nil && !math.IsNaN(*report.Speed) {
		speed = *report.Speed
	}
	if report.Heading != nil && !math.IsNaN(*report.Heading) {
		heading = *report.Heading
	}

	lat, lng := report.Lat, report.Lng
	resolved := models.LocationReport{Lat: lat, Lng: lng, Speed: &speed, Heading: &heading}
	patch := models.DriverPatch{
		CurrentLat: &lat,
		CurrentLng: &lng,
		Speed:      &speed,
		Heading:    &heading,
		LastSeen:   &now,
	}
	return patch, resolved, nil
}

// ValidCoordinates reports whether lat is within [-90, 90] and lng within [-180, 180].
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
