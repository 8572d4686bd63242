package rules

import (
	"errors"
	"math"
	"testing"
	"time"

	"fleetsync-backend/internal/models"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestDriverStatus_AcceptsAllStates(t *testing.T) {
	t.Parallel()

	for _, status := range []string{"offline", "available", "on_route", "on_break"} {
		patch, err := DriverStatus(status, testNow)
		if err != nil {
			t.Fatalf("status %q: unexpected error: %v", status, err)
		}
		if patch.Status == nil || string(*patch.Status) != status {
			t.Errorf("status %q: patch status = %v", status, patch.Status)
		}
		if patch.LastSeen == nil || !patch.LastSeen.Equal(testNow) {
			t.Errorf("status %q: last_seen not stamped", status)
		}
	}
}

func TestDriverStatus_RejectsUnknown(t *testing.T) {
	t.Parallel()

	for _, status := range []string{"", "busy", "AVAILABLE", "on route"} {
		_, err := DriverStatus(status, testNow)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("status %q: expected ErrInvalidStatus, got %v", status, err)
		}
	}
}

func TestLogin_ForcesAvailable(t *testing.T) {
	t.Parallel()

	patch := Login(testNow)
	if patch.Status == nil || *patch.Status != models.DriverStatusAvailable {
		t.Fatalf("expected available, got %v", patch.Status)
	}
	if patch.LastSeen == nil || !patch.LastSeen.Equal(testNow) {
		t.Fatal("expected last_seen to be stamped")
	}
}

func TestDeliveryStatus_CompletedAt(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status    string
		wantSet   bool
		wantClear bool
	}{
		{status: "completed", wantSet: true},
		{status: "failed", wantSet: true},
		{status: "pending", wantClear: true},
		{status: "in_progress", wantClear: true},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			patch, err := DeliveryStatus(tc.status, nil, testNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantSet && (patch.CompletedAt == nil || !patch.CompletedAt.Equal(testNow)) {
				t.Errorf("expected completed_at = now, got %v", patch.CompletedAt)
			}
			if patch.ClearCompletedAt != tc.wantClear {
				t.Errorf("ClearCompletedAt = %v, want %v", patch.ClearCompletedAt, tc.wantClear)
			}
		})
	}
}

func TestDeliveryStatus_RoundTripClearsTimestamp(t *testing.T) {
	t.Parallel()

	d := models.Delivery{ID: "del-1", Status: models.DeliveryStatusPending}

	done, err := DeliveryStatus("completed", nil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d = done.Apply(d)
	if d.CompletedAt == nil {
		t.Fatal("expected completed_at after completing")
	}

	reopen, err := DeliveryStatus("in_progress", nil, testNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d = reopen.Apply(d)
	if d.CompletedAt != nil {
		t.Fatalf("expected completed_at cleared after reopening, got %v", d.CompletedAt)
	}
}

func TestDeliveryStatus_Notes(t *testing.T) {
	t.Parallel()

	previous := "leave at the door"
	d := models.Delivery{ID: "del-1", Status: models.DeliveryStatusInProgress, Notes: &previous}

	empty := ""
	for _, notes := range []*string{nil, &empty} {
		patch, err := DeliveryStatus("failed", notes, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := patch.Apply(d)
		if got.Notes == nil || *got.Notes != previous {
			t.Errorf("expected notes to stay %q, got %v", previous, got.Notes)
		}
	}

	replacement := "customer absent"
	patch, err := DeliveryStatus("failed", &replacement, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := patch.Apply(d); got.Notes == nil || *got.Notes != replacement {
		t.Errorf("expected notes %q, got %v", replacement, got.Notes)
	}
}

func TestDeliveryStatus_RejectsUnknown(t *testing.T) {
	t.Parallel()

	_, err := DeliveryStatus("cancelled", nil, testNow)
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestLocation_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{name: "cairo", lat: 30.10, lng: 31.30},
		{name: "north pole", lat: 90, lng: 0},
		{name: "antimeridian", lat: 0, lng: -180},
		{name: "latitude too high", lat: 91, lng: 31.30, wantErr: true},
		{name: "latitude too low", lat: -90.5, lng: 31.30, wantErr: true},
		{name: "longitude too low", lat: 30.10, lng: -200, wantErr: true},
		{name: "longitude too high", lat: 30.10, lng: 180.01, wantErr: true},
		{name: "nan", lat: math.NaN(), lng: 31.30, wantErr: true},
		{name: "infinite", lat: 30.10, lng: math.Inf(1), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Location(models.LocationReport{Lat: tc.lat, Lng: tc.lng}, testNow)
			if tc.wantErr && !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("expected ErrInvalidCoordinates, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLocation_DefaultsSpeedAndHeading(t *testing.T) {
	t.Parallel()

	patch, resolved, err := Location(models.LocationReport{Lat: 30.10, Lng: 31.30}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *resolved.Speed != 0 || *resolved.Heading != 0 {
		t.Errorf("expected speed/heading 0, got %v/%v", *resolved.Speed, *resolved.Heading)
	}
	if *patch.CurrentLat != 30.10 || *patch.CurrentLng != 31.30 {
		t.Errorf("unexpected position %v,%v", *patch.CurrentLat, *patch.CurrentLng)
	}
	if patch.LastSeen == nil || !patch.LastSeen.Equal(testNow) {
		t.Error("expected last_seen to be stamped")
	}

	speed, heading := 42.5, 270.0
	_, resolved, err = Location(models.LocationReport{Lat: 30.10, Lng: 31.30, Speed: &speed, Heading: &heading}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *resolved.Speed != speed || *resolved.Heading != heading {
		t.Errorf("expected %v/%v, got %v/%v", speed, heading, *resolved.Speed, *resolved.Heading)
	}
}
