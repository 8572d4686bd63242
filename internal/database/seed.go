package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"fleetsync-backend/internal/models"

	"gopkg.in/yaml.v3"
)

// Roster is the provisioning data a store starts from
type Roster struct {
	Drivers    []models.Driver   `yaml:"drivers"`
	Deliveries []models.Delivery `yaml:"deliveries"`
}

// LoadRosterFile reads a YAML roster such as:
//
//	drivers:
//	  - id: driver-1
//	    name: Ahmed Hassan
//	    email: ahmed@fleet.com
//	    status: available
//	deliveries:
//	  - id: del-1
//	    driver_id: driver-1
//	    customer_name: Home Delivery
//	    address: Maadi, Cairo
func LoadRosterFile(path string) (Roster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("failed to read roster file: %w", err)
	}

	var roster Roster
	if err := yaml.Unmarshal(raw, &roster); err != nil {
		return Roster{}, fmt.Errorf("failed to parse roster file %s: %w", path, err)
	}
	if err := roster.Validate(); err != nil {
		return Roster{}, fmt.Errorf("invalid roster file %s: %w", path, err)
	}
	return roster, nil
}

// Validate checks that every driver has an id, an email and a known status,
// and that every delivery has an id and a known status.
func (r Roster) Validate() error {
	for i, d := range r.Drivers {
		if d.ID == "" || d.Email == "" {
			return fmt.Errorf("driver #%d: id and email are required", i+1)
		}
		if d.Status != "" && !d.Status.Valid() {
			return fmt.Errorf("driver %s: unknown status %q", d.ID, d.Status)
		}
	}
	for i, d := range r.Deliveries {
		if d.ID == "" {
			return fmt.Errorf("delivery #%d: id is required", i+1)
		}
		if d.Status != "" && !d.Status.Valid() {
			return fmt.Errorf("delivery %s: unknown status %q", d.ID, d.Status)
		}
	}
	return nil
}

// Seed loads the roster into an empty store. Duplicate drivers are skipped.
func Seed(store *Store, roster Roster) error {
	log.Printf("🌱 Seeding %d drivers and %d deliveries...", len(roster.Drivers), len(roster.Deliveries))

	for _, d := range roster.Drivers {
		if err := store.AddDriver(d); err != nil {
			if errors.Is(err, ErrDuplicateDriver) {
				log.Printf("⚠️  Skipping duplicate driver %s (%s)", d.ID, d.Email)
				continue
			}
			return err
		}
	}

	for _, d := range roster.Deliveries {
		if d.Status == "" {
			d.Status = models.DeliveryStatusPending
		}
		if d.Status.Terminal() && d.CompletedAt == nil {
			now := store.Now()
			d.CompletedAt = &now
		}
		if !d.Status.Terminal() {
			d.CompletedAt = nil
		}
		store.CreateDelivery(d)
	}

	log.Println("✓ Store seeded")
	return nil
}

// DemoRoster is the built-in data set used when no roster is configured
func DemoRoster(now time.Time) Roster {
	point := func(v float64) *float64 { return &v }

	return Roster{
		Drivers: []models.Driver{
			{ID: "driver-1", Name: "Ahmed Hassan", Email: "ahmed@fleet.com", Phone: "+20 100 123 4567", Status: models.DriverStatusAvailable, CurrentLat: point(30.0444), CurrentLng: point(31.2357), LastSeen: &now, CreatedAt: now},
			{ID: "driver-2", Name: "Mohamed Ali", Email: "mohamed@fleet.com", Phone: "+20 100 234 5678", Status: models.DriverStatusOnRoute, CurrentLat: point(30.0626), CurrentLng: point(31.2497), LastSeen: &now, CreatedAt: now},
			{ID: "driver-3", Name: "Sara Ibrahim", Email: "sara@fleet.com", Phone: "+20 100 345 6789", Status: models.DriverStatusOffline, CurrentLat: point(30.0331), CurrentLng: point(31.2336), CreatedAt: now},
		},
		Deliveries: []models.Delivery{
			{ID: "del-1", DriverID: "driver-2", CustomerName: "Carrefour Mall", Address: "City Stars, Nasr City, Cairo", Lat: point(30.0729), Lng: point(31.3454), Status: models.DeliveryStatusInProgress},
			{ID: "del-2", DriverID: "driver-2", CustomerName: "Tech Store", Address: "Mall of Arabia, 6th October", Lat: point(29.9726), Lng: point(30.9425), Status: models.DeliveryStatusPending},
			{ID: "del-3", DriverID: "driver-1", CustomerName: "Home Delivery", Address: "Maadi, Cairo", Lat: point(29.9602), Lng: point(31.2569), Status: models.DeliveryStatusPending},
		},
	}
}
