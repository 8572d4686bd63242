package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"fleetsync-backend/internal/database"
	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/rules"

	"github.com/google/uuid"
)

var (
	ErrMissingEmail = errors.New("email is required")
	ErrUnauthorized = errors.New("driver not found")
	ErrMissingToken = errors.New("token is required")
)

// notifyTimeout bounds a single push notification attempt
const notifyTimeout = 10 * time.Second

// Broadcaster fans events out to an audience of real-time subscribers
type Broadcaster interface {
	Publish(audience, event string, payload interface{})
}

// Notifier pushes driver-directed notifications to a device
type Notifier interface {
	NotifyDeliveryAssigned(ctx context.Context, token string, delivery models.Delivery) error
}

// Fleet is the ingress pipeline shared by REST handlers and WebSocket
// clients: validate with rules, apply to the store, then broadcast.
// Broadcasts only follow a successful store mutation.
type Fleet struct {
	store    *database.Store
	hub      Broadcaster
	notifier Notifier
}

// NewFleet wires the pipeline. notifier may be nil.
func NewFleet(store *database.Store, hub Broadcaster, notifier Notifier) *Fleet {
	return &Fleet{store: store, hub: hub, notifier: notifier}
}

func (f *Fleet) Drivers() []models.Driver {
	return f.store.ListDrivers()
}

func (f *Fleet) Driver(id string) (models.Driver, error) {
	return f.store.GetDriver(id)
}

func (f *Fleet) Locations(driverID string, limit int) []models.LocationSample {
	return f.store.ListLocationsForDriver(driverID, limit)
}

func (f *Fleet) Deliveries(filter database.DeliveryFilter) []models.Delivery {
	return f.store.FindDeliveries(filter)
}

func (f *Fleet) Delivery(id string) (models.Delivery, error) {
	return f.store.GetDelivery(id)
}

func (f *Fleet) DriverDeliveries(driverID string) []models.Delivery {
	return f.store.ListDeliveriesForDriver(driverID)
}

// ReportLocation moves a driver and appends the fix to the history log.
//
// The driver update and the history append are separate store operations, so
// a concurrent reader may see the new position before the sample exists.
func (f *Fleet) ReportLocation(driverID string, report models.LocationReport) (models.LocationSample, error) {
	now := f.store.Now()
	patch, resolved, err := rules.Location(report, now)
	if err != nil {
		return models.LocationSample{}, err
	}

	if _, err := f.store.UpdateDriver(driverID, patch); err != nil {
		return models.LocationSample{}, err
	}
	sample := f.store.AppendLocation(driverID, resolved.Lat, resolved.Lng, *resolved.Speed, *resolved.Heading)

	f.publishDrivers()
	f.hub.Publish(models.AudienceDashboard, models.EventDriverLocationUpdate, models.LocationDelta{
		DriverID:  driverID,
		Lat:       sample.Lat,
		Lng:       sample.Lng,
		Speed:     sample.Speed,
		Heading:   sample.Heading,
		Timestamp: now,
	})
	return sample, nil
}

// ChangeDriverStatus applies a driver status change and broadcasts the fleet.
func (f *Fleet) ChangeDriverStatus(driverID, status string) (models.Driver, error) {
	patch, err := rules.DriverStatus(status, f.store.Now())
	if err != nil {
		return models.Driver{}, err
	}

	driver, err := f.store.UpdateDriver(driverID, patch)
	if err != nil {
		return models.Driver{}, err
	}

	log.Printf("🚦 Driver %s is now %s", driverID, driver.Status)
	f.publishDrivers()
	return driver, nil
}

// Login identifies a driver by email and marks it available.
func (f *Fleet) Login(email string) (models.Driver, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.Driver{}, ErrMissingEmail
	}

	driver, err := f.store.GetDriverByEmail(email)
	if err != nil {
		return models.Driver{}, ErrUnauthorized
	}

	driver, err = f.store.UpdateDriver(driver.ID, rules.Login(f.store.Now()))
	if err != nil {
		return models.Driver{}, ErrUnauthorized
	}

	log.Printf("✅ Login successful: %s (%s)", driver.Email, driver.ID)
	f.publishDrivers()
	return driver, nil
}

// RegisterPushToken stores the device token push notifications are sent to.
func (f *Fleet) RegisterPushToken(driverID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}
	_, err := f.store.UpdateDriver(driverID, models.DriverPatch{PushToken: &token})
	return err
}

// UpdateDeliveryStatus applies a delivery status change and broadcasts the record.
func (f *Fleet) UpdateDeliveryStatus(deliveryID, status string, notes *string) (models.Delivery, error) {
	patch, err := rules.DeliveryStatus(status, notes, f.store.Now())
	if err != nil {
		return models.Delivery{}, err
	}

	delivery, err := f.store.UpdateDelivery(deliveryID, patch)
	if err != nil {
		return models.Delivery{}, err
	}

	log.Printf("📦 Delivery %s is now %s", delivery.ID, delivery.Status)
	f.hub.Publish(models.AudienceDashboard, models.EventDeliveryUpdated, delivery)
	return delivery, nil
}

// CreateDelivery stores a new pending delivery and tells its driver about it.
// The driver reference is not enforced; an unknown driver is only logged.
func (f *Fleet) CreateDelivery(req models.NewDelivery) models.Delivery {
	notes := req.Notes
	if notes != nil && *notes == "" {
		notes = nil
	}

	delivery := f.store.CreateDelivery(models.Delivery{
		ID:           uuid.New().String(),
		DriverID:     req.DriverID,
		CustomerName: req.CustomerName,
		Address:      req.Address,
		Lat:          req.Lat,
		Lng:          req.Lng,
		Status:       models.DeliveryStatusPending,
		Notes:        notes,
	})
	log.Printf("📦 Delivery %s created for driver %q", delivery.ID, delivery.DriverID)

	f.hub.Publish(models.AudienceDashboard, models.EventDeliveryCreated, delivery)
	if delivery.DriverID == "" {
		return delivery
	}

	driver, err := f.store.GetDriver(delivery.DriverID)
	if err != nil {
		log.Printf("⚠️ Delivery %s references unknown driver %s", delivery.ID, delivery.DriverID)
		return delivery
	}

	f.hub.Publish(models.DriverAudience(driver.ID), models.EventDeliveryAssigned, delivery)
	if f.notifier != nil && driver.PushToken != "" {
		go f.notify(driver.PushToken, delivery)
	}
	return delivery
}

func (f *Fleet) notify(token string, delivery models.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := f.notifier.NotifyDeliveryAssigned(ctx, token, delivery); err != nil {
		log.Printf("⚠️ Push notification for delivery %s failed: %v", delivery.ID, err)
	}
}

func (f *Fleet) publishDrivers() {
	f.hub.Publish(models.AudienceDashboard, models.EventDriversUpdate, f.store.ListDrivers())
}

func (f *Fleet) Stats() database.Stats {
	return f.store.Stats()
}
