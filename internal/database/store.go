package database

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"fleetsync-backend/internal/models"
)

// DefaultHistoryLimit bounds the location log across all drivers combined
const DefaultHistoryLimit = 1000

// DefaultLocationQueryLimit is used when a history query asks for no limit
const DefaultLocationQueryLimit = 100

var (
	ErrDriverNotFound   = errors.New("driver not found")
	ErrDeliveryNotFound = errors.New("delivery not found")
	ErrDuplicateDriver  = errors.New("driver already exists")
)

// Store is the authoritative in-memory fleet state. Every method runs inside
// one critical section, so callers never observe a half-applied update.
// Records are returned by value.
type Store struct {
	mu sync.RWMutex

	drivers     map[string]models.Driver
	driverOrder []string

	deliveries    map[string]models.Delivery
	deliveryOrder []string

	locations    []models.LocationSample
	nextSampleID int64
	historyLimit int

	now func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now for timestamps assigned by the store.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithHistoryLimit changes the global location history bound.
func WithHistoryLimit(limit int) Option {
	return func(s *Store) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// NewStore creates an empty store. State lives for the lifetime of the process.
func NewStore(opts ...Option) *Store {
	s := &Store{
		drivers:      make(map[string]models.Driver),
		deliveries:   make(map[string]models.Delivery),
		nextSampleID: 1,
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.now().UTC()
}

// AddDriver provisions a driver. Only used while seeding.
func (s *Store) AddDriver(d models.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drivers[d.ID]; ok {
		return ErrDuplicateDriver
	}
	for _, existing := range s.drivers {
		if strings.EqualFold(existing.Email, d.Email) {
			return ErrDuplicateDriver
		}
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.Now()
	}
	if d.Status == "" {
		d.Status = models.DriverStatusOffline
	}

	s.drivers[d.ID] = d
	s.driverOrder = append(s.driverOrder, d.ID)
	return nil
}

func (s *Store) GetDriver(id string) (models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drivers[id]
	if !ok {
		return models.Driver{}, ErrDriverNotFound
	}
	return d, nil
}

// GetDriverByEmail matches the stored email case-insensitively.
func (s *Store) GetDriverByEmail(email string) (models.Driver, error) {
	email = strings.TrimSpace(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.driverOrder {
		if d := s.drivers[id]; strings.EqualFold(d.Email, email) {
			return d, nil
		}
	}
	return models.Driver{}, ErrDriverNotFound
}

// ListDrivers returns all drivers in insertion order.
func (s *Store) ListDrivers() []models.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drivers := make([]models.Driver, 0, len(s.driverOrder))
	for _, id := range s.driverOrder {
		drivers = append(drivers, s.drivers[id])
	}
	return drivers
}

// UpdateDriver merges the supplied fields into an existing driver.
func (s *Store) UpdateDriver(id string, patch models.DriverPatch) (models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drivers[id]
	if !ok {
		return models.Driver{}, ErrDriverNotFound
	}
	d = patch.Apply(d)
	s.drivers[id] = d
	return d, nil
}

// CreateDelivery stores d with created_at set to now. The caller supplies id and status.
func (s *Store) CreateDelivery(d models.Delivery) models.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.CreatedAt = s.Now()
	if _, exists := s.deliveries[d.ID]; !exists {
		s.deliveryOrder = append(s.deliveryOrder, d.ID)
	}
	s.deliveries[d.ID] = d
	return d
}

func (s *Store) GetDelivery(id string) (models.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deliveries[id]
	if !ok {
		return models.Delivery{}, ErrDeliveryNotFound
	}
	return d, nil
}

// UpdateDelivery merges the supplied fields into an existing delivery.
func (s *Store) UpdateDelivery(id string, patch models.DeliveryPatch) (models.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deliveries[id]
	if !ok {
		return models.Delivery{}, ErrDeliveryNotFound
	}
	d = patch.Apply(d)
	s.deliveries[id] = d
	return d, nil
}

// ListDeliveries returns all deliveries in insertion order.
func (s *Store) ListDeliveries() []models.Delivery {
	return s.FindDeliveries(DeliveryFilter{})
}

// DeliveryFilter narrows FindDeliveries. Empty fields match everything.
type DeliveryFilter struct {
	DriverID string
	Status   models.DeliveryStatus
}

func (f DeliveryFilter) matches(d models.Delivery) bool {
	if f.DriverID != "" && d.DriverID != f.DriverID {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	return true
}

// FindDeliveries returns the deliveries matching f in insertion order.
func (s *Store) FindDeliveries(f DeliveryFilter) []models.Delivery {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deliveries := make([]models.Delivery, 0, len(s.deliveryOrder))
	for _, id := range s.deliveryOrder {
		if d := s.deliveries[id]; f.matches(d) {
			deliveries = append(deliveries, d)
		}
	}
	return deliveries
}

// ListDeliveriesForDriver returns a driver's work list: in_progress, pending,
// completed, failed, then anything else. Insertion order is kept within a status.
func (s *Store) ListDeliveriesForDriver(driverID string) []models.Delivery {
	deliveries := s.FindDeliveries(DeliveryFilter{DriverID: driverID})
	sort.SliceStable(deliveries, func(i, j int) bool {
		return deliveries[i].Status.Priority() < deliveries[j].Status.Priority()
	})
	return deliveries
}

// AppendLocation records a sample and evicts the oldest samples, across all
// drivers, until the log fits the history limit.
func (s *Store) AppendLocation(driverID string, lat, lng, speed, heading float64) models.LocationSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample := models.LocationSample{
		ID:         s.nextSampleID,
		DriverID:   driverID,
		Lat:        lat,
		Lng:        lng,
		Speed:      speed,
		Heading:    heading,
		RecordedAt: s.Now(),
	}
	s.nextSampleID++
	s.locations = append(s.locations, sample)

	if over := len(s.locations) - s.historyLimit; over > 0 {
		// Copy so the evicted prefix can be collected.
		kept := make([]models.LocationSample, s.historyLimit, s.historyLimit+1)
		copy(kept, s.locations[over:])
		s.locations = kept
	}
	return sample
}

// ListLocationsForDriver returns the driver's most recent samples, newest first.
func (s *Store) ListLocationsForDriver(driverID string, limit int) []models.LocationSample {
	if limit <= 0 {
		limit = DefaultLocationQueryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	samples := make([]models.LocationSample, 0)
	for i := len(s.locations) - 1; i >= 0 && len(samples) < limit; i-- {
		if s.locations[i].DriverID == driverID {
			samples = append(samples, s.locations[i])
		}
	}
	return samples
}

// Stats is a point-in-time count of the store's collections
type Stats struct {
	Drivers    int `json:"drivers"`
	Deliveries int `json:"deliveries"`
	Locations  int `json:"locations"`
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Drivers:    len(s.drivers),
		Deliveries: len(s.deliveries),
		Locations:  len(s.locations),
	}
}
