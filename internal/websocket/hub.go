package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"fleetsync-backend/internal/models"
)

// Subscriber is one connection that can receive hub messages.
// Deliver must not block; it reports false when the message was dropped.
type Subscriber interface {
	ID() string
	Deliver(message []byte) bool
}

// SnapshotSource provides the full driver list sent to new dashboards
type SnapshotSource interface {
	ListDrivers() []models.Driver
}

// Envelope is the wire format of every real-time message
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub maintains audiences of subscribers and fans out events to them
type Hub struct {
	// Audience name -> subscribers
	audiences map[string]map[Subscriber]struct{}

	// Subscriber -> audiences it joined, for UnsubscribeAll
	memberships map[Subscriber]map[string]struct{}

	snapshots SnapshotSource

	// Mutex for thread-safe registry access
	mu sync.RWMutex
}

// NewHub creates a new Hub reading dashboard snapshots from source
func NewHub(source SnapshotSource) *Hub {
	return &Hub{
		audiences:   make(map[string]map[Subscriber]struct{}),
		memberships: make(map[Subscriber]map[string]struct{}),
		snapshots:   source,
	}
}

// Subscribe adds sub to audience. Subscribing twice is harmless.
func (h *Hub) Subscribe(audience string, sub Subscriber) {
	h.mu.Lock()
	members, ok := h.audiences[audience]
	if !ok {
		members = make(map[Subscriber]struct{})
		h.audiences[audience] = members
	}
	members[sub] = struct{}{}

	joined, ok := h.memberships[sub]
	if !ok {
		joined = make(map[string]struct{})
		h.memberships[sub] = joined
	}
	joined[audience] = struct{}{}
	size := len(members)
	h.mu.Unlock()

	log.Printf("✅ [HUB] %s joined %s (%d subscribers)", sub.ID(), audience, size)
}

// Unsubscribe removes sub from audience.
func (h *Hub) Unsubscribe(audience string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(audience, sub)
}

// UnsubscribeAll removes sub from every audience it joined.
func (h *Hub) UnsubscribeAll(sub Subscriber) {
	h.mu.Lock()
	joined := h.memberships[sub]
	for audience := range joined {
		h.removeLocked(audience, sub)
	}
	h.mu.Unlock()

	if len(joined) > 0 {
		log.Printf("🔴 [HUB] %s left %d audiences", sub.ID(), len(joined))
	}
}

func (h *Hub) removeLocked(audience string, sub Subscriber) {
	if members, ok := h.audiences[audience]; ok {
		delete(members, sub)
		if len(members) == 0 {
			delete(h.audiences, audience)
		}
	}
	if joined, ok := h.memberships[sub]; ok {
		delete(joined, audience)
		if len(joined) == 0 {
			delete(h.memberships, sub)
		}
	}
}

// JoinDashboard subscribes sub to the dashboard audience and sends it, and
// only it, the current driver snapshot.
func (h *Hub) JoinDashboard(sub Subscriber) {
	h.Subscribe(models.AudienceDashboard, sub)
	h.Send(sub, models.EventDriversUpdate, h.snapshots.ListDrivers())
}

// Publish sends an event to every subscriber of audience. Subscribers that
// cannot take the message right now miss it; nothing is retried.
func (h *Hub) Publish(audience, event string, payload interface{}) {
	h.mu.RLock()
	members := make([]Subscriber, 0, len(h.audiences[audience]))
	for sub := range h.audiences[audience] {
		members = append(members, sub)
	}
	h.mu.RUnlock()

	if len(members) == 0 {
		return
	}

	data, err := json.Marshal(Envelope{Type: event, Data: payload})
	if err != nil {
		log.Printf("❌ Failed to marshal %s broadcast: %v", event, err)
		return
	}

	for _, sub := range members {
		if !sub.Deliver(data) {
			log.Printf("⚠️ Subscriber %s buffer full, dropped %s", sub.ID(), event)
		}
	}
}

// Send delivers an event to a single subscriber.
func (h *Hub) Send(sub Subscriber, event string, payload interface{}) {
	data, err := json.Marshal(Envelope{Type: event, Data: payload})
	if err != nil {
		log.Printf("❌ Failed to marshal %s message: %v", event, err)
		return
	}
	if !sub.Deliver(data) {
		log.Printf("⚠️ Subscriber %s buffer full, dropped %s", sub.ID(), event)
	}
}

// AudienceSize returns the number of subscribers in audience
func (h *Hub) AudienceSize(audience string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.audiences[audience])
}

// SubscriberCount returns the number of subscribers in at least one audience
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.memberships)
}
