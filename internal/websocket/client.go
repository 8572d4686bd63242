package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/rules"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 2048

	// Outbound frames buffered per connection before messages are dropped
	sendBuffer = 256
)

// Ingress is the fleet pipeline real-time messages are fed into
type Ingress interface {
	ReportLocation(driverID string, report models.LocationReport) (models.LocationSample, error)
	ChangeDriverStatus(driverID, status string) (models.Driver, error)
	UpdateDeliveryStatus(deliveryID, status string, notes *string) (models.Delivery, error)
}

// Client represents a WebSocket client connection
type Client struct {
	id string

	// Driver bound by a session token, empty for anonymous connections
	DriverID string

	conn    *websocket.Conn
	hub     *Hub
	ingress Ingress

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type locationMessage struct {
	DriverID string   `json:"driverId"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Speed    *float64 `json:"speed"`
	Heading  *float64 `json:"heading"`
}

type statusMessage struct {
	DriverID string `json:"driverId"`
	Status   string `json:"status"`
}

type deliveryMessage struct {
	DeliveryID string  `json:"deliveryId"`
	Status     string  `json:"status"`
	Notes      *string `json:"notes"`
}

var errMissingDriver = errors.New("driverId is required")

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *Hub, ingress Ingress) *Client {
	return &Client{
		id:      uuid.New().String(),
		conn:    conn,
		hub:     hub,
		ingress: ingress,
		send:    make(chan []byte, sendBuffer),
	}
}

// ID returns the connection id
func (c *Client) ID() string {
	return c.id
}

// Deliver queues a frame for the write pump without blocking.
func (c *Client) Deliver(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump pumps messages from the WebSocket connection into the fleet pipeline
func (c *Client) ReadPump() {
	defer func() {
		c.hub.UnsubscribeAll(c)
		c.closeSend()
		c.conn.Close()
		log.Printf("🔴 [WEBSOCKET] Client %s disconnected", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Invalid message format: %v", err)
			c.reject("", "invalid message format")
			continue
		}

		c.handle(msg)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Read side closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON envelope per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handle(msg IncomingMessage) {
	switch msg.Type {
	case models.EventPing:
		c.hub.Send(c, models.EventPong, map[string]string{"timestamp": time.Now().UTC().Format(time.RFC3339)})

	case models.EventDashboardJoin:
		c.hub.JoinDashboard(c)

	case models.EventDriverJoin:
		driverID := c.driverFromJoin(msg.Data)
		if driverID == "" {
			c.reject(msg.Type, errMissingDriver.Error())
			return
		}
		c.hub.Subscribe(models.DriverAudience(driverID), c)

	case models.EventDriverLocation:
		c.handleLocation(msg)

	case models.EventDriverStatus:
		var data statusMessage
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.reject(msg.Type, "invalid payload")
			return
		}
		if _, err := c.ingress.ChangeDriverStatus(c.driverOr(data.DriverID), data.Status); err != nil {
			c.reject(msg.Type, err.Error())
		}

	case models.EventDeliveryUpdate:
		var data deliveryMessage
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.reject(msg.Type, "invalid payload")
			return
		}
		if _, err := c.ingress.UpdateDeliveryStatus(data.DeliveryID, data.Status, data.Notes); err != nil {
			c.reject(msg.Type, err.Error())
		}

	default:
		c.reject(msg.Type, "unknown event")
	}
}

func (c *Client) handleLocation(msg IncomingMessage) {
	var data locationMessage
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.reject(msg.Type, "invalid payload")
		return
	}
	if data.Lat == nil || data.Lng == nil {
		c.reject(msg.Type, rules.ErrInvalidCoordinates.Error())
		return
	}

	report := models.LocationReport{
		Lat:     *data.Lat,
		Lng:     *data.Lng,
		Speed:   data.Speed,
		Heading: data.Heading,
	}
	if _, err := c.ingress.ReportLocation(c.driverOr(data.DriverID), report); err != nil {
		c.reject(msg.Type, err.Error())
	}
}

// driverFromJoin accepts either a bare driver id or {"driverId": "..."}.
func (c *Client) driverFromJoin(raw json.RawMessage) string {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil && id != "" {
		return id
	}
	var data struct {
		DriverID string `json:"driverId"`
	}
	if err := json.Unmarshal(raw, &data); err == nil && data.DriverID != "" {
		return data.DriverID
	}
	return c.DriverID
}

// driverOr falls back to the session-bound driver when a message omits driverId.
func (c *Client) driverOr(driverID string) string {
	if driverID == "" {
		return c.DriverID
	}
	return driverID
}

// reject tells the sender its message had no effect. Nothing is broadcast.
func (c *Client) reject(event, reason string) {
	log.Printf("⚠️ [WEBSOCKET] Dropped %q from %s: %s", event, c.id, reason)
	c.hub.Send(c, models.EventError, models.ErrorEvent{Event: event, Message: reason})
}
