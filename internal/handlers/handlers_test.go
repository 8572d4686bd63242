package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fleetsync-backend/internal/database"
	"fleetsync-backend/internal/middleware"
	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

const testSecret = "test-secret"

type nopHub struct{}

func (nopHub) Publish(audience, event string, payload interface{}) {}
func (nopHub) SubscriberCount() int                                { return 0 }

func newTestServer(t *testing.T) (*httptest.Server, *database.Store) {
	t.Helper()

	store := database.NewStore()
	if err := database.Seed(store, database.DemoRoster(time.Now().UTC())); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	fleet := services.NewFleet(store, nopHub{}, nil)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, fleet, nopHub{}, testSecret)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestHandlers_StatusCodes(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "list drivers", method: "GET", path: "/api/drivers", want: 200},
		{name: "get driver", method: "GET", path: "/api/drivers/driver-1", want: 200},
		{name: "get unknown driver", method: "GET", path: "/api/drivers/nope", want: 404},
		{name: "driver status", method: "PATCH", path: "/api/drivers/driver-1/status", body: `{"status":"on_break"}`, want: 200},
		{name: "driver invalid status", method: "PATCH", path: "/api/drivers/driver-1/status", body: `{"status":"napping"}`, want: 400},
		{name: "driver status unknown id", method: "PATCH", path: "/api/drivers/nope/status", body: `{"status":"available"}`, want: 404},
		{name: "location", method: "POST", path: "/api/drivers/driver-1/location", body: `{"lat":30.1,"lng":31.3}`, want: 200},
		{name: "location lat 91", method: "POST", path: "/api/drivers/driver-1/location", body: `{"lat":91,"lng":31.3}`, want: 400},
		{name: "location lng -200", method: "POST", path: "/api/drivers/driver-1/location", body: `{"lat":30.1,"lng":-200}`, want: 400},
		{name: "location missing lat", method: "POST", path: "/api/drivers/driver-1/location", body: `{"lng":31.3}`, want: 400},
		{name: "location non-numeric", method: "POST", path: "/api/drivers/driver-1/location", body: `{"lat":"north","lng":31.3}`, want: 400},
		{name: "location unknown id", method: "POST", path: "/api/drivers/nope/location", body: `{"lat":30.1,"lng":31.3}`, want: 404},
		{name: "history", method: "GET", path: "/api/drivers/driver-1/locations?limit=5", want: 200},
		{name: "login missing email", method: "POST", path: "/api/drivers/login", body: `{}`, want: 400},
		{name: "login unknown email", method: "POST", path: "/api/drivers/login", body: `{"email":"x@y.z"}`, want: 401},
		{name: "push token", method: "POST", path: "/api/drivers/driver-1/push-token", body: `{"token":"abc"}`, want: 200},
		{name: "push token missing", method: "POST", path: "/api/drivers/driver-1/push-token", body: `{}`, want: 400},
		{name: "list deliveries", method: "GET", path: "/api/deliveries", want: 200},
		{name: "get delivery", method: "GET", path: "/api/deliveries/del-1", want: 200},
		{name: "get unknown delivery", method: "GET", path: "/api/deliveries/nope", want: 404},
		{name: "create delivery", method: "POST", path: "/api/deliveries", body: `{"driver_id":"driver-1","customer_name":"Shop","address":"Giza"}`, want: 201},
		{name: "create malformed", method: "POST", path: "/api/deliveries", body: `{`, want: 400},
		{name: "delivery status", method: "PATCH", path: "/api/deliveries/del-2/status", body: `{"status":"in_progress"}`, want: 200},
		{name: "delivery invalid status", method: "PATCH", path: "/api/deliveries/del-2/status", body: `{"status":"lost"}`, want: 400},
		{name: "delivery unknown id", method: "PATCH", path: "/api/deliveries/nope/status", body: `{"status":"failed"}`, want: 404},
		{name: "driver deliveries", method: "GET", path: "/api/deliveries/driver/driver-2", want: 200},
		{name: "health", method: "GET", path: "/api/health", want: 200},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, srv, tc.method, tc.path, tc.body)
			if resp.StatusCode != tc.want {
				t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %q", ct)
			}
		})
	}
}

func TestHandlers_ErrorBody(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	resp := do(t, srv, "PATCH", "/api/drivers/driver-1/status", `{"status":"napping"}`)
	var body map[string]string
	decode(t, resp, &body)
	if body["error"] != "Invalid status" {
		t.Errorf("expected error message, got %v", body)
	}
}

func TestHandlers_Login(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	resp := do(t, srv, "POST", "/api/drivers/login", `{"email":"AHMED@FLEET.COM"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var driver models.Driver
	decode(t, resp, &driver)
	if driver.ID != "driver-1" || driver.Status != models.DriverStatusAvailable {
		t.Errorf("unexpected driver %+v", driver)
	}

	claims, err := middleware.ParseSessionToken(testSecret, resp.Header.Get("X-Session-Token"))
	if err != nil {
		t.Fatalf("expected a valid session token: %v", err)
	}
	if claims.DriverID != "driver-1" {
		t.Errorf("expected token for driver-1, got %s", claims.DriverID)
	}
}

func TestHandlers_LocationThenDriver(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	resp := do(t, srv, "POST", "/api/drivers/driver-3/location", `{"lat":30.10,"lng":31.30,"speed":35}`)
	var ack map[string]bool
	decode(t, resp, &ack)
	if !ack["success"] {
		t.Fatalf("expected success ack, got %v", ack)
	}

	var driver models.Driver
	decode(t, do(t, srv, "GET", "/api/drivers/driver-3", ""), &driver)
	if driver.CurrentLat == nil || *driver.CurrentLat != 30.10 || *driver.CurrentLng != 31.30 {
		t.Errorf("expected position 30.10,31.30, got %v,%v", driver.CurrentLat, driver.CurrentLng)
	}
	if driver.LastSeen == nil {
		t.Error("expected last_seen to be set")
	}
	if driver.Speed == nil || *driver.Speed != 35 {
		t.Errorf("expected speed 35, got %v", driver.Speed)
	}

	var history []models.LocationSample
	decode(t, do(t, srv, "GET", "/api/drivers/driver-3/locations", ""), &history)
	if len(history) != 1 || history[0].Lat != 30.10 {
		t.Errorf("unexpected history %+v", history)
	}
}

func TestHandlers_CreateDelivery_IgnoresStatus(t *testing.T) {
	t.Parallel()
	srv, store := newTestServer(t)

	resp := do(t, srv, "POST", "/api/deliveries", `{"driver_id":"driver-1","customer_name":"Shop","address":"Giza","status":"completed"}`)
	var delivery models.Delivery
	decode(t, resp, &delivery)

	if delivery.Status != models.DeliveryStatusPending || delivery.CompletedAt != nil {
		t.Errorf("expected a pending delivery, got %+v", delivery)
	}
	if _, err := store.GetDelivery(delivery.ID); err != nil {
		t.Errorf("expected delivery to be stored: %v", err)
	}
}

func TestHandlers_DeliveryFilters(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	var deliveries []models.Delivery
	decode(t, do(t, srv, "GET", "/api/deliveries?driver_id=driver-2&status=pending", ""), &deliveries)
	if len(deliveries) != 1 || deliveries[0].ID != "del-2" {
		t.Errorf("expected only del-2, got %+v", deliveries)
	}

	decode(t, do(t, srv, "GET", "/api/deliveries/driver/driver-2", ""), &deliveries)
	if len(deliveries) != 2 || deliveries[0].Status != models.DeliveryStatusInProgress {
		t.Errorf("expected in_progress first, got %+v", deliveries)
	}
}

func TestHandlers_DeliveryStatus_NotesMerge(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	do(t, srv, "PATCH", "/api/deliveries/del-3/status", `{"status":"in_progress","notes":"ring twice"}`)

	var delivery models.Delivery
	decode(t, do(t, srv, "PATCH", "/api/deliveries/del-3/status", `{"status":"failed"}`), &delivery)
	if delivery.Notes == nil || *delivery.Notes != "ring twice" {
		t.Errorf("expected notes to survive, got %v", delivery.Notes)
	}
	if delivery.CompletedAt == nil {
		t.Error("expected completed_at for a failed delivery")
	}
}
