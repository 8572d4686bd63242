package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetsync-backend/internal/models"
)

const testSecret = "test-secret"

var testDriver = models.Driver{ID: "driver-1", Email: "ahmed@fleet.com"}

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Parallel()

	token, err := IssueSessionToken(testSecret, testDriver, time.Now())
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	claims, err := ParseSessionToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseSessionToken() error = %v", err)
	}
	if claims.DriverID != "driver-1" || claims.Email != "ahmed@fleet.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseSessionToken_Rejects(t *testing.T) {
	t.Parallel()

	valid, err := IssueSessionToken(testSecret, testDriver, time.Now())
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}
	expired, err := IssueSessionToken(testSecret, testDriver, time.Now().Add(-2*SessionTTL))
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}
	anonymous, err := IssueSessionToken(testSecret, models.Driver{}, time.Now())
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other-secret", valid},
		{"expired", testSecret, expired},
		{"no driver", testSecret, anonymous},
		{"garbage", testSecret, "not.a.token"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseSessionToken(tt.secret, tt.token); err != ErrInvalidToken {
				t.Errorf("ParseSessionToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestSession_Middleware(t *testing.T) {
	t.Parallel()

	token, err := IssueSessionToken(testSecret, testDriver, time.Now())
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
		wantDriver string
	}{
		{"anonymous", testSecret, "", http.StatusOK, ""},
		{"valid token", testSecret, "Bearer " + token, http.StatusOK, "driver-1"},
		{"malformed header", testSecret, token, http.StatusUnauthorized, ""},
		{"invalid token", testSecret, "Bearer nope", http.StatusUnauthorized, ""},
		{"no secret configured", "", "Bearer " + token, http.StatusOK, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotDriver string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if claims, ok := GetSessionFromContext(r); ok {
					gotDriver = claims.DriverID
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Session(tt.secret)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotDriver != tt.wantDriver {
				t.Errorf("session driver = %q, want %q", gotDriver, tt.wantDriver)
			}
		})
	}
}
