package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"fleetsync-backend/internal/models"
	"fleetsync-backend/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const SessionContextKey contextKey = "session"

// SessionTTL is how long a login session token stays valid
const SessionTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims identifies the driver a connection acts for
type SessionClaims struct {
	DriverID string `json:"driver_id"`
	Email    string `json:"email"`
}

// IssueSessionToken signs an HS256 token for a driver that just logged in.
func IssueSessionToken(secret string, driver models.Driver, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"driver_id": driver.ID,
		"email":     driver.Email,
		"iat":       now.Unix(),
		"exp":       now.Add(SessionTTL).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates a token issued by IssueSessionToken.
func ParseSessionToken(secret, tokenString string) (SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return SessionClaims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	driverID, _ := claims["driver_id"].(string)
	email, _ := claims["email"].(string)
	if driverID == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	return SessionClaims{DriverID: driverID, Email: email}, nil
}

// Session attaches the bearer token's claims to the request context when one
// is present. Requests without a token pass through anonymously; a token that
// does not verify is rejected with 401.
func Session(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Printf("❌ Invalid authorization header format (parts: %d)", len(parts))
				utils.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := ParseSessionToken(secret, parts[1])
			if err != nil {
				log.Printf("❌ Invalid session token: %v", err)
				utils.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext extracts session claims from request context
func GetSessionFromContext(r *http.Request) (SessionClaims, bool) {
	claims, ok := r.Context().Value(SessionContextKey).(SessionClaims)
	return claims, ok
}
