package websocket

import (
	"log"
	"net/http"

	"fleetsync-backend/internal/middleware"
	"fleetsync-backend/internal/models"

	"github.com/gorilla/websocket"
)

// NewUpgrader returns an upgrader accepting the given origins. An empty list
// or "*" accepts every origin.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

// HandleWebSocket upgrades HTTP connection to WebSocket. A session token,
// from the token query parameter or the Session middleware, binds the
// connection to its driver and joins the driver's audience.
func HandleWebSocket(hub *Hub, ingress Ingress, upgrader websocket.Upgrader, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, bound := middleware.GetSessionFromContext(r)

		if tokenString := r.URL.Query().Get("token"); tokenString != "" {
			if secret == "" {
				log.Println("❌ Session token supplied but no secret configured")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			parsed, err := middleware.ParseSessionToken(secret, tokenString)
			if err != nil {
				log.Printf("❌ Invalid token in query parameter: %v", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims, bound = parsed, true
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("❌ WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(conn, hub, ingress)
		if bound {
			client.DriverID = claims.DriverID
			hub.Subscribe(models.DriverAudience(claims.DriverID), client)
		}

		go client.WritePump()
		go client.ReadPump()

		log.Printf("✅ [WEBSOCKET] Client %s connected (driver: %q)", client.ID(), client.DriverID)
	}
}
