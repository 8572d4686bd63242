package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"fleetsync-backend/internal/config"
	"fleetsync-backend/internal/database"
	"fleetsync-backend/internal/handlers"
	"fleetsync-backend/internal/middleware"
	"fleetsync-backend/internal/services"
	"fleetsync-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚚 FLEETSYNC BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("❌ FATAL ERROR: invalid configuration: %v", err)
	}

	// State store (memory only, reset on every restart)
	store := database.NewStore(database.WithHistoryLimit(cfg.HistoryLimit))
	if cfg.NoSeed {
		log.Println("⚠️  Seeding disabled, starting with an empty store")
	} else {
		roster, err := loadRoster(cfg)
		if err != nil {
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Println("❌ FATAL ERROR: Roster could not be loaded")
			log.Printf("   Error: %v", err)
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Fatal(err)
		}
		if err := database.Seed(store, roster); err != nil {
			log.Fatalf("❌ FATAL ERROR: Seeding failed: %v", err)
		}
	}
	log.Printf("✅ State store ready (history limit %d)", cfg.HistoryLimit)

	// Push notifications are optional
	var notifier services.Notifier
	if cfg.Firebase.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		fcmService, err := newFCMService(ctx, cfg.Firebase)
		cancel()
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM: %v (push notifications disabled)", err)
		} else {
			notifier = fcmService
			log.Println("✅ Firebase Cloud Messaging initialized")
		}
	}

	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			log.Printf("⚠️  Failed to initialize New Relic: %v", err)
			nrApp = nil
		} else {
			log.Printf("✅ New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	wsHub := websocket.NewHub(store)
	fleet := services.NewFleet(store, wsHub, notifier)
	log.Println("✅ WebSocket hub started")

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"X-Session-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// WebSocket endpoint stays outside APM instrumentation, which would wrap
	// the response writer the upgrade needs to hijack.
	r.With(middleware.Session(cfg.JWTSecret)).
		Get("/ws", websocket.HandleWebSocket(wsHub, fleet, websocket.NewUpgrader(cfg.AllowedOrigins), cfg.JWTSecret))

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRelic(nrApp))

		r.Get("/health", handlers.Health(fleet, wsHub))
		r.Route("/api", func(r chi.Router) {
			handlers.RegisterRoutes(r, fleet, wsHub, cfg.JWTSecret)
		})
	})

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", cfg.Port)
	log.Printf("   REST API:   http://localhost:%s/api", cfg.Port)
	log.Printf("   WebSocket:  ws://localhost:%s/ws", cfg.Port)
	log.Println("   Socket events: driver:join, dashboard:join, driver:location,")
	log.Println("                  driver:status, delivery:update")
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Server failed to start")
		log.Printf("   Error: %v", err)
		log.Printf("   Port: %s", cfg.Port)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
}

// loadRoster picks the first configured roster source.
func loadRoster(cfg *config.Config) (database.Roster, error) {
	switch {
	case cfg.RosterFile != "":
		log.Printf("📂 Loading roster from %s", cfg.RosterFile)
		return database.LoadRosterFile(cfg.RosterFile)

	case cfg.DatabaseURL != "":
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return database.Roster{}, err
		}
		defer db.Close()
		return database.LoadRoster(db)

	default:
		log.Println("🌱 No roster configured, using demo data")
		return database.DemoRoster(time.Now().UTC()), nil
	}
}

func newFCMService(ctx context.Context, cfg config.FirebaseConfig) (*services.FCMService, error) {
	if cfg.CredentialsBase64 != "" {
		return services.NewFCMServiceFromBase64(ctx, cfg.CredentialsBase64)
	}
	return services.NewFCMService(ctx, cfg.CredentialsFile)
}
