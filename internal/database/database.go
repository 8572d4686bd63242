package database

import (
	"fmt"
	"log"

	"fleetsync-backend/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the provisioning database. The live fleet state never goes
// here; Postgres only holds the driver roster the store is seeded from.
func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 ROSTER DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 Database URL length: %d characters", len(dbURL))
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Printf("❌ sqlx.Connect() failed: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		log.Printf("❌ Ping() failed: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Roster database connection successful")
	return db, nil
}

// Migrate creates the roster tables if they are missing.
func Migrate(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS drivers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'offline'
				CHECK(status IN ('offline', 'available', 'on_route', 'on_break')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS drivers_email_lower_idx ON drivers (LOWER(email))`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// LoadRoster reads every provisioned driver. Deliveries are not provisioned
// through Postgres.
func LoadRoster(db *sqlx.DB) (Roster, error) {
	var drivers []models.Driver
	query := `
		SELECT id, name, email, phone, status, created_at
		FROM drivers
		ORDER BY created_at, id
	`
	if err := db.Select(&drivers, query); err != nil {
		return Roster{}, fmt.Errorf("failed to load drivers: %w", err)
	}

	roster := Roster{Drivers: drivers}
	if err := roster.Validate(); err != nil {
		return Roster{}, err
	}
	log.Printf("✓ Loaded %d drivers from roster database", len(drivers))
	return roster, nil
}

// ImportRoster upserts the roster's drivers into Postgres.
func ImportRoster(db *sqlx.DB, roster Roster) (int, error) {
	if err := roster.Validate(); err != nil {
		return 0, err
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO drivers (id, name, email, phone, status)
		VALUES (:id, :name, :email, :phone, :status)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			status = EXCLUDED.status
	`
	for _, d := range roster.Drivers {
		if d.Status == "" {
			d.Status = models.DriverStatusOffline
		}
		if _, err := tx.NamedExec(query, d); err != nil {
			return 0, fmt.Errorf("failed to import driver %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit roster: %w", err)
	}
	return len(roster.Drivers), nil
}
