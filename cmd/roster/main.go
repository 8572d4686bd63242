package main

import (
	"log"
	"os"

	"fleetsync-backend/internal/database"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// roster imports a YAML driver roster into the Postgres table the server can
// seed from on startup.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	file := pflag.StringP("file", "f", "roster.yaml", "YAML roster to import")
	dbURL := pflag.String("database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	pflag.Parse()

	if *dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	roster, err := database.LoadRosterFile(*file)
	if err != nil {
		log.Fatalf("Failed to read roster: %v", err)
	}

	db, err := database.Connect(*dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	n, err := database.ImportRoster(db, roster)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("✅ Imported %d drivers from %s", n, *file)
	if len(roster.Deliveries) > 0 {
		log.Printf("   %d deliveries skipped (deliveries are not persisted)", len(roster.Deliveries))
	}
}
