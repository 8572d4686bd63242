package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"fleetsync-backend/internal/database"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the server
type Config struct {
	Port           string
	JWTSecret      string
	AllowedOrigins []string

	// Roster sources, tried in order: file, database, built-in demo data
	RosterFile  string
	DatabaseURL string
	NoSeed      bool

	HistoryLimit int

	Firebase FirebaseConfig
	NewRelic NewRelicConfig
}

type FirebaseConfig struct {
	CredentialsFile   string
	CredentialsBase64 string
}

// Enabled reports whether any credentials are configured
func (c FirebaseConfig) Enabled() bool {
	return c.CredentialsFile != "" || c.CredentialsBase64 != ""
}

type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load reads .env (if present), then the environment, then command-line
// flags. Later sources win.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	}

	cfg := FromEnv()

	flags := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flags.StringVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP listen port")
	flags.StringVar(&cfg.RosterFile, "roster", cfg.RosterFile, "YAML roster file to seed drivers and deliveries from")
	flags.IntVar(&cfg.HistoryLimit, "history-limit", cfg.HistoryLimit, "location samples retained across all drivers")
	flags.BoolVar(&cfg.NoSeed, "no-seed", cfg.NoSeed, "start with an empty store")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = database.DefaultHistoryLimit
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables only
func FromEnv() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		JWTSecret:      os.Getenv("APP_JWT_SECRET"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RosterFile:     os.Getenv("ROSTER_FILE"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		NoSeed:         getBoolEnv("NO_SEED", false),
		HistoryLimit:   getIntEnv("LOCATION_HISTORY_LIMIT", database.DefaultHistoryLimit),
		Firebase: FirebaseConfig{
			CredentialsFile:   os.Getenv("FIREBASE_CREDENTIALS_FILE"),
			CredentialsBase64: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "fleetsync-backend"),
			LicenseKey: os.Getenv("NEW_RELIC_LICENSE_KEY"),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
