// Package config provides application configuration.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Port   string
	APIKey string // OpenAI API key
	Model  string // OpenAI chat model

	// DatabaseURL, when set, switches the session store from the in-memory
	// map to Postgres.
	DatabaseURL string

	// Google Drive export. When the service-account key is absent the
	// exporter is disabled and exports degrade to a log line.
	DriveServiceAccountKey string
	DriveFolderID          string

	ValidUserIDs []string
}

// defaultUserIDs is the built-in study roster, overridable via
// VALID_USER_IDS.
var defaultUserIDs = []string{"test_user", "resident_1", "resident_2", "attending_1"}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		APIKey:                 getEnv("OPENAI_API_KEY", ""),
		Model:                  getEnv("OPENAI_MODEL", "gpt-4o"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		DriveServiceAccountKey: getEnv("GOOGLE_SERVICE_ACCOUNT_KEY", ""),
		DriveFolderID:          getEnv("GOOGLE_DRIVE_FOLDER_ID", ""),
		ValidUserIDs:           defaultUserIDs,
	}

	if ids := getEnv("VALID_USER_IDS", ""); ids != "" {
		cfg.ValidUserIDs = splitIDs(ids)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set")
	}
	if cfg.DriveServiceAccountKey != "" && cfg.DriveFolderID == "" {
		return nil, fmt.Errorf("GOOGLE_DRIVE_FOLDER_ID must be set when GOOGLE_SERVICE_ACCOUNT_KEY is provided")
	}
	return cfg, nil
}

func splitIDs(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
