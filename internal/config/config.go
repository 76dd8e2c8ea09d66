// Package config loads process configuration from the environment,
// with an optional .env file for development.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Server holds configuration for the API server.
type Server struct {
	Port      string
	DBPath    string
	JWTSecret string
	LogLevel  string

	// Optional weather forecast for the calendar. Unset coordinates
	// disable it.
	WeatherLat  string
	WeatherLon  string
	WeatherUnit string

	// Optional encrypted off-site database backups. An empty bucket
	// disables them.
	BackupBucket     string
	BackupEndpoint   string
	BackupRegion     string
	BackupAccessKey  string
	BackupSecretKey  string
	BackupPassphrase string
}

// Client holds configuration for the terminal client.
type Client struct {
	ServerURL string
	StateDir  string
	LogLevel  string
}

// LoadServer reads server configuration from the environment. A .env
// file in the working directory is applied first if present; real
// environment variables win over it.
func LoadServer() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		Port:      envOr("HOMEBOARD_PORT", "8080"),
		DBPath:    envOr("HOMEBOARD_DB_PATH", "homeboard.db"),
		JWTSecret: os.Getenv("HOMEBOARD_JWT_SECRET"),
		LogLevel:  envOr("HOMEBOARD_LOG_LEVEL", "info"),

		WeatherLat:  os.Getenv("HOMEBOARD_WEATHER_LAT"),
		WeatherLon:  os.Getenv("HOMEBOARD_WEATHER_LON"),
		WeatherUnit: envOr("HOMEBOARD_WEATHER_UNIT", "fahrenheit"),

		BackupBucket:     os.Getenv("HOMEBOARD_BACKUP_BUCKET"),
		BackupEndpoint:   os.Getenv("HOMEBOARD_BACKUP_ENDPOINT"),
		BackupRegion:     envOr("HOMEBOARD_BACKUP_REGION", "auto"),
		BackupAccessKey:  os.Getenv("HOMEBOARD_BACKUP_ACCESS_KEY"),
		BackupSecretKey:  os.Getenv("HOMEBOARD_BACKUP_SECRET_KEY"),
		BackupPassphrase: os.Getenv("HOMEBOARD_BACKUP_PASSPHRASE"),
	}
	if cfg.JWTSecret == "" {
		return Server{}, fmt.Errorf("HOMEBOARD_JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadClient reads terminal-client configuration from the environment.
// State (session token, logs) lives under the user config directory
// unless HOMEBOARD_STATE_DIR overrides it.
func LoadClient() (Client, error) {
	_ = godotenv.Load()

	stateDir := os.Getenv("HOMEBOARD_STATE_DIR")
	if stateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Client{}, fmt.Errorf("resolving config dir: %w", err)
		}
		stateDir = filepath.Join(base, "homeboard")
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return Client{}, fmt.Errorf("creating state dir: %w", err)
	}

	return Client{
		ServerURL: envOr("HOMEBOARD_SERVER_URL", "http://localhost:8080"),
		StateDir:  stateDir,
		LogLevel:  envOr("HOMEBOARD_LOG_LEVEL", "info"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
