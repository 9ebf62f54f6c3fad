package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Storage subdirectory names are fixed, not configurable: cataloged
// photo rows embed public paths built from them, so changing the
// layout after first ingest would orphan every stored path.
const (
	PhotosSubDir     = "photos"
	ThumbnailsSubDir = "thumbnails"
)

const (
	defaultSessionTTLHours = 24 * 7
	defaultGeoTimeoutMs    = 2000
)

type Config struct {
	// HTTP listen address, e.g. ":8080"
	ListenAddr string

	// source directory scanned for new originals
	ScanDirectory string

	// database path
	DatabasePath string

	// storage configuration
	StoragePath    string // primary root for served assets
	PhotosPath     string // full-calculated path for originals
	ThumbnailsPath string // full-calculated path for generated thumbnails

	// admin session settings
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string // bcrypt hash; takes precedence over AdminPassword when set
	AuthSecret        string
	SessionTTL        time.Duration

	// best-effort country lookup
	GeoAPIBaseURL string
	GeoTimeout    time.Duration

	CORSAllowedOrigins []string

	LogLevel    string
	Environment string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Warn().Str("var", envVar).Str("value", valStr).Int("default", defaultVal).Msg("invalid integer env var, using default")
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	scanDir := getEnvOrDefault("SCAN_DIR", "photos_inbox")
	absScanDir, err := filepath.Abs(scanDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for scan directory '%s': %w", scanDir, err)
	}

	dbPath := getEnvOrDefault("DATABASE_PATH", filepath.Join("data", "gallery.db"))

	storage := getEnvOrDefault("STORAGE_PATH", filepath.Join(".", "public"))
	absStorage, err := filepath.Abs(storage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for storage '%s': %w", storage, err)
	}

	sessionTTLHours := getEnvIntOrDefault("SESSION_TTL_HOURS", defaultSessionTTLHours)
	geoTimeoutMs := getEnvIntOrDefault("GEO_TIMEOUT_MS", defaultGeoTimeoutMs)

	authSecret := getEnvOrDefault("AUTH_SECRET", "change-me-in-production")
	if authSecret == "change-me-in-production" {
		log.Warn().Msg("AUTH_SECRET is unset, using insecure default")
	}

	var corsOrigins []string
	for _, o := range strings.Split(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}

	cfg := Config{
		ListenAddr:         ":" + getEnvOrDefault("PORT", "8080"),
		ScanDirectory:      absScanDir,
		DatabasePath:       dbPath,
		StoragePath:        absStorage,
		PhotosPath:         filepath.Join(absStorage, PhotosSubDir),
		ThumbnailsPath:     filepath.Join(absStorage, ThumbnailsSubDir),
		AdminUsername:      getEnvOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnvOrDefault("ADMIN_PASSWORD", "admin"),
		AdminPasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		AuthSecret:         authSecret,
		SessionTTL:         time.Duration(sessionTTLHours) * time.Hour,
		GeoAPIBaseURL:      getEnvOrDefault("GEO_API_BASE_URL", "https://ipapi.co"),
		GeoTimeout:         time.Duration(geoTimeoutMs) * time.Millisecond,
		CORSAllowedOrigins: corsOrigins,
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		Environment:        getEnvOrDefault("ENVIRONMENT", "development"),
	}

	return cfg, nil
}
