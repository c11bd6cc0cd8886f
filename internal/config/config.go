package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	MinIO      MinIOConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Upstream   UpstreamConfig
	Geo        GeoConfig
	Geocoder   GeocoderConfig
	Prediction PredictionConfig
	Forum      ForumConfig
}

type AppConfig struct {
	Env  string
	Port string
	URL  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type MinIOConfig struct {
	Endpoint      string
	PresignHost   string // Host to use in presigned URLs (for browser access)
	PresignUseSSL bool
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicURL     string
}

type JWTConfig struct {
	SessionSecret string
	SessionExpiry time.Duration
}

type CORSConfig struct {
	Origins []string
}

// UpstreamConfig points at the GLEAM REST backend.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type GeoConfig struct {
	Source        string // "fs" or "minio"
	DataDir       string
	MinIOPrefix   string
	DefaultFile   string
	CatalogueFile string
	LoadTimeout   time.Duration
}

type GeocoderConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

type PredictionConfig struct {
	Endpoints []string
	Timeout   time.Duration
}

type ForumConfig struct {
	PollInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Port: getEnv("APP_PORT", "8080"),
			URL:  getEnv("APP_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "gleam"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "gleam_dashboard"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PresignHost:   getEnv("MINIO_PRESIGN_HOST", "localhost:9000"),
			PresignUseSSL: getEnvBool("MINIO_PRESIGN_USE_SSL", false),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", "gleam"),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PublicURL:     getEnv("STORAGE_PUBLIC_URL", "http://localhost:9000/gleam"),
		},
		JWT: JWTConfig{
			SessionSecret: getEnv("JWT_SESSION_SECRET", ""),
			SessionExpiry: getEnvDuration("JWT_SESSION_EXPIRY", 24*time.Hour),
		},
		CORS: CORSConfig{
			Origins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000"), true),
		},
		Upstream: UpstreamConfig{
			BaseURL: strings.TrimSuffix(getEnv("UPSTREAM_BASE_URL", ""), "/"),
			Timeout: getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		},
		Geo: GeoConfig{
			Source:        getEnv("GEO_SOURCE", "fs"),
			DataDir:       getEnv("GEO_DATA_DIR", "./public/data"),
			MinIOPrefix:   getEnv("GEO_MINIO_PREFIX", "geojson"),
			DefaultFile:   getEnv("GEO_DEFAULT_FILE", "semarang.geojson"),
			CatalogueFile: getEnv("GEO_CATALOGUE_FILE", "kelurahan.json"),
			LoadTimeout:   getEnvDuration("GEO_LOAD_TIMEOUT", 10*time.Second),
		},
		Geocoder: GeocoderConfig{
			BaseURL:   strings.TrimSuffix(getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"), "/"),
			UserAgent: getEnv("GEOCODER_USER_AGENT", "gleam-dashboard/1.0"),
			Timeout:   getEnvDuration("GEOCODER_TIMEOUT", 8*time.Second),
		},
		Prediction: PredictionConfig{
			Endpoints: splitList(getEnv("PREDICTION_ENDPOINTS", ""), false),
			Timeout:   getEnvDuration("PREDICTION_TIMEOUT", 20*time.Second),
		},
		Forum: ForumConfig{
			PollInterval: getEnvDuration("FORUM_POLL_INTERVAL", 5*time.Second),
		},
	}

	if cfg.Geo.Source != "fs" && cfg.Geo.Source != "minio" {
		return nil, errors.New("GEO_SOURCE must be either fs or minio")
	}

	// Validate critical configuration
	if cfg.App.Env == "production" {
		if cfg.JWT.SessionSecret == "" {
			return nil, errors.New("JWT session secret must be configured in production environment")
		}
		if cfg.Upstream.BaseURL == "" {
			return nil, errors.New("UPSTREAM_BASE_URL must be configured in production environment")
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

// splitList splits a comma separated value, dropping blanks. URLs lose their trailing slash
// when trimSlash is set.
func splitList(raw string, trimSlash bool) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if trimSlash {
			item = strings.TrimSuffix(item, "/")
		}
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
