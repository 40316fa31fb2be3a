package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Ingest  IngestConfig
}

type AppConfig struct {
	Name               string
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type BackendConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	TopK           int
	MetadataTTL    time.Duration
}

type IngestConfig struct {
	// Values the backend requires on every ingestion call but the
	// dashboard does not surface as inputs.
	TargetGroup string
	Owner       string
	MaxFiles    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "smartfusion-dashboard"),
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "dashboard.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("RAG_BACKEND_URL", "http://localhost:8000"),
			RequestTimeout: getEnvAsDuration("RAG_BACKEND_TIMEOUT", 2*time.Minute),
			TopK:           getEnvAsInt("ANSWER_TOP_K", 5),
			MetadataTTL:    getEnvAsDuration("METADATA_CACHE_TTL", 5*time.Minute),
		},
		Ingest: IngestConfig{
			TargetGroup: getEnv("INGEST_TARGET_GROUP", "Students"),
			Owner:       getEnv("INGEST_OWNER", "Ketan"),
			MaxFiles:    getEnvAsInt("INGEST_MAX_FILES", 5),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
