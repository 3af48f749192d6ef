package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	StorageBackend  string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	AppName         string
	StaticFilesPath string
	AudioDir        string
	CatalogPath     string

	TTSEnabled  bool
	TTSLanguage string

	// RandomSeed makes item selection reproducible when non-zero
	RandomSeed       uint64
	SuccessDelay     time.Duration
	RetryDelay       time.Duration
	CelebrationDelay time.Duration

	ParentTokenSecret string
	SessionDuration   time.Duration
	PINAttempts       int
	PINWindow         time.Duration

	LogLevel  string
	LogFormat string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", "sql")),
		DatabaseType:    getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./alfabeta.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		AppName:         getEnv("APP_NAME", "alfabeta"),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		AudioDir:        getEnv("AUDIO_DIR", "./static/audio"),
		CatalogPath:     getEnv("CATALOG_PATH", ""),

		TTSEnabled:  getEnvBool("TTS_ENABLED", true),
		TTSLanguage: getEnv("TTS_LANGUAGE", "pt-BR"),

		RandomSeed:       getEnvUint64("RANDOM_SEED", 0),
		SuccessDelay:     getEnvDuration("SUCCESS_DELAY", 500*time.Millisecond),
		RetryDelay:       getEnvDuration("RETRY_DELAY", 1500*time.Millisecond),
		CelebrationDelay: getEnvDuration("CELEBRATION_DELAY", 3*time.Second),

		ParentTokenSecret: getEnv("PARENT_TOKEN_SECRET", ""),
		SessionDuration:   getEnvDuration("SESSION_DURATION", 2*time.Hour),
		PINAttempts:       getEnvInt("PIN_ATTEMPTS", 5),
		PINWindow:         getEnvDuration("PIN_WINDOW", time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "AlfaBeta"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	value, err := strconv.ParseUint(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
