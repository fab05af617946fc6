package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	TaskAPIBaseURL string
	StudentToken   string
	AudioDir       string
	WordTimeout    time.Duration
	ListenTimeout  time.Duration
}

// Load reads configuration from a .env file if present, then from
// environment variables, with sensible defaults.
func Load() *Config {
	// A missing .env is fine; real environment variables win either way.
	_ = godotenv.Load()

	return &Config{
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./readaloud.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		TaskAPIBaseURL: getEnv("TASK_API_URL", "http://localhost:8080"),
		StudentToken:   getEnv("STUDENT_TOKEN", ""),
		AudioDir:       getEnv("AUDIO_DIR", "./audio"),
		WordTimeout:    getEnvDuration("WORD_TIMEOUT", 5*time.Second),
		ListenTimeout:  getEnvDuration("LISTEN_TIMEOUT", 6*time.Second),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration reads a duration-valued environment variable or returns
// a default value. Malformed values fall back to the default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
