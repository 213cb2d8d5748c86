// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMaxUploadBytes caps the multipart body of an analysis request.
const DefaultMaxUploadBytes = 16 << 20

// DefaultMaxImagePixels caps the decoded width*height of an uploaded image.
const DefaultMaxImagePixels = 40_000_000

// Config holds the server settings.
type Config struct {
	Port           string
	Mode           string
	APIKey         string
	UploadDir      string
	MaxUploadBytes int64
	MaxImagePixels int64
	DemoImage      string
	KeepUploads    bool
	LogFile        string
	LogLevel       string
	ResultTTL      time.Duration
	StoreSize      int
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	maxBytes, err := getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)
	if err != nil {
		return nil, err
	}
	maxPixels, err := getEnvInt64("MAX_IMAGE_PIXELS", DefaultMaxImagePixels)
	if err != nil {
		return nil, err
	}
	ttl, err := getEnvDuration("RESULT_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	storeSize, err := getEnvInt64("RESULT_STORE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Mode:           getEnv("MODE", "debug"),
		APIKey:         getEnv("API_KEY", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: maxBytes,
		MaxImagePixels: maxPixels,
		DemoImage:      getEnv("DEMO_IMAGE", "demo/sample_leaf.jpg"),
		KeepUploads:    getEnvBool("KEEP_UPLOADS", false),
		LogFile:        getEnv("LOG_FILE", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ResultTTL:      ttl,
		StoreSize:      int(storeSize),
	}, nil
}

// IsProduction reports whether gin should run in release mode.
func (c *Config) IsProduction() bool {
	return c.Mode == "prod"
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, value)
	}
	return d, nil
}
