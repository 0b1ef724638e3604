package config

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	InputDir      string
	OutputDir     string
	Scale         float64
	Workers       int
	TesseractLang string

	OpenAIKey      string
	OpenAIEndpoint string
	OpenAIModel    string
	ImageDetail    string
	PollInterval   time.Duration

	Database string
}

// Load reads configuration from the environment, providing sensible defaults.
func Load() Config {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()
	cfg := Config{
		InputDir:       getEnv("INPUT_DIR", "./pdfs"),
		OutputDir:      getEnv("OUTPUT_DIR", "./markdown"),
		Scale:          getEnvFloat("RENDER_SCALE", 2.0),
		Workers:        getEnvInt("WORKERS", runtime.NumCPU()),
		TesseractLang:  getEnv("TESSERACT_LANG", "eng"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIEndpoint: getEnv("OPENAI_API_ENDPOINT", "https://api.openai.com/v1"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ImageDetail:    getEnv("OPENAI_IMAGE_DETAIL", "high"),
		PollInterval:   getEnvDuration("BATCH_POLL_INTERVAL", 30*time.Second),
		Database:       getEnv("DATABASE_PATH", "./data/bookocr.db"),
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalf("failed to ensure output dir %s: %v", cfg.OutputDir, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		log.Fatalf("failed to ensure database dir %s: %v", cfg.Database, err)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
