// Package config loads the environment-sourced configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/askhub-ai/askhub/internal/logger"
)

// Config holds every runtime setting. All values come from the
// environment, with a .env file loaded first if present.
type Config struct {
	AppName string
	Env     string
	Port    string

	// OpenAI
	OpenAIAPIKey string
	ChatModel    string
	EmbedModel   string

	// Pinecone
	PineconeAPIKey    string
	PineconeIndexName string
	PineconeIndexHost string

	// Google Drive
	ServiceAccountJSON string
	DriveFolderID      string

	// Ingestion
	PollIntervalMinutes int
	DataDir             string

	// Retrieval
	TopK     int
	MinScore float64

	// CORS
	AllowOrigins []string
}

// Load reads the environment and returns the configuration.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppName: getEnv("APP_NAME", "Ask Haseeb AI"),
		Env:     getEnv("ENV", "dev"),
		Port:    getEnv("PORT", "8080"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		ChatModel:    getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		EmbedModel:   getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-large"),

		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexName: getEnv("PINECONE_INDEX_NAME", ""),
		PineconeIndexHost: getEnv("PINECONE_INDEX_HOST", ""),

		ServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		DriveFolderID:      getEnv("GOOGLE_DRIVE_FOLDER_ID", ""),

		PollIntervalMinutes: getEnvInt("INGEST_POLL_INTERVAL_MINUTES", 5),
		DataDir:             getEnv("DATA_DIR", "data"),

		TopK:     getEnvInt("RETRIEVAL_TOP_K", 5),
		MinScore: getEnvFloat("RETRIEVAL_MIN_SCORE", 0),

		AllowOrigins: splitOrigins(getEnv("CORS_ALLOW_ORIGINS", "*")),
	}
}

// StagingDir is where downloaded files are staged before loading.
func (c *Config) StagingDir() string {
	return filepath.Join(c.DataDir, "raw")
}

// StatePath is the location of the persisted sync state.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "processed", "processed_files.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("config: %s=%q is not an integer, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn("config: %s=%q is not a number, using default %g", key, v, def)
		return def
	}
	return f
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
