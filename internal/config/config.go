package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported relational drivers for chat history.
const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort   string
	LogLevel  slog.Level
	LogFormat string

	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string

	QdrantURL              string
	QdrantAPIKey           string
	QdrantCollectionPrefix string
	QdrantVectorSize       int

	RAGEnabled          bool
	RAGIncludeSummaries bool
	RAGScoreThreshold   float32
	RAGTopK             int
	RAGMaxContextChars  int
	RAGLanguage         string

	DBDriver    string
	DBPath      string
	DatabaseURL string

	JWTSecret string

	OSSEndpoint        string
	OSSAccessKeyID     string
	OSSAccessKeySecret string
	OSSBucket          string

	VideoCacheTTL  time.Duration
	VideoCacheSize int

	CORSOrigins []string

	Prompts Prompts
}

// ChunksCollection is the collection holding transcript fragments.
func (c *Config) ChunksCollection() string {
	return c.QdrantCollectionPrefix + "_chunks"
}

// MetadataCollection is the collection holding one record per video plus the folder registry.
func (c *Config) MetadataCollection() string {
	return c.QdrantCollectionPrefix + "_metadata"
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:   getEnv("API_PORT", "9000"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://api.siliconflow.cn/v1"),
		LLMModelName:       getEnv("LLM_MODEL", "Qwen/Qwen2.5-7B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "https://api.siliconflow.cn/v1"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "BAAI/bge-large-zh-v1.5"),

		QdrantURL:              getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:           getEnv("QDRANT_API_KEY", ""),
		QdrantCollectionPrefix: getEnv("QDRANT_COLLECTION_PREFIX", "video"),

		RAGLanguage: getEnv("RAG_LANGUAGE", "中文"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DBDriverSQLite)),
		DBPath:      getEnv("DB_PATH", "./data/hearsight.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		OSSEndpoint:        getEnv("OSS_ENDPOINT", ""),
		OSSAccessKeyID:     getEnv("OSS_ACCESS_KEY_ID", ""),
		OSSAccessKeySecret: getEnv("OSS_ACCESS_KEY_SECRET", ""),
		OSSBucket:          getEnv("OSS_BUCKET", ""),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}
	// The embedding service usually shares the chat provider's key.
	cfg.EmbeddingAPIKey = getEnv("EMBEDDING_API_KEY", cfg.LLMAPIKey)

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	// Parse QDRANT_VECTOR_SIZE
	// This must match the output size of the embedding model (1024 for bge-large-zh-v1.5).
	// If it changes, both collections must be recreated.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	if cfg.RAGEnabled, err = getEnvBool("RAG_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.RAGIncludeSummaries, err = getEnvBool("RAG_INCLUDE_SUMMARIES", true); err != nil {
		return nil, err
	}
	if cfg.RAGTopK, err = getEnvInt("RAG_TOP_K", 5); err != nil {
		return nil, err
	}
	if cfg.RAGMaxContextChars, err = getEnvInt("RAG_MAX_CONTEXT_CHARS", 0); err != nil {
		return nil, err
	}
	if cfg.VideoCacheSize, err = getEnvInt("VIDEO_CACHE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.VideoCacheTTL, err = getEnvDuration("VIDEO_CACHE_TTL", 60*time.Second); err != nil {
		return nil, err
	}

	threshold, err := strconv.ParseFloat(getEnv("RAG_SCORE_THRESHOLD", "0.7"), 32)
	if err != nil {
		return nil, fmt.Errorf("RAG_SCORE_THRESHOLD must be a number: %w", err)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("RAG_SCORE_THRESHOLD must be between 0 and 1")
	}
	cfg.RAGScoreThreshold = float32(threshold)

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}

	switch cfg.DBDriver {
	case DBDriverSQLite:
		// Create ./data directory if it doesn't exist
		dataDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	case DBDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DBDriverSQLite, DBDriverPostgres, cfg.DBDriver)
	}

	prompts, err := LoadPrompts(getEnv("PROMPTS_FILE", ""))
	if err != nil {
		return nil, err
	}
	cfg.Prompts = prompts

	return cfg, nil
}

// OSSConfigured reports whether signed media URLs can be produced.
func (c *Config) OSSConfigured() bool {
	return c.OSSEndpoint != "" && c.OSSAccessKeyID != "" && c.OSSAccessKeySecret != "" && c.OSSBucket != ""
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 60s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
