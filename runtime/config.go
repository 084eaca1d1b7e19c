package runtime

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the runtime's tunables. Zero values mean "use the default".
type Config struct {
	// VectorPath is the chromem persistence directory. Empty means
	// in-memory only.
	VectorPath string

	// HistoryPath is the SQLite database file for users and turns.
	HistoryPath string

	ChunkSize      int
	ChunkOverlap   int
	DefaultTTLDays int

	RecentLimit   int
	RelevantLimit int

	// EmbedConcurrency caps concurrent embedding calls across the
	// runtime.
	EmbedConcurrency int

	// ModelPath and TokenizerPath locate the local ONNX embedding model.
	// Only used by onnx builds.
	ModelPath     string
	TokenizerPath string
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		VectorPath:       "./data/vectors",
		HistoryPath:      "./data/history.db",
		ChunkSize:        500,
		ChunkOverlap:     50,
		DefaultTTLDays:   1,
		RecentLimit:      5,
		RelevantLimit:    3,
		EmbedConcurrency: 4,
		ModelPath:        "./models/all-MiniLM-L6-v2.onnx",
		TokenizerPath:    "./models/tokenizer.json",
	}
}

// LoadConfig reads configuration from the environment, loading a .env file
// first if one exists. Unset variables keep their defaults.
func LoadConfig() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[RUNTIME] Loaded configuration from .env")
	}

	cfg := DefaultConfig()
	cfg.VectorPath = envString("RECALL_VECTOR_PATH", cfg.VectorPath)
	cfg.HistoryPath = envString("RECALL_HISTORY_PATH", cfg.HistoryPath)
	cfg.ChunkSize = envInt("RECALL_CHUNK_SIZE", cfg.ChunkSize)
	cfg.ChunkOverlap = envInt("RECALL_CHUNK_OVERLAP", cfg.ChunkOverlap)
	cfg.DefaultTTLDays = envInt("RECALL_DEFAULT_TTL_DAYS", cfg.DefaultTTLDays)
	cfg.RecentLimit = envInt("RECALL_RECENT_LIMIT", cfg.RecentLimit)
	cfg.RelevantLimit = envInt("RECALL_RELEVANT_LIMIT", cfg.RelevantLimit)
	cfg.EmbedConcurrency = envInt("RECALL_EMBED_CONCURRENCY", cfg.EmbedConcurrency)
	cfg.ModelPath = envString("RECALL_MODEL_PATH", cfg.ModelPath)
	cfg.TokenizerPath = envString("RECALL_TOKENIZER_PATH", cfg.TokenizerPath)
	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[RUNTIME] Ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return n
}
