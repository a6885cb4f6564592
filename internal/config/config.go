// Package config provides configuration loading and structs for the solace server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/solace/internal/models"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	RAG        RAGConfig        `yaml:"rag"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Cache      CacheConfig      `yaml:"cache"`
	Auth       AuthConfig       `yaml:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"gte=1,lte=65535"`
	// CORSAllowedOrigins lists the browser origins allowed to call the API.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	// RequestTimeout bounds non-streaming requests.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// StorageConfig selects the fragment store backend.
type StorageConfig struct {
	Backend      string `yaml:"backend" validate:"oneof=sqlite postgres memory"`
	DatabasePath string `yaml:"database_path"`
	PostgresDSN  string `yaml:"postgres_dsn" validate:"required_if=Backend postgres"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" validate:"oneof=gemini openai mock"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions" validate:"gte=1"`
	CacheSize  int    `yaml:"cache_size"`
	APIKey     string `yaml:"api_key"`
}

// GenerationConfig configures the text generator. ChatModel answers anonymous questions,
// RAGModel answers with retrieved context and EvaluationModel produces assessments.
type GenerationConfig struct {
	Provider        string  `yaml:"provider" validate:"oneof=gemini openai mock"`
	ChatModel       string  `yaml:"chat_model"`
	RAGModel        string  `yaml:"rag_model"`
	EvaluationModel string  `yaml:"evaluation_model"`
	Temperature     float32 `yaml:"temperature"`
	APIKey          string  `yaml:"api_key"`
}

// RAGConfig tunes retrieval-augmented chat.
type RAGConfig struct {
	K int `yaml:"k" validate:"gte=1,lte=100"`
	// StoreAnswers also stores completed answers as fragments.
	StoreAnswers       bool   `yaml:"store_answers"`
	Language           string `yaml:"language"`
	SystemInstructions string `yaml:"system_instructions"`
}

// EvaluationConfig tunes the evaluation cache and where records are kept.
type EvaluationConfig struct {
	ThrottleWindow time.Duration `yaml:"throttle_window"`
	CacheHorizon   time.Duration `yaml:"cache_horizon" validate:"gtfield=ThrottleWindow"`
	RecentCount    int           `yaml:"recent_count" validate:"gte=1"`
	HistoryLimit   int           `yaml:"history_limit" validate:"gte=1"`
	DatabaseDriver string        `yaml:"database_driver" validate:"oneof=sqlite postgres"`
	DatabaseDSN    string        `yaml:"database_dsn" validate:"required"`
}

// CacheConfig selects where evaluation markers live.
type CacheConfig struct {
	Backend       string `yaml:"backend" validate:"oneof=memory redis"`
	RedisAddr     string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
	MemorySize    int    `yaml:"memory_size"`
}

// AuthConfig configures bearer-token verification.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// Load reads and parses the config file at path, overlays the environment, applies defaults
// and expands paths. An empty path yields a configuration built from the environment and
// defaults alone.
func Load(path string) (*Config, error) {
	var cfg Config
	configDir := "."
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		configDir = filepath.Dir(path)
	}

	ApplyEnv(&cfg, os.LookupEnv)
	ApplyDefaults(&cfg)

	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Evaluation.DatabaseDriver == "sqlite" {
		cfg.Evaluation.DatabaseDSN = expandPath(cfg.Evaluation.DatabaseDSN, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if err := models.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Storage.Backend == "sqlite" && c.Storage.DatabasePath == "" {
		return errors.New("invalid config: storage.database_path is required for the sqlite backend")
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
