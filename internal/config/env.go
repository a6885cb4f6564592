package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files into the process environment.
// Missing files are ignored; variables already set are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays secrets and deployment settings from the environment. Environment
// values win over the file.
//
//	GEMINI_API_KEY   embedding/generation key when the provider is gemini
//	OPENAI_API_KEY   embedding/generation key when the provider is openai
//	JWT_SECRET       auth.jwt_secret
//	REDIS_ADDR       cache.redis_addr, and switches the cache backend to redis
//	REDIS_PASSWORD   cache.redis_password
//	DATABASE_URL     postgres DSN for both fragments and evaluation records
//	SOLACE_PORT      server.port
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	keyFor := func(provider string) string {
		switch provider {
		case "openai":
			return get("OPENAI_API_KEY")
		case "gemini", "":
			return get("GEMINI_API_KEY")
		}
		return ""
	}
	if k := keyFor(cfg.Embedding.Provider); k != "" {
		cfg.Embedding.APIKey = k
	}
	if k := keyFor(cfg.Generation.Provider); k != "" {
		cfg.Generation.APIKey = k
	}

	if v := get("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := get("REDIS_ADDR"); v != "" {
		cfg.Cache.Backend = "redis"
		cfg.Cache.RedisAddr = v
	}
	if v := get("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := get("DATABASE_URL"); v != "" {
		cfg.Storage.Backend = "postgres"
		cfg.Storage.PostgresDSN = v
		cfg.Evaluation.DatabaseDriver = "postgres"
		cfg.Evaluation.DatabaseDSN = v
	}
	if v := get("SOLACE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}
