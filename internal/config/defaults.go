package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".solace/fragments.db"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "gemini"
	}
	if cfg.Embedding.Dimensions == 0 {
		switch cfg.Embedding.Provider {
		case "openai":
			cfg.Embedding.Dimensions = 1536
		default:
			cfg.Embedding.Dimensions = 768
		}
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = "gemini"
	}
	if cfg.Generation.Provider == "gemini" {
		if cfg.Generation.ChatModel == "" {
			cfg.Generation.ChatModel = "gemini-2.5-flash"
		}
		if cfg.Generation.RAGModel == "" {
			cfg.Generation.RAGModel = "gemini-2.5-pro"
		}
		if cfg.Generation.EvaluationModel == "" {
			cfg.Generation.EvaluationModel = "gemini-2.5-flash-lite"
		}
	}
	if cfg.RAG.K == 0 {
		cfg.RAG.K = 10
	}
	if cfg.RAG.Language == "" {
		cfg.RAG.Language = "Vietnamese"
	}
	if cfg.Evaluation.ThrottleWindow == 0 {
		cfg.Evaluation.ThrottleWindow = 2 * time.Hour
	}
	if cfg.Evaluation.CacheHorizon == 0 {
		cfg.Evaluation.CacheHorizon = 24 * time.Hour
	}
	if cfg.Evaluation.RecentCount == 0 {
		cfg.Evaluation.RecentCount = 20
	}
	if cfg.Evaluation.HistoryLimit == 0 {
		cfg.Evaluation.HistoryLimit = 10
	}
	if cfg.Evaluation.DatabaseDriver == "" {
		cfg.Evaluation.DatabaseDriver = "sqlite"
	}
	if cfg.Evaluation.DatabaseDSN == "" && cfg.Evaluation.DatabaseDriver == "sqlite" {
		cfg.Evaluation.DatabaseDSN = ".solace/evaluations.db"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "mental_health_eval:"
	}
	if cfg.Cache.MemorySize == 0 {
		cfg.Cache.MemorySize = 100000
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "solace"
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
}
