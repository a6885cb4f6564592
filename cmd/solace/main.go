// Package main is the solace CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hyperjump/solace/internal/auth"
	"github.com/hyperjump/solace/internal/cli"
	"github.com/hyperjump/solace/internal/config"
	"github.com/hyperjump/solace/internal/database"
	"github.com/hyperjump/solace/internal/embedding"
	"github.com/hyperjump/solace/internal/evaluation"
	"github.com/hyperjump/solace/internal/generation"
	"github.com/hyperjump/solace/internal/models"
	"github.com/hyperjump/solace/internal/rag"
	"github.com/hyperjump/solace/internal/server"
	"github.com/hyperjump/solace/internal/storage"
	"github.com/hyperjump/solace/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/solace/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory is preferred if present, and a missing default file falls back to environment
// and defaults only. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg, err := config.Load("")
			return cfg, "", err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "retrieve":
		runRetrieve()
	case "index":
		runIndex()
	case "recent":
		runRecent()
	case "evaluate":
		runEvaluate()
	case "token":
		runToken()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("solace version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// setup loads config and builds the logger and components for a subcommand.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger, *Components) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, logger, components
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal("auth.jwt_secret (or JWT_SECRET) is required", zap.Error(err))
	}

	srv := server.NewServer(
		components.Chat,
		components.Evaluations,
		components.Store,
		auth.NewMiddleware(tokens, logger),
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuery joins all positional args with spaces so multi-word queries work the same
// with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the positional text to
// the front so that flag.Parse() sees them. Go's flag package stops at the first non-flag
// argument, so "solace retrieve I feel tired -user 3" would otherwise leave -user unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fatalf("%v", err)
	}
	return format
}

func requireUser(userID int64) {
	if userID <= 0 {
		fatalf("--user must be a positive user id")
	}
}

func runRetrieve() {
	fs := flag.NewFlagSet("retrieve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	userID := fs.Int64("user", 0, "user id whose history is searched")
	conversation := fs.String("conversation", "", "conversation id recorded with the query")
	k := fs.Int("k", models.DefaultK, "number of fragments to return")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: solace retrieve [flags] <query>\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nThe query is stored in the user's history after ranking, as in chat.\n")
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))
	requireUser(*userID)
	format := parseFormat(*outputFormat)

	query := &models.RetrieveQuery{Query: buildQuery(fs.Args()), ConversationID: *conversation, K: *k}
	if err := query.Validate(); err != nil {
		fs.Usage()
		os.Exit(1)
	}

	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	start := time.Now()
	results, err := components.Chat.Retriever().Retrieve(context.Background(), *userID, query.ConversationID, query.Query, query.K)
	if err != nil {
		fatalf("Retrieve failed: %v", err)
	}
	response := &models.RetrieveResponse{Query: query.Query, Results: results, QueryTime: time.Since(start).Milliseconds()}
	if err := cli.WriteRetrievalResults(os.Stdout, response, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	userID := fs.Int64("user", 0, "owner of the fragment")
	conversation := fs.String("conversation", "", "conversation id")
	file := fs.String("file", "", "read the text from a file instead of the arguments")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	requireUser(*userID)

	text := buildQuery(fs.Args())
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			fatalf("Failed to read %s: %v", *file, err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		fatalf("Usage: solace index [--user id] [--conversation id] [--file path] <text>")
	}

	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	id, err := components.Chat.Retriever().Index(context.Background(), *userID, *conversation, text)
	if err != nil {
		fatalf("Index failed: %v", err)
	}
	fmt.Printf("Indexed fragment %s\n", id)
}

func runRecent() {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	userID := fs.Int64("user", 0, "user id")
	k := fs.Int("k", 20, "number of fragments")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	requireUser(*userID)
	format := parseFormat(*outputFormat)

	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	fragments, err := components.Store.Recent(context.Background(), *userID, *k)
	if err != nil {
		fatalf("Recent failed: %v", err)
	}
	if err := cli.WriteFragments(os.Stdout, fragments, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runEvaluate() {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	userID := fs.Int64("user", 0, "user id")
	history := fs.Bool("history", false, "list persisted evaluations instead of evaluating")
	limit := fs.Int("limit", 0, "history size (default from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	requireUser(*userID)
	format := parseFormat(*outputFormat)

	cfg, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	if *history {
		n := *limit
		if n <= 0 {
			n = cfg.Evaluation.HistoryLimit
		}
		records, err := components.Evaluations.History(ctx, *userID, n)
		if err != nil {
			fatalf("History failed: %v", err)
		}
		if err := cli.WriteEvaluationHistory(os.Stdout, records, format); err != nil {
			fatalf("Output failed: %v", err)
		}
		return
	}

	res, err := components.Evaluations.Evaluate(ctx, *userID)
	if err != nil {
		fatalf("Evaluate failed: %v", err)
	}
	if err := cli.WriteEvaluation(os.Stdout, res, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runToken() {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	userID := fs.Int64("user", 0, "user id placed in the sub claim")
	email := fs.String("email", "", "email claim")
	name := fs.String("name", "", "name claim")
	ttl := fs.Duration("ttl", 0, "token lifetime (default from config)")
	_ = fs.Parse(os.Args[2:])
	requireUser(*userID)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		fatalf("auth.jwt_secret (or JWT_SECRET) is required: %v", err)
	}
	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = cfg.Auth.TokenTTL
	}
	tok, err := tokens.Issue(auth.User{ID: *userID, Email: *email, Name: *name}, lifetime)
	if err != nil {
		fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(tok)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	cfg, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	stats, err := components.Store.Stats(context.Background())
	if err != nil {
		fatalf("Status failed: %v", err)
	}
	status := statusReport{Stats: stats, CacheBackend: cfg.Cache.Backend, Embedding: cfg.Embedding.Provider}
	if stats.Backend == string(storage.BackendSQLite) {
		if n, err := storage.SQLiteFootprint(cfg.Storage.DatabasePath); err == nil {
			status.DiskUsageBytes = &n
		}
	}
	if err := writeStatus(os.Stdout, &status, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

// Components holds initialized services.
type Components struct {
	Store       storage.FragmentStore
	Embedder    embedding.Embedder
	EvalDB      *gorm.DB
	Redis       *redis.Client
	Chat        *rag.ChatService
	Evaluations *evaluation.Controller
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.EvalDB != nil {
		_ = database.Close(c.EvalDB)
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{}
	fail := func(err error) (*Components, error) {
		c.Close()
		return nil, err
	}

	store, err := storage.NewFragmentStore(storage.Options{
		Backend:      cfg.Storage.Backend,
		DatabasePath: cfg.Storage.DatabasePath,
		PostgresDSN:  cfg.Storage.PostgresDSN,
		Logger:       logger,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to initialize fragment store: %w", err))
	}
	c.Store = store

	embedder, err := embedding.New(ctx, embedding.Options{
		Provider:   cfg.Embedding.Provider,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		CacheSize:  cfg.Embedding.CacheSize,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to initialize embedder: %w", err))
	}
	c.Embedder = embedder

	newGenerator := func(model string) (generation.Generator, error) {
		return generation.New(ctx, generation.Options{
			Provider:    cfg.Generation.Provider,
			APIKey:      cfg.Generation.APIKey,
			Model:       model,
			Temperature: cfg.Generation.Temperature,
		})
	}
	plain, err := newGenerator(cfg.Generation.ChatModel)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize chat generator: %w", err))
	}
	ragGen, err := newGenerator(cfg.Generation.RAGModel)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize rag generator: %w", err))
	}
	evalGen, err := newGenerator(cfg.Generation.EvaluationModel)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize evaluation generator: %w", err))
	}

	retriever := rag.NewRetriever(embedder, store, rag.WithLogger(logger))
	system := cfg.RAG.SystemInstructions
	if system == "" {
		system = rag.DefaultSystemInstructions(cfg.RAG.Language)
	}
	c.Chat = rag.NewChatService(retriever, plain, ragGen, rag.ChatConfig{K: cfg.RAG.K, SystemInstructions: system}, logger)

	db, err := database.Open(cfg.Evaluation.DatabaseDriver, cfg.Evaluation.DatabaseDSN, logger)
	if err != nil {
		return fail(fmt.Errorf("failed to open evaluation database: %w", err))
	}
	c.EvalDB = db
	if err := evaluation.Migrate(db); err != nil {
		return fail(fmt.Errorf("failed to migrate evaluation database: %w", err))
	}

	var markers evaluation.MarkerStore
	switch cfg.Cache.Backend {
	case "redis":
		rdb, err := evaluation.NewRedisClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			return fail(err)
		}
		c.Redis = rdb
		markers = evaluation.NewRedisMarkerStore(rdb, cfg.Cache.KeyPrefix, cfg.Evaluation.CacheHorizon)
	default:
		markers = evaluation.NewMemoryMarkerStore(cfg.Cache.MemorySize, cfg.Evaluation.CacheHorizon)
	}

	c.Evaluations = evaluation.NewController(store, evalGen, evaluation.NewRepository(db, logger), markers,
		evaluation.Config{
			Policy:      evaluation.Policy{ThrottleWindow: cfg.Evaluation.ThrottleWindow, Horizon: cfg.Evaluation.CacheHorizon},
			RecentCount: cfg.Evaluation.RecentCount,
			Language:    cfg.RAG.Language,
		},
		evaluation.WithLogger(logger))

	logger.Info("components initialized",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("embedding", cfg.Embedding.Provider),
		zap.Int("dimensions", embedder.Dimensions()),
		zap.String("generation", cfg.Generation.Provider),
		zap.String("cache", cfg.Cache.Backend),
	)
	return c, nil
}

func printUsage() {
	fmt.Println(`solace - Retrieval-augmented mental-health chat backend

Usage:
  solace server [flags]              Start the HTTP server
  solace retrieve [flags] <query>    Rank a user's fragments against a query
  solace index [flags] <text>        Store a fragment for a user
  solace recent [flags]              List a user's most recent fragments
  solace evaluate [flags]            Evaluate a user's recent messages
  solace token [flags]               Mint a bearer token for a user
  solace status [flags]              Show store status
  solace version                     Show version
  solace help                        Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/solace/config.yaml,
                     or ./config.yaml when present)
  --user int         User id (retrieve, index, recent, evaluate, token)
  --output string    Output format: text or json (retrieve, recent, evaluate, status)

Server Flags:
  --debug            Enable debug logging

Retrieve Flags:
  --k int              Number of fragments (default: 10)
  --conversation string  Conversation id recorded with the query

Index Flags:
  --conversation string  Conversation id
  --file string          Read the text from a file

Evaluate Flags:
  --history          List persisted evaluations, newest first
  --limit int        History size

Token Flags:
  --email, --name    Optional claims
  --ttl duration     Token lifetime (default from config)

Environment:
  GEMINI_API_KEY, OPENAI_API_KEY, JWT_SECRET, REDIS_ADDR, REDIS_PASSWORD,
  DATABASE_URL, SOLACE_PORT (also read from ./.env)

Examples:
  solace server
  solace token --user 42
  solace index --user 42 "I could not sleep again last night"
  solace retrieve --user 42 why am I so tired
  solace evaluate --user 42 --output json
  solace evaluate --user 42 --history`)
}
