package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/niouspark/humanizer/internal/api"
	"github.com/niouspark/humanizer/internal/corpus"
	"github.com/niouspark/humanizer/internal/database"
	"github.com/niouspark/humanizer/internal/humanizer"
	"github.com/niouspark/humanizer/internal/lexicon"
	"github.com/niouspark/humanizer/internal/ollama"
	"github.com/niouspark/humanizer/internal/queue"
	"github.com/niouspark/humanizer/pkg/logging"
	"github.com/niouspark/humanizer/pkg/tracing"
)

func main() {
	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("humanizer service initializing", "version", "1.0.0")

	// Initialize tracing
	tp, err := tracing.InitTracer("humanizer")
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
		logger.Info("tracing initialized successfully")
	}

	// Get default values from environment variables, with fallbacks
	portDefault := getEnv("PORT", "8080")
	dbPathDefault := getEnv("DB_PATH", "humanizer.db")
	redisAddrDefault := getEnv("REDIS_ADDR", "localhost:6379")
	corpusDirDefault := getEnv("CORPUS_DIR", "data/essays")
	ollamaURLDefault := getEnv("OLLAMA_URL", "http://localhost:11434")
	ollamaModelDefault := getEnv("OLLAMA_MODEL", "gpt-oss:20b")
	useOllamaDefault := getEnvBool("USE_OLLAMA", true)
	concurrencyDefault := getEnvInt("WORKER_CONCURRENCY", 4)

	var (
		port        = flag.String("port", portDefault, "Server port (env: PORT)")
		dbPath      = flag.String("db", dbPathDefault, "Database file path (env: DB_PATH)")
		redisAddr   = flag.String("redis-addr", redisAddrDefault, "Redis address for the task queue (env: REDIS_ADDR)")
		corpusDir   = flag.String("corpus-dir", corpusDirDefault, "Directory of corpus essays (env: CORPUS_DIR)")
		ollamaURL   = flag.String("ollama-url", ollamaURLDefault, "Ollama API URL (env: OLLAMA_URL)")
		ollamaModel = flag.String("ollama-model", ollamaModelDefault, "Ollama model to use (env: OLLAMA_MODEL)")
		useOllama   = flag.Bool("use-ollama", useOllamaDefault, "Enable Ollama for paraphrase and simplify (env: USE_OLLAMA)")
		concurrency = flag.Int("worker-concurrency", concurrencyDefault, "Background rewrite concurrency (env: WORKER_CONCURRENCY)")
	)
	flag.Parse()

	// Initialize database
	db, err := database.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "database_path", *dbPath)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Analyze the essay corpus. A missing or empty corpus is not fatal;
	// the analyzer falls back to built-in patterns and corpus-guided
	// modes degrade gracefully.
	corpusAnalyzer := corpus.New(*corpusDir)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	stats, err := corpusAnalyzer.Load(loadCtx)
	loadCancel()
	if err != nil {
		if errors.Is(err, corpus.ErrCorpusUnavailable) {
			logger.Warn("corpus unavailable, using fallback patterns", "corpus_dir", *corpusDir, "error", err)
		} else {
			logger.Warn("corpus analysis failed, using fallback patterns", "corpus_dir", *corpusDir, "error", err)
		}
	} else {
		logger.Info("corpus analyzed",
			"corpus_dir", *corpusDir,
			"essays", stats.EssayCount,
			"avg_sentence_length", stats.AvgSentenceLength,
		)
	}

	// Build the rewrite engine and service
	engine, err := humanizer.NewEngine(lexicon.Default())
	if err != nil {
		logger.Error("failed to initialize rewrite engine", "error", err)
		os.Exit(1)
	}

	serviceOpts := []humanizer.ServiceOption{
		humanizer.WithPatternSource(corpusAnalyzer),
		humanizer.WithServiceLogger(logger),
	}
	if *useOllama {
		ollamaClient, err := ollama.New(*ollamaURL, *ollamaModel)
		if err != nil {
			logger.Warn("failed to initialize Ollama client, paraphrase and simplify will use heuristic fallback",
				"error", err,
				"ollama_url", *ollamaURL,
				"ollama_model", *ollamaModel,
			)
		} else {
			logger.Info("Ollama client initialized", "model", *ollamaModel, "url", *ollamaURL)
			serviceOpts = append(serviceOpts, humanizer.WithLLM(ollamaClient))
		}
	} else {
		logger.Info("Ollama disabled, paraphrase and simplify will use heuristic fallback")
	}
	service := humanizer.NewService(engine, serviceOpts...)

	// Start the queue client and background worker
	queueClient := queue.NewClient(queue.ClientConfig{RedisAddr: *redisAddr})
	defer queueClient.Close()

	processor := queue.NewProcessor(service, db, logger)
	worker := queue.NewWorker(queue.WorkerConfig{
		RedisAddr:   *redisAddr,
		Concurrency: *concurrency,
	}, processor)
	go func() {
		if err := worker.Start(); err != nil {
			logger.Error("queue worker failed", "error", err)
			os.Exit(1)
		}
	}()

	// Initialize API handler
	apiHandler := api.NewHandler(db, service, queueClient)

	// Wrap handler with middleware chain: HTTP logging -> tracing -> handlers
	handler := logging.HTTPLoggingMiddleware(logger)(
		tracing.HTTPMiddleware("humanizer")(apiHandler),
	)

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // LLM-backed modes can be slow
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("humanizer service starting",
			"port", *port,
			"database", *dbPath,
			"redis", *redisAddr,
			"corpus_dir", *corpusDir,
			"ollama_enabled", *useOllama,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	worker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
