package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Worker wraps the asynq server for processing rewrite tasks.
type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	processor   *Processor
	concurrency int
	logger      *slog.Logger
}

// WorkerConfig contains configuration for the queue worker.
type WorkerConfig struct {
	RedisAddr   string
	Concurrency int
}

// NewWorker creates a new queue worker.
func NewWorker(cfg WorkerConfig, processor *Processor) *Worker {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	serverCfg := asynq.Config{
		Concurrency: cfg.Concurrency,

		// The ultra and wep modes run several heuristic passes plus a
		// corpus-guided rewrite, so a single queue with no strict
		// priority is enough.
		Queues: map[string]int{
			QueueRewrites: 5,
		},
		StrictPriority: false,

		// Retries cover transient failures (database locked, Redis
		// hiccups). Rewrites are deterministic per seed, so long
		// backoff windows buy nothing.
		RetryDelayFunc: retryDelay,

		ShutdownTimeout: 30 * time.Second,

		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)

			slog.Error("task processing error",
				"task_type", task.Type(),
				"error", err,
				"retry_count", retried,
				"max_retries", maxRetry,
			)
		}),
	}

	server := asynq.NewServer(redisOpt, serverCfg)
	mux := asynq.NewServeMux()

	w := &Worker{
		server:      server,
		mux:         mux,
		processor:   processor,
		concurrency: cfg.Concurrency,
		logger:      slog.Default(),
	}

	w.mux.HandleFunc(TypeRewrite, processor.HandleRewrite)

	return w
}

func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	delays := []time.Duration{
		30 * time.Second,
		1 * time.Minute,
		5 * time.Minute,
	}
	if n < len(delays) {
		return delays[n]
	}
	return delays[len(delays)-1]
}

// Start starts the worker to begin processing tasks. Blocks until Shutdown.
func (w *Worker) Start() error {
	w.logger.Info("starting asynq worker",
		"concurrency", w.concurrency,
		"queue", QueueRewrites,
	)

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("asynq server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the worker.
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down asynq worker")
	w.server.Shutdown()
}
