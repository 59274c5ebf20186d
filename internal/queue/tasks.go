package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/niouspark/humanizer/internal/database"
	"github.com/niouspark/humanizer/internal/humanizer"
	"github.com/niouspark/humanizer/internal/models"
)

// Processor handles background rewrite tasks.
type Processor struct {
	service *humanizer.Service
	db      *database.DB
	logger  *slog.Logger
}

// NewProcessor creates a task processor.
func NewProcessor(service *humanizer.Service, db *database.DB, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		service: service,
		db:      db,
		logger:  logger,
	}
}

// HandleRewrite processes a background rewrite task.
func (p *Processor) HandleRewrite(ctx context.Context, t *asynq.Task) error {
	var payload RewritePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	// Reconstruct the trace context from the enqueueing request so the
	// worker span links back to the HTTP span that created the task.
	if payload.TraceID != "" && payload.SpanID != "" {
		traceID, terr := trace.TraceIDFromHex(payload.TraceID)
		spanID, serr := trace.SpanIDFromHex(payload.SpanID)
		if terr == nil && serr == nil {
			sc := trace.NewSpanContext(trace.SpanContextConfig{
				TraceID:    traceID,
				SpanID:     spanID,
				TraceFlags: trace.FlagsSampled,
				Remote:     true,
			})
			ctx = trace.ContextWithSpanContext(ctx, sc)
		}
	}

	tracer := otel.Tracer("humanizer-worker")
	ctx, span := tracer.Start(ctx, "queue.rewrite", trace.WithAttributes(
		attribute.String("rewrite_id", payload.RewriteID),
		attribute.String("mode", payload.Mode),
		attribute.String("tone", payload.Tone),
	))
	defer span.End()

	queueWait := time.Since(time.Unix(0, payload.EnqueuedAt))
	p.logger.Info("processing rewrite task",
		"rewrite_id", payload.RewriteID,
		"mode", payload.Mode,
		"queue_wait", queueWait)

	start := time.Now()
	result, err := p.service.Process(ctx, payload.Text, payload.Mode, payload.Tone)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("rewrite failed: %w", err)
	}

	now := time.Now().UTC()
	rewrite := &models.Rewrite{
		ID:           payload.RewriteID,
		OriginalText: payload.Text,
		Mode:         payload.Mode,
		Tone:         payload.Tone,
		Result:       result,
		CreatedAt:    time.Unix(0, payload.EnqueuedAt).UTC(),
		UpdatedAt:    now,
	}
	if err := p.db.SaveRewrite(rewrite); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save rewrite: %w", err)
	}

	p.logger.Info("rewrite task complete",
		"rewrite_id", payload.RewriteID,
		"mode", payload.Mode,
		"score", result.HumanLikenessScore,
		"duration", time.Since(start))
	return nil
}
