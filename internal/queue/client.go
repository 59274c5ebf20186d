// Package queue runs the slow corpus-guided rewrite modes in the background
// via asynq. The synchronous modes never pass through here.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TypeRewrite is the task type for background rewrites.
const TypeRewrite = "humanizer:rewrite"

// QueueRewrites is the named queue background rewrites run on.
const QueueRewrites = "rewrites"

// RewritePayload is the payload for a background rewrite task.
type RewritePayload struct {
	RewriteID string `json:"rewrite_id"`
	Text      string `json:"text"`
	Mode      string `json:"mode"`
	Tone      string `json:"tone"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix nanoseconds
}

// Client wraps the asynq client for enqueueing rewrite tasks.
type Client struct {
	client *asynq.Client
}

// ClientConfig contains configuration for the queue client.
type ClientConfig struct {
	RedisAddr string
}

// NewClient creates a new queue client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}),
	}
}

// EnqueueRewrite enqueues a background rewrite and returns the task ID.
func (c *Client) EnqueueRewrite(ctx context.Context, rewriteID, text, mode, tone string) (string, error) {
	payload := RewritePayload{
		RewriteID:  rewriteID,
		Text:       text,
		Mode:       mode,
		Tone:       tone,
		EnqueuedAt: time.Now().UnixNano(),
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		payload.TraceID = sc.TraceID().String()
		payload.SpanID = sc.SpanID().String()
		span.AddEvent("task_enqueued", trace.WithAttributes(
			attribute.String("task.type", TypeRewrite),
			attribute.String("rewrite_id", rewriteID),
			attribute.String("mode", mode),
		))
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeRewrite, payloadBytes, asynq.TaskID(rewriteID))
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(5 * time.Minute),
		asynq.Queue(QueueRewrites),
		asynq.Retention(24 * time.Hour),
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue rewrite task: %w", err)
	}
	return info.ID, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
