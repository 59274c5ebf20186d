package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/niouspark/humanizer/internal/database"
	"github.com/niouspark/humanizer/internal/humanizer"
	"github.com/niouspark/humanizer/internal/models"
	"github.com/niouspark/humanizer/pkg/tracing"
)

// maxInputWords is the request-level ceiling on input size. The rewrite
// engine itself has no limit; oversized inputs are rejected here so a
// single request cannot monopolise the worker pool.
const maxInputWords = 2000

var (
	rewriteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "humanizer_rewrite_requests_total",
		Help: "Total rewrite requests by mode and outcome.",
	}, []string{"mode", "outcome"})

	rewriteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "humanizer_rewrite_duration_seconds",
		Help:    "Duration of synchronous rewrites by mode.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	rewriteScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "humanizer_rewrite_score",
		Help:    "Distribution of human-likeness scores.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})
)

// QueueClient enqueues background rewrite tasks.
type QueueClient interface {
	EnqueueRewrite(ctx context.Context, rewriteID, text, mode, tone string) (string, error)
}

// Handler handles HTTP requests
type Handler struct {
	db          *database.DB
	service     *humanizer.Service
	queueClient QueueClient
	mux         *http.ServeMux
}

// NewHandler creates a new API handler with CORS support and metrics
func NewHandler(db *database.DB, service *humanizer.Service, queueClient QueueClient) http.Handler {
	h := &Handler{
		db:          db,
		service:     service,
		queueClient: queueClient,
		mux:         http.NewServeMux(),
	}

	h.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(h.mux)
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.Handler())
	h.mux.HandleFunc("/api/rewrite", h.handleRewrite)
	h.mux.HandleFunc("/api/rewrite/async", h.handleRewriteAsync)
	h.mux.HandleFunc("/api/jobs/", h.handleJobStatus)
	h.mux.HandleFunc("/api/rewrites", h.handleListRewrites)
	h.mux.HandleFunc("/api/rewrites/", h.handleRewriteOperations)
	h.mux.HandleFunc("/health", h.handleHealth)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

type rewriteRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
	Tone string `json:"tone,omitempty"`
}

// validate checks the request and returns a client-facing error message.
func (req *rewriteRequest) validate() string {
	if req.Text == "" {
		return "Text field is required"
	}
	if n := len(strings.Fields(req.Text)); n > maxInputWords {
		return fmt.Sprintf("Text exceeds the %d word limit (got %d words)", maxInputWords, n)
	}
	if req.Mode == "" {
		return "Mode field is required"
	}
	if !models.KnownMode(req.Mode) {
		return fmt.Sprintf("unsupported mode %q", req.Mode)
	}
	return ""
}

// handleRewrite runs the fast modes synchronously and returns the result.
func (h *Handler) handleRewrite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rewriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if msg := req.validate(); msg != "" {
		rewriteRequests.WithLabelValues(req.Mode, "rejected").Inc()
		respondError(w, msg, http.StatusBadRequest)
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.Int("text.length", len(req.Text)),
		attribute.String("rewrite.mode", req.Mode))

	start := time.Now()
	result, err := h.service.Process(r.Context(), req.Text, req.Mode, req.Tone)
	if err != nil {
		if errors.Is(err, humanizer.ErrUnsupportedMode) {
			rewriteRequests.WithLabelValues(req.Mode, "rejected").Inc()
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		rewriteRequests.WithLabelValues(req.Mode, "error").Inc()
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rewriteRequests.WithLabelValues(req.Mode, "ok").Inc()
	rewriteDuration.WithLabelValues(req.Mode).Observe(time.Since(start).Seconds())
	rewriteScore.Observe(result.HumanLikenessScore)

	now := time.Now().UTC()
	rewrite := &models.Rewrite{
		ID:           generateID(),
		OriginalText: req.Text,
		Mode:         req.Mode,
		Tone:         req.Tone,
		Result:       result,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	response := map[string]interface{}{
		"success":                 true,
		"id":                      rewrite.ID,
		"paraphrased_text":        result.Text,
		"word_count":              result.FinalLength,
		"human_likeness_analysis": result,
	}
	if err := h.db.SaveRewrite(rewrite); err != nil {
		// The caller still gets their result; persistence is best effort
		// for synchronous rewrites.
		delete(response, "id")
	}
	respondJSON(w, response, http.StatusOK)
}

// handleRewriteAsync queues the slow modes and returns a job ID.
func (h *Handler) handleRewriteAsync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rewriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if msg := req.validate(); msg != "" {
		rewriteRequests.WithLabelValues(req.Mode, "rejected").Inc()
		respondError(w, msg, http.StatusBadRequest)
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.Int("text.length", len(req.Text)),
		attribute.String("rewrite.mode", req.Mode))

	rewriteID := generateID()
	taskID, err := h.queueClient.EnqueueRewrite(r.Context(), rewriteID, req.Text, req.Mode, req.Tone)
	if err != nil {
		rewriteRequests.WithLabelValues(req.Mode, "error").Inc()
		respondError(w, fmt.Sprintf("Failed to enqueue rewrite: %v", err), http.StatusInternalServerError)
		return
	}

	rewriteRequests.WithLabelValues(req.Mode, "queued").Inc()
	respondJSON(w, map[string]interface{}{
		"job_id":  rewriteID,
		"task_id": taskID,
		"status":  "queued",
		"message": "Rewrite queued for processing",
	}, http.StatusAccepted)
}

// handleJobStatus handles job status requests
func (h *Handler) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Path[len("/api/jobs/"):]
	if idx := strings.Index(jobID, "/"); idx != -1 {
		jobID = jobID[:idx]
	}

	if jobID == "" {
		respondError(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	rewrite, err := h.db.GetRewrite(jobID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// The worker writes the row only on completion, so absence
			// means queued, in flight, or expired.
			respondJSON(w, map[string]interface{}{
				"job_id":  jobID,
				"status":  "pending",
				"message": "Rewrite not complete - it may still be queued or has expired",
			}, http.StatusAccepted)
			return
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"job_id":     jobID,
		"status":     "completed",
		"created_at": rewrite.CreatedAt,
		"updated_at": rewrite.UpdatedAt,
		"rewrite":    rewrite,
	}, http.StatusOK)
}

// handleListRewrites handles listing all rewrites with pagination
func (h *Handler) handleListRewrites(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 10
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	rewrites, err := h.db.ListRewrites(limit, offset)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, rewrites, http.StatusOK)
}

// handleRewriteOperations handles GET and DELETE for specific rewrites
func (h *Handler) handleRewriteOperations(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/api/rewrites/"):]
	if id == "" {
		respondError(w, "Rewrite ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getRewrite(w, id)
	case http.MethodDelete:
		h.deleteRewrite(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getRewrite(w http.ResponseWriter, id string) {
	rewrite, err := h.db.GetRewrite(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, err.Error(), http.StatusNotFound)
		} else {
			respondError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	respondJSON(w, rewrite, http.StatusOK)
}

func (h *Handler) deleteRewrite(w http.ResponseWriter, id string) {
	if err := h.db.DeleteRewrite(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, err.Error(), http.StatusNotFound)
		} else {
			respondError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// generateID generates a UUID for a rewrite
func generateID() string {
	uuid := make([]byte, 16)
	_, err := rand.Read(uuid)
	if err != nil {
		// Fallback to timestamp-based ID if random generation fails
		return time.Now().Format("20060102150405") + "-" + strconv.FormatInt(time.Now().UnixNano()%1000000, 10)
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x40 // Version 4
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // Variant bits

	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hex.EncodeToString(uuid[0:4]),
		hex.EncodeToString(uuid[4:6]),
		hex.EncodeToString(uuid[6:8]),
		hex.EncodeToString(uuid[8:10]),
		hex.EncodeToString(uuid[10:16]))
}
