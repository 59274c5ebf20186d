package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/niouspark/humanizer/internal/database"
	"github.com/niouspark/humanizer/internal/humanizer"
	"github.com/niouspark/humanizer/internal/lexicon"
	"github.com/niouspark/humanizer/internal/models"
)

type stubQueue struct {
	enqueued []string
	err      error
}

func (q *stubQueue) EnqueueRewrite(_ context.Context, rewriteID, _, _, _ string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, rewriteID)
	return "task-" + rewriteID, nil
}

func setupHandler(t *testing.T) (http.Handler, *database.DB, *stubQueue) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	engine, err := humanizer.NewEngine(lexicon.Default(), humanizer.WithSeed(8))
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	service := humanizer.NewService(engine)

	queue := &stubQueue{}
	return NewHandler(db, service, queue), db, queue
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	handler, _, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %q", resp["status"])
	}
}

func TestHandleRewrite(t *testing.T) {
	handler, _, _ := setupHandler(t)

	w := postJSON(t, handler, "/api/rewrite", map[string]string{
		"text": "The committee reviewed the proposal. The findings were presented last week.",
		"mode": models.ModeHumanize,
		"tone": models.ToneCasual,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success         bool                      `json:"success"`
		ID              string                    `json:"id"`
		ParaphrasedText string                    `json:"paraphrased_text"`
		WordCount       int                       `json:"word_count"`
		Analysis        models.HumanizationResult `json:"human_likeness_analysis"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if resp.ID == "" {
		t.Error("expected a rewrite ID")
	}
	if resp.ParaphrasedText == "" {
		t.Error("expected rewritten text")
	}
	if resp.WordCount == 0 {
		t.Error("expected a word count")
	}
	if resp.Analysis.HumanLikenessScore < 0 || resp.Analysis.HumanLikenessScore > 1 {
		t.Errorf("score out of range: %f", resp.Analysis.HumanLikenessScore)
	}
}

func TestHandleRewritePersists(t *testing.T) {
	handler, db, _ := setupHandler(t)

	w := postJSON(t, handler, "/api/rewrite", map[string]string{
		"text": "A short piece of text to rewrite.",
		"mode": models.ModeHumanize,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	saved, err := db.GetRewrite(resp.ID)
	if err != nil {
		t.Fatalf("rewrite was not persisted: %v", err)
	}
	if saved.Mode != models.ModeHumanize {
		t.Errorf("expected humanize mode, got %q", saved.Mode)
	}
}

func TestHandleRewriteValidation(t *testing.T) {
	handler, _, _ := setupHandler(t)

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing text", map[string]string{"mode": models.ModeHumanize}, "Text field is required"},
		{"missing mode", map[string]string{"text": "Some text."}, "Mode field is required"},
		{"unknown mode", map[string]string{"text": "Some text.", "mode": "translate"}, "unsupported mode"},
		{
			"oversized text",
			map[string]string{"text": strings.Repeat("word ", 2001), "mode": models.ModeHumanize},
			"word limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, handler, "/api/rewrite", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var resp struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Success {
				t.Error("rejected request should not report success")
			}
			if !strings.Contains(resp.Error, tt.want) {
				t.Errorf("error %q should mention %q", resp.Error, tt.want)
			}
		})
	}
}

func TestHandleRewriteMethodNotAllowed(t *testing.T) {
	handler, _, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/rewrite", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestHandleRewriteAsync(t *testing.T) {
	handler, _, queue := setupHandler(t)

	w := postJSON(t, handler, "/api/rewrite/async", map[string]string{
		"text": "Rewrite this in the background please.",
		"mode": models.ModeUltraHumanize,
	})

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["job_id"] == "" {
		t.Error("expected a job ID")
	}
	if resp["status"] != "queued" {
		t.Errorf("expected queued status, got %v", resp["status"])
	}
	if len(queue.enqueued) != 1 {
		t.Errorf("expected one enqueued task, got %d", len(queue.enqueued))
	}
}

func TestHandleRewriteAsyncQueueFailure(t *testing.T) {
	handler, _, queue := setupHandler(t)
	queue.err = errors.New("redis unavailable")

	w := postJSON(t, handler, "/api/rewrite/async", map[string]string{
		"text": "Rewrite this in the background please.",
		"mode": models.ModeWepHumanize,
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when the queue is down, got %d", w.Code)
	}
}

func TestHandleJobStatus(t *testing.T) {
	handler, db, _ := setupHandler(t)

	t.Run("pending job", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/unknown-job", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("expected 202 for pending job, got %d", w.Code)
		}
		var resp map[string]interface{}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "pending" {
			t.Errorf("expected pending, got %v", resp["status"])
		}
	})

	t.Run("completed job", func(t *testing.T) {
		now := time.Now().UTC()
		err := db.SaveRewrite(&models.Rewrite{
			ID:           "done-job",
			OriginalText: "Original.",
			Mode:         models.ModeWepHumanize,
			Result:       models.HumanizationResult{Text: "Rewritten.", KeywordRetention: 1},
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			t.Fatalf("SaveRewrite failed: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/jobs/done-job", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp map[string]interface{}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "completed" {
			t.Errorf("expected completed, got %v", resp["status"])
		}
	})
}

func TestHandleListRewrites(t *testing.T) {
	handler, db, _ := setupHandler(t)

	now := time.Now().UTC()
	for _, id := range []string{"one", "two"} {
		err := db.SaveRewrite(&models.Rewrite{
			ID:           id,
			OriginalText: "Text.",
			Mode:         models.ModeHumanize,
			Result:       models.HumanizationResult{Text: "Rewritten.", KeywordRetention: 1},
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			t.Fatalf("SaveRewrite failed: %v", err)
		}
		now = now.Add(time.Second)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rewrites?limit=10", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp []models.Rewrite
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Errorf("expected 2 rewrites, got %d", len(resp))
	}
}

func TestHandleRewriteOperations(t *testing.T) {
	handler, db, _ := setupHandler(t)

	now := time.Now().UTC()
	err := db.SaveRewrite(&models.Rewrite{
		ID:           "rw-1",
		OriginalText: "Text.",
		Mode:         models.ModeHumanize,
		Result:       models.HumanizationResult{Text: "Rewritten.", KeywordRetention: 1},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("SaveRewrite failed: %v", err)
	}

	t.Run("get existing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/rewrites/rw-1", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/rewrites/nope", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("delete existing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/rewrites/rw-1", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", w.Code)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/rewrites/rw-1", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
}

func TestGenerateID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := generateID()
		if len(id) != 36 {
			t.Fatalf("expected UUID length 36, got %d (%q)", len(id), id)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}
