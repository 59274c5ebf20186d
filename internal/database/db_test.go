package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/niouspark/humanizer/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func sampleRewrite(id string, createdAt time.Time) *models.Rewrite {
	return &models.Rewrite{
		ID:           id,
		OriginalText: "The committee reviewed the proposal.",
		Mode:         models.ModeHumanize,
		Tone:         models.ToneCasual,
		Result: models.HumanizationResult{
			Text:               "Honestly, the committee looked over the proposal.",
			OriginalLength:     6,
			FinalLength:        8,
			HumanLikenessScore: 0.74,
			Improvements:       []string{"sentence variation", "final polish"},
			Metrics: models.HumanizationMetrics{
				SentenceVariation: 0.4,
				NaturalFlow:       0.5,
				Readability:       0.8,
				GrammarQuality:    1,
			},
			KeywordRetention: 1,
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate should be a no-op, got %v", err)
	}
}

func TestSaveAndGetRewrite(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Second)
	original := sampleRewrite("rw-1", now)
	if err := db.SaveRewrite(original); err != nil {
		t.Fatalf("SaveRewrite failed: %v", err)
	}

	got, err := db.GetRewrite("rw-1")
	if err != nil {
		t.Fatalf("GetRewrite failed: %v", err)
	}

	if got.OriginalText != original.OriginalText {
		t.Errorf("original text mismatch: %q vs %q", got.OriginalText, original.OriginalText)
	}
	if got.Mode != original.Mode || got.Tone != original.Tone {
		t.Errorf("mode/tone mismatch: %q/%q vs %q/%q", got.Mode, got.Tone, original.Mode, original.Tone)
	}
	if got.Result.Text != original.Result.Text {
		t.Errorf("result text mismatch: %q vs %q", got.Result.Text, original.Result.Text)
	}
	if got.Result.HumanLikenessScore != original.Result.HumanLikenessScore {
		t.Errorf("score mismatch: %f vs %f", got.Result.HumanLikenessScore, original.Result.HumanLikenessScore)
	}
	if len(got.Result.Improvements) != len(original.Result.Improvements) {
		t.Errorf("improvements mismatch: %v vs %v", got.Result.Improvements, original.Result.Improvements)
	}
}

func TestSaveRewriteReplaces(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now().UTC()
	r := sampleRewrite("rw-1", now)
	if err := db.SaveRewrite(r); err != nil {
		t.Fatalf("SaveRewrite failed: %v", err)
	}

	r.Result.Text = "A different rewrite entirely."
	r.UpdatedAt = now.Add(time.Minute)
	if err := db.SaveRewrite(r); err != nil {
		t.Fatalf("second SaveRewrite failed: %v", err)
	}

	got, err := db.GetRewrite("rw-1")
	if err != nil {
		t.Fatalf("GetRewrite failed: %v", err)
	}
	if got.Result.Text != "A different rewrite entirely." {
		t.Errorf("expected replaced result, got %q", got.Result.Text)
	}
}

func TestGetRewriteNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetRewrite("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListRewrites(t *testing.T) {
	db := setupTestDB(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"rw-a", "rw-b", "rw-c"} {
		r := sampleRewrite(id, base.Add(time.Duration(i)*time.Minute))
		if err := db.SaveRewrite(r); err != nil {
			t.Fatalf("SaveRewrite failed: %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := db.ListRewrites(10, 0)
		if err != nil {
			t.Fatalf("ListRewrites failed: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 rewrites, got %d", len(got))
		}
		if got[0].ID != "rw-c" || got[2].ID != "rw-a" {
			t.Errorf("wrong order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		got, err := db.ListRewrites(1, 1)
		if err != nil {
			t.Fatalf("ListRewrites failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != "rw-b" {
			t.Errorf("expected rw-b, got %v", got)
		}
	})

	t.Run("empty page", func(t *testing.T) {
		got, err := db.ListRewrites(10, 100)
		if err != nil {
			t.Fatalf("ListRewrites failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no rewrites, got %d", len(got))
		}
	})
}

func TestDeleteRewrite(t *testing.T) {
	db := setupTestDB(t)

	r := sampleRewrite("rw-1", time.Now().UTC())
	if err := db.SaveRewrite(r); err != nil {
		t.Fatalf("SaveRewrite failed: %v", err)
	}

	if err := db.DeleteRewrite("rw-1"); err != nil {
		t.Fatalf("DeleteRewrite failed: %v", err)
	}

	if _, err := db.GetRewrite("rw-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := db.DeleteRewrite("rw-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting a missing rewrite should return ErrNotFound, got %v", err)
	}
}
