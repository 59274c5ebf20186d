package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/niouspark/humanizer/internal/models"
)

// ErrNotFound is returned when a rewrite does not exist.
var ErrNotFound = errors.New("rewrite not found")

// SaveRewrite inserts or replaces a rewrite record.
func (db *DB) SaveRewrite(r *models.Rewrite) error {
	resultJSON, err := json.Marshal(r.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT OR REPLACE INTO rewrites (id, original_text, mode, tone, result, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.OriginalText, r.Mode, r.Tone, string(resultJSON), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rewrite: %w", err)
	}
	return nil
}

// GetRewrite retrieves a rewrite by ID.
func (db *DB) GetRewrite(id string) (*models.Rewrite, error) {
	var (
		originalText string
		mode         string
		tone         string
		resultJSON   string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := db.conn.QueryRow(`
		SELECT original_text, mode, tone, result, created_at, updated_at
		FROM rewrites
		WHERE id = ?
	`, id).Scan(&originalText, &mode, &tone, &resultJSON, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rewrite: %w", err)
	}

	var result models.HumanizationResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &models.Rewrite{
		ID:           id,
		OriginalText: originalText,
		Mode:         mode,
		Tone:         tone,
		Result:       result,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// ListRewrites returns rewrites ordered newest first.
func (db *DB) ListRewrites(limit, offset int) ([]*models.Rewrite, error) {
	rows, err := db.conn.Query(`
		SELECT id, original_text, mode, tone, result, created_at, updated_at
		FROM rewrites
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewrites: %w", err)
	}
	defer rows.Close()

	rewrites := []*models.Rewrite{}
	for rows.Next() {
		var (
			r          models.Rewrite
			resultJSON string
		)
		if err := rows.Scan(&r.ID, &r.OriginalText, &r.Mode, &r.Tone, &resultJSON, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rewrite: %w", err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &r.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		rewrites = append(rewrites, &r)
	}
	return rewrites, rows.Err()
}

// DeleteRewrite deletes a rewrite by ID.
func (db *DB) DeleteRewrite(id string) error {
	res, err := db.conn.Exec(`DELETE FROM rewrites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rewrite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
