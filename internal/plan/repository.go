package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository is a database-backed RunStore. The full run is stored as one
// JSON blob; status is duplicated into its own column for listing.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Create inserts a new run.
func (r *Repository) Create(ctx context.Context, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run to JSON: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO plan_runs (id, user_id, status, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.UserID, string(run.Status), string(data), run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// GetByIDAndUser retrieves a run scoped to its owner. Returns nil, nil when
// not found.
func (r *Repository) GetByIDAndUser(ctx context.Context, id, userID string) (*Run, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM plan_runs WHERE id = ? AND user_id = ?`, id, userID).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return unmarshalRun(data)
}

// LatestByUser retrieves the user's most recently created run, or nil, nil.
func (r *Repository) LatestByUser(ctx context.Context, userID string) (*Run, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM plan_runs WHERE user_id = ?
		ORDER BY created_at DESC LIMIT 1`, userID).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest run for user %s: %w", userID, err)
	}
	return unmarshalRun(data)
}

// Update overwrites a run record.
func (r *Repository) Update(ctx context.Context, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run to JSON: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE plan_runs SET status = ?, data = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		string(run.Status), string(data), time.Now().UTC(), run.ID, run.UserID)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", run.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrRunNotFound
	}
	return nil
}

func unmarshalRun(data string) (*Run, error) {
	var run Run
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run JSON: %w", err)
	}
	return &run, nil
}
