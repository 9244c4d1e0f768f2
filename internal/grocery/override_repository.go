package grocery

import (
	"context"
	"database/sql"
	"fmt"
)

// OverrideRepository persists per-user aisle overrides, keyed by normalized
// ingredient name.
type OverrideRepository struct {
	db *sql.DB
}

// NewOverrideRepository creates a new OverrideRepository.
func NewOverrideRepository(d *sql.DB) *OverrideRepository {
	return &OverrideRepository{db: d}
}

// ListByUser returns the user's overrides as a normalizedName -> aisle map.
// The map is rebuilt on every call; aggregation never caches it.
func (r *OverrideRepository) ListByUser(ctx context.Context, userID string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT normalized_name, aisle FROM aisle_overrides WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list aisle overrides: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]string)
	for rows.Next() {
		var name, aisle string
		if err := rows.Scan(&name, &aisle); err != nil {
			return nil, fmt.Errorf("failed to scan aisle override: %w", err)
		}
		overrides[name] = aisle
	}
	return overrides, rows.Err()
}

// Set upserts one override for the user.
func (r *OverrideRepository) Set(ctx context.Context, userID, normalizedName, aisle string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO aisle_overrides (user_id, normalized_name, aisle)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, normalized_name) DO UPDATE SET aisle = excluded.aisle`,
		userID, normalizedName, aisle)
	if err != nil {
		return fmt.Errorf("failed to set aisle override: %w", err)
	}
	return nil
}

// Delete removes one override for the user.
func (r *OverrideRepository) Delete(ctx context.Context, userID, normalizedName string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM aisle_overrides WHERE user_id = ? AND normalized_name = ?`,
		userID, normalizedName)
	if err != nil {
		return fmt.Errorf("failed to delete aisle override: %w", err)
	}
	return nil
}
