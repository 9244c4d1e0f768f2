package mealplan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/karsonthompson/mealdino-sub001/internal/plan"
)

// Repository persists committed meal-plan days: the durable plan an applied
// run writes into, one row per user and date.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// ReplaceDays commits every day in one transaction, replacing each date
// wholesale. Re-applying the same days is idempotent, and a failure anywhere
// rolls the whole commit back so an apply can never land partially.
func (r *Repository) ReplaceDays(ctx context.Context, userID string, days []plan.MealPlanDay) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin commit transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, day := range days {
		data, err := json.Marshal(day)
		if err != nil {
			return fmt.Errorf("failed to marshal day %s: %w", day.Date, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO meal_plan_days (user_id, date, data, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(user_id, date) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
			userID, day.Date, string(data), now)
		if err != nil {
			return fmt.Errorf("failed to commit day %s: %w", day.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plan days: %w", err)
	}
	return nil
}

// GetDay retrieves one committed day, or nil, nil when the date has no plan.
func (r *Repository) GetDay(ctx context.Context, userID, date string) (*plan.MealPlanDay, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM meal_plan_days WHERE user_id = ? AND date = ?`, userID, date).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan day %s: %w", date, err)
	}

	var day plan.MealPlanDay
	if err := json.Unmarshal([]byte(data), &day); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan day JSON: %w", err)
	}
	return &day, nil
}

// ListRange retrieves the committed days in [start, end], ordered by date.
func (r *Repository) ListRange(ctx context.Context, userID, start, end string) ([]plan.MealPlanDay, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT data FROM meal_plan_days
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan days: %w", err)
	}
	defer rows.Close()

	var days []plan.MealPlanDay
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan plan day row: %w", err)
		}
		var day plan.MealPlanDay
		if err := json.Unmarshal([]byte(data), &day); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan day JSON: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}
