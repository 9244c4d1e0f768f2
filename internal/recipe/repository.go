package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/karsonthompson/mealdino-sub001/internal/profile"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts or updates a recipe.
func (r *Repository) Save(ctx context.Context, rec Recipe) error {
	if rec.BaseServings <= 0 {
		rec.BaseServings = 1
	}

	recipeJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipes (id, owner_id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET owner_id = excluded.owner_id, data = excluded.data, updated_at = excluded.updated_at`,
		rec.ID, rec.OwnerID, string(recipeJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// Get retrieves a recipe by its ID. Returns nil, nil when not found.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}

// ListEligible returns the recipes a user's planning run may draw from:
// global recipes plus the user's own, minus avoided ids and excluded
// categories from the planning preferences.
func (r *Repository) ListEligible(ctx context.Context, userID string, prefs profile.Preferences) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data FROM recipes WHERE owner_id = '' OR owner_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible recipes: %w", err)
	}
	defer rows.Close()

	avoided := make(map[string]struct{}, len(prefs.AvoidRecipeIDs))
	for _, id := range prefs.AvoidRecipeIDs {
		avoided[id] = struct{}{}
	}
	excludedCats := make(map[string]struct{}, len(prefs.ExcludedCategories))
	for _, c := range prefs.ExcludedCategories {
		excludedCats[strings.ToLower(c)] = struct{}{}
	}

	var recipes []Recipe
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}

		var rec Recipe
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			log.Printf("Warning: failed to unmarshal recipe JSON for ID %s: %v", id, err)
			continue
		}
		if _, skip := avoided[rec.ID]; skip {
			continue
		}
		if _, skip := excludedCats[strings.ToLower(rec.Category)]; skip {
			continue
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

// Count returns the number of recipes visible to the user.
func (r *Repository) Count(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE owner_id = '' OR owner_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}
