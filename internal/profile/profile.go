package profile

import "time"

// Preferences are the planning preference flags consulted when assembling a
// run's eligible recipe catalog.
type Preferences struct {
	AvoidRecipeIDs     []string `json:"avoid_recipe_ids,omitempty"`
	ExcludedCategories []string `json:"excluded_categories,omitempty"`
	DefaultServings    int      `json:"default_servings,omitempty"`
}

// Profile is a user's planning profile. The drafting pipeline never reads it
// live: a value copy is snapshotted into each run at creation time.
type Profile struct {
	UserID string `json:"user_id"`

	// HardConstraints are free-text, non-negotiable dietary/medical rules
	// (e.g. "no shellfish"). A run cannot be approved or applied while any
	// of them is violated.
	HardConstraints []string `json:"hard_constraints,omitempty"`

	MedicalDisclaimerAcceptedAt *time.Time  `json:"medical_disclaimer_accepted_at,omitempty"`
	Preferences                 Preferences `json:"preferences"`
}
