package plan

import (
	"time"

	"github.com/karsonthompson/mealdino-sub001/internal/grocery"
	"github.com/karsonthompson/mealdino-sub001/internal/profile"
	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
)

// RunStatus represents the lifecycle state of a planning run.
type RunStatus string

const (
	StatusDraft    RunStatus = "draft"
	StatusApproved RunStatus = "approved"
	StatusApplied  RunStatus = "applied"
)

// DateFormat is the canonical calendar-date format for plan days and ranges.
const DateFormat = "2006-01-02"

// MealType is the slot a meal occupies in a day.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealSource says where the food for a meal comes from.
type MealSource string

const (
	SourceFresh     MealSource = "fresh"
	SourceLeftovers MealSource = "leftovers"
	SourceMealPrep  MealSource = "meal_prep"
	SourceFrozen    MealSource = "frozen"
)

// TimeSlot is when a cooking session happens.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

// SessionPurpose classifies a cooking session.
type SessionPurpose string

const (
	PurposeMealPrep     SessionPurpose = "meal_prep"
	PurposeBatchCooking SessionPurpose = "batch_cooking"
	PurposeWeeklyPrep   SessionPurpose = "weekly_prep"
	PurposeDailyCooking SessionPurpose = "daily_cooking"
)

const (
	minMealServings    = 1
	maxMealServings    = 4
	minSessionServings = 1
	maxSessionServings = 20
)

// Meal is one planned meal referencing a catalog recipe by id.
type Meal struct {
	Type                MealType   `json:"type"`
	RecipeID            string     `json:"recipe_id"`
	Notes               string     `json:"notes,omitempty"`
	Source              MealSource `json:"source,omitempty"`
	PlannedServings     int        `json:"planned_servings"`
	ExcludeFromShopping bool       `json:"exclude_from_shopping,omitempty"`
}

// CookingSession is one planned cooking block referencing a catalog recipe.
type CookingSession struct {
	RecipeID            string         `json:"recipe_id"`
	Notes               string         `json:"notes,omitempty"`
	TimeSlot            TimeSlot       `json:"time_slot,omitempty"`
	Servings            int            `json:"servings"`
	PlannedServings     int            `json:"planned_servings"`
	Purpose             SessionPurpose `json:"purpose,omitempty"`
	ExcludeFromShopping bool           `json:"exclude_from_shopping,omitempty"`
}

// MealPlanDay is the plan for a single calendar date.
type MealPlanDay struct {
	Date            string           `json:"date"`
	Meals           []Meal           `json:"meals,omitempty"`
	CookingSessions []CookingSession `json:"cooking_sessions,omitempty"`
}

// Violation names a hard constraint and the recipe triggering it.
type Violation struct {
	Constraint  string `json:"constraint"`
	RecipeID    string `json:"recipe_id"`
	RecipeTitle string `json:"recipe_title,omitempty"`
}

// Validation is the result of checking a draft against hard constraints.
// An empty violation list is the only value that unblocks approve and apply.
type Validation struct {
	HardConstraintViolations []Violation `json:"hard_constraint_violations"`
}

// Summary holds the narrative fields for human consumption. It never gates
// any transition.
type Summary struct {
	WhyThisPlan      string `json:"why_this_plan,omitempty"`
	UnmetConstraints string `json:"unmet_constraints,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// DateRange is an inclusive range of calendar dates, immutable after run
// creation.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Dates enumerates the range in calendar order.
func (r DateRange) Dates() []string {
	start, err1 := time.Parse(DateFormat, r.Start)
	end, err2 := time.Parse(DateFormat, r.End)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateFormat))
	}
	return dates
}

// InputSnapshot is the profile state captured once at run creation. It is a
// point-in-time value copy used for validation even if the live profile
// changes afterwards.
type InputSnapshot struct {
	HardConstraints             []string            `json:"hard_constraints,omitempty"`
	MedicalDisclaimerAcceptedAt *time.Time          `json:"medical_disclaimer_accepted_at,omitempty"`
	Preferences                 profile.Preferences `json:"preferences"`
}

// OutputDraft is a run's mutable work product.
type OutputDraft struct {
	RecipeCatalog []recipe.Recipe      `json:"recipe_catalog,omitempty"`
	MealPlanDays  []MealPlanDay        `json:"meal_plan_days,omitempty"`
	ShoppingList  grocery.ShoppingList `json:"shopping_list"`
	Validation    Validation           `json:"validation"`
}

// CatalogByID indexes the draft's recipe catalog.
func (d *OutputDraft) CatalogByID() map[string]recipe.Recipe {
	byID := make(map[string]recipe.Recipe, len(d.RecipeCatalog))
	for _, rec := range d.RecipeCatalog {
		byID[rec.ID] = rec
	}
	return byID
}

// Run identifies one planning session for one user.
type Run struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Status        RunStatus     `json:"status"`
	DateRange     DateRange     `json:"date_range"`
	InputSnapshot InputSnapshot `json:"input_snapshot"`
	OutputDraft   OutputDraft   `json:"output_draft"`
	Summary       Summary       `json:"summary"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	ApprovedAt    *time.Time    `json:"approved_at,omitempty"`
	AppliedAt     *time.Time    `json:"applied_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Violations is shorthand for the draft's current violation list.
func (r *Run) Violations() []Violation {
	return r.OutputDraft.Validation.HardConstraintViolations
}
