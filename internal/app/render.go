package app

import (
	"fmt"
	"strings"

	"github.com/karsonthompson/mealdino-sub001/internal/grocery"
	"github.com/karsonthompson/mealdino-sub001/internal/plan"
)

func (a *App) printDraft(result *plan.DraftResult) {
	run := result.Run

	fmt.Printf("\n=== Draft for %s..%s (run %s) ===\n",
		run.DateRange.Start, run.DateRange.End, run.ID)

	catalog := run.OutputDraft.CatalogByID()
	for _, day := range run.OutputDraft.MealPlanDays {
		fmt.Printf("\n%s\n", day.Date)
		for _, meal := range day.Meals {
			title := meal.RecipeID
			if rec, ok := catalog[meal.RecipeID]; ok {
				title = rec.Title
			}
			fmt.Printf("  %-10s %s (serves %d)\n", meal.Type, title, meal.PlannedServings)
		}
		for _, session := range day.CookingSessions {
			title := session.RecipeID
			if rec, ok := catalog[session.RecipeID]; ok {
				title = rec.Title
			}
			fmt.Printf("  cook       %s x%d\n", title, session.PlannedServings)
		}
	}

	if run.Summary.WhyThisPlan != "" {
		fmt.Printf("\nWhy this plan: %s\n", run.Summary.WhyThisPlan)
	}
	if run.Summary.UnmetConstraints != "" {
		fmt.Printf("Unmet constraints: %s\n", run.Summary.UnmetConstraints)
	}
	if run.Summary.Notes != "" {
		fmt.Printf("Notes: %s\n", run.Summary.Notes)
	}

	for _, dropped := range result.DroppedRefs {
		fmt.Printf("Dropped unknown recipe %s from %s\n", dropped.RecipeID, dropped.Date)
	}
	for _, date := range result.DroppedDays {
		fmt.Printf("Dropped malformed day %q\n", date)
	}

	if violations := run.Violations(); len(violations) > 0 {
		printViolations(violations)
	}

	printShoppingList(run.OutputDraft.ShoppingList)
}

func printViolations(violations []plan.Violation) {
	fmt.Printf("\n%d hard constraint violation(s):\n", len(violations))
	for _, v := range violations {
		title := v.RecipeTitle
		if title == "" {
			title = v.RecipeID
		}
		fmt.Printf("  - %q conflicts with %q\n", title, v.Constraint)
	}
}

func printShoppingList(list grocery.ShoppingList) {
	if len(list.Totals) == 0 && len(list.NeedsReview) == 0 {
		fmt.Println("\nShopping list is empty.")
		return
	}

	fmt.Println("\nShopping list:")
	byAisle := make(map[string][]grocery.LineItem)
	var aisles []string
	for _, item := range list.Totals {
		if _, seen := byAisle[item.Aisle]; !seen {
			aisles = append(aisles, item.Aisle)
		}
		byAisle[item.Aisle] = append(byAisle[item.Aisle], item)
	}
	for _, aisle := range aisles {
		fmt.Printf("\n  [%s]\n", aisle)
		for _, item := range byAisle[aisle] {
			fmt.Printf("    %s %s %s\n", trimQuantity(item.Quantity), item.Unit, item.NormalizedName)
		}
	}

	if len(list.NeedsReview) > 0 {
		fmt.Println("\n  [Needs review]")
		for _, item := range list.NeedsReview {
			fmt.Printf("    %s (%s): %s\n", item.NormalizedName, item.Reason,
				strings.Join(item.Sources, "; "))
		}
	}

	fmt.Printf("\n  %d item(s), %d need review\n", list.Stats.TotalItems, list.Stats.NeedsReview)
}

func trimQuantity(q float64) string {
	s := fmt.Sprintf("%.2f", q)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
