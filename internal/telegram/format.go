package telegram

import (
	"fmt"
	"strings"

	"github.com/karsonthompson/mealdino-sub001/internal/grocery"
	"github.com/karsonthompson/mealdino-sub001/internal/plan"
)

func formatDraftParts(result *plan.DraftResult) (string, string) {
	run := result.Run
	catalog := run.OutputDraft.CatalogByID()

	var pb strings.Builder
	pb.WriteString(fmt.Sprintf("📅 *Draft Plan* (%s..%s)\n\n", run.DateRange.Start, run.DateRange.End))

	for _, day := range run.OutputDraft.MealPlanDays {
		pb.WriteString(fmt.Sprintf("*%s*\n", day.Date))
		for _, meal := range day.Meals {
			title := meal.RecipeID
			if rec, ok := catalog[meal.RecipeID]; ok {
				title = rec.Title
			}
			pb.WriteString(fmt.Sprintf("• %s: %s (x%d)\n", meal.Type, title, meal.PlannedServings))
		}
		for _, session := range day.CookingSessions {
			title := session.RecipeID
			if rec, ok := catalog[session.RecipeID]; ok {
				title = rec.Title
			}
			pb.WriteString(fmt.Sprintf("• cook: %s (x%d)\n", title, session.PlannedServings))
		}
		pb.WriteString("\n")
	}

	if run.Summary.WhyThisPlan != "" {
		pb.WriteString(fmt.Sprintf("_%s_\n", run.Summary.WhyThisPlan))
	}
	if run.Summary.Notes != "" {
		pb.WriteString(fmt.Sprintf("_%s_\n", run.Summary.Notes))
	}

	if violations := run.Violations(); len(violations) > 0 {
		pb.WriteString(fmt.Sprintf("\n🚫 *%d constraint violation(s)* — fix with /revise before /approve:\n", len(violations)))
		for _, v := range violations {
			title := v.RecipeTitle
			if title == "" {
				title = v.RecipeID
			}
			pb.WriteString(fmt.Sprintf("• *%s* conflicts with _%s_\n", title, v.Constraint))
		}
	} else {
		pb.WriteString("\nLooks good? /approve then /apply.")
	}

	return pb.String(), formatShoppingList(run.OutputDraft.ShoppingList)
}

func formatShoppingList(list grocery.ShoppingList) string {
	if len(list.Totals) == 0 && len(list.NeedsReview) == 0 {
		return "🛒 *Shopping List*\n\n_Empty_"
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n")

	byAisle := make(map[string][]grocery.LineItem)
	var aisles []string
	for _, item := range list.Totals {
		if _, seen := byAisle[item.Aisle]; !seen {
			aisles = append(aisles, item.Aisle)
		}
		byAisle[item.Aisle] = append(byAisle[item.Aisle], item)
	}
	for _, aisle := range aisles {
		sb.WriteString(fmt.Sprintf("\n*%s*\n", aisle))
		for _, item := range byAisle[aisle] {
			sb.WriteString(fmt.Sprintf("• %s %s %s\n", formatQuantity(item.Quantity), item.Unit, item.NormalizedName))
		}
	}

	if len(list.NeedsReview) > 0 {
		sb.WriteString("\n⚠️ *Needs review*\n")
		for _, item := range list.NeedsReview {
			sb.WriteString(fmt.Sprintf("• %s: %s\n", item.NormalizedName, strings.Join(item.Sources, "; ")))
		}
	}

	return sb.String()
}

func formatQuantity(q float64) string {
	s := strings.TrimRight(fmt.Sprintf("%.2f", q), "0")
	return strings.TrimRight(s, ".")
}
