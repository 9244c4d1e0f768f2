package grocery

import (
	"sort"
)

// SourceKind distinguishes meals from cooking sessions in stats and options.
type SourceKind string

const (
	SourceMeal    SourceKind = "meal"
	SourceSession SourceKind = "cooking_session"
)

// Source is one included meal or cooking session with its recipe resolved.
// Callers resolve recipe references before aggregation; the aggregator never
// sees bare ids.
type Source struct {
	Kind                SourceKind
	RecipeID            string
	RecipeTitle         string
	Ingredients         []string
	BaseServings        int
	PlannedServings     int
	ExcludeFromShopping bool
}

// SourceDay groups the sources planned for one calendar date.
type SourceDay struct {
	Date    string
	Sources []Source
}

// Options controls which source kinds contribute and carries the per-user
// aisle override table (normalized name -> aisle).
type Options struct {
	IncludeMeals           bool
	IncludeCookingSessions bool
	AisleOverrides         map[string]string
}

// LineItem is a confidently merged and quantified shopping-list entry.
type LineItem struct {
	NormalizedName string  `json:"normalized_name"`
	Quantity       float64 `json:"quantity"`
	Unit           Unit    `json:"unit"`
	Aisle          string  `json:"aisle"`
	SourceCount    int     `json:"source_count"`
}

// ReviewItem is an entry whose quantities could not be reconciled. The
// original per-source texts, tagged with the recipe they came from, are
// preserved for manual reconciliation and are never silently summed or
// dropped.
type ReviewItem struct {
	NormalizedName string   `json:"normalized_name"`
	Aisle          string   `json:"aisle"`
	Sources        []string `json:"sources"`
	Reason         string   `json:"reason"`
}

// Stats reports aggregation counts.
type Stats struct {
	TotalItems     int `json:"total_items"`
	Resolved       int `json:"resolved"`
	NeedsReview    int `json:"needs_review"`
	MealSources    int `json:"meal_sources"`
	SessionSources int `json:"session_sources"`
}

// ShoppingList is the aggregated grocery list for a set of planned days.
type ShoppingList struct {
	Totals      []LineItem   `json:"totals"`
	NeedsReview []ReviewItem `json:"needs_review"`
	Stats       Stats        `json:"stats"`
}

const (
	reasonNoQuantity = "no parseable quantity"
	reasonMixed      = "mixed parseable and unparseable quantities"
)

type mergeKey struct {
	name string
	unit Unit
}

type accum struct {
	quantity float64
	count    int
	sources  []string
}

// Aggregate scales every included ingredient by plannedServings over the
// recipe's base servings, merges by normalized name + unit, and splits the
// result into confidently resolved totals and items needing manual review.
// Output ordering is stable (name, then unit) so aggregation over the same
// day set is byte-for-byte reproducible.
func Aggregate(days []SourceDay, opts Options) ShoppingList {
	resolved := make(map[mergeKey]*accum)
	var resolvedOrder []mergeKey
	review := make(map[string]*ReviewItem)
	var reviewOrder []string

	var stats Stats
	for _, day := range days {
		for _, src := range day.Sources {
			switch src.Kind {
			case SourceMeal:
				if !opts.IncludeMeals {
					continue
				}
			case SourceSession:
				if !opts.IncludeCookingSessions {
					continue
				}
			default:
				continue
			}
			if src.ExcludeFromShopping {
				continue
			}

			base := src.BaseServings
			if base <= 0 {
				base = 1
			}
			planned := src.PlannedServings
			if planned <= 0 {
				planned = 1
			}
			scale := float64(planned) / float64(base)

			if src.Kind == SourceMeal {
				stats.MealSources++
			} else {
				stats.SessionSources++
			}

			for _, raw := range src.Ingredients {
				p := Normalize(raw)
				origin := raw
				if src.RecipeTitle != "" {
					origin = raw + " (" + src.RecipeTitle + ")"
				}
				if p.Quantity == nil {
					r, ok := review[p.NormalizedName]
					if !ok {
						r = &ReviewItem{NormalizedName: p.NormalizedName, Reason: reasonNoQuantity}
						review[p.NormalizedName] = r
						reviewOrder = append(reviewOrder, p.NormalizedName)
					}
					r.Sources = append(r.Sources, origin)
					continue
				}

				k := mergeKey{name: p.NormalizedName, unit: p.Unit}
				a, ok := resolved[k]
				if !ok {
					a = &accum{}
					resolved[k] = a
					resolvedOrder = append(resolvedOrder, k)
				}
				a.quantity += *p.Quantity * scale
				a.count++
				a.sources = append(a.sources, origin)
			}
		}
	}

	// A name that needs review absorbs any resolved entries sharing that
	// name: a partial total would be misleading, so the whole merge set is
	// surfaced for manual reconciliation.
	for _, name := range reviewOrder {
		r := review[name]
		for _, k := range resolvedOrder {
			if k.name != name {
				continue
			}
			a, ok := resolved[k]
			if !ok {
				continue
			}
			r.Sources = append(r.Sources, a.sources...)
			r.Reason = reasonMixed
			delete(resolved, k)
		}
	}

	list := ShoppingList{}
	for _, k := range resolvedOrder {
		a, ok := resolved[k]
		if !ok {
			continue
		}
		// Quantities keep full precision so scaling servings by k scales
		// every total by exactly k; rendering rounds for display.
		list.Totals = append(list.Totals, LineItem{
			NormalizedName: k.name,
			Quantity:       a.quantity,
			Unit:           k.unit,
			Aisle:          AisleFor(k.name, opts.AisleOverrides),
			SourceCount:    a.count,
		})
	}
	sort.Slice(list.Totals, func(i, j int) bool {
		if list.Totals[i].NormalizedName != list.Totals[j].NormalizedName {
			return list.Totals[i].NormalizedName < list.Totals[j].NormalizedName
		}
		return list.Totals[i].Unit < list.Totals[j].Unit
	})

	for _, name := range reviewOrder {
		r := review[name]
		r.Aisle = AisleFor(name, opts.AisleOverrides)
		list.NeedsReview = append(list.NeedsReview, *r)
	}
	sort.Slice(list.NeedsReview, func(i, j int) bool {
		return list.NeedsReview[i].NormalizedName < list.NeedsReview[j].NormalizedName
	})

	stats.Resolved = len(list.Totals)
	stats.NeedsReview = len(list.NeedsReview)
	stats.TotalItems = stats.Resolved + stats.NeedsReview
	list.Stats = stats

	return list
}
