package plan

import (
	"strings"

	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
)

// constraintFiller are words carrying no matchable meaning in a hard
// constraint like "no shellfish" or "avoid red meat, please".
var constraintFiller = map[string]struct{}{
	"no": {}, "not": {}, "none": {}, "never": {}, "avoid": {}, "without": {},
	"free": {}, "of": {}, "any": {}, "the": {}, "a": {}, "an": {},
	"please": {}, "strictly": {}, "allergy": {}, "allergic": {}, "to": {},
	"i": {}, "we": {}, "my": {}, "eat": {}, "food": {}, "foods": {},
	"dont": {}, "don't": {}, "cannot": {}, "cant": {}, "can't": {},
}

// ValidateDraft checks the given recipes against the snapshot's hard
// constraints and returns the violations found. Matching is keyword/substring
// based over recipe titles and ingredient text, not semantic; that is a
// documented limitation of this validator, not a bug. The medical disclaimer
// timestamp is not consulted here: it gates medically sensitive output at the
// surface layer, and keyword validation proceeds either way. A snapshot with
// no constraints always yields an empty list.
func ValidateDraft(snapshot InputSnapshot, recipes []recipe.Recipe) Validation {
	v := Validation{HardConstraintViolations: []Violation{}}

	for _, constraint := range snapshot.HardConstraints {
		keywords := constraintKeywords(constraint)
		if len(keywords) == 0 {
			continue
		}
		for _, rec := range recipes {
			if recipeMatches(rec, keywords) {
				v.HardConstraintViolations = append(v.HardConstraintViolations, Violation{
					Constraint:  constraint,
					RecipeID:    rec.ID,
					RecipeTitle: rec.Title,
				})
			}
		}
	}
	return v
}

// recipeMatches reports whether every keyword appears in the recipe's title
// or ingredient text. Requiring all keywords keeps "no red meat" from
// flagging every recipe containing "red".
func recipeMatches(rec recipe.Recipe, keywords []string) bool {
	var sb strings.Builder
	sb.WriteString(rec.Title)
	for _, ing := range rec.Ingredients {
		sb.WriteByte(' ')
		sb.WriteString(ing)
	}
	haystack := strings.ToLower(sb.String())

	for _, kw := range keywords {
		if !strings.Contains(haystack, kw) {
			return false
		}
	}
	return true
}

func constraintKeywords(constraint string) []string {
	fields := strings.FieldsFunc(strings.ToLower(constraint), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '\'')
	})

	var keywords []string
	for _, f := range fields {
		if _, skip := constraintFiller[f]; skip {
			continue
		}
		if len(f) < 3 {
			continue
		}
		keywords = append(keywords, f)
	}
	return keywords
}
