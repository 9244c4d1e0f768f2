package grocery

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit is a normalized measurement unit from the closed set the aggregator
// understands. Units are never converted across categories (volume, weight,
// count) because that would require per-ingredient density knowledge.
type Unit string

const (
	UnitTsp   Unit = "tsp"
	UnitTbsp  Unit = "tbsp"
	UnitCup   Unit = "cup"
	UnitMl    Unit = "ml"
	UnitL     Unit = "l"
	UnitG     Unit = "g"
	UnitKg    Unit = "kg"
	UnitOz    Unit = "oz"
	UnitLb    Unit = "lb"
	UnitCount Unit = "count"
)

var unitAliases = map[string]Unit{
	"tsp": UnitTsp, "tsps": UnitTsp, "teaspoon": UnitTsp, "teaspoons": UnitTsp,
	"tbsp": UnitTbsp, "tbsps": UnitTbsp, "tablespoon": UnitTbsp, "tablespoons": UnitTbsp,
	"cup": UnitCup, "cups": UnitCup,
	"ml": UnitMl, "milliliter": UnitMl, "milliliters": UnitMl, "millilitre": UnitMl, "millilitres": UnitMl,
	"l": UnitL, "liter": UnitL, "liters": UnitL, "litre": UnitL, "litres": UnitL,
	"g": UnitG, "gram": UnitG, "grams": UnitG, "gr": UnitG,
	"kg": UnitKg, "kilogram": UnitKg, "kilograms": UnitKg,
	"oz": UnitOz, "ounce": UnitOz, "ounces": UnitOz,
	"lb": UnitLb, "lbs": UnitLb, "pound": UnitLb, "pounds": UnitLb,
}

// prepWords are preparation verbs, size adjectives and filler dropped during
// name normalization so "diced tomatoes" and "tomato" collapse to one key.
var prepWords = map[string]struct{}{
	"fresh": {}, "freshly": {}, "chopped": {}, "diced": {}, "minced": {},
	"sliced": {}, "grated": {}, "shredded": {}, "peeled": {}, "crushed": {},
	"ground": {}, "cooked": {}, "uncooked": {}, "raw": {}, "large": {},
	"small": {}, "medium": {}, "ripe": {}, "finely": {}, "roughly": {},
	"thinly": {}, "coarsely": {}, "of": {}, "a": {}, "an": {}, "the": {},
	"to": {}, "taste": {}, "optional": {}, "packed": {}, "softened": {},
	"melted": {}, "divided": {}, "plus": {}, "more": {}, "extra": {},
	"for": {}, "serving": {}, "garnish": {}, "and": {}, "or": {},
	"boneless": {}, "skinless": {}, "trimmed": {}, "halved": {},
	"quartered": {}, "cubed": {}, "drained": {}, "rinsed": {}, "beaten": {},
	"pinch": {}, "dash": {}, "handful": {}, "some": {}, "few": {},
}

var vulgarFractions = strings.NewReplacer(
	"¼", " 1/4", "½", " 1/2", "¾", " 3/4",
	"⅓", " 1/3", "⅔", " 2/3", "⅛", " 1/8",
)

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// Parsed is the result of normalizing one raw ingredient line.
type Parsed struct {
	Raw            string
	NormalizedName string
	// Quantity is nil when no parseable numeric quantity was found; such
	// items are routed to the needs-review list by the aggregator.
	Quantity *float64
	Unit     Unit
	Aisle    string
}

// Normalize maps raw ingredient text (e.g. "2 cups chopped kale") to a
// canonical name, quantity, unit and default aisle. Pure function; the
// per-user aisle override table is applied later by the aggregator.
func Normalize(raw string) Parsed {
	p := Parsed{Raw: raw}

	s := strings.ToLower(strings.TrimSpace(raw))
	s = parenthetical.ReplaceAllString(s, " ")
	s = vulgarFractions.Replace(s)
	s = strings.ReplaceAll(s, ",", " ")

	tokens := strings.Fields(s)
	i := 0

	if i < len(tokens) {
		if v, ok := parseNumber(tokens[i]); ok {
			qty := v
			i++
			// Mixed fraction: "1 1/2 cups".
			if i < len(tokens) {
				if frac, ok := parseFraction(tokens[i]); ok {
					qty += frac
					i++
				}
			}
			p.Quantity = &qty
		}
	}

	if p.Quantity != nil && i < len(tokens) {
		tok := strings.TrimSuffix(tokens[i], ".")
		if u, ok := unitAliases[tok]; ok {
			p.Unit = u
			i++
		} else {
			p.Unit = UnitCount
		}
	}
	if p.Quantity != nil && p.Unit == "" {
		p.Unit = UnitCount
	}

	p.NormalizedName = normalizeName(tokens[i:])
	if p.NormalizedName == "" {
		// Nothing survived filtering; fall back to the cleaned text so the
		// item is never lost entirely.
		p.NormalizedName = strings.Join(tokens, " ")
	}

	p.Aisle = AisleFor(p.NormalizedName, nil)
	return p
}

func normalizeName(tokens []string) string {
	var kept []string
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".;:!*")
		if tok == "" {
			continue
		}
		if _, skip := prepWords[tok]; skip {
			continue
		}
		kept = append(kept, singularize(tok))
	}
	return strings.Join(kept, " ")
}

// singularize applies a few simple English plural rules. It is intentionally
// naive; the goal is collapsing "tomatoes"/"tomato", not linguistics.
func singularize(w string) string {
	switch {
	case len(w) <= 3:
		return w
	case strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "oes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"), strings.HasSuffix(w, "sses"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return w
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	default:
		return w
	}
}

func parseNumber(tok string) (float64, bool) {
	if frac, ok := parseFraction(tok); ok {
		return frac, true
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func parseFraction(tok string) (float64, bool) {
	num, den, ok := strings.Cut(tok, "/")
	if !ok {
		return 0, false
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || n < 0 || d <= 0 {
		return 0, false
	}
	return n / d, true
}

func splitWords(name string) []string {
	return strings.Fields(name)
}
