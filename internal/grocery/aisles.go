package grocery

// Grocery aisles used to group shopping-list items for display.
const (
	AisleProduce     = "Produce"
	AisleMeatSeafood = "Meat & Seafood"
	AisleDairyEggs   = "Dairy & Eggs"
	AisleBakery      = "Bakery"
	AislePantry      = "Pantry"
	AisleSpices      = "Spices"
	AisleFrozen      = "Frozen"
	AisleBeverages   = "Beverages"
	AisleOther       = "Other"
)

// defaultAisles maps normalized ingredient names to their usual aisle.
// Per-user overrides (keyed by the same normalized name) always win.
var defaultAisles = map[string]string{
	// Produce
	"tomato": AisleProduce, "onion": AisleProduce, "garlic": AisleProduce,
	"potato": AisleProduce, "carrot": AisleProduce, "celery": AisleProduce,
	"kale": AisleProduce, "spinach": AisleProduce, "lettuce": AisleProduce,
	"cucumber": AisleProduce, "zucchini": AisleProduce, "broccoli": AisleProduce,
	"cauliflower": AisleProduce, "mushroom": AisleProduce, "avocado": AisleProduce,
	"lemon": AisleProduce, "lime": AisleProduce, "apple": AisleProduce,
	"banana": AisleProduce, "orange": AisleProduce, "berry": AisleProduce,
	"strawberry": AisleProduce, "blueberry": AisleProduce, "cilantro": AisleProduce,
	"parsley": AisleProduce, "basil": AisleProduce, "ginger": AisleProduce,
	"scallion": AisleProduce, "shallot": AisleProduce, "cabbage": AisleProduce,
	"pepper": AisleProduce, "sweet potato": AisleProduce, "corn": AisleProduce,

	// Meat & Seafood
	"chicken": AisleMeatSeafood, "chicken breast": AisleMeatSeafood,
	"chicken thigh": AisleMeatSeafood, "beef": AisleMeatSeafood,
	"steak": AisleMeatSeafood, "pork": AisleMeatSeafood, "bacon": AisleMeatSeafood,
	"sausage": AisleMeatSeafood, "turkey": AisleMeatSeafood, "lamb": AisleMeatSeafood,
	"salmon": AisleMeatSeafood, "tuna": AisleMeatSeafood, "shrimp": AisleMeatSeafood,
	"cod": AisleMeatSeafood, "fish": AisleMeatSeafood,

	// Dairy & Eggs
	"milk": AisleDairyEggs, "butter": AisleDairyEggs, "egg": AisleDairyEggs,
	"cheese": AisleDairyEggs, "cheddar": AisleDairyEggs, "parmesan": AisleDairyEggs,
	"mozzarella": AisleDairyEggs, "feta": AisleDairyEggs, "yogurt": AisleDairyEggs,
	"cream": AisleDairyEggs, "sour cream": AisleDairyEggs,
	"cream cheese": AisleDairyEggs, "heavy cream": AisleDairyEggs,

	// Bakery
	"bread": AisleBakery, "tortilla": AisleBakery, "pita": AisleBakery,
	"baguette": AisleBakery, "bun": AisleBakery,

	// Pantry
	"rice": AislePantry, "pasta": AislePantry, "spaghetti": AislePantry,
	"noodle": AislePantry, "flour": AislePantry, "sugar": AislePantry,
	"brown sugar": AislePantry, "olive oil": AislePantry, "oil": AislePantry,
	"vinegar": AislePantry, "soy sauce": AislePantry, "honey": AislePantry,
	"oat": AislePantry, "quinoa": AislePantry, "lentil": AislePantry,
	"bean": AislePantry, "black bean": AislePantry, "chickpea": AislePantry,
	"tomato paste": AislePantry, "tomato sauce": AislePantry,
	"coconut milk": AislePantry, "peanut butter": AislePantry,
	"broth": AislePantry, "stock": AislePantry, "tofu": AislePantry,
	"couscous": AislePantry, "almond": AislePantry, "walnut": AislePantry,
	"raisin": AislePantry, "baking powder": AislePantry, "baking soda": AislePantry,
	"vanilla extract": AislePantry, "maple syrup": AislePantry,

	// Spices
	"salt": AisleSpices, "black pepper": AisleSpices, "cumin": AisleSpices,
	"paprika": AisleSpices, "oregano": AisleSpices, "thyme": AisleSpices,
	"rosemary": AisleSpices, "cinnamon": AisleSpices, "chili powder": AisleSpices,
	"curry powder": AisleSpices, "turmeric": AisleSpices, "nutmeg": AisleSpices,
	"bay leaf": AisleSpices, "red pepper flake": AisleSpices,

	// Frozen
	"frozen pea": AisleFrozen, "pea": AisleFrozen, "frozen corn": AisleFrozen,
	"frozen spinach": AisleFrozen, "ice cream": AisleFrozen,

	// Beverages
	"coffee": AisleBeverages, "tea": AisleBeverages, "juice": AisleBeverages,
	"wine": AisleBeverages, "sparkling water": AisleBeverages,
}

// AisleFor returns the aisle for a normalized name, consulting the per-user
// override map first, then the default table, then falling back word by word
// (so "cherry tomato" still lands in Produce via "tomato").
func AisleFor(normalizedName string, overrides map[string]string) string {
	if aisle, ok := overrides[normalizedName]; ok {
		return aisle
	}
	if aisle, ok := defaultAisles[normalizedName]; ok {
		return aisle
	}
	words := splitWords(normalizedName)
	for i := len(words) - 1; i >= 0; i-- {
		if aisle, ok := defaultAisles[words[i]]; ok {
			return aisle
		}
	}
	return AisleOther
}
