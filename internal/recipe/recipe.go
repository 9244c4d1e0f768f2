package recipe

// Recipe is a stored recipe. An empty OwnerID marks a global recipe visible
// to every user; otherwise the recipe belongs to one user.
type Recipe struct {
	ID           string   `json:"id"`
	OwnerID      string   `json:"owner_id,omitempty"`
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	BaseServings int      `json:"base_servings"`
	Category     string   `json:"category,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	SourceURL    string   `json:"source_url,omitempty"`
	UpdatedAt    string   `json:"updated_at,omitempty"`
}
