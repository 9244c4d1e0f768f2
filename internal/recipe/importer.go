package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"
	"time"

	"github.com/karsonthompson/mealdino-sub001/internal/llm"
	"github.com/karsonthompson/mealdino-sub001/internal/shared"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

//go:embed extractor_prompt.md
var extractorPrompt string

type extractorPromptData struct {
	URL     string
	Content string
}

// extractedRecipe is the JSON contract with the extraction model.
type extractedRecipe struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	BaseServings int      `json:"base_servings"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
}

// ImportResult carries the imported recipe plus execution metadata.
type ImportResult struct {
	Recipe Recipe
	Meta   shared.AgentMeta
}

// Importer fetches a recipe URL, extracts structured data with an LLM, and
// saves the result as a user-owned recipe.
type Importer struct {
	repo       *Repository
	textGen    llm.TextGenerator
	httpClient *http.Client
}

// NewImporter creates a new Importer.
func NewImporter(repo *Repository, textGen llm.TextGenerator) *Importer {
	return &Importer{
		repo:    repo,
		textGen: textGen,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ImportURL fetches the URL, extracts the recipe and persists it for the user.
func (imp *Importer) ImportURL(ctx context.Context, userID, url string) (ImportResult, error) {
	if imp.textGen == nil {
		return ImportResult{}, fmt.Errorf("recipe import requires an LLM API key")
	}

	start := time.Now()

	content, err := imp.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt, err := buildExtractorPrompt(extractorPromptData{URL: url, Content: content})
	if err != nil {
		return ImportResult{}, err
	}

	resp, err := imp.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return ImportResult{}, fmt.Errorf("recipe extraction failed: %w", err)
	}

	meta := shared.AgentMeta{
		AgentName: "Extractor",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(resp.Content), &extracted); err != nil {
		return ImportResult{Meta: meta}, fmt.Errorf(
			"failed to parse extractor response: %w. Response: %s", err, resp.Content)
	}
	if extracted.Title == "" || len(extracted.Ingredients) == 0 {
		return ImportResult{Meta: meta}, fmt.Errorf("extractor returned an incomplete recipe")
	}

	rec := Recipe{
		ID:           uuid.NewString(),
		OwnerID:      userID,
		Title:        extracted.Title,
		Ingredients:  extracted.Ingredients,
		Instructions: extracted.Instructions,
		BaseServings: extracted.BaseServings,
		Category:     extracted.Category,
		Tags:         extracted.Tags,
		SourceURL:    url,
		UpdatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	if err := imp.repo.Save(ctx, rec); err != nil {
		return ImportResult{Meta: meta}, fmt.Errorf("failed to save imported recipe: %w", err)
	}

	return ImportResult{Recipe: rec, Meta: meta}, nil
}

func (imp *Importer) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}

	resp, err := imp.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens.
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}

func buildExtractorPrompt(data extractorPromptData) (string, error) {
	tmpl, err := template.New("extractor").Parse(extractorPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
