package plan

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/karsonthompson/mealdino-sub001/internal/llm"
	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
	"github.com/karsonthompson/mealdino-sub001/internal/shared"
)

//go:embed draft_prompt.md
var draftPrompt string

type draftPromptData struct {
	Dates               []string
	HardConstraints     []string
	Catalog             []recipe.Recipe
	RevisionInstruction string
	PriorDays           []MealPlanDay
}

// rawDraft is the JSON contract with the drafting model.
type rawDraft struct {
	Days      []MealPlanDay `json:"days"`
	Rationale string        `json:"rationale"`
}

// LLMGenerator drafts plans through a TextGenerator backend.
type LLMGenerator struct {
	textGen llm.TextGenerator
}

// NewLLMGenerator creates a new LLMGenerator.
func NewLLMGenerator(textGen llm.TextGenerator) *LLMGenerator {
	return &LLMGenerator{textGen: textGen}
}

// Generate renders the drafting prompt and parses the model's JSON reply.
func (g *LLMGenerator) Generate(ctx context.Context, in GenerationInput) (GenerationResult, error) {
	start := time.Now()

	prompt, err := buildDraftPrompt(draftPromptData{
		Dates:               in.DateRange.Dates(),
		HardConstraints:     in.Snapshot.HardConstraints,
		Catalog:             in.Catalog,
		RevisionInstruction: in.RevisionInstruction,
		PriorDays:           in.PriorDays,
	})
	if err != nil {
		return GenerationResult{}, err
	}

	resp, err := g.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return GenerationResult{}, err
	}

	meta := shared.AgentMeta{
		AgentName: "Drafter",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	var raw rawDraft
	if err := json.Unmarshal([]byte(resp.Content), &raw); err != nil {
		return GenerationResult{Meta: meta}, fmt.Errorf(
			"failed to parse draft response: %w. Response: %s", err, resp.Content)
	}
	if len(raw.Days) == 0 {
		return GenerationResult{Meta: meta}, fmt.Errorf("draft response contained no days")
	}

	return GenerationResult{
		Days:      raw.Days,
		Rationale: raw.Rationale,
		Meta:      meta,
	}, nil
}

func buildDraftPrompt(data draftPromptData) (string, error) {
	tmpl, err := template.New("drafter").Parse(draftPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
