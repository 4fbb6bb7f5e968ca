package search

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/watchengine/watch-engine-backend/internal/criteria"
	"github.com/watchengine/watch-engine-backend/internal/watches"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/llm"
	"github.com/watchengine/watch-engine-backend/pkg/watchdb"
)

const (
	recommendSystemPrompt = "You are a watch expert. Find watches that match the given criteria and return them in the specified JSON format. " +
		"ONLY return valid JSON with no additional text. The watches MUST match the specific criteria provided."
	recommendTemperature = 0.9
	recommendCount       = 5
	maxSeed              = 1000
)

var recommendFields = []string{
	"watchId (a number)",
	"makeName (brand name)",
	"modelName (model name)",
	"familyName (category like Diving, Chronograph, etc.)",
	"yearProducedName (year)",
	"url (image URL)",
	"priceInEuro (price in euros)",
	"movementName (movement type)",
	"functionName (function type)",
	"reference (reference number)",
}

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// LLMProvider asks the chat model to recommend watches for the criteria.
type LLMProvider struct {
	chat llm.Chatter
	seed func() int
}

func NewLLMProvider(chat llm.Chatter) *LLMProvider {
	return &LLMProvider{chat: chat, seed: func() int { return rand.IntN(maxSeed) }}
}

func (p *LLMProvider) Search(ctx context.Context, req Request) (Result, error) {
	if p.chat == nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeInternal, "OpenAI API key is not configured")
	}

	seed := p.seed()
	content, err := p.chat.Complete(ctx, llm.ChatRequest{
		System:      recommendSystemPrompt,
		User:        recommendPrompt(req.Criteria),
		Temperature: recommendTemperature,
		Seed:        &seed,
	})
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeUpstream) {
			return Result{}, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "Failed to search for watches")
		}
		return Result{}, err
	}
	if content == "" {
		content = `{"watches": []}`
	}

	suggested, err := parseRecommendations(content)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "Error parsing watch recommendations")
	}

	out := make([]watches.WatchDTO, 0, len(suggested))
	for _, w := range suggested {
		if strings.TrimSpace(w.ModelName) == "" {
			continue
		}
		out = append(out, watches.FromCatalog(w, SourceLLM))
	}
	if req.Limit > 0 && len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return newResult(SourceLLM, out), nil
}

func recommendPrompt(c criteria.Criteria) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a watch expert and stylist. Find %d watches that match the following criteria:\n", recommendCount)
	for _, field := range c.Descriptive() {
		fmt.Fprintf(&b, "- %s: %s\n", field.Key, field.Value)
	}
	b.WriteString("\nFor each watch, provide the following information in JSON format:\n")
	for _, field := range recommendFields {
		fmt.Fprintf(&b, "- %s\n", field)
	}
	b.WriteString("\nIMPORTANT: Return ONLY a valid JSON object with a 'watches' array. Do not include any explanatory text before or after the JSON.")
	b.WriteString("\nIMPORTANT: The watches MUST match the specific criteria provided. For example, if the type is 'smartwatch', only return smartwatches.")
	return b.String()
}

type recommendations struct {
	Watches []watchdb.Watch `json:"watches"`
}

func parseRecommendations(content string) ([]watchdb.Watch, error) {
	var out recommendations
	if err := json.Unmarshal([]byte(content), &out); err == nil {
		return out.Watches, nil
	}
	block := jsonObjectPattern.FindString(content)
	if block == "" {
		return nil, fmt.Errorf("no JSON object in model answer")
	}
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return nil, err
	}
	return out.Watches, nil
}
