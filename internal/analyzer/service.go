package analyzer

import (
	"context"
	"errors"
	"strings"

	"github.com/watchengine/watch-engine-backend/internal/criteria"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/llm"
)

const (
	systemPrompt = "You are a watch expert. Extract search criteria from user queries into structured data. " +
		"Return a JSON object with the following properties: Type, 'Dial Color', Price, Style, Features, Use, " +
		"Audience, Appearance, Aesthetic, Versatility. If a property is not mentioned in the query, omit it from the JSON."

	temperature = 0.7
)

// Service turns a free-text query into structured criteria.
type Service interface {
	Analyze(ctx context.Context, query string) (criteria.Criteria, error)
}

type ServiceParams struct {
	Chat          llm.Chatter
	CannedPhrases []string
}

type service struct {
	chat   llm.Chatter
	canned []string
}

func NewService(params ServiceParams) Service {
	return &service{chat: params.Chat, canned: params.CannedPhrases}
}

func (s *service) Analyze(ctx context.Context, query string) (criteria.Criteria, error) {
	if strings.TrimSpace(query) == "" {
		return criteria.Criteria{}, pkgerrors.New(pkgerrors.CodeValidation, "Invalid query parameter")
	}
	if criteria.IsCanned(query, s.canned) {
		return criteria.Defaults(), nil
	}
	if s.chat == nil {
		return criteria.Criteria{}, pkgerrors.New(pkgerrors.CodeInternal, "OpenAI API key is not configured")
	}

	content, err := s.chat.Complete(ctx, llm.ChatRequest{
		System:      systemPrompt,
		User:        query,
		Temperature: temperature,
	})
	if err != nil {
		return criteria.Criteria{}, err
	}
	if content == "" {
		return criteria.Criteria{}, pkgerrors.New(pkgerrors.CodeUpstream, "No response from OpenAI")
	}

	parsed, err := criteria.Parse(content)
	if err != nil {
		if errors.Is(err, criteria.ErrUnparseable) {
			return criteria.Criteria{}, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "Error parsing OpenAI response")
		}
		return criteria.Criteria{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Unexpected error processing query")
	}
	return parsed, nil
}
