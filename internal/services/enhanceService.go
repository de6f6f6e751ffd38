package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"smartaitools/internal/metrics"
	"smartaitools/internal/models"
)

// EnhanceService rewrites a stored prompt with an LLM, following an optional
// user instruction. The stored record is never modified; the refined text is
// returned to the caller.
type EnhanceService interface {
	EnhancePrompt(ctx context.Context, p *models.Prompt, instruction string) (string, error)
}

type enhanceService struct {
	apiKey string
}

func NewEnhanceService() EnhanceService {
	return &enhanceService{apiKey: os.Getenv("API_KEY")}
}

func (s *enhanceService) EnhancePrompt(ctx context.Context, p *models.Prompt, instruction string) (string, error) {
	if s.apiKey == "" {
		return "", errors.New("missing api key")
	}

	llm, err := googleai.New(ctx, googleai.WithAPIKey(s.apiKey), googleai.WithDefaultModel("gemini-2.5-flash"))
	if err != nil {
		return "", fmt.Errorf("failed to create Google AI LLM: %w", err)
	}

	task := "Make it clearer, more specific and more effective without changing its intent."
	if instruction != "" {
		task = instruction
	}
	request := fmt.Sprintf(
		"You are a prompt engineer. Improve the following AI prompt. %s "+
			"Return only the improved prompt text, no commentary.\n\nTitle: %s\nPrompt:\n%s",
		task,
		p.Title,
		p.Content,
	)

	enhanced, err := llms.GenerateFromSinglePrompt(ctx, llm, request)
	if err != nil {
		return "", fmt.Errorf("failed to generate enhanced prompt: %w", err)
	}

	metrics.PromptEnhancedTotal.Inc()
	log.Info().Str("prompt_id", p.ID.Hex()).Msg("Prompt enhanced")
	return enhanced, nil
}
