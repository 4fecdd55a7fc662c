package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/empowrhq/leadflow/pkg/logger"
)

const scorerSystemPrompt = `You estimate how likely a contact is a purchasing decision maker based on their job title and industry. Respond with a single number between 0 and 1 and nothing else.`

// Config for the OpenAI-backed likelihood scorer
type Config struct {
	APIKey      string
	Model       string  // default: gpt-4o-mini
	Temperature float32 // default: 0.2
	MaxTokens   int     // default: 10
}

// Scorer asks an LLM to estimate decision-maker likelihood for a contact.
// It satisfies the writer's LikelihoodScorer interface.
type Scorer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	log         logger.Logger
}

// NewScorer creates a new likelihood scorer
func NewScorer(cfg Config, log logger.Logger) *Scorer {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 10
	}
	if log == nil {
		log = logger.Default()
	}

	return &Scorer{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log,
	}
}

// Score asks the model for a 0..1 decision-maker estimate
func (s *Scorer) Score(ctx context.Context, jobTitle, industry string) (float64, error) {
	prompt := fmt.Sprintf("Job title: %s", jobTitle)
	if industry != "" {
		prompt += fmt.Sprintf("\nIndustry: %s", industry)
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scorerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	duration := time.Since(start)

	if err != nil {
		s.log.Warn("likelihood scoring request failed", "error", err, "duration", duration.String())
		return 0, fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("no response from openai")
	}

	score, err := parseScore(resp.Choices[0].Message.Content)
	if err != nil {
		return 0, err
	}

	s.log.Debug("likelihood scored", "title", jobTitle, "score", score, "tokens", resp.Usage.TotalTokens, "duration", duration.String())

	return score, nil
}

var numberPattern = regexp.MustCompile(`[0-9]*\.?[0-9]+`)

// parseScore extracts the numeric estimate from the model reply and clamps
// it into [0, 1]. Models occasionally wrap the number in prose.
func parseScore(reply string) (float64, error) {
	match := numberPattern.FindString(strings.TrimSpace(reply))
	if match == "" {
		return 0, fmt.Errorf("no numeric score in model reply: %q", reply)
	}

	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable score %q: %w", match, err)
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return score, nil
}
