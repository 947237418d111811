package rerank

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/dtxml/declarations/internal/modelclient"
)

// OpenAIScorer implements PairwiseScorer as a chat-completion prompt asking
// the model to rate each document's relevance to the query on a 0-1 scale.
// Used for both the light and heavy tiers of the adaptive reranker,
// distinguished only by model name — model inference stays external to this
// module, per scope.
type OpenAIScorer struct {
	client     openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	breaker    *modelclient.CircuitBreaker
}

// OpenAIScorerConfig configures an OpenAIScorer.
type OpenAIScorerConfig struct {
	APIKey             string
	Model              string
	RequestTimeout     time.Duration
	MaxRetries         int
	RetryBaseDelay     time.Duration
	CBFailureThreshold int
	CBResetTimeout     time.Duration
	CBHalfOpenMax      int
}

// NewOpenAIScorer creates a PairwiseScorer backed by the OpenAI chat
// completions API.
func NewOpenAIScorer(cfg OpenAIScorerConfig) (*OpenAIScorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("rerank: OPENAI_API_KEY not set")
	}
	client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	breaker := modelclient.NewCircuitBreaker(modelclient.CircuitBreakerConfig{
		FailureThreshold: cfg.CBFailureThreshold,
		ResetTimeout:     cfg.CBResetTimeout,
		HalfOpenMax:      cfg.CBHalfOpenMax,
	})
	return &OpenAIScorer{
		client:     client,
		model:      cfg.Model,
		timeout:    cfg.RequestTimeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryBaseDelay,
		breaker:    breaker,
	}, nil
}

// Score asks the model to rate each document independently against query,
// retrying transient failures through the shared circuit breaker.
func (s *OpenAIScorer) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	scores := make([]float64, len(documents))
	for i, doc := range documents {
		score, err := s.scoreOne(ctx, query, doc)
		if err != nil {
			return nil, err
		}
		scores[i] = score
	}
	return scores, nil
}

func (s *OpenAIScorer) scoreOne(ctx context.Context, query, document string) (float64, error) {
	var score float64
	call := func(callCtx context.Context) (int, error) {
		reqCtx, cancel := context.WithTimeout(callCtx, s.timeout)
		defer cancel()

		resp, err := s.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
			Model: s.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(scoringSystemPrompt),
				openai.UserMessage(fmt.Sprintf("Query: %s\n\nDocument: %s", query, truncate(document, 4000))),
			},
			Temperature: openai.Float(0),
		})
		if err != nil {
			return classifyHTTPStatus(err), err
		}
		if len(resp.Choices) == 0 {
			return 0, modelclient.ErrInvalidOutput
		}
		parsed, ok := parseScore(resp.Choices[0].Message.Content)
		if !ok {
			return 0, modelclient.ErrInvalidOutput
		}
		score = parsed
		return 0, nil
	}

	if err := modelclient.Retry(ctx, s.breaker, s.retryDelay, s.maxRetries, call); err != nil {
		return 0, fmt.Errorf("rerank: score failed: %w", err)
	}
	return score, nil
}

const scoringSystemPrompt = "You rate how relevant a document is to a search query on a scale from 0.0 (irrelevant) to 1.0 (highly relevant). Respond with only the number, nothing else."

func parseScore(content string) (float64, bool) {
	trimmed := strings.TrimSpace(content)
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f, true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func classifyHTTPStatus(err error) int {
	if apiErr, ok := err.(*openai.Error); ok {
		return apiErr.StatusCode
	}
	return 0
}
