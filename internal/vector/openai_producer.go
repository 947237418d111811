package vector

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/dtxml/declarations/internal/modelclient"
)

// OpenAIProducer implements Producer against the OpenAI embeddings API,
// guarded by a circuit breaker and bounded retry.
type OpenAIProducer struct {
	client      openai.Client
	model       string
	dimensions  int
	timeout     time.Duration
	maxRetries  int
	retryDelay  time.Duration
	breaker     *modelclient.CircuitBreaker
}

// OpenAIProducerConfig configures an OpenAIProducer.
type OpenAIProducerConfig struct {
	APIKey             string
	Model              string
	Dimensions         int
	RequestTimeout     time.Duration
	MaxRetries         int
	RetryBaseDelay     time.Duration
	CBFailureThreshold int
	CBResetTimeout     time.Duration
	CBHalfOpenMax      int
}

// NewOpenAIProducer creates a Producer backed by the OpenAI embeddings API.
func NewOpenAIProducer(cfg OpenAIProducerConfig) (*OpenAIProducer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vector: OPENAI_API_KEY not set")
	}
	client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	breaker := modelclient.NewCircuitBreaker(modelclient.CircuitBreakerConfig{
		FailureThreshold: cfg.CBFailureThreshold,
		ResetTimeout:     cfg.CBResetTimeout,
		HalfOpenMax:      cfg.CBHalfOpenMax,
	})
	return &OpenAIProducer{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		timeout:    cfg.RequestTimeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryBaseDelay,
		breaker:    breaker,
	}, nil
}

func (p *OpenAIProducer) Dimensions() int { return p.dimensions }

// Embed calls the OpenAI embeddings endpoint once per batch, retrying
// transient failures with the shared circuit breaker.
func (p *OpenAIProducer) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	call := func(callCtx context.Context) (int, error) {
		reqCtx, cancel := context.WithTimeout(callCtx, p.timeout)
		defer cancel()

		resp, err := p.client.Embeddings.New(reqCtx, openai.EmbeddingNewParams{
			Model:          openai.EmbeddingModel(p.model),
			Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
			Dimensions:     openai.Int(int64(p.dimensions)),
			EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
		})
		if err != nil {
			return classifyHTTPStatus(err), err
		}
		if len(resp.Data) != len(texts) {
			return 0, modelclient.ErrInvalidOutput
		}
		vectors = make([][]float32, len(resp.Data))
		for _, d := range resp.Data {
			vec := make([]float32, len(d.Embedding))
			for i, f := range d.Embedding {
				vec[i] = float32(f)
			}
			if len(vec) != p.dimensions {
				return 0, modelclient.ErrInvalidOutput
			}
			vectors[d.Index] = vec
		}
		return 0, nil
	}

	if err := modelclient.Retry(ctx, p.breaker, p.retryDelay, p.maxRetries, call); err != nil {
		return nil, fmt.Errorf("vector: embed failed: %w", err)
	}
	return vectors, nil
}

// classifyHTTPStatus extracts a status code from an openai-go API error, if
// any, for the shared error classifier; unknown errors return 0 (treated as
// transient-unknown by modelclient.ClassifyError).
func classifyHTTPStatus(err error) int {
	if apiErr, ok := err.(*openai.Error); ok {
		return apiErr.StatusCode
	}
	return 0
}
