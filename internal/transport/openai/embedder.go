package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/metrics"
)

// Embedder is an embedding provider using an OpenAI-compatible API
// (OpenAI, Nebius, or a local text-embeddings-inference server).
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
	provider   string
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Provider   string
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder for a single text.
// Local servers (text-embeddings-inference, llama.cpp) serve fixed-size models
// and reject the dimensions parameter, so it is only sent to models that
// support shortening.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}
	if e.dimensions > 0 && supportsDimensions(string(e.model)) {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		e.recordError("api_error")
		return domain.EmbeddingResult{}, parseAPIError(err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		e.recordError("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	model := string(e.model)
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, model).Observe(time.Since(start).Seconds())

	// Local servers often report no usage.
	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

func (e *Embedder) recordError(reason string) {
	model := string(e.model)
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, model, reason).Inc()
}

// supportsDimensions reports whether the model accepts a requested output size.
func supportsDimensions(model string) bool {
	return strings.HasPrefix(model, "text-embedding-3")
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// Load checks that the configured model is served and returns its output
// dimension, discovered with a sample embedding. Providers that list no models
// are trusted to serve the configured one.
func (e *Embedder) Load(ctx context.Context) (int, error) {
	list, err := e.client.ListModels(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: list models: %w", domain.ErrModelUnavailable, parseAPIError(err))
	}
	if len(list.Models) > 0 && !servesModel(list.Models, string(e.model)) {
		return 0, fmt.Errorf("%w: model %q is not served by %s", domain.ErrModelUnavailable, e.model, e.provider)
	}

	res, err := e.Embed(ctx, "dimension check")
	if err != nil {
		return 0, fmt.Errorf("%w: sample embedding: %w", domain.ErrModelUnavailable, err)
	}
	if e.dimensions > 0 && len(res.Embedding) != e.dimensions {
		return 0, fmt.Errorf("%w: model returned %d dims, configured %d",
			domain.ErrModelUnavailable, len(res.Embedding), e.dimensions)
	}

	e.logger.Info("Embedding model loaded",
		zap.String("provider", e.provider),
		zap.String("model", string(e.model)),
		zap.Int("dims", len(res.Embedding)),
	)
	return len(res.Embedding), nil
}

// Model returns the configured model name.
func (e *Embedder) Model() string { return string(e.model) }

func servesModel(models []openai.Model, name string) bool {
	for _, m := range models {
		if m.ID == name {
			return true
		}
	}
	return false
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEmbeddingProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
