package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/educoreai-lotus/content-studio/internal/config"
	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/observability"
)

// Default values for the generation client.
const (
	defaultGenerationTimeout    = 4 * time.Minute
	defaultGenerationRateLimit  = 5
	defaultGenerationRateBurst  = 6
	defaultGenerationMaxRetries = 2
	defaultGenerationRetryDelay = 2 * time.Second
)

// generateResponse represents the generation service response body.
type generateResponse struct {
	ContentData map[string]any `json:"content_data"`
	AudioURL    string         `json:"audio_url,omitempty"`
}

// generationErrorResponse represents an error response from the generation
// service.
type generationErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// GenerationClient implements ContentGenerator against the HTTP generation
// service. It is safe for concurrent use; the six format tasks of one run
// share a single client and its rate limiter.
type GenerationClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	maxRetries int
	retryDelay time.Duration
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// Compile-time interface check.
var _ ContentGenerator = (*GenerationClient)(nil)

// NewGenerationClient creates a new generation service client.
func NewGenerationClient(cfg config.GenerationServiceConfig, logger zerolog.Logger, metrics *observability.Metrics) *GenerationClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultGenerationRateLimit
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = defaultGenerationRateBurst
	}

	return &GenerationClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), burst),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: defaultGenerationMaxRetries,
		retryDelay: defaultGenerationRetryDelay,
		logger:     logger.With().Str("component", "generation_client").Logger(),
		metrics:    metrics,
	}
}

// Generate renders the transcript into the requested format. Transient
// errors (5xx, 429, network) are retried with linear backoff; the caller's
// context carries the hard per-format deadline.
func (c *GenerationClient) Generate(ctx context.Context, req GenerationRequest) (*domain.GeneratedContent, error) {
	if req.TopicID == uuid.Nil {
		return nil, domain.ErrMissingTopicID
	}
	if req.ContentTypeID < 1 || req.ContentTypeID > 6 {
		return nil, fmt.Errorf("%w: content_type_id %d out of range", domain.ErrInvalidInput, req.ContentTypeID)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("generation: context cancelled during retry wait: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("generation: rate limiter wait: %w", err)
		}

		result, err := c.doRequest(ctx, req)
		if err == nil {
			return result, nil
		}
		if !isTransientError(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("generation: exhausted %d retries: %w", c.maxRetries, lastErr)
}

// doRequest performs a single call to the generation endpoint.
func (c *GenerationClient) doRequest(ctx context.Context, req GenerationRequest) (*domain.GeneratedContent, error) {
	start := time.Now()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("generation: failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/api/v1/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("generation: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(start, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{Service: "generation", StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		c.observe(start, err)
		return nil, fmt.Errorf("generation: failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := parseGenerationAPIError(resp.StatusCode, respBody)
		c.observe(start, apiErr)
		if resp.StatusCode == http.StatusTooManyRequests && c.metrics != nil {
			c.metrics.RecordAIRateLimited()
		}
		return nil, apiErr
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		c.observe(start, err)
		return nil, fmt.Errorf("generation: failed to unmarshal response: %w", err)
	}
	if genResp.ContentData == nil {
		err := fmt.Errorf("generation: empty content_data in response")
		c.observe(start, err)
		return nil, err
	}

	c.observe(start, nil)

	format := formatForTypeID(req.ContentTypeID)
	return &domain.GeneratedContent{
		TopicID:     req.TopicID,
		ContentType: format,
		Data:        genResp.ContentData,
		AudioURL:    genResp.AudioURL,
	}, nil
}

func (c *GenerationClient) observe(start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordAIRequest("generate", time.Since(start).Seconds())
	if err != nil {
		c.metrics.RecordAIRequestFailed("generate", errorType(err))
	}
}

// parseGenerationAPIError parses an error response from the generation
// service.
func parseGenerationAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Service:    "generation",
		StatusCode: statusCode,
		Message:    string(body),
	}
	var errResp generationErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		apiErr.Message = errResp.Error.Message
		apiErr.Type = errResp.Error.Type
	}
	return apiErr
}

// formatForTypeID maps a numeric content type id back to its format.
func formatForTypeID(typeID int) domain.ContentFormat {
	for _, f := range domain.AllFormats() {
		if f.TypeID() == typeID {
			return f
		}
	}
	return ""
}
