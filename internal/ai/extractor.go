package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/educoreai-lotus/content-studio/internal/config"
	"github.com/educoreai-lotus/content-studio/internal/observability"
)

// Default values for the extractor client.
const (
	defaultExtractorBaseURL    = "https://api.openai.com/v1"
	defaultExtractorModel      = "gpt-4-turbo"
	defaultExtractorMaxTokens  = 1024
	defaultExtractorRetryDelay = 2 * time.Second
)

// chatRequest represents the Chat Completions API request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatMessage represents a single message in the chat conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// responseFormat specifies the output format for the API response.
type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse represents the Chat Completions API response body.
type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
}

// chatChoice represents a single completion choice.
type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// extractorErrorResponse represents an error response from the LLM API.
type extractorErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// metadataResponse is the expected JSON structure of the model's answer.
type metadataResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Concepts    []string `json:"concepts"`
}

// ExtractorClient implements MetadataExtractor using a Chat Completions
// style LLM API with JSON response format.
type ExtractorClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxRetries  int
	retryDelay  time.Duration
	logger      zerolog.Logger
	metrics     *observability.Metrics
}

// Compile-time interface check.
var _ MetadataExtractor = (*ExtractorClient)(nil)

// NewExtractorClient creates a new LLM metadata extraction client.
func NewExtractorClient(cfg config.ExtractorConfig, logger zerolog.Logger, metrics *observability.Metrics) *ExtractorClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultExtractorBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultExtractorModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &ExtractorClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     baseURL,
		temperature: cfg.Temperature,
		maxRetries:  maxRetries,
		retryDelay:  defaultExtractorRetryDelay,
		logger:      logger.With().Str("component", "extractor_client").Logger(),
		metrics:     metrics,
	}
}

// Model returns the model identifier being used.
func (c *ExtractorClient) Model() string {
	return c.model
}

// ExtractMetadata derives a title, description, and key concepts from the
// transcript. Transient errors (5xx, 429) are retried up to maxRetries
// times with linear backoff.
func (c *ExtractorClient) ExtractMetadata(ctx context.Context, req ExtractionRequest) (*ExtractedMetadata, error) {
	systemPrompt, userPrompt := buildMetadataPrompt(req)

	chatReq := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    c.temperature,
		MaxTokens:      defaultExtractorMaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("extractor: context cancelled during retry wait: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		result, err := c.doRequest(ctx, chatReq)
		if err == nil {
			return result, nil
		}
		if !isTransientError(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("extractor: exhausted %d retries: %w", c.maxRetries, lastErr)
}

// doRequest performs a single API request to the Chat Completions endpoint.
func (c *ExtractorClient) doRequest(ctx context.Context, chatReq chatRequest) (*ExtractedMetadata, error) {
	start := time.Now()

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("extractor: failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("extractor: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(start, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{Service: "extractor", StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		c.observe(start, err)
		return nil, fmt.Errorf("extractor: failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := parseExtractorAPIError(resp.StatusCode, respBody)
		c.observe(start, apiErr)
		if resp.StatusCode == http.StatusTooManyRequests && c.metrics != nil {
			c.metrics.RecordAIRateLimited()
		}
		return nil, apiErr
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		c.observe(start, err)
		return nil, fmt.Errorf("extractor: failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		err := fmt.Errorf("extractor: empty choices in response")
		c.observe(start, err)
		return nil, err
	}

	var parsed metadataResponse
	if err := json.Unmarshal([]byte(chatResp.Choices[0].Message.Content), &parsed); err != nil {
		c.observe(start, err)
		return nil, fmt.Errorf("extractor: failed to parse LLM JSON response: %w", err)
	}
	if parsed.Title == "" {
		err := fmt.Errorf("extractor: LLM returned no title")
		c.observe(start, err)
		return nil, err
	}

	c.observe(start, nil)
	return &ExtractedMetadata{
		Title:       parsed.Title,
		Description: parsed.Description,
		Concepts:    parsed.Concepts,
		Model:       c.model,
	}, nil
}

func (c *ExtractorClient) observe(start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordAIRequest("extract_metadata", time.Since(start).Seconds())
	if err != nil {
		c.metrics.RecordAIRequestFailed("extract_metadata", errorType(err))
	}
}

// parseExtractorAPIError parses an LLM API error from the response status
// code and body.
func parseExtractorAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Service:    "extractor",
		StatusCode: statusCode,
		Message:    string(body),
	}
	var errResp extractorErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		apiErr.Message = errResp.Error.Message
		apiErr.Type = errResp.Error.Type
	}
	return apiErr
}

// buildMetadataPrompt builds the system and user prompts for metadata
// extraction.
func buildMetadataPrompt(req ExtractionRequest) (systemPrompt, userPrompt string) {
	var sys strings.Builder
	sys.WriteString("You are a curriculum metadata specialist. Your task is to derive ")
	sys.WriteString("a concise lesson title, a one-paragraph description, and the key ")
	sys.WriteString("concepts from a lesson transcript.\n\n")
	sys.WriteString("You MUST respond with valid JSON in exactly this format:\n")
	sys.WriteString(`{"title": "Lesson title", "description": "One paragraph", "concepts": ["concept1", "concept2"]}`)
	sys.WriteString("\n\nGuidelines:\n")
	sys.WriteString("1. The title must be short enough for a course outline (under 80 characters).\n")
	sys.WriteString("2. The description summarizes what a learner will be able to do.\n")
	sys.WriteString("3. Concepts are specific technical terms, not generic words.\n")
	if req.Language != "" {
		sys.WriteString(fmt.Sprintf("4. Answer in the transcript's language (%s).\n", req.Language))
	}

	var user strings.Builder
	user.WriteString("Derive lesson metadata from the following transcript.\n\n")
	user.WriteString("Transcript:\n---\n")
	user.WriteString(req.Transcript)
	user.WriteString("\n---")

	return sys.String(), user.String()
}
