package publication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/educoreai-lotus/content-studio/internal/config"
)

// defaultTransferTimeout bounds a single handoff call when no timeout is
// configured.
const defaultTransferTimeout = 30 * time.Second

// HTTPTransfer hands a course projection to the downstream publishing
// system. The handoff is a single POST of the full projection; there is no
// retry here because the publish workflow owns the retry policy.
type HTTPTransfer struct {
	httpClient *http.Client
	url        string
	logger     zerolog.Logger
}

// Compile-time interface check.
var _ Transfer = (*HTTPTransfer)(nil)

// NewHTTPTransfer creates a transfer client for the configured endpoint.
func NewHTTPTransfer(cfg config.PublishConfig, logger zerolog.Logger) *HTTPTransfer {
	timeout := cfg.TransferTimeout
	if timeout <= 0 {
		timeout = defaultTransferTimeout
	}
	return &HTTPTransfer{
		httpClient: &http.Client{Timeout: timeout},
		url:        cfg.TransferURL,
		logger:     logger.With().Str("component", "transfer_client").Logger(),
	}
}

// Send delivers the projection. Any non-2xx response is a handoff failure.
func (t *HTTPTransfer) Send(ctx context.Context, projection *CourseProjection) error {
	if t.url == "" {
		return fmt.Errorf("transfer endpoint is not configured")
	}

	body, err := json.Marshal(projection)
	if err != nil {
		return fmt.Errorf("marshal course projection: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transfer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("transfer rejected with status %d: %s", resp.StatusCode, string(snippet))
	}

	t.logger.Info().
		Str("course_id", projection.ID.String()).
		Int("topics", len(projection.Topics)).
		Dur("duration", time.Since(start)).
		Msg("course projection transferred")
	return nil
}
