package quotes

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"divcap-lab/internal/domain"
)

const (
	maxRetries = 5
	retryDelay = 500 * time.Millisecond
)

// HTTPSource polls a quote server by form POST. The server answers one
// tab-separated quote line per request, or the literal string "null"
// when the session has no further quotes.
type HTTPSource struct {
	endpoint string
	client   *http.Client
	logger   *log.Logger
}

// NewHTTPSource creates a source polling the given endpoint. A nil
// client falls back to a client with a short timeout; a nil logger
// falls back to the default logger.
func NewHTTPSource(endpoint string, client *http.Client, logger *log.Logger) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPSource{endpoint: endpoint, client: client, logger: logger}
}

// Compile-time interface check.
var _ Source = (*HTTPSource)(nil)

// Next fetches the next quote at or after clock. Transport failures and
// "null" responses are retried up to maxRetries with a fixed delay;
// a "null" that survives the retries means the session is over.
func (s *HTTPSource) Next(ctx context.Context, symbol, date, clock string) (*domain.Quote, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			s.logger.Printf("[quotes] retry %d for time=%s", attempt, clock)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		line, err := s.post(ctx, symbol, date, clock)
		if err != nil {
			lastErr = err
			continue
		}
		if strings.EqualFold(strings.TrimSpace(line), "null") {
			lastErr = ErrEndOfDay
			continue
		}

		q, err := domain.ParseQuote(line)
		if err != nil {
			lastErr = fmt.Errorf("parse quote response: %w", err)
			continue
		}
		return q, nil
	}

	if lastErr == nil {
		lastErr = ErrEndOfDay
	}
	s.logger.Printf("[quotes] no valid quote after %d attempts for time=%s: %v", maxRetries, clock, lastErr)
	return nil, lastErr
}

func (s *HTTPSource) post(ctx context.Context, symbol, date, clock string) (string, error) {
	form := url.Values{}
	form.Set("symbol", symbol)
	form.Set("theDate", date)
	form.Set("theTime", clock)
	form.Set("justTheQuote", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post quote request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("quote server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read quote response: %w", err)
	}

	// The server may split the line across multiple body lines.
	var sb strings.Builder
	for _, part := range strings.Split(string(body), "\n") {
		sb.WriteString(strings.TrimRight(part, "\r"))
	}
	return sb.String(), nil
}
