package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Scraper-specific failures the service layer translates into specific
// user-facing messages instead of a generic one.
var (
	// ErrScraperBlocked means the listing site is refusing the scraper
	// (HTTP 403/429 signatures in the scraper's reply).
	ErrScraperBlocked = errors.New("listing site is blocking the scraper")
	// ErrNoListings means the scrape ran fine but matched nothing.
	ErrNoListings = errors.New("no listings found for these filters")
)

// ScanParams are the filters sent to the external scraper.
type ScanParams struct {
	PropertyType string   `json:"propertyType"`
	MaxPrice     int      `json:"maxPrice"`
	Areas        []string `json:"areas"`
	MinRooms     float64  `json:"minRooms"`
	MaxRooms     float64  `json:"maxRooms"`
}

// ScanResult is the scraper's reply: how many candidates it persisted
// into the scanned store, plus its own message.
type ScanResult struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// ScraperClient triggers the external scraper function. The scraping
// itself (HTML extraction from the listing site) lives behind this
// endpoint; only its output contract matters here.
type ScraperClient interface {
	Scan(ctx context.Context, params ScanParams) (*ScanResult, error)
}

type httpScraper struct {
	endpoint string
	client   *http.Client
}

// NewScraperClient creates a ScraperClient for the given trigger endpoint.
func NewScraperClient(endpoint string, timeout time.Duration) ScraperClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &httpScraper{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *httpScraper) Scan(ctx context.Context, params ScanParams) (*ScanResult, error) {
	if s.endpoint == "" {
		return nil, fmt.Errorf("scraper endpoint not configured")
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scan params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scan request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan response: %w", err)
	}

	// Known third-party blocking signatures get their own error so the
	// user sees "the site is blocking us" instead of a generic failure.
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w (status %d)", ErrScraperBlocked, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if containsBlockingSignature(string(raw)) {
			return nil, fmt.Errorf("%w (status %d)", ErrScraperBlocked, resp.StatusCode)
		}
		return nil, fmt.Errorf("scraper returned status %d", resp.StatusCode)
	}

	var result ScanResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode scan response: %w", err)
	}

	if result.Count == 0 || containsNoListingsSignature(result.Message) {
		return nil, ErrNoListings
	}

	return &result, nil
}

func containsBlockingSignature(body string) bool {
	body = strings.ToLower(body)
	return strings.Contains(body, "403") ||
		strings.Contains(body, "429") ||
		strings.Contains(body, "forbidden") ||
		strings.Contains(body, "too many requests")
}

func containsNoListingsSignature(message string) bool {
	return strings.Contains(strings.ToLower(message), "no listings found")
}
