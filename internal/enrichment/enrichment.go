// Package enrichment fetches external holder and concentration data used by
// the Tier-1 validation sweep.
package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the provider has no data for the mint.
var ErrNotFound = errors.New("no holder data for mint")

// HolderInfo is the externally sourced holder distribution of a token.
type HolderInfo struct {
	HolderCount int     `json:"holder_count"`
	Top10Pct    float64 `json:"top10_holders_pct"`
}

// Source provides holder data. Implementations must respect the context
// deadline; a slow provider must not stall the validation sweep beyond the
// per-call timeout.
type Source interface {
	Fetch(ctx context.Context, mint string) (HolderInfo, error)
}

// HTTPOptions configures the HTTP source.
type HTTPOptions struct {
	// BaseURL of the holder-data API; the mint is appended as a path segment.
	BaseURL string
	// Timeout per request. Default 10s.
	Timeout time.Duration
	// RatePerSecond and Burst bound outbound request rate. Default 5/5.
	RatePerSecond float64
	Burst         int
}

// HTTPSource fetches holder data over JSON HTTP with client-side rate
// limiting.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPSource creates an HTTP source.
func NewHTTPSource(opts HTTPOptions) *HTTPSource {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	return &HTTPSource{
		baseURL: opts.BaseURL,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
	}
}

// Compile-time interface check.
var _ Source = (*HTTPSource)(nil)

// Fetch retrieves holder data for one mint. Blocks on the rate limiter,
// honoring ctx cancellation while waiting.
func (s *HTTPSource) Fetch(ctx context.Context, mint string) (HolderInfo, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return HolderInfo{}, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL, err := url.JoinPath(s.baseURL, "holders", mint)
	if err != nil {
		return HolderInfo{}, fmt.Errorf("build holder url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return HolderInfo{}, fmt.Errorf("build holder request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return HolderInfo{}, fmt.Errorf("fetch holders for %s: %w", mint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return HolderInfo{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return HolderInfo{}, fmt.Errorf("holder api status %d for %s", resp.StatusCode, mint)
	}

	var info HolderInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return HolderInfo{}, fmt.Errorf("decode holder response: %w", err)
	}
	return info, nil
}
