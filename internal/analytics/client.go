package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gearbox/internal/config"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when the upstream credentials are absent.
// The proxy endpoint maps it to a 500; nothing else in the server depends on
// analytics configuration.
var ErrNotConfigured = errors.New("analytics credentials are not configured")

// UpstreamError carries a failed upstream response through to the caller.
// The proxy propagates status and detail without retrying.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analytics upstream returned %d: %s", e.Status, e.Detail)
}

// DateRange bounds a summary request
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Summary combines the upstream traffic report with the optional web-vitals
// report. Payloads are passed through untouched.
type Summary struct {
	Traffic   json.RawMessage `json:"analytics"`
	Vitals    json.RawMessage `json:"speedInsights,omitempty"`
	DateRange DateRange       `json:"dateRange"`
}

// Client is a thin bearer-token client for the hosted analytics API
type Client struct {
	httpClient *http.Client
	baseURL    string
	projectID  string
	teamID     string
	token      string
	logger     *zap.Logger
}

// NewClient creates an analytics API client. The HTTP client timeout is the
// only deadline; a timeout surfaces as a transient upstream error.
func NewClient(cfg config.AnalyticsConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.BaseURL,
		projectID:  cfg.ProjectID,
		teamID:     cfg.TeamID,
		token:      cfg.Token,
		logger:     logger,
	}
}

// Configured reports whether all upstream credentials are present
func (c *Client) Configured() bool {
	return c.projectID != "" && c.teamID != "" && c.token != ""
}

// Summary fetches the traffic report for [since, until]. The traffic report
// is required; the web-vitals report is best-effort and omitted on failure.
func (c *Client) Summary(ctx context.Context, since, until time.Time) (*Summary, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	traffic, err := c.fetch(ctx, "/v1/analytics", since, until)
	if err != nil {
		return nil, err
	}

	vitals, err := c.fetch(ctx, "/v1/speed-insights", since, until)
	if err != nil {
		c.logger.Warn("web vitals fetch failed", zap.Error(err))
		vitals = nil
	}

	return &Summary{
		Traffic:   traffic,
		Vitals:    vitals,
		DateRange: DateRange{From: since, To: until},
	}, nil
}

func (c *Client) fetch(ctx context.Context, path string, since, until time.Time) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("projectId", c.projectID)
	q.Set("teamId", c.teamID)
	q.Set("since", strconv.FormatInt(since.UnixMilli(), 10))
	q.Set("until", strconv.FormatInt(until.UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analytics request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read analytics response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Detail: string(body)}
	}

	return json.RawMessage(body), nil
}
