package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/atiati82/AI-CMS-sub002/internal/platform/enginerr"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

// Metrics is one page's search performance over a date window, as reported
// by the external analytics source.
type Metrics struct {
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	CTR         float64 `json:"ctr"`
	AvgPosition float64 `json:"avg_position"`
}

// Client is the search-analytics collaborator.
type Client interface {
	GetMetrics(ctx context.Context, pagePath string, from, to time.Time) (Metrics, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

// NewHTTPClient reads SEARCH_ANALYTICS_BASE_URL and SEARCH_ANALYTICS_API_KEY.
// Per-call deadlines come from the caller's context; the transport timeout is
// only a backstop.
func NewHTTPClient(log *logger.Logger) (Client, error) {
	base := strings.TrimSpace(os.Getenv("SEARCH_ANALYTICS_BASE_URL"))
	if base == "" {
		return nil, fmt.Errorf("missing SEARCH_ANALYTICS_BASE_URL")
	}
	return &httpClient{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  strings.TrimSpace(os.Getenv("SEARCH_ANALYTICS_API_KEY")),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log.With("service", "AnalyticsClient"),
	}, nil
}

func (c *httpClient) GetMetrics(ctx context.Context, pagePath string, from, to time.Time) (Metrics, error) {
	q := url.Values{}
	q.Set("page", pagePath)
	q.Set("from", from.UTC().Format("2006-01-02"))
	q.Set("to", to.UTC().Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/metrics?"+q.Encode(), nil)
	if err != nil {
		return Metrics{}, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Metrics{}, wrap("get_metrics", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metrics{}, &enginerr.CollaboratorError{
			Collaborator: "analytics",
			Op:           "get_metrics",
			Err:          fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var m Metrics
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return Metrics{}, wrap("get_metrics", err)
	}
	return m, nil
}

func wrap(op string, err error) error {
	return &enginerr.CollaboratorError{
		Collaborator: "analytics",
		Op:           op,
		Timeout:      errors.Is(err, context.DeadlineExceeded) || isTimeout(err),
		Err:          err,
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
