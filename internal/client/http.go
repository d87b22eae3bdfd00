// Package client fetches sales datasets from a running dashboard server and
// turns grouping selections into aggregated results.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/okian/salesdash/internal/domain/grouping"
	"github.com/okian/salesdash/internal/domain/types"
	"github.com/okian/salesdash/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // shared codec

const (
	salesPath    = "/api/sales"
	healthPath   = "/api/health"
	maxBodyBytes = 32 << 20
)

// Fetcher supplies the record set of a grouping.
type Fetcher interface {
	Fetch(ctx context.Context, g grouping.Grouping) (types.Dataset, error)
}

// HTTPClient reads datasets over GET /api/sales.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewHTTPClient creates a client for the server at baseURL.
// Request deadlines come from the caller's context.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch requests the dataset of g.
func (c *HTTPClient) Fetch(ctx context.Context, g grouping.Grouping) (types.Dataset, error) {
	u := c.baseURL + salesPath + "?" + url.Values{"groupBy": {g.String()}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("failed to fetch %s: %w", g, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return types.Dataset{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return types.Dataset{}, statusError(resp.StatusCode, body)
	}

	var ds types.Dataset
	if err := json.Unmarshal(body, &ds); err != nil {
		return types.Dataset{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if ds.Group != g.String() {
		return types.Dataset{}, fmt.Errorf("%w: asked for %q, got %q", ErrMalformed, g, ds.Group)
	}
	if ds.Sales == nil {
		ds.Sales = []types.SalesRecord{}
	}

	c.logger.Debug(ctx, "fetched dataset",
		logger.String("grouping", g.String()),
		logger.Int("records", len(ds.Sales)))
	return ds, nil
}

func statusError(status int, body []byte) error {
	var eb errorBody
	msg := http.StatusText(status)
	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		msg = eb.Message
	}
	if status == http.StatusBadRequest {
		return fmt.Errorf("%w: %w: %s", ErrBadRequest, grouping.ErrUnknown, msg)
	}
	return fmt.Errorf("%w: %d: %s", ErrStatus, status, msg)
}

// Health checks GET /api/health.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned %d", ErrStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil || body.Status != "ok" {
		return fmt.Errorf("%w: unhealthy service", ErrMalformed)
	}
	return nil
}
