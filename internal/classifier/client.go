package classifier

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

// DefaultBaseURL is where the prediction API listens when run locally.
const DefaultBaseURL = "http://localhost:5000"

// Predictor classifies comments through the prediction API.
type Predictor interface {
	PredictSingle(ctx context.Context, comment string) (Result, error)
	PredictBatch(ctx context.Context, comments []string) (BatchResponse, error)
}

// Config holds prediction API connection parameters.
type Config struct {
	BaseURL string
	// Timeout of zero leaves requests bounded only by the caller's context.
	Timeout time.Duration
}

// Client implements Predictor against the prediction API over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ErrDisabled is returned by a nil client.
var ErrDisabled = errors.New("prediction client disabled")

// NewClient constructs a Client, applying defaults to the supplied configuration.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := &http.Client{}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// PredictSingle posts one comment to /predict and returns the decoded verdict as-is.
func (c *Client) PredictSingle(ctx context.Context, comment string) (Result, error) {
	if c == nil {
		return Result{}, ErrDisabled
	}
	var result Result
	if err := c.postJSON(ctx, "/predict", predictRequest{Comment: comment}, &result); err != nil {
		return Result{}, err
	}
	return result, nil
}

// PredictBatch posts the ordered comment list to /predict/batch.
func (c *Client) PredictBatch(ctx context.Context, comments []string) (BatchResponse, error) {
	if c == nil {
		return BatchResponse{}, ErrDisabled
	}
	if comments == nil {
		comments = []string{}
	}
	var resp BatchResponse
	if err := c.postJSON(ctx, "/predict/batch", batchRequest{Comments: comments}, &resp); err != nil {
		return BatchResponse{}, err
	}
	return resp, nil
}

// Health queries the API health endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	if c == nil {
		return Health{}, ErrDisabled
	}
	var health Health
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		return Health{}, err
	}
	return health, nil
}

// ModelInfo returns the metadata document the API publishes about its model.
func (c *Client) ModelInfo(ctx context.Context) (map[string]any, error) {
	if c == nil {
		return nil, ErrDisabled
	}
	info := make(map[string]any)
	if err := c.getJSON(ctx, "/model-info", &info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiErrorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&apiErr)
		return newAPIError(resp, apiErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
