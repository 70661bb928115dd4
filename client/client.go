package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const apiPrefix = "/api/2.0/mlflow"

// HTTPDoer is the subset of *http.Client the REST client needs. Tests swap
// in their own implementation.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RestClient speaks the MLflow REST API 2.0 at the page level: every search
// method performs exactly one request and returns one page of results plus
// the server's continuation token. Consolidation across pages lives in the
// tracking package.
//
// Experiment and run operations go to the tracking server; model registry
// operations go to the registry server. The two addresses may be the same.
type RestClient struct {
	trackingURL string
	registryURL string
	httpClient  HTTPDoer
	logger      *zap.Logger
}

// NewRestClient creates a REST client for the given tracking and registry
// base URLs. Trailing slashes are stripped. The logger must not be nil.
func NewRestClient(trackingURL, registryURL string, logger *zap.Logger, opts ...Option) *RestClient {
	c := &RestClient{
		trackingURL: strings.TrimRight(trackingURL, "/"),
		registryURL: strings.TrimRight(registryURL, "/"),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option customizes a RestClient.
type Option func(*RestClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *RestClient) {
		c.httpClient = doer
	}
}

// errorBody is the JSON error payload returned by MLflow servers.
type errorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// get performs a GET against base+apiPrefix+path with the given query and
// decodes the JSON response into out.
func (c *RestClient) get(ctx context.Context, base, path string, query url.Values, out any) error {
	endpoint := base + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", path, err)
	}
	return c.send(req, path, out)
}

// post performs a POST against base+apiPrefix+path with a JSON body and
// decodes the JSON response into out.
func (c *RestClient) post(ctx context.Context, base, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+apiPrefix+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, path, out)
}

func (c *RestClient) send(req *http.Request, path string, out any) error {
	logger := c.logger.With(
		zap.String("method", req.Method),
		zap.String("path", path),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Request failed", zap.Error(err))
		return fmt.Errorf("%s %s: %v: %w", req.Method, path, err, ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body errorBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Code = body.ErrorCode
			apiErr.Message = body.Message
		}
		logger.Error("Server returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
		)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.Error("Failed to decode response", zap.Error(err))
		return fmt.Errorf("decoding %s response: %v: %w", path, err, ErrResponse)
	}

	logger.Debug("Request completed", zap.Int("status", resp.StatusCode))
	return nil
}

// pageQuery encodes the shared pagination parameters for GET-style search
// endpoints.
func pageQuery(filter string, maxResults int64, orderBy []string, pageToken *string) url.Values {
	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}
	if maxResults > 0 {
		query.Set("max_results", fmt.Sprintf("%d", maxResults))
	}
	for _, field := range orderBy {
		query.Add("order_by", field)
	}
	if pageToken != nil {
		query.Set("page_token", *pageToken)
	}
	return query
}
