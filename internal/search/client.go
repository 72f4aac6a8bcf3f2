// Package search is a small OpenSearch data-plane client for the vector
// index: index lifecycle, bulk document loading, and vector search. Requests
// are SigV4-signed for the "es" service; the control plane (domain
// provisioning) lives elsewhere.
package search

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/marcusholm/graphbench/internal/util/retry"
)

// signingService is the SigV4 service name for the OpenSearch data plane.
const signingService = "es"

// Logger receives request progress output. A nil Logger is silent.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Config describes the domain endpoint and the vector index served on it.
type Config struct {
	// Endpoint is the domain endpoint hostname.
	Endpoint string
	Region   string

	// Credentials sign every request with SigV4. Nil sends unsigned
	// requests (local servers, tests).
	Credentials aws.CredentialsProvider

	// BaseURL overrides the https URL derived from Endpoint.
	BaseURL string

	HTTPClient *http.Client

	// Index is the vector index name.
	Index string
	// Dimension is the embedding vector length; documents with any other
	// length are rejected before the request is sent.
	Dimension int
	// SearchType selects knn or script_score queries.
	SearchType string
	// MinScore drops hits scoring below it. Zero disables the floor.
	MinScore float64

	MaxRetries int
	MinDelay   time.Duration
	MaxDelay   time.Duration

	Logger Logger
}

func (c *Config) applyDefaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 5
	}
	if c.MinDelay == 0 {
		c.MinDelay = 1 * time.Second
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 30 * time.Second
	}
}

func (c *Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "https://" + c.Endpoint
}

// Client talks to one vector index on one domain. It is safe for concurrent
// use.
type Client struct {
	cfg     Config
	baseURL string
}

// NewClient builds a client for the configured index.
func NewClient(cfg Config) *Client {
	cfg.applyDefaults()
	return &Client{cfg: cfg, baseURL: cfg.baseURL()}
}

// do sends one signed request and returns the response body. Responses with
// status >= 400 come back as a *StatusError alongside the body, so callers
// can still inspect it.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cfg.Credentials != nil {
		if err := c.sign(ctx, req, body); err != nil {
			return nil, fmt.Errorf("signing request: %w", err)
		}
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return data, &StatusError{Code: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

func (c *Client) sign(ctx context.Context, req *http.Request, body []byte) error {
	creds, err := c.cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("resolving credentials: %w", err)
	}
	hash := sha256.Sum256(body)
	return v4.NewSigner().SignHTTP(ctx, creds, req, hex.EncodeToString(hash[:]), signingService, c.cfg.Region, time.Now())
}

// call wraps do with the retry policy: throttled and server-side failures
// are retried, everything else propagates immediately.
func (c *Client) call(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, fn,
		retry.WithMaxRetries(c.cfg.MaxRetries),
		retry.WithMinDelay(c.cfg.MinDelay),
		retry.WithMaxDelay(c.cfg.MaxDelay),
		retry.WithTransient(isTransient),
	)
}

func (c *Client) logf(format string, v ...interface{}) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Printf(format, v...)
	}
}

// StatusError is a non-2xx response from the data plane.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("opensearch returned status %d: %s", e.Code, e.Body)
}

// IsNotFound reports whether err is a 404 from the data plane.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

func isTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= http.StatusInternalServerError
	}
	// Transport-level failures (connection reset, timeout) are retried.
	return true
}
