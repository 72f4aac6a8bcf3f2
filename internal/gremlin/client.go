// Package gremlin connects to the graph cluster's Gremlin endpoint over a
// SigV4-signed WebSocket and submits traversals.
//
// Freshly provisioned clusters go through a window where the control plane
// reports available but connections still fail (DNS propagation, listener
// cold start), so Dial retries with exponential backoff and verifies the
// session with a liveness traversal before handing the connection out.
package gremlin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/marcusholm/graphbench/internal/util/retry"
)

const (
	// mimeType frames every request; the server expects the GraphSON v2
	// serializer announced in a length-prefixed header.
	mimeType = "application/vnd.gremlin-v2.0+json"

	// signingService is the SigV4 service name for the graph data plane.
	signingService = "neptune-db"

	// emptyPayloadHash is the SHA-256 of an empty body; WebSocket upgrade
	// requests carry no payload.
	emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	livenessQuery = "g.V().limit(1)"
)

// Logger receives dial progress output. A nil Logger is silent.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Config describes how to reach the Gremlin endpoint.
type Config struct {
	// Endpoint is the cluster endpoint hostname.
	Endpoint string
	Port     int32
	Region   string

	// Credentials sign the WebSocket upgrade with SigV4. Nil dials
	// unsigned (local servers, tests).
	Credentials aws.CredentialsProvider

	// URL overrides the wss URL derived from Endpoint and Port.
	URL string

	MaxRetries int
	MinDelay   time.Duration
	MaxDelay   time.Duration

	Logger Logger
}

func (c *Config) url() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("wss://%s:%d/gremlin", c.Endpoint, c.Port)
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8182
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 5
	}
	if c.MinDelay == 0 {
		c.MinDelay = 2 * time.Second
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 60 * time.Second
	}
}

// Client is a live Gremlin session over one WebSocket connection.
// It is not safe for concurrent use.
type Client struct {
	conn *websocket.Conn
	url  string
}

// Dial connects to the Gremlin endpoint, retrying with exponential backoff
// until the connection is established and the liveness traversal succeeds.
// Exhausting the retry budget returns a *ConnectionError.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	cfg.applyDefaults()
	url := cfg.url()

	var client *Client
	attempts := 0
	err := retry.Do(ctx, func() error {
		attempts++
		c, err := dialOnce(ctx, cfg, url)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Printf("connection attempt %d to %s failed: %v", attempts, url, err)
			}
			return err
		}
		client = c
		return nil
	},
		retry.WithMaxRetries(cfg.MaxRetries),
		retry.WithMinDelay(cfg.MinDelay),
		retry.WithMaxDelay(cfg.MaxDelay),
		retry.WithJitter(func() time.Duration { return 0 }),
	)
	if err != nil {
		return nil, &ConnectionError{Endpoint: url, Attempts: attempts, Err: err}
	}
	return client, nil
}

// dialOnce performs one connection attempt: sign, upgrade, verify. A
// connection that fails its liveness probe is closed before the error is
// returned, so no half-open transports leak across attempts.
func dialOnce(ctx context.Context, cfg Config, url string) (*Client, error) {
	header := http.Header{}
	if cfg.Credentials != nil {
		signed, err := signedHeader(ctx, cfg, url)
		if err != nil {
			return nil, fmt.Errorf("signing connection request: %w", err)
		}
		header = signed
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket upgrade rejected (%s): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	client := &Client{conn: conn, url: url}
	if _, err := client.Submit(ctx, livenessQuery, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("liveness traversal: %w", err)
	}
	return client, nil
}

// signedHeader produces the SigV4 headers for the WebSocket upgrade. The
// signature is computed over the equivalent http(s) request.
func signedHeader(ctx context.Context, cfg Config, url string) (http.Header, error) {
	httpsURL := strings.Replace(url, "ws", "http", 1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpsURL, nil)
	if err != nil {
		return nil, err
	}
	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving credentials: %w", err)
	}
	signer := v4.NewSigner()
	if err := signer.SignHTTP(ctx, creds, req, emptyPayloadHash, signingService, cfg.Region, time.Now()); err != nil {
		return nil, err
	}
	return req.Header, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// request is the Gremlin Server eval envelope.
type request struct {
	RequestID string      `json:"requestId"`
	Op        string      `json:"op"`
	Processor string      `json:"processor"`
	Args      requestArgs `json:"args"`
}

type requestArgs struct {
	Gremlin  string                 `json:"gremlin"`
	Bindings map[string]interface{} `json:"bindings,omitempty"`
	Language string                 `json:"language"`
}

type response struct {
	RequestID string `json:"requestId"`
	Status    struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Result struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
}

// Result holds the data chunks of one traversal. Large traversals arrive
// as multiple partial-content frames.
type Result struct {
	Data []json.RawMessage
}

// Submit evaluates one traversal with the given bindings and collects the
// full result, following partial-content frames until the server reports
// completion.
func (c *Client) Submit(ctx context.Context, query string, bindings map[string]interface{}) (*Result, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		_ = c.conn.SetReadDeadline(deadline)
	}

	body, err := json.Marshal(request{
		RequestID: uuid.NewString(),
		Op:        "eval",
		Processor: "",
		Args: requestArgs{
			Gremlin:  query,
			Bindings: bindings,
			Language: "gremlin-groovy",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding traversal: %w", err)
	}

	frame := make([]byte, 0, 1+len(mimeType)+len(body))
	frame = append(frame, byte(len(mimeType)))
	frame = append(frame, mimeType...)
	frame = append(frame, body...)

	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return nil, fmt.Errorf("sending traversal: %w", err)
	}

	result := &Result{}
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("reading traversal response: %w", err)
		}
		var resp response
		if err := json.Unmarshal(msg, &resp); err != nil {
			return nil, fmt.Errorf("decoding traversal response: %w", err)
		}

		switch resp.Status.Code {
		case http.StatusOK:
			if len(resp.Result.Data) > 0 {
				result.Data = append(result.Data, resp.Result.Data)
			}
			return result, nil
		case http.StatusNoContent:
			return result, nil
		case http.StatusPartialContent:
			if len(resp.Result.Data) > 0 {
				result.Data = append(result.Data, resp.Result.Data)
			}
		default:
			return nil, fmt.Errorf("traversal failed with status %d: %s", resp.Status.Code, resp.Status.Message)
		}
	}
}

// ConnectionError reports that the endpoint stayed unreachable through the
// whole retry budget.
type ConnectionError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to %s after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError checks whether err is a connection failure.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
