// Package envclient talks to the remote environment runtime that actually
// performs tool operations (file I/O, shell, browser, GUI input).
//
// The client is a thin HTTP passthrough: one POST per tool call, bounded by a
// per-call timeout. Failures are classified so the dispatch layer can turn
// them into structured error documents instead of aborting the batch.
package envclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single environment call.
const DefaultTimeout = 65 * time.Second

const maxResponseBytes = 32 << 20 // screenshots arrive base64-encoded

// FailureKind classifies why an environment call failed.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureRejected  FailureKind = "rejected"
	FailureTimeout   FailureKind = "timeout"
)

// Error is the classified failure surface of Execute.
type Error struct {
	Kind    FailureKind
	Message string
	Detail  json.RawMessage
}

func (e *Error) Error() string {
	if e == nil {
		return "environment error"
	}
	return fmt.Sprintf("environment %s: %s", e.Kind, e.Message)
}

type Options struct {
	// BaseURL is the environment runtime endpoint. Required.
	BaseURL string
	// Timeout bounds each Execute call. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *slog.Logger
}

// New validates the endpoint configuration. A missing or malformed base URL
// is a construction-time failure; the process must refuse to start.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("missing environment base URL")
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid environment base URL %q", opts.BaseURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("invalid environment base URL scheme %q", u.Scheme)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{baseURL: base, timeout: timeout, http: hc, log: log}, nil
}

type executeRequest struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

type rejectBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail,omitempty"`
}

// Execute performs one named operation against the environment and returns
// the raw result document. The three failure modes (transport, non-2xx
// rejection, timeout) come back as *Error with the matching kind.
func (c *Client) Execute(ctx context.Context, toolName string, input map[string]any) (json.RawMessage, error) {
	if c == nil {
		return nil, &Error{Kind: FailureTransport, Message: "environment client not configured"}
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(executeRequest{Tool: strings.TrimSpace(toolName), Input: input})
	if err != nil {
		return nil, &Error{Kind: FailureTransport, Message: "encode request: " + err.Error()}
	}
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: FailureTransport, Message: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			c.log.Debug("env.execute_timeout", "tool", toolName, "elapsed_ms", time.Since(started).Milliseconds())
			return nil, &Error{Kind: FailureTimeout, Message: fmt.Sprintf("environment call exceeded %s", c.timeout)}
		}
		return nil, &Error{Kind: FailureTransport, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Kind: FailureTransport, Message: "read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reject := rejectBody{}
		_ = json.Unmarshal(raw, &reject)
		msg := strings.TrimSpace(reject.Message)
		if msg == "" {
			msg = fmt.Sprintf("environment returned status %d", resp.StatusCode)
		}
		return nil, &Error{Kind: FailureRejected, Message: msg, Detail: reject.Detail}
	}

	c.log.Debug("env.execute_ok", "tool", toolName, "status", resp.StatusCode, "elapsed_ms", time.Since(started).Milliseconds())
	return raw, nil
}
