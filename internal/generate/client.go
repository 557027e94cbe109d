// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents a failed generation request.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches ClientErrors by type, so errors.Is(err, ErrTimeout) works for
// any timeout regardless of message.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// ErrorType categorizes client errors for logging.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeStatus
	ErrTypeInvalidResponse
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeStatus:
		return "status"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrConnection      = &ClientError{Type: ErrTypeConnection, Message: "generation service unreachable"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrStatus          = &ClientError{Type: ErrTypeStatus, Message: "unexpected status"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response"}
)

// TypeOf returns the ErrorType of err, or ErrTypeUnknown.
func TypeOf(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultEndpoint is the generation service the client talks to when none is configured.
const DefaultEndpoint = "http://65.2.164.223:4000/generate"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 60 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// ClientConfig holds configuration options for the client.
type ClientConfig struct {
	// Endpoint is the full URL requests are POSTed to.
	Endpoint string

	// Timeout for a whole request, including reading the body.
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Endpoint: DefaultEndpoint,
		Timeout:  DefaultTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends prompts to the generation service.
//
// The Client is thread-safe for concurrent use; Reconfigure may be called
// while requests are in flight and affects only later requests.
//
// Example:
//
//	client := generate.NewClient()
//	reply, err := client.Generate(ctx, "hello")
type Client struct {
	mu         sync.RWMutex
	config     ClientConfig
	httpClient *http.Client
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	c := &Client{}
	c.Reconfigure(config)
	return c
}

// Reconfigure replaces the endpoint and timeout.
func (c *Client) Reconfigure(config *ClientConfig) {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	// Fill in defaults for any zero values
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
	c.httpClient = &http.Client{Timeout: cfg.Timeout}
}

// Config returns a copy of the active configuration.
func (c *Client) Config() ClientConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate posts prompt to the endpoint and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.mu.RLock()
	endpoint := c.config.Endpoint
	httpClient := c.httpClient
	c.mu.RUnlock()

	body, err := json.Marshal(GenerateRequest{Prompt: prompt})
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ClientError{
			Type:    ErrTypeStatus,
			Message: "generation request failed",
			Cause:   errors.Errorf("unexpected status %s", resp.Status),
		}
	}

	var result GenerateResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	text, ok := result.Text()
	if !ok {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: `response has no string "response" field`}
	}

	return text, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: "generation service unreachable", Cause: err}
}
