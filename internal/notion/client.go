// Package notion talks to the Notion REST API: the HTTP transport, the
// property extractors that read page fields, and a paced Service that
// lists, reads and writes pages.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/daviddao/notionqueue/internal/auth"
)

// DefaultVersion is the Notion-Version header sent with every request.
const DefaultVersion = "2025-09-03"

// DefaultBaseURL is the root of the public API.
const DefaultBaseURL = "https://api.notion.com/v1"

// Transport performs one API call and returns the decoded JSON body.
// Error objects are returned as bodies; callers run CheckResponse.
type Transport interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// Config holds configuration for creating a Client.
type Config struct {
	// Token is the integration secret sent as a bearer credential.
	Token string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Version defaults to DefaultVersion.
	Version string

	// HTTPClient is the base client the bearer transport wraps.
	// Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is the HTTP Transport.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. It fails when no token is configured.
func NewClient(ctx context.Context, config Config) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := config.Version
	if version == "" {
		version = DefaultVersion
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient, err := auth.HTTPClient(ctx, config.Token, config.HTTPClient)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    baseURL,
		version:    version,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Request sends body as JSON to path and returns the response body. A
// non-2xx response that is not an error object becomes an *APIError.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Notion-Version", c.version)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("notion request", "method", method, "path", path)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if !json.Valid(data) {
		if response.StatusCode >= 300 {
			return nil, &APIError{Status: response.StatusCode, Message: strings.TrimSpace(string(data))}
		}
		return nil, fmt.Errorf("%s %s: response is not JSON", method, path)
	}
	if response.StatusCode >= 300 {
		if err := CheckResponse(data); err != nil {
			return data, nil
		}
		return nil, &APIError{Status: response.StatusCode, Message: http.StatusText(response.StatusCode)}
	}
	return data, nil
}
