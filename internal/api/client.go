// Package api provides the client for the GRC backend bulk operation endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/harrison/bulkcomplete/internal/config"
	"github.com/harrison/bulkcomplete/internal/models"
)

// Endpoint paths.
const (
	SearchPath         = "/api/bulk_operations/cavs/search"
	CompletePath       = "/api/bulk_operations/complete"
	SaveAnswersPath    = "/api/bulk_operations/cavs/save"
	BackgroundTaskPath = "/api/background_tasks/"
)

// RequestIDHeader carries the correlation id of every call.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody limits how much of a failed response is kept in HTTPError.
const maxErrorBody = 512

// HTTPError is returned when the backend answers with a non-2xx status.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	RequestID  string
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to the backend over JSON.
type Client struct {
	config     config.APIConfig
	httpClient *http.Client
	newID      func() string
}

// NewClient creates a new client with the given configuration.
// The HTTP client timeout is set from the config.
func NewClient(cfg config.APIConfig) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		newID: uuid.NewString,
	}
}

// Config returns the client's configuration.
func (c *Client) Config() config.APIConfig {
	return c.config
}

// Search lists the assessments matching req together with their attributes.
func (c *Client) Search(ctx context.Context, req models.ListRequest) (*models.SearchResult, error) {
	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, SearchPath, []models.ListRequest{req}, &resp); err != nil {
		return nil, err
	}
	return resp.toResult()
}

// Complete submits a bulk completion request.
func (c *Client) Complete(ctx context.Context, payload models.CompletionRequest) (models.TaskResponse, error) {
	var resp models.TaskResponse
	err := c.do(ctx, http.MethodPost, CompletePath, payload, &resp)
	return resp, err
}

// SaveAnswers submits edited answers without completing any assessment.
func (c *Client) SaveAnswers(ctx context.Context, payload models.CompletionRequest) (models.TaskResponse, error) {
	var resp models.TaskResponse
	err := c.do(ctx, http.MethodPost, SaveAnswersPath, payload, &resp)
	return resp, err
}

// TaskStatus fetches the status of a background task.
func (c *Client) TaskStatus(ctx context.Context, taskID int64) (models.BackgroundTask, error) {
	var task models.BackgroundTask
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s%d", BackgroundTaskPath, taskID), nil, &task)
	return task, err
}

// Get requests path and discards a successful response body.
func (c *Client) Get(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

// do sends a JSON request and decodes the response into out when out is non-nil.
// An empty success body leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}

	requestID := c.newID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-By", "GGRC")
	req.Header.Set(RequestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(data))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody] + "..."
		}
		return &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       text,
			RequestID:  requestID,
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
