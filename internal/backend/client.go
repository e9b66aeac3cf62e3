// Package backend adapts the recognition backend's REST API and push
// channel for the console. It is the only package that talks upstream.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Config holds the configuration for the backend client
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:5001",
		Timeout:    15 * time.Second,
		RetryCount: 3,
	}
}

// Client is the HTTP client for the recognition backend's REST API.
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new backend client
func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Events pulls the event snapshot that seeds the live feed, newest first.
func (c *Client) Events(ctx context.Context) ([]domain.RecognitionEvent, error) {
	var events []domain.RecognitionEvent
	if err := c.getWithRetry(ctx, "/events", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Users pulls the full user list. A body that is not a JSON array is
// reported as ErrInvalidResponse; callers normalize that to an empty list.
func (c *Client) Users(ctx context.Context) ([]domain.UserRecord, error) {
	var body json.RawMessage
	if err := c.getWithRetry(ctx, "/users_full", &body); err != nil {
		return nil, err
	}

	var users []domain.UserRecord
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("%w: users_full is not an array: %v", ErrInvalidResponse, err)
	}
	return users, nil
}

// Register asks the backend to start an asynchronous face capture for the
// given name. The acknowledgment only means the capture started; the
// outcome arrives later on the push channel.
func (c *Client) Register(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/register", map[string]string{"name": name}, nil)
}

// UpdateUser re-captures the face of an already registered user. Like
// Register, the acknowledgment only means the capture started.
func (c *Client) UpdateUser(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/update_user", map[string]string{"name": name}, nil)
}

// DeleteUser removes a user. Callers re-pull the user list on success.
func (c *Client) DeleteUser(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/delete_user", map[string]string{"name": name}, nil)
}

// RenameUser renames a user. The backend rejects colliding target names
// with a 4xx StatusError.
func (c *Client) RenameUser(ctx context.Context, oldName, newName string) error {
	body := map[string]string{"old_name": oldName, "new_name": newName}
	return c.do(ctx, http.MethodPost, "/rename_user", body, nil)
}

// UpdateAccess replaces a user's access policy in one atomic call.
func (c *Client) UpdateAccess(ctx context.Context, name, start, end, days string, role domain.Role) error {
	body := map[string]string{
		"name":  name,
		"start": start,
		"end":   end,
		"days":  days,
		"role":  string(role),
	}
	return c.do(ctx, http.MethodPost, "/update_access", body, nil)
}

// getWithRetry retries idempotent reads on network and 5xx failures with
// exponential backoff. Mutating calls never retry: the backend does not
// deduplicate them.
func (c *Client) getWithRetry(ctx context.Context, path string, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoffFor(attempt)):
			}
		}

		lastErr = c.do(ctx, http.MethodGet, path, nil, result)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if IsClientError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// backoffFor doubles per attempt: 1s, 2s, 4s, ... capped at 30s.
func backoffFor(attempt int) time.Duration {
	d := time.Second << (attempt - 1)
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    decodeErrorMessage(respBody),
		}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}

func decodeErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(body)
}
