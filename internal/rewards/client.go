// Package rewards reports qualifying plays to the platform's payment API.
package rewards

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

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single RecordPlay call.
const DefaultTimeout = 10 * time.Second

// ErrNotAuthenticated is returned when there is no token to send.
var ErrNotAuthenticated = errors.New("not logged in")

// TokenSource supplies the listener's bearer token.
type TokenSource interface {
	Token() (string, error)
}

// Play is a qualifying play as submitted to the API.
type Play struct {
	ID       uuid.UUID
	TrackID  string
	PlayedAt time.Time
	Accrued  time.Duration
}

type playRequest struct {
	ID             string  `json:"id"`
	TrackID        string  `json:"track_id"`
	PlayedAt       string  `json:"played_at"`
	AccruedSeconds float64 `json:"accrued_seconds"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rewards API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("rewards API returned status %d: %s", e.StatusCode, e.Message)
}

// Client provides access to the rewards API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a rewards API client. A non-positive timeout uses
// DefaultTimeout.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RecordPlay submits p once. The event ID is sent as the idempotency key
// so the server can drop duplicates.
func (c *Client) RecordPlay(ctx context.Context, p Play) error {
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return ErrNotAuthenticated
	}

	jsonBody, err := json.Marshal(playRequest{
		ID:             p.ID.String(),
		TrackID:        p.TrackID,
		PlayedAt:       p.PlayedAt.UTC().Format(time.RFC3339Nano),
		AccruedSeconds: p.Accrued.Seconds(),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/plays", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Idempotency-Key", p.ID.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	}
	return nil
}

// readMessage extracts {"error": "..."} from an error body, falling back
// to the raw text.
func readMessage(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
