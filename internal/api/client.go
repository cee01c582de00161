// Package api implements the HTTP client for the BiteBot conversational
// backend. The backend pairs application errors with 4xx/5xx statuses but
// still puts the outcome in the body, so this client reads the payload
// whatever the status: any decodable body is an application-level outcome
// and only a failed or unreadable exchange is a transport error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bitebot/internal/logging"
	"bitebot/internal/session"
)

// Backend is the surface the client UI consumes. *Client implements it;
// tests substitute a mock.
type Backend interface {
	Chat(ctx context.Context, message string) (*ChatResponse, error)
	FetchReservations(ctx context.Context) ([]session.Reservation, error)
	Reset(ctx context.Context) error
	Health(ctx context.Context) (*HealthStatus, error)
}

var _ Backend = (*Client)(nil)

// Config configures the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig points at a local backend on its default port.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:5000",
		Timeout: 30 * time.Second,
	}
}

// Client talks to the BiteBot backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config Config) *Client {
	return &Client{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// ChatResponse is everything a /chat call can resolve to. Error carries the
// backend's application-level failure text. HasReservations records whether
// the reservations key was present at all: present-but-empty means the
// session's reservations were just cleared, absent means no change, and the
// two must stay distinguishable.
type ChatResponse struct {
	Message         string
	Error           string
	Reservations    []session.Reservation
	HasReservations bool
}

// HealthStatus mirrors GET /health.
type HealthStatus struct {
	Status           string `json:"status"`
	AgentInitialized bool   `json:"agent_initialized"`
	Timestamp        string `json:"timestamp"`
}

// chatRequest is the POST /chat body.
type chatRequest struct {
	Message string `json:"message"`
}

// chatEnvelope is the raw /chat wire form. Reservations is a pointer so an
// absent key decodes to nil while an empty array decodes to a non-nil empty
// slice.
type chatEnvelope struct {
	Message      string                    `json:"message"`
	Error        string                    `json:"error"`
	Reservations *[]map[string]interface{} `json:"reservations"`
}

// reservationsEnvelope is the GET /reservations wire form.
type reservationsEnvelope struct {
	Reservations []map[string]interface{} `json:"reservations"`
}

// Chat sends one user message and returns the backend's resolution. The
// returned error is transport-only; a backend-reported failure comes back as
// ChatResponse.Error with a nil error.
func (c *Client) Chat(ctx context.Context, message string) (*ChatResponse, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	rlog := logging.WithRequestID(logging.CategoryAPI, requestID)
	rlog.Debug("POST /chat message_len=%d", len(message))
	timer := logging.StartTimer(logging.CategoryAPI, "POST /chat")

	jsonData, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		rlog.Error("chat request failed: %v", err)
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		rlog.Error("failed to read chat response: %v", err)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	timer.StopWithThreshold(10 * time.Second)

	// Status is not the signal here; the body is.
	out, err := decodeChatBody(body)
	if err != nil {
		rlog.Error("undecodable chat response: status=%d: %v", resp.StatusCode, err)
		return nil, fmt.Errorf("server returned status %d with undecodable body: %w", resp.StatusCode, err)
	}

	rlog.Info("chat resolved: status=%d app_error=%v reservations_present=%v",
		resp.StatusCode, out.Error != "", out.HasReservations)
	return out, nil
}

func decodeChatBody(body []byte) (*ChatResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var env chatEnvelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	out := &ChatResponse{
		Message: env.Message,
		Error:   env.Error,
	}
	if env.Reservations != nil {
		out.HasReservations = true
		out.Reservations = normalizeReservations(*env.Reservations)
	}
	return out, nil
}

// FetchReservations returns the session's reservation list. Called once at
// session start; /chat responses carry updates from then on.
func (c *Client) FetchReservations(ctx context.Context) ([]session.Reservation, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	rlog := logging.WithRequestID(logging.CategoryAPI, requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reservations", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		rlog.Error("reservations request failed: %v", err)
		return nil, fmt.Errorf("reservations request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		rlog.Error("reservations request failed: status=%d", resp.StatusCode)
		return nil, fmt.Errorf("reservations request failed with status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var env reservationsEnvelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	list := normalizeReservations(env.Reservations)
	rlog.Info("reservations fetched: count=%d", len(list))
	return list, nil
}

// Reset asks the backend to clear the session. Any resolved HTTP exchange
// counts as success, whatever the status code; the error return is
// transport-only.
func (c *Client) Reset(ctx context.Context) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	rlog := logging.WithRequestID(logging.CategoryAPI, requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reset", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		rlog.Error("reset request failed: %v", err)
		return fmt.Errorf("reset request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	rlog.Info("reset resolved: status=%d", resp.StatusCode)
	return nil
}

// Health probes the backend's health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health request failed with status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var status HealthStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &status, nil
}

// normalizeReservations converts wire maps into display reservations. Every
// field is treated as an opaque display value: numbers, strings and missing
// keys all flatten to text without interpretation.
func normalizeReservations(raw []map[string]interface{}) []session.Reservation {
	out := make([]session.Reservation, 0, len(raw))
	for _, m := range raw {
		out = append(out, session.Reservation{
			ReservationID:  displayValue(m["reservation_id"]),
			RestaurantName: displayValue(m["restaurant_name"]),
			Date:           displayValue(m["date"]),
			Time:           displayValue(m["time"]),
			PartySize:      displayValue(m["party_size"]),
			CustomerName:   displayValue(m["customer_name"]),
		})
	}
	return out
}

func displayValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
