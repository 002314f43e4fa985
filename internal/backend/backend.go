// Package backend provides the HTTP client for the conversational backend:
// the generic assistant exchange, appointment scheduling and cancellation,
// lead creation, feedback telemetry, slot locks, and company configuration.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/WidgetWorks/ChatFlow/internal/models"
)

// HTTPError reports a non-2xx status from the backend. For appointment
// scheduling this is a hard failure distinct from an application-level
// {success:false} body.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, strings.TrimSpace(strings.TrimPrefix(e.Status, fmt.Sprintf("%d", e.StatusCode))))
}

// Client talks JSON over HTTP to the configured backend base URL, attaching
// the bearer token when present. Requests carry no client-side timeout;
// cancellation is the caller's context.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAuthToken sets the bearer token attached to every request.
func WithAuthToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	slog.Debug("Backend client created", "baseURL", c.baseURL, "auth_set", c.authToken != "")
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// postJSON posts payload to path and decodes the response body into out,
// ignoring the HTTP status. Most endpoints put their outcome in the body;
// a body that does not parse is a transport failure.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// SendMessage forwards an utterance to the generic conversational endpoint.
func (c *Client) SendMessage(ctx context.Context, req models.SendMessageRequest) (models.SendMessageResponse, error) {
	slog.Debug("Backend SendMessage", "sessionID", req.SessionID, "length", len(req.Message))
	var out models.SendMessageResponse
	if err := c.postJSON(ctx, "/send_message", req, &out); err != nil {
		slog.Error("Backend SendMessage failed", "error", err, "sessionID", req.SessionID)
		return models.SendMessageResponse{}, err
	}
	return out, nil
}

// ScheduleAppointment books a slot. A non-2xx HTTP status is returned as an
// *HTTPError; an application-level refusal comes back with Success=false and
// the server's error text, and a nil error.
func (c *Client) ScheduleAppointment(ctx context.Context, req models.ScheduleAppointmentRequest) (models.ScheduleAppointmentResponse, error) {
	slog.Debug("Backend ScheduleAppointment", "sessionID", req.SessionID, "time", req.Time)
	data, err := json.Marshal(req)
	if err != nil {
		return models.ScheduleAppointmentResponse{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/schedule_appointment", bytes.NewReader(data))
	if err != nil {
		slog.Error("Backend ScheduleAppointment failed", "error", err, "sessionID", req.SessionID)
		return models.ScheduleAppointmentResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
		slog.Error("Backend ScheduleAppointment non-2xx", "error", err, "sessionID", req.SessionID)
		return models.ScheduleAppointmentResponse{}, err
	}

	var out models.ScheduleAppointmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ScheduleAppointmentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// CancelAppointment cancels an appointment by id.
func (c *Client) CancelAppointment(ctx context.Context, req models.CancelAppointmentRequest) (models.CancelAppointmentResponse, error) {
	slog.Debug("Backend CancelAppointment", "appointmentID", req.AppointmentID)
	var out models.CancelAppointmentResponse
	if err := c.postJSON(ctx, "/cancel_appointment", req, &out); err != nil {
		slog.Error("Backend CancelAppointment failed", "error", err, "appointmentID", req.AppointmentID)
		return models.CancelAppointmentResponse{}, err
	}
	return out, nil
}

// CreateLead submits captured contact details.
func (c *Client) CreateLead(ctx context.Context, req models.CreateLeadRequest) (models.CreateLeadResponse, error) {
	slog.Debug("Backend CreateLead", "sessionID", req.SessionID)
	var out models.CreateLeadResponse
	if err := c.postJSON(ctx, "/create_lead", req, &out); err != nil {
		slog.Error("Backend CreateLead failed", "error", err, "sessionID", req.SessionID)
		return models.CreateLeadResponse{}, err
	}
	return out, nil
}

// SubmitFeedback posts a rating. Best-effort telemetry: callers ignore the
// error, and the response body is discarded.
func (c *Client) SubmitFeedback(ctx context.Context, req models.FeedbackRequest) error {
	slog.Debug("Backend SubmitFeedback", "sessionID", req.SessionID, "rating", req.Rating)
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/feedback", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// GetSlotLocks fetches the lock map for a calendar date. The caller supplies
// identity because the endpoint is a GET with query parameters.
func (c *Client) GetSlotLocks(ctx context.Context, date, username, botID string) (models.SlotLocksResponse, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("username", username)
	q.Set("botId", botID)

	var out models.SlotLocksResponse
	if err := c.getJSON(ctx, "/get_slot_locks", q, &out); err != nil {
		slog.Error("Backend GetSlotLocks failed", "error", err, "date", date)
		return models.SlotLocksResponse{}, err
	}
	return out, nil
}

// GetCompanyConfig fetches tenant branding and behavior.
func (c *Client) GetCompanyConfig(ctx context.Context, username string) (models.CompanyConfigResponse, error) {
	q := url.Values{}
	q.Set("username", username)

	var out models.CompanyConfigResponse
	if err := c.getJSON(ctx, "/get_company_config", q, &out); err != nil {
		slog.Error("Backend GetCompanyConfig failed", "error", err, "username", username)
		return models.CompanyConfigResponse{}, err
	}
	return out, nil
}
