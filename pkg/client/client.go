package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/intecsystems/nda-survey/internal/models"
)

// Client is a Go SDK for the nda-survey API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithToken sets the admin bearer token used for authenticated endpoints
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new nda-survey client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a non-2xx response from the survey API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: HTTP %d: %s", e.Status, e.Message)
}

// SubmitResult identifies an accepted submission
type SubmitResult struct {
	ID             string    `json:"id"`
	SubmissionDate time.Time `json:"submissionDate"`
}

// LoginResult holds an issued admin token
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ListOptions contains options for listing surveys
type ListOptions struct {
	Page      int
	Limit     int
	Status    models.SurveyStatus
	Search    string
	StartDate string
	EndDate   string
	SortBy    string
	SortOrder models.SortOrder
}

type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Message    string             `json:"message"`
	Pagination *models.Pagination `json:"pagination"`
}

// SubmitSurvey submits a completed survey
func (c *Client) SubmitSurvey(ctx context.Context, req models.CreateSurveyRequest) (*SubmitResult, error) {
	env, err := c.doRequest(ctx, http.MethodPost, "/api/surveys", req)
	if err != nil {
		return nil, err
	}

	var result SubmitResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

// GetSurvey retrieves a survey by ID
func (c *Client) GetSurvey(ctx context.Context, id string) (*models.Survey, error) {
	env, err := c.doRequest(ctx, http.MethodGet, "/api/surveys/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var survey models.Survey
	if err := json.Unmarshal(env.Data, &survey); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &survey, nil
}

// ListSurveys retrieves one page of surveys
func (c *Client) ListSurveys(ctx context.Context, opts ListOptions) ([]*models.Survey, *models.Pagination, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.StartDate != "" {
		q.Set("startDate", opts.StartDate)
	}
	if opts.EndDate != "" {
		q.Set("endDate", opts.EndDate)
	}
	if opts.SortBy != "" {
		q.Set("sortBy", opts.SortBy)
	}
	if opts.SortOrder != "" {
		q.Set("sortOrder", string(opts.SortOrder))
	}

	path := "/api/surveys"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	env, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, nil, err
	}

	var surveys []*models.Survey
	if err := json.Unmarshal(env.Data, &surveys); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return surveys, env.Pagination, nil
}

// UpdateStatus updates the review status of a survey
func (c *Client) UpdateStatus(ctx context.Context, id string, status models.SurveyStatus, reviewNotes string) (*models.Survey, error) {
	req := models.UpdateStatusRequest{Status: status, ReviewNotes: reviewNotes}

	env, err := c.doRequest(ctx, http.MethodPatch, "/api/surveys/"+url.PathEscape(id)+"/status", req)
	if err != nil {
		return nil, err
	}

	var survey models.Survey
	if err := json.Unmarshal(env.Data, &survey); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &survey, nil
}

// Stats retrieves aggregate submission counts
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	env, err := c.doRequest(ctx, http.MethodGet, "/api/surveys/stats/overview", nil)
	if err != nil {
		return nil, err
	}

	var stats models.Stats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &stats, nil
}

// GetQuestionnaire retrieves a questionnaire definition by name. The
// result is left as raw JSON so the SDK stays decoupled from the
// definition schema.
func (c *Client) GetQuestionnaire(ctx context.Context, name string) (json.RawMessage, error) {
	env, err := c.doRequest(ctx, http.MethodGet, "/api/questionnaires/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Login authenticates an admin user and stores the issued token on the
// client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}

	env, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", body)
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.token = result.Token
	return &result, nil
}

// Logout revokes the stored admin token
func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return nil
	}

	_, err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}

	c.token = ""
	return nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/api/health", nil)
	return err
}

// doRequest performs an HTTP request and decodes the response envelope
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{Status: resp.StatusCode, Message: string(respBody)}
		}
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	return &env, nil
}
