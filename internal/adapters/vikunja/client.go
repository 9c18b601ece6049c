package vikunja

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hylla/vitui/internal/app"
	"github.com/hylla/vitui/internal/domain"
)

// DefaultTimeout bounds one request when the config leaves it unset.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the server root, e.g. "https://tasks.example.com".
	BaseURL string
	// Token is sent as a bearer token on every request.
	Token   string
	Timeout time.Duration
	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     app.Logger
	UserAgent  string
}

// Client talks to the Vikunja REST API. It implements app.Tracker.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     app.Logger
	newID      func() string
}

// New constructs a client from cfg.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrMissingBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("vikunja: invalid base url %q: %w", base, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("vikunja: invalid base url %q: scheme must be http or https", base)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger{}
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "vitui"
	}
	return &Client{
		baseURL:    base,
		token:      strings.TrimSpace(cfg.Token),
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     logger,
		newID:      func() string { return uuid.NewString() },
	}, nil
}

// WebURL returns the base URL used for browser links.
func (c *Client) WebURL() string {
	return c.baseURL
}

// ListTasks fetches one page of tasks across all projects, newest first.
func (c *Client) ListTasks(ctx context.Context, q app.ListTasksQuery) ([]domain.Task, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(max(1, q.Page)))
	if q.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(q.PerPage))
	}
	query.Set("sort_by", "created")
	query.Set("order_by", "desc")
	if !q.IncludeDone {
		query.Set("filter", "done = false")
	}

	body, err := c.do(ctx, http.MethodGet, "/api/v1/tasks/all", query, nil)
	if err != nil {
		return nil, err
	}
	var rows []taskSummary
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("vikunja: decode task list: %w", err)
	}
	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toDomain())
	}
	return tasks, nil
}

// GetTask fetches the full record for one task.
func (c *Client) GetTask(ctx context.Context, id int64) (domain.TaskDetail, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/tasks/"+strconv.FormatInt(id, 10), nil, nil)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	var record taskRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return domain.TaskDetail{}, fmt.Errorf("vikunja: decode task %d: %w", id, err)
	}
	return record.toDomain(), nil
}

// CreateTask creates a task in projectID.
func (c *Client) CreateTask(ctx context.Context, projectID int64, in app.CreateTaskInput) error {
	payload := createTaskRequest{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     formatDueDate(in.DueAt),
	}
	path := "/api/v1/projects/" + strconv.FormatInt(projectID, 10) + "/tasks"
	_, err := c.do(ctx, http.MethodPut, path, nil, payload)
	return err
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("vikunja: encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("vikunja: create request: %w", err)
	}
	requestID := c.newID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("vikunja request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return nil, fmt.Errorf("vikunja: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("vikunja: read response body: %w", err)
	}
	c.logger.Debug("vikunja request complete",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	// Error bodies are usually {"code":...,"message":...}; anything else stays as raw text.
	_ = json.Unmarshal(body, statusErr)
	return nil, statusErr
}

// discardLogger drops every event.
type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
