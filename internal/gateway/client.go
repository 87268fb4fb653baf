package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Status is the server-reported lifecycle state of a pipeline task.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRevoked   Status = "REVOKED"
	StatusNotFound  Status = "NOT_FOUND"
	StatusError     Status = "ERROR"
)

// Terminal reports whether no further status transitions can follow.
// Pollers stop once a terminal status has been observed.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRevoked, StatusNotFound:
		return true
	}
	return false
}

// StatusReply is one status fetch. Found=false means the gateway does not
// know the task (HTTP 404); that is a state, not a fetch failure, and the
// returned error is nil in that case.
type StatusReply struct {
	TaskID      string
	Found       bool
	Status      Status
	Progress    float64
	HasProgress bool
	Message     string
	Details     map[string]any
}

// ParametersReply is the config snapshot a task was launched with.
// Found=false means the parameters expired or were never stored.
type ParametersReply struct {
	TaskID     string
	Found      bool
	Parameters map[string]any
}

// LogsReply holds a log tail snapshot. Found=false means no log file has
// been written for the task yet.
type LogsReply struct {
	TaskID string
	Found  bool
	Logs   string
}

// QueueReply is the server-wide pending/scheduled task id lists.
type QueueReply struct {
	PendingTasks   []string
	ScheduledTasks []string
	Message        string
}

// OutputReply carries a downloaded output archive. Found=false means the
// task has no output directory.
type OutputReply struct {
	Found    bool
	Filename string
	Data     []byte
}

// RunRequest queues a pipeline run. NodePath selects the pipeline node;
// ConfigPath is relative to the server's configs dir or absolute.
type RunRequest struct {
	NodePath   string         `json:"node_path"`
	ConfigPath string         `json:"config_path,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type statusPayload struct {
	TaskID   string         `json:"task_id"`
	Status   string         `json:"status"`
	Progress *float64       `json:"progress"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details"`
}

type parametersPayload struct {
	TaskID     string         `json:"task_id"`
	Parameters map[string]any `json:"parameters"`
}

type logsPayload struct {
	TaskID string `json:"task_id"`
	Logs   string `json:"logs"`
}

type queuePayload struct {
	PendingTasks   []string `json:"pending_tasks"`
	ScheduledTasks []string `json:"scheduled_tasks"`
	Message        string   `json:"message"`
}

type runPayload struct {
	PipelineID string `json:"pipeline_id"`
	Message    string `json:"message"`
}

type apiError struct {
	Detail any    `json:"detail"`
	Error  string `json:"error"`
}

func (e apiError) text() string {
	if detail, ok := e.Detail.(string); ok && strings.TrimSpace(detail) != "" {
		return strings.TrimSpace(detail)
	}
	if e.Detail != nil {
		if blob, err := json.Marshal(e.Detail); err == nil {
			return string(blob)
		}
	}
	return strings.TrimSpace(e.Error)
}

// Client talks to the remote task gateway over REST.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: 45 * time.Second,
		},
	}
}

// do runs one JSON request. notFound=true reports an HTTP 404 without an
// error so callers can treat absence as a state rather than a failure.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, out any) (notFound bool, err error) {
	var body io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return false, fmt.Errorf("marshal request payload: %w", err)
		}
		body = bytes.NewReader(blob)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return true, nil
	}
	if resp.StatusCode >= 400 {
		blob, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if json.Unmarshal(blob, &apiErr) == nil && apiErr.text() != "" {
			return false, fmt.Errorf("api %s %s: %s", method, path, apiErr.text())
		}
		return false, fmt.Errorf("api %s %s failed with status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}

func taskPath(taskID, suffix string) string {
	return "/tasks/" + url.PathEscape(taskID) + suffix
}

// TaskStatus fetches the current status snapshot for a task.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (StatusReply, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return StatusReply{}, fmt.Errorf("task id is required")
	}

	var payload statusPayload
	notFound, err := c.do(ctx, http.MethodGet, taskPath(taskID, "/status"), nil, nil, &payload)
	if err != nil {
		return StatusReply{}, err
	}
	if notFound {
		return StatusReply{TaskID: taskID}, nil
	}

	reply := StatusReply{
		TaskID:  taskID,
		Found:   true,
		Status:  Status(strings.TrimSpace(payload.Status)),
		Message: payload.Message,
		Details: payload.Details,
	}
	if payload.Progress != nil {
		reply.Progress = *payload.Progress
		reply.HasProgress = true
	}
	return reply, nil
}

// TaskParameters fetches the configuration snapshot the task was launched
// with. An absent snapshot (expired or never stored) is not an error.
func (c *Client) TaskParameters(ctx context.Context, taskID string) (ParametersReply, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return ParametersReply{}, fmt.Errorf("task id is required")
	}

	var payload parametersPayload
	notFound, err := c.do(ctx, http.MethodGet, taskPath(taskID, "/parameters"), nil, nil, &payload)
	if err != nil {
		return ParametersReply{}, err
	}
	if notFound {
		return ParametersReply{TaskID: taskID}, nil
	}
	return ParametersReply{TaskID: taskID, Found: true, Parameters: payload.Parameters}, nil
}

// TaskLogs fetches the last tail lines of the task's log. The whole tail is
// returned each call; callers replace their cache wholesale.
func (c *Client) TaskLogs(ctx context.Context, taskID string, tail int) (LogsReply, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return LogsReply{}, fmt.Errorf("task id is required")
	}

	query := url.Values{}
	if tail > 0 {
		query.Set("tail", strconv.Itoa(tail))
	}
	var payload logsPayload
	notFound, err := c.do(ctx, http.MethodGet, taskPath(taskID, "/logs"), query, nil, &payload)
	if err != nil {
		return LogsReply{}, err
	}
	if notFound {
		return LogsReply{TaskID: taskID}, nil
	}
	return LogsReply{TaskID: taskID, Found: true, Logs: payload.Logs}, nil
}

// DeleteTaskLogs removes the server-side log file for a task.
func (c *Client) DeleteTaskLogs(ctx context.Context, taskID string) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return fmt.Errorf("task id is required")
	}
	notFound, err := c.do(ctx, http.MethodDelete, taskPath(taskID, "/logs"), nil, nil, nil)
	if err != nil {
		return err
	}
	if notFound {
		return fmt.Errorf("no log file exists for task %s", taskID)
	}
	return nil
}

// Queue fetches the server-wide pending and scheduled task id lists.
func (c *Client) Queue(ctx context.Context) (QueueReply, error) {
	var payload queuePayload
	if _, err := c.do(ctx, http.MethodGet, "/tasks/queue", nil, nil, &payload); err != nil {
		return QueueReply{}, err
	}
	return QueueReply{
		PendingTasks:   payload.PendingTasks,
		ScheduledTasks: payload.ScheduledTasks,
		Message:        payload.Message,
	}, nil
}

// Interrupt cancels a running task or revokes a pending one.
func (c *Client) Interrupt(ctx context.Context, taskID string) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return fmt.Errorf("task id is required")
	}
	notFound, err := c.do(ctx, http.MethodPost, taskPath(taskID, "/interrupt"), nil, map[string]any{}, nil)
	if err != nil {
		return err
	}
	if notFound {
		return fmt.Errorf("task %s not found", taskID)
	}
	return nil
}

// RunPipeline queues a pipeline run and returns the new task id. This is
// the only place task ids originate.
func (c *Client) RunPipeline(ctx context.Context, req RunRequest) (string, error) {
	if strings.TrimSpace(req.NodePath) == "" {
		return "", fmt.Errorf("node path is required")
	}
	var payload runPayload
	if _, err := c.do(ctx, http.MethodPost, "/pipelines/run", nil, req, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.PipelineID) == "" {
		return "", fmt.Errorf("gateway did not return a task id")
	}
	return payload.PipelineID, nil
}

// DownloadOutput fetches the task's output archive. Found=false means the
// output directory does not exist, which callers report as a state rather
// than a failure.
func (c *Client) DownloadOutput(ctx context.Context, taskID string) (OutputReply, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return OutputReply{}, fmt.Errorf("task id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+taskPath(taskID, "/outputs/download"), nil)
	if err != nil {
		return OutputReply{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return OutputReply{}, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return OutputReply{}, nil
	}
	if resp.StatusCode >= 400 {
		blob, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if json.Unmarshal(blob, &apiErr) == nil && apiErr.text() != "" {
			return OutputReply{}, fmt.Errorf("download output for %s: %s", taskID, apiErr.text())
		}
		return OutputReply{}, fmt.Errorf("download output for %s failed with status %d", taskID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return OutputReply{}, fmt.Errorf("read output stream: %w", err)
	}
	return OutputReply{
		Found:    true,
		Filename: outputFilename(resp.Header.Get("Content-Disposition"), taskID),
		Data:     data,
	}, nil
}

func outputFilename(disposition, taskID string) string {
	fallback := fmt.Sprintf("task_%s_output.zip", taskID)
	if strings.TrimSpace(disposition) == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	if name := strings.TrimSpace(params["filename"]); name != "" {
		return name
	}
	return fallback
}
