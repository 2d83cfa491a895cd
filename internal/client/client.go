package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/triageworks/sentinel/internal/task"
)

// Client talks to the dashboard API over plain HTTP JSON.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    http.DefaultClient,
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

type listTasksResponse struct {
	Tasks []*task.Task `json:"tasks"`
}

func (c *Client) ListTasks(ctx context.Context, status string) ([]*task.Task, error) {
	path := "/api/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var resp listTasksResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id int) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// TaskPatch carries the editable fields. Nil fields are left unchanged.
type TaskPatch struct {
	OriginalSubject *string `json:"original_subject,omitempty"`
	Summary         *string `json:"summary,omitempty"`
	Reasoning       *string `json:"reasoning,omitempty"`
	Deadline        *string `json:"deadline,omitempty"`
	ProjectID       *string `json:"project_id,omitempty"`
	Assignee        *string `json:"assignee,omitempty"`
}

func (c *Client) UpdateTask(ctx context.Context, id int, patch *TaskPatch) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", id), patch, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) ApproveTask(ctx context.Context, id int) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/approve", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) ArchiveTask(ctx context.Context, id int) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/archive", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) RejectTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, nil)
}

type watcherState struct {
	Running bool `json:"running"`
}

func (c *Client) WatcherRunning(ctx context.Context) (bool, error) {
	var state watcherState
	if err := c.do(ctx, http.MethodGet, "/api/watcher", nil, &state); err != nil {
		return false, err
	}
	return state.Running, nil
}

func (c *Client) SetWatcher(ctx context.Context, running bool) (bool, error) {
	var state watcherState
	if err := c.do(ctx, http.MethodPost, "/api/watcher", watcherState{Running: running}, &state); err != nil {
		return false, err
	}
	return state.Running, nil
}
