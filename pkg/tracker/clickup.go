// Package tracker is a thin client for the ClickUp v2 REST API, covering
// the handful of calls job provisioning needs.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.clickup.com/api/v2"

// Client talks to ClickUp with a personal or service token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// WithBaseURL points the client at a different endpoint, used by tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// Task is the subset of a ClickUp task the provisioning flow reads.
type Task struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	List         ListRef       `json:"list"`
	CustomFields []CustomField `json:"custom_fields"`
}

type ListRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CustomField struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// CustomFieldValue returns the string value of the named custom field.
func (t Task) CustomFieldValue(name string) (string, bool) {
	for _, f := range t.CustomFields {
		if f.Name == name {
			if s, ok := f.Value.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetTask fetches a task with its custom fields.
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/task/%s", taskID), nil, &task); err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	return &task, nil
}

// CreateFolder creates a job folder in the space owning the given list.
func (c *Client) CreateFolder(ctx context.Context, listID, name string) (*Folder, error) {
	var folder Folder
	payload := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/list/%s/folder", listID), payload, &folder); err != nil {
		return nil, fmt.Errorf("failed to create folder %q: %w", name, err)
	}
	return &folder, nil
}

// CreateList creates a list inside a folder.
func (c *Client) CreateList(ctx context.Context, folderID, name string) (*List, error) {
	var list List
	payload := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/folder/%s/list", folderID), payload, &list); err != nil {
		return nil, fmt.Errorf("failed to create list %q: %w", name, err)
	}
	return &list, nil
}

// CreateTask creates a task in a list.
func (c *Client) CreateTask(ctx context.Context, listID, name, description string) (*Task, error) {
	var task Task
	payload := map[string]string{"name": name}
	if description != "" {
		payload["description"] = description
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/list/%s/task", listID), payload, &task); err != nil {
		return nil, fmt.Errorf("failed to create task %q: %w", name, err)
	}
	return &task, nil
}

// UpdateCustomField writes a custom field value on a task.
func (c *Client) UpdateCustomField(ctx context.Context, taskID, fieldID string, value any) error {
	payload := map[string]any{"value": value}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/task/%s/field/%s", taskID, fieldID), payload, nil); err != nil {
		return fmt.Errorf("failed to update field %s on task %s: %w", fieldID, taskID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("tracker API error",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
