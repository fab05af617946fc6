// Package tasks talks to the assignment backend: it fetches the daily
// reading tasks for the signed-in student and carries the built-in
// sentence bank used for free practice.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"readaloud/internal/models"
)

const requestTimeout = 15 * time.Second

// Client fetches daily tasks from the backend. The student token is sent
// as a bearer token on every request.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given backend base URL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// StudentID extracts the student identifier from the token's subject
// claim. The token is issued and verified by the backend; the client
// only reads the identity out of it.
func (c *Client) StudentID() (string, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(c.token, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse student token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("student token has no subject claim")
	}
	return subject, nil
}

// dailyTasksResponse mirrors the backend's task listing payload.
type dailyTasksResponse struct {
	Tasks []models.DailyTask `json:"tasks"`
}

// DailyTasks fetches every published daily task.
func (c *Client) DailyTasks(ctx context.Context) ([]models.DailyTask, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/get_daily_task_std.php", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily tasks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("task backend returned status %d", resp.StatusCode)
	}

	var payload dailyTasksResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode task response: %w", err)
	}
	return payload.Tasks, nil
}

// DueOn filters tasks down to the ones due on the given date.
func DueOn(all []models.DailyTask, date time.Time) []models.DailyTask {
	key := models.DateKey(date)
	var due []models.DailyTask
	for _, task := range all {
		if task.DueDate == key {
			due = append(due, task)
		}
	}
	return due
}
