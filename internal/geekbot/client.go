package geekbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/daniloc96/team-roles/internal/models"
)

// DefaultBaseURL is the public Geekbot API.
const DefaultBaseURL = "https://api.geekbot.io"

// APIError is a non-2xx response from the Geekbot API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("geekbot %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client manages Geekbot standups.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Geekbot client. An empty baseURL uses DefaultBaseURL.
func NewClient(apiKey string, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("geekbot API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type standupSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type question struct {
	Question string `json:"question"`
}

type standupBody struct {
	Name               string     `json:"name,omitempty"`
	Channel            string     `json:"channel,omitempty"`
	Time               string     `json:"time,omitempty"`
	Timezone           string     `json:"timezone,omitempty"`
	Days               []string   `json:"days,omitempty"`
	WaitTime           int        `json:"wait_time"`
	Users              []string   `json:"users"`
	SyncChannelMembers bool       `json:"sync_channel_members"`
	Personalized       bool       `json:"personalized"`
	Questions          []question `json:"questions"`
}

// UpsertStandup updates the standup with the same name, or creates it. Only
// participants and questions are changed on an existing standup so manual
// schedule edits in the dashboard survive.
func (c *Client) UpsertStandup(ctx context.Context, standup models.Standup) (*models.StandupResult, error) {
	if standup.Name == "" {
		return nil, fmt.Errorf("standup name is required")
	}

	existing, err := c.findStandup(ctx, standup.Name)
	if err != nil {
		return nil, err
	}

	body := standupBody{
		WaitTime:  standup.WaitTime,
		Users:     standup.Users,
		Questions: []question{{Question: standup.Question}},
	}

	result := &models.StandupResult{Name: standup.Name, Users: standup.Users, Channel: standup.Channel}
	var saved standupSummary
	if existing != nil {
		logrus.WithField("standup", standup.Name).Info("✏️  Updating the existing standup")
		if err := c.do(ctx, http.MethodPatch, "/v1/standups/"+strconv.FormatInt(existing.ID, 10), body, &saved); err != nil {
			return nil, err
		}
		if saved.ID == 0 {
			saved.ID = existing.ID
		}
	} else {
		body.Name = standup.Name
		body.Channel = standup.Channel
		body.Time = standup.Time
		body.Timezone = standup.Timezone
		body.Days = []string{standup.Day}
		logrus.WithField("standup", standup.Name).Info("🆕 Creating a new standup")
		if err := c.do(ctx, http.MethodPost, "/v1/standups", body, &saved); err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"standup": standup.Name,
			"day":     standup.Day,
		}).Warn("⚠ New standups run weekly; edit the schedule in the Geekbot dashboard if another period is needed")
		result.Created = true
	}

	if saved.ID != 0 {
		result.ID = strconv.FormatInt(saved.ID, 10)
	}
	return result, nil
}

func (c *Client) findStandup(ctx context.Context, name string) (*standupSummary, error) {
	var standups []standupSummary
	if err := c.do(ctx, http.MethodGet, "/v1/standups", nil, &standups); err != nil {
		return nil, err
	}
	for i := range standups {
		if standups[i].Name == name {
			logrus.WithField("standup", name).Debug("standup exists")
			return &standups[i], nil
		}
	}
	logrus.WithField("standup", name).Debug("standup does not exist")
	return nil, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	return retryOnServerError(ctx, func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", c.apiKey)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		}
		if out == nil || len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
		return nil
	})
}

func retryOnServerError(ctx context.Context, fn func() error) error {
	const maxRetries = 3
	backoff := 200 * time.Millisecond
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var apiErr *APIError
		retryable := errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500)
		if !retryable || attempt == maxRetries {
			return err
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil
}
