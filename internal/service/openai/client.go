// Package openai implements the narrative summarizer over the OpenAI chat
// completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	xhttp "MCMTracker/pkg/http"
)

// Config holds client settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Client implements service.Summarizer.
type Client struct {
	cfg  Config
	http *xhttp.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// New creates an OpenAI client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, http: xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout))}
}

func (c *Client) Model() string { return c.cfg.Model }

func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// Summarize sends one system and one user message and returns the first
// choice's content.
func (c *Client) Summarize(ctx context.Context, system, prompt string) (string, error) {
	req := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}

	var resp chatResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.cfg.BaseURL + "/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.cfg.APIKey,
			"Content-Type":  "application/json",
		},
		Body: req,
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			var er errorResponse
			if json.Unmarshal(se.Body, &er) == nil && er.Error.Message != "" {
				return "", errors.New(er.Error.Message)
			}
			return "", fmt.Errorf("OpenAI error (%d)", se.StatusCode)
		}
		return "", fmt.Errorf("openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
