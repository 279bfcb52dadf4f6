// Package processor is the HTTP client for the downstream command processor,
// the service that does the actual answering and task/issue work.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/foundrgate/foundrgate/internal/config"
)

// BotResponse is the processor's answer to one command.
type BotResponse struct {
	Text     string    `json:"text"`
	BotName  string    `json:"bot_name"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Metadata carries command-specific extras the processor discovered while
// handling the command.
type Metadata struct {
	SelectedRepo string      `json:"selected_repo,omitempty"`
	WorkspaceID  string      `json:"workspace_id,omitempty"`
	ProjectIDs   [][2]string `json:"project_ids,omitempty"`
}

// ExpertInfo describes one expert bot the processor exposes.
type ExpertInfo struct {
	Role      string `json:"role"`
	Expertise string `json:"expertise"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client calls the processor API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a processor client from config.
func NewClient(cfg config.ProcessorConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Process sends one command with its arguments and returns the processor's
// response. Non-200 statuses become errors carrying the processor's own error
// text when it provides one.
func (c *Client) Process(ctx context.Context, command string, args map[string]string) (*BotResponse, error) {
	payload := struct {
		Command string            `json:"command"`
		Args    map[string]string `json:"args"`
	}{Command: command, Args: args}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/process_command", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach processor: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && strings.TrimSpace(er.Error) != "" {
			return nil, fmt.Errorf("%s", er.Error)
		}
		return nil, fmt.Errorf("processor returned error status %d", resp.StatusCode)
	}
	var out BotResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode processor response: %w", err)
	}
	return &out, nil
}

// BotInfo fetches the expert roster, keyed by expert name.
func (c *Client) BotInfo(ctx context.Context) (map[string]ExpertInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/bot_info", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach processor: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("processor returned error status %d", resp.StatusCode)
	}
	var info map[string]ExpertInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode bot info: %w", err)
	}
	return info, nil
}

// Health checks the processor's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach processor: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("processor returned error status %d", resp.StatusCode)
	}
	return nil
}
