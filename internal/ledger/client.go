// Package ledger is the RPC client for the remote identity/history store.
//
// Every operation is a single round trip: encode the method arguments, POST
// them to the ledger endpoint, decode the result. There is no retry, no
// caching, and no local state; failures are returned verbatim with a short
// prefix naming the operation that failed.
package ledger

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

const (
	kindQuery  = "query"
	kindUpdate = "update"
)

// Client talks to one ledger instance. It is safe for concurrent use; all
// fields are set at construction and never mutated.
type Client struct {
	baseURL string
	target  string
	http    *http.Client
}

// NewClient builds a ledger client from config.
func NewClient(cfg config.LedgerConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		target:  strings.TrimSpace(cfg.Target),
		http:    &http.Client{Timeout: timeout},
	}
}

type callEnvelope struct {
	Target string          `json:"target"`
	Kind   string          `json:"kind"`
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args"`
}

type callError struct {
	Error string `json:"error"`
}

// call performs one RPC round trip and returns the raw response bytes.
func (c *Client) call(ctx context.Context, kind, method string, args ...any) ([]byte, error) {
	encoded, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}
	body, err := json.Marshal(callEnvelope{
		Target: c.target,
		Kind:   kind,
		Method: method,
		Args:   encoded,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/call", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var ce callError
		if json.Unmarshal(raw, &ce) == nil && strings.TrimSpace(ce.Error) != "" {
			return nil, fmt.Errorf("%s", ce.Error)
		}
		return nil, fmt.Errorf("ledger returned error status %d", resp.StatusCode)
	}
	return raw, nil
}

// RegisterUser registers a platform user id. The call is idempotent: the
// ledger reports success for an already-registered user.
func (c *Client) RegisterUser(ctx context.Context, id string) error {
	if _, err := c.call(ctx, kindUpdate, "ensure_user", id); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// GetUser fetches a registered user, or nil when unknown.
func (c *Client) GetUser(ctx context.Context, id string) (*UserIdentity, error) {
	raw, err := c.call(ctx, kindQuery, "get_user", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	var user *UserIdentity
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return user, nil
}

// StoreChatMessage appends one chat message to the user's history.
func (c *Client) StoreChatMessage(ctx context.Context, id string, msg ChatMessage) error {
	if _, err := c.call(ctx, kindUpdate, "store_chat_message", id, msg); err != nil {
		return fmt.Errorf("failed to store chat message: %w", err)
	}
	return nil
}

// GetMessages returns the stored chat history for a user.
func (c *Client) GetMessages(ctx context.Context, id string) ([]ChatMessage, error) {
	raw, err := c.call(ctx, kindQuery, "get_chat_history", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	var msgs []ChatMessage
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, nil
}

// GenerateDashboardToken asks the ledger for a short-lived dashboard login
// token for the user.
func (c *Client) GenerateDashboardToken(ctx context.Context, id string) (string, error) {
	raw, err := c.call(ctx, kindUpdate, "generate_dashboard_token", id)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		// Some ledger builds hand back the raw reply bytes instead of a
		// JSON string; take them as-is.
		token = string(raw)
	}
	return stripTokenPrefix(token), nil
}

// stripTokenPrefix removes the binary envelope some ledger builds leave in
// front of the printable token: the "DIDL" magic, a three byte type header,
// and a leb128 length. Kept byte-compatible with the deployed dashboard; do
// not generalize.
func stripTokenPrefix(token string) string {
	i := strings.Index(token, "DIDL")
	if i < 0 {
		return strings.TrimSpace(token)
	}
	rest := token[i+len("DIDL"):]
	if len(rest) >= 3 {
		rest = rest[3:]
	}
	for len(rest) > 0 && rest[0] >= 0x80 {
		rest = rest[1:]
	}
	if len(rest) > 0 {
		rest = rest[1:]
	}
	return strings.TrimSpace(rest)
}

// StoreRepoConnection stores a GitHub credential for the user. Last write
// wins on reconnect.
func (c *Client) StoreRepoConnection(ctx context.Context, id, token, selectedRepo string) error {
	conn := RepoConnection{Token: token, SelectedRepo: selectedRepo, CreatedAt: time.Now().UTC()}
	if _, err := c.call(ctx, kindUpdate, "store_github_connection", id, conn); err != nil {
		return fmt.Errorf("failed to store GitHub connection: %w", err)
	}
	return nil
}

// StoreIssue records a created issue against the user.
func (c *Client) StoreIssue(ctx context.Context, id string, issue Issue) error {
	if _, err := c.call(ctx, kindUpdate, "store_github_issue", id, issue); err != nil {
		return fmt.Errorf("failed to store GitHub issue: %w", err)
	}
	return nil
}

// UpdateSelectedRepo updates the selected repository on the user's stored
// GitHub connection.
func (c *Client) UpdateSelectedRepo(ctx context.Context, id, repo string) error {
	if _, err := c.call(ctx, kindUpdate, "update_github_selected_repo", id, repo); err != nil {
		return fmt.Errorf("failed to update selected repo: %w", err)
	}
	return nil
}

// StoreTaskConnection stores a task-platform credential with its discovered
// workspace and projects.
func (c *Client) StoreTaskConnection(ctx context.Context, id, token, workspaceID string, projects []Project) error {
	conn := TaskConnection{Token: token, WorkspaceID: workspaceID, Projects: projects, CreatedAt: time.Now().UTC()}
	if _, err := c.call(ctx, kindUpdate, "store_asana_connection", id, conn); err != nil {
		return fmt.Errorf("failed to store task connection: %w", err)
	}
	return nil
}

// StoreTask records a created task against the user.
func (c *Client) StoreTask(ctx context.Context, id string, task Task) error {
	if _, err := c.call(ctx, kindUpdate, "store_asana_task", id, task); err != nil {
		return fmt.Errorf("failed to store task: %w", err)
	}
	return nil
}

// Admins returns the ledger's configured admin principals.
func (c *Client) Admins(ctx context.Context) ([]string, error) {
	raw, err := c.call(ctx, kindQuery, "get_admins")
	if err != nil {
		return nil, fmt.Errorf("failed to get admins: %w", err)
	}
	var admins []string
	if err := json.Unmarshal(raw, &admins); err != nil {
		return nil, fmt.Errorf("failed to decode admins: %w", err)
	}
	return admins, nil
}
