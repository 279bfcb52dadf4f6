package ledger

import "time"

// MessageRole distinguishes who authored a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// IssueStatus is the lifecycle state of a stored issue.
type IssueStatus string

const (
	IssueOpen   IssueStatus = "open"
	IssueClosed IssueStatus = "closed"
)

// UserIdentity is a registered chat-platform user as the ledger knows it.
type UserIdentity struct {
	PlatformID  string `json:"platform_id"`
	Principal   string `json:"principal,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	TeamID      string `json:"team_id,omitempty"`
}

// ChatMessage is one stored conversation entry. Append-only; the timestamp is
// assigned by the caller at dispatch time.
type ChatMessage struct {
	Role          MessageRole `json:"role"`
	Content       string      `json:"content"`
	QuestionAsked string      `json:"question_asked,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
	BotName       string      `json:"bot_name,omitempty"`
}

// RepoConnection is a stored GitHub credential plus the optional selected
// repository. One per user; last write wins on reconnect.
type RepoConnection struct {
	Token        string    `json:"token"`
	SelectedRepo string    `json:"selected_repo,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Issue is an externally created issue recorded against a repository.
type Issue struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Body       string      `json:"body"`
	Repository string      `json:"repository"`
	Status     IssueStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Project is one (id, name) pair from a task platform workspace.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskConnection is a stored task-platform credential with the workspace and
// projects discovered on connect.
type TaskConnection struct {
	Token       string    `json:"token"`
	WorkspaceID string    `json:"workspace_id"`
	Projects    []Project `json:"projects,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task is an externally created task recorded for a user. PlatformID stays
// "pending" until the task platform assigns one.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Creator     string    `json:"creator"`
	Platform    string    `json:"platform"`
	PlatformID  string    `json:"platform_id"`
	CreatedAt   time.Time `json:"created_at"`
}
