package commands

import (
	"context"
	"fmt"

	"github.com/foundrgate/foundrgate/internal/ledger"
	"github.com/foundrgate/foundrgate/internal/reply"
)

const noRepoSelected = "No repository selected. Please select a repository first using `/github select <owner/repo>`"

// GitHubCommand manages the user's GitHub link: connect an account, pick a
// repository, create and list issues and pull requests.
type GitHubCommand struct{}

func (c *GitHubCommand) Definition() Definition {
	return Definition{
		Name:        "github",
		Description: "Manage GitHub repositories and issues (connect, list, select, create, list_issues, list_prs, check_repo)",
		Params: []Param{{
			Name:        "command",
			Description: "Action and parameters",
			Required:    true,
			Placeholder: "create Fix login -- Sessions expire too early",
		}},
	}
}

func (c *GitHubCommand) Execute(ctx context.Context, env *Env, inv Invocation) Result {
	action, params := splitAction(inv.Arg("command"))
	switch action {
	case "connect":
		return c.connect(ctx, env, inv, params)
	case "list":
		return c.forward(ctx, env, "github_list_repos", map[string]string{"user_id": inv.UserID})
	case "select":
		return c.selectRepo(ctx, env, inv, params)
	case "create":
		return c.create(ctx, env, inv, params)
	case "list_issues":
		return c.listByState(ctx, env, inv, "github_list_issues", params)
	case "list_prs":
		return c.listByState(ctx, env, inv, "github_list_prs", params)
	case "check_repo":
		return c.forward(ctx, env, "github_check_repo", map[string]string{"user_id": inv.UserID})
	default:
		return BadRequest("Unknown GitHub action. Available actions: connect, list, select, create, list_issues, list_prs, check_repo")
	}
}

func (c *GitHubCommand) forward(ctx context.Context, env *Env, command string, args map[string]string) Result {
	resp, err := env.Processor.Process(ctx, command, args)
	if err != nil {
		return InternalError(err.Error())
	}
	return Success(reply.FormatBotReply(resp.BotName, resp.Text))
}

func (c *GitHubCommand) connect(ctx context.Context, env *Env, inv Invocation, token string) Result {
	if token == "" {
		return Success("Please provide your GitHub token: `connect <token>`")
	}

	// The credential is stored first, with no repository selected yet.
	if err := env.Ledger.StoreRepoConnection(ctx, inv.UserID, token, ""); err != nil {
		return InternalError(err.Error())
	}
	return c.forward(ctx, env, "github_connect", map[string]string{
		"token":   token,
		"user_id": inv.UserID,
	})
}

func (c *GitHubCommand) selectRepo(ctx context.Context, env *Env, inv Invocation, repo string) Result {
	if repo == "" {
		return Success("Please provide a repository: `select <owner/repo>`")
	}

	// The processor validates the repository is reachable before the
	// selection is persisted.
	resp, err := env.Processor.Process(ctx, "github_select_repo", map[string]string{
		"repo_name": repo,
		"user_id":   inv.UserID,
	})
	if err != nil {
		return InternalError(err.Error())
	}
	if err := env.Ledger.UpdateSelectedRepo(ctx, inv.UserID, repo); err != nil {
		return InternalError(err.Error())
	}
	return Success(reply.FormatBotReply(resp.BotName, resp.Text))
}

func (c *GitHubCommand) create(ctx context.Context, env *Env, inv Invocation, params string) Result {
	title, description, ok := splitIssue(params)
	if !ok {
		return Success("Please provide the issue in the format: `create <title> -- <description>`")
	}

	check, err := env.Processor.Process(ctx, "github_check_repo", map[string]string{
		"user_id": inv.UserID,
	})
	if err != nil {
		return InternalError(err.Error())
	}
	repo := ""
	if check.Metadata != nil {
		repo = check.Metadata.SelectedRepo
	}
	if repo == "" {
		return BadRequest(noRepoSelected)
	}

	now := env.now()
	issue := ledger.Issue{
		ID:         fmt.Sprintf("%s#%d", repo, now.UnixNano()),
		Title:      title,
		Body:       description,
		Repository: repo,
		Status:     ledger.IssueOpen,
		CreatedAt:  now,
	}
	if err := env.Ledger.StoreIssue(ctx, inv.UserID, issue); err != nil {
		return InternalError(err.Error())
	}

	return c.forward(ctx, env, "github_create_issue", map[string]string{
		"title":   title,
		"body":    description,
		"repo":    repo,
		"user_id": inv.UserID,
	})
}

func (c *GitHubCommand) listByState(ctx context.Context, env *Env, inv Invocation, command, state string) Result {
	if state == "" {
		state = "open"
	}
	return c.forward(ctx, env, command, map[string]string{
		"state":   state,
		"user_id": inv.UserID,
	})
}
