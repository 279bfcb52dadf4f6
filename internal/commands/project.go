package commands

import (
	"context"

	"github.com/foundrgate/foundrgate/internal/ledger"
	"github.com/foundrgate/foundrgate/internal/reply"
)

// ProjectCommand manages the user's task-platform link: connect an account,
// list tasks, create tasks.
type ProjectCommand struct{}

func (c *ProjectCommand) Definition() Definition {
	return Definition{
		Name:        "project",
		Description: "Manage your project tasks (connect, list, create)",
		Params: []Param{{
			Name:        "command",
			Description: "Action and parameters",
			Required:    true,
			Placeholder: "create Ship the landing page",
		}},
	}
}

func (c *ProjectCommand) Execute(ctx context.Context, env *Env, inv Invocation) Result {
	action, params := splitAction(inv.Arg("command"))
	switch action {
	case "connect":
		return c.connect(ctx, env, inv, params)
	case "list":
		return c.list(ctx, env, inv)
	case "create":
		return c.create(ctx, env, inv, params)
	default:
		return BadRequest("Unknown project action. Available actions: connect, list, create")
	}
}

func (c *ProjectCommand) connect(ctx context.Context, env *Env, inv Invocation, token string) Result {
	if token == "" {
		return Success("Please provide your access token: `connect <token>`")
	}

	// The processor validates the token and discovers the workspace before
	// anything is persisted.
	resp, err := env.Processor.Process(ctx, "project_connect", map[string]string{
		"token":   token,
		"user_id": inv.UserID,
	})
	if err != nil {
		return InternalError(err.Error())
	}

	workspaceID := "default_workspace"
	var projects []ledger.Project
	if resp.Metadata != nil {
		if resp.Metadata.WorkspaceID != "" {
			workspaceID = resp.Metadata.WorkspaceID
		}
		for _, pair := range resp.Metadata.ProjectIDs {
			projects = append(projects, ledger.Project{ID: pair[0], Name: pair[1]})
		}
	}
	if err := env.Ledger.StoreTaskConnection(ctx, inv.UserID, token, workspaceID, projects); err != nil {
		return InternalError(err.Error())
	}

	return Success(reply.FormatBotReply(resp.BotName, resp.Text))
}

func (c *ProjectCommand) list(ctx context.Context, env *Env, inv Invocation) Result {
	resp, err := env.Processor.Process(ctx, "project_list_tasks", map[string]string{
		"user_id": inv.UserID,
	})
	if err != nil {
		return InternalError(err.Error())
	}
	return Success(reply.FormatBotReply(resp.BotName, resp.Text))
}

func (c *ProjectCommand) create(ctx context.Context, env *Env, inv Invocation, description string) Result {
	if description == "" {
		return Success("Please provide a task description: `create <description>`")
	}

	// The task is recorded before the platform call; the platform id stays
	// "pending" until the processor assigns one.
	task := ledger.Task{
		ID:          description,
		Title:       description,
		Description: description,
		Status:      "active",
		Creator:     inv.UserID,
		Platform:    "asana",
		PlatformID:  "pending",
		CreatedAt:   env.now(),
	}
	if err := env.Ledger.StoreTask(ctx, inv.UserID, task); err != nil {
		return InternalError(err.Error())
	}

	resp, err := env.Processor.Process(ctx, "project_create_task", map[string]string{
		"description": description,
		"user_id":     inv.UserID,
	})
	if err != nil {
		return InternalError(err.Error())
	}
	return Success(reply.FormatBotReply(resp.BotName, resp.Text))
}
