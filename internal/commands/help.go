package commands

import "context"

const helpText = `*Available commands*
` + "`/ask Expert - Question`" + ` - ask an expert bot (Benny, Felix, Dean)
` + "`/project connect <token>`" + ` - connect your task platform account
` + "`/project list`" + ` - list your tasks
` + "`/project create <description>`" + ` - create a task
` + "`/github connect <token>`" + ` - connect your GitHub account
` + "`/github select <owner/repo>`" + ` - choose the working repository
` + "`/github create <title> -- <description>`" + ` - open an issue
` + "`/github list_issues [state]`" + ` / ` + "`/github list_prs [state]`" + ` - list issues or pull requests
` + "`/dashboard`" + ` - get a dashboard login link
` + "`/help`" + ` - show this message`

// HelpCommand replies with the static command overview. It talks to nothing.
type HelpCommand struct{}

func (c *HelpCommand) Definition() Definition {
	return Definition{
		Name:        "help",
		Description: "Show the available commands",
	}
}

func (c *HelpCommand) Execute(ctx context.Context, env *Env, inv Invocation) Result {
	return Success(helpText)
}
