package commands

import (
	"context"
	"strings"
)

// DashboardCommand hands the user a one-time login link to the web dashboard.
type DashboardCommand struct{}

func (c *DashboardCommand) Definition() Definition {
	return Definition{
		Name:        "dashboard",
		Description: "Get a login link to your dashboard",
	}
}

func (c *DashboardCommand) Execute(ctx context.Context, env *Env, inv Invocation) Result {
	token, err := env.Ledger.GenerateDashboardToken(ctx, inv.UserID)
	if err != nil {
		return InternalError(err.Error())
	}
	base := strings.TrimRight(env.DashboardBaseURL, "/")
	return Success("Access your dashboard here: " + base + "/bot-login?token=" + token)
}
