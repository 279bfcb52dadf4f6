package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/foundrgate/foundrgate/internal/auth"
	"github.com/foundrgate/foundrgate/internal/config"
	"github.com/foundrgate/foundrgate/internal/processor"
)

type doctorCheck struct {
	name    string
	status  string // PASS, WARN, FAIL
	message string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run config and connectivity diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		checks := runDoctor(cmd.Context(), cfg)

		failures := 0
		for _, c := range checks {
			label := c.status
			switch c.status {
			case "PASS":
				label = color.GreenString(c.status)
			case "WARN":
				label = color.YellowString(c.status)
			case "FAIL":
				label = color.RedString(c.status)
				failures++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", label, c.name, c.message)
		}
		if failures > 0 {
			return fmt.Errorf("doctor found %d failing check(s)", failures)
		}
		return nil
	},
}

func runDoctor(ctx context.Context, cfg *config.Config) []doctorCheck {
	var checks []doctorCheck
	add := func(name, status, message string) {
		checks = append(checks, doctorCheck{name: name, status: status, message: message})
	}

	if path, err := config.ConfigPath(); err == nil {
		add("config", "PASS", path)
	} else {
		add("config", "FAIL", err.Error())
	}

	if strings.TrimSpace(cfg.Gateway.PublicKey) == "" {
		add("envelope key", "WARN", "no public key configured; bot surface will reject commands")
	} else if _, err := auth.NewEnvelopeVerifier(cfg.Gateway.PublicKey); err != nil {
		add("envelope key", "FAIL", err.Error())
	} else {
		add("envelope key", "PASS", "public key parsed")
	}

	if strings.TrimSpace(cfg.Gateway.SharedSecret) == "" {
		add("shared secret", "WARN", "not configured; service routes will reject requests")
	} else {
		add("shared secret", "PASS", "configured")
	}

	if strings.TrimSpace(cfg.Ledger.Target) == "" {
		add("ledger target", "WARN", "not configured")
	} else {
		add("ledger target", "PASS", cfg.Ledger.Target)
	}

	if strings.TrimSpace(cfg.Gateway.DashboardBaseURL) == "" {
		add("dashboard", "WARN", "dashboard base URL not configured")
	} else {
		add("dashboard", "PASS", cfg.Gateway.DashboardBaseURL)
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := processor.NewClient(cfg.Processor).Health(healthCtx); err != nil {
		add("processor", "FAIL", err.Error())
	} else {
		add("processor", "PASS", cfg.Processor.BaseURL)
	}

	return checks
}
