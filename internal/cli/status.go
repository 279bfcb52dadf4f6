package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/foundrgate/foundrgate/internal/audit"
	"github.com/foundrgate/foundrgate/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("FoundrGate Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gateway status and recent dispatches",
	RunE: func(cmd *cobra.Command, args []string) error {
		printHeader("FoundrGate Status")
		fmt.Printf("Version: %s\n", version)

		path, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				fmt.Println("Config:  found (" + path + ")")
			} else {
				fmt.Println("Config:  not found (" + path + ")")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if strings.TrimSpace(cfg.Audit.Path) == "" {
			fmt.Println("Audit:   disabled")
			return nil
		}
		if _, err := os.Stat(cfg.Audit.Path); err != nil {
			fmt.Println("Audit:   no database yet (" + cfg.Audit.Path + ")")
			return nil
		}

		store, err := audit.NewStore(cfg.Audit.Path, nil)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		var total int64
		for _, n := range stats {
			total += n
		}
		fmt.Printf("Dispatches: %d total\n", total)
		for outcome, n := range stats {
			fmt.Printf("  %-15s %d\n", outcome, n)
		}

		entries, err := store.Recent(ctx, 5)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			fmt.Println("Recent:")
			for _, e := range entries {
				line := fmt.Sprintf("  %s %s", e.CreatedAt.Format(time.RFC3339), e.Command)
				if e.Action != "" {
					line += " " + e.Action
				}
				line += " [" + e.Outcome + "]"
				fmt.Println(line)
			}
		}
		return nil
	},
}
