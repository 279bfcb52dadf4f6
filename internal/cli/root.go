// Package cli implements the foundrgate command line interface.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/foundrgate/foundrgate/internal/cli.version=1.2.3"
	version = "1.4.0"
	logo    = "\n" +
		"  _____                     _       ____       _\n" +
		" |  ___|__  _   _ _ __   __| |_ __ / ___| __ _| |_ ___\n" +
		" | |_ / _ \\| | | | '_ \\ / _` | '__| |  _ / _` | __/ _ \\\n" +
		" |  _| (_) | |_| | | | | (_| | |  | |_| | (_| | ||  __/\n" +
		" |_|  \\___/ \\__,_|_| |_|\\__,_|_|   \\____|\\__,_|\\__\\___|\n"
)

var rootCmd = &cobra.Command{
	Use:   "foundrgate",
	Short: "FoundrGate - founder assistant command gateway",
	Long:  color.CyanString(logo) + "\nA command gateway between chat platforms and the founder assistant backends.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func printHeader(title string) {
	color.New(color.FgCyan, color.Bold).Println(title)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}
