// Package main is the entry point for the foundrgate CLI.
package main

import (
	"os"

	"github.com/foundrgate/foundrgate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
