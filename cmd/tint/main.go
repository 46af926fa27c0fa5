// Package main provides the tint CLI, the terminal control surface for a
// running tintd daemon.
package main

import (
	"os"

	"tint/cmd/tint/internal/cli"
)

func main() {
	app := cli.NewApp()
	rootCmd := app.CreateRootCommand()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
