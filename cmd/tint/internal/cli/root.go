// Package cli assembles the tint command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tint/cmd/tint/internal/client"
	"tint/internal/output"
	"tint/internal/theme"
)

// DefaultAddr is where a locally started tintd listens.
const DefaultAddr = "127.0.0.1:7066"

// App carries the CLI's shared state across commands.
type App struct {
	Addr  string
	Plain bool

	catalog *theme.Catalog
}

// NewApp creates a new tint CLI application.
func NewApp() *App {
	return &App{catalog: theme.NewCatalog()}
}

// CreateRootCommand creates and configures the root command.
func (app *App) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tint",
		Short: "Control the tint preference daemon",
		Long: `tint drives a running tintd daemon: read and change the theme, font,
and font size, inspect attached page contexts, and follow preference
changes live.

The daemon address comes from --addr, the TINT_ADDR environment
variable, or the default ` + DefaultAddr + `.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&app.Addr, "addr", DefaultAddr, "Daemon address (host:port)")
	rootCmd.PersistentFlags().BoolVar(&app.Plain, "plain", false, "Disable styled output")

	viper.SetEnvPrefix("TINT")
	viper.AutomaticEnv()
	if err := viper.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding addr flag: %v\n", err)
		os.Exit(1)
	}

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		app.Addr = viper.GetString("addr")
	}

	// Add all subcommands
	app.addPreferenceCommands(rootCmd)
	app.addThemeCommands(rootCmd)
	app.addContextCommands(rootCmd)
	app.addDocsCommand(rootCmd)
	app.addVersionCommand(rootCmd)

	return rootCmd
}

// Client returns a client for the configured daemon address.
func (app *App) Client() *client.Client {
	return client.New(app.Addr)
}

// printerFor builds a printer styled with the named theme. Unknown names
// fall back to the catalog's fallback theme; plain mode and dumb terminals
// get unstyled output.
func (app *App) printerFor(themeName string) *output.Printer {
	if app.Plain || !output.SupportsColor() {
		return output.NewPrinter(output.PlainText())
	}
	provider := output.NewThemeStyleProvider(app.catalog.ByName(themeName))
	return output.NewPrinter(output.WithStyles(provider))
}
