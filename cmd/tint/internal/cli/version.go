package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tint/internal/version"
)

// addVersionCommand adds the version command.
func (app *App) addVersionCommand(rootCmd *cobra.Command) {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the CLI version. When a daemon is reachable its version and
attach protocol are shown as well.`,
		Run: func(cmd *cobra.Command, _ []string) {
			detailed, _ := cmd.Flags().GetBool("detailed")
			if detailed {
				fmt.Println(version.GetDetailedVersion())
			} else {
				fmt.Println(version.GetFormattedVersion())
			}

			info, err := app.Client().Version(cmd.Context())
			if err != nil {
				return
			}
			fmt.Printf("daemon: v%s (protocol %s)\n", info.Version, info.Protocol)
		},
	}

	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
	rootCmd.AddCommand(versionCmd)
}
