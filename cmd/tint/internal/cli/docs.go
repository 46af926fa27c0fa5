package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"tint/internal/data/embedded"
	"tint/internal/output"
)

// addDocsCommand adds the embedded documentation browser.
func (app *App) addDocsCommand(rootCmd *cobra.Command) {
	docsCmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Read the built-in documentation",
		Long: `Render an embedded documentation topic in the terminal. Without an
argument the available topics are listed. Topics are compiled into the
binary, so docs work without a running daemon.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := embedded.NewDocsLoader()

			if len(args) == 0 {
				topics, err := loader.ListAvailableTopics()
				if err != nil {
					return err
				}
				sort.Strings(topics)

				p := app.printerFor(app.currentThemeName(cmd))
				p.Title("Documentation topics")
				for _, topic := range topics {
					p.Printf("  ")
					p.Accent(topic)
					p.Println("")
				}
				p.Muted("  read one with: tint docs <topic>")
				p.Println("")
				return nil
			}

			content, err := loader.LoadTopic(args[0])
			if err != nil {
				return err
			}

			if app.Plain || !output.SupportsColor() {
				fmt.Print(content)
				return nil
			}

			provider := output.NewThemeStyleProvider(app.catalog.ByName(app.currentThemeName(cmd)))
			fmt.Print(output.NewMarkdownRenderer(provider).Render(content))
			return nil
		},
	}

	rootCmd.AddCommand(docsCmd)
}

// currentThemeName asks the daemon for the active theme so rendering can
// match it. Falls back to the default theme when no daemon is reachable,
// keeping docs readable offline.
func (app *App) currentThemeName(cmd *cobra.Command) string {
	settings, err := app.Client().Preferences(cmd.Context())
	if err != nil {
		return ""
	}
	return settings.Theme
}
