package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"tint/internal/output"
	"tint/pkg/tinttypes"
)

var (
	diffDeleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	diffInsertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// addThemeCommands adds catalog listing, CSS rendering, and theme diffing.
func (app *App) addThemeCommands(rootCmd *cobra.Command) {
	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "List the daemon's theme catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			infos, err := app.Client().Themes(ctx)
			if err != nil {
				return err
			}
			settings, err := app.Client().Preferences(ctx)
			if err != nil {
				return err
			}

			p := app.printerFor(settings.Theme)
			p.Title("Available themes")
			for _, info := range infos {
				marker := " "
				if info.Name == settings.Theme {
					marker = "*"
				}
				p.Printf("%s ", marker)
				p.Accent(fmt.Sprintf("%-10s", info.Name))
				p.Badge(" " + info.Scheme + " ")
				if info.Description != "" {
					p.Printf("  ")
					p.Muted(info.Description)
				}
				p.Println("")
			}
			p.Muted(`  "auto" follows the system scheme`)
			p.Println("")
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Render a theme's CSS variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			css, err := app.Client().ThemeCSS(cmd.Context(), args[0], "", "")
			if err != nil {
				return err
			}

			if app.Plain || !output.SupportsColor() {
				fmt.Print(css)
				return nil
			}

			provider := output.NewThemeStyleProvider(app.catalog.ByName(args[0]))
			renderer := output.NewMarkdownRenderer(provider)
			fmt.Println(renderer.RenderCodeBlock(strings.TrimSuffix(css, "\n"), "css"))
			return nil
		},
	}

	diffCmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare two themes' CSS variables",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cssA, err := app.Client().ThemeCSS(ctx, args[0], "", "")
			if err != nil {
				return err
			}
			cssB, err := app.Client().ThemeCSS(ctx, args[1], "", "")
			if err != nil {
				return err
			}

			p := app.printerFor("")
			if cssA == cssB {
				p.Info("themes render identical CSS")
				return nil
			}

			dmp := diffmatchpatch.New()
			a, b, lineIndex := dmp.DiffLinesToChars(cssA, cssB)
			diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineIndex)

			styled := p.IsStylable()
			for _, diff := range diffs {
				for _, line := range diffLines(diff.Text) {
					switch diff.Type {
					case diffmatchpatch.DiffDelete:
						printDiffLine("- "+line, diffDeleteStyle, styled)
					case diffmatchpatch.DiffInsert:
						printDiffLine("+ "+line, diffInsertStyle, styled)
					default:
						fmt.Println("  " + line)
					}
				}
			}
			return nil
		},
	}

	themesCmd.AddCommand(showCmd, diffCmd)

	cssCmd := &cobra.Command{
		Use:   "css [theme]",
		Short: "Print a theme's CSS, suitable for piping",
		Long: `Print the CSS custom properties for a theme. Without an argument the
daemon's current theme is used, with "auto" resolved through its scheme
signal. Font and size come from the daemon unless overridden.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				settings, err := app.Client().Preferences(ctx)
				if err != nil {
					return err
				}
				name = settings.Theme
				if name == tinttypes.ThemeAuto {
					current, err := app.Client().Scheme(ctx)
					if err != nil {
						return err
					}
					name = string(current)
				}
			}

			font, _ := cmd.Flags().GetString("font")
			size, _ := cmd.Flags().GetString("size")
			css, err := app.Client().ThemeCSS(ctx, name, font, size)
			if err != nil {
				return err
			}

			if copyRequested, _ := cmd.Flags().GetBool("copy"); copyRequested {
				p := app.printerFor(name)
				if err := copyToClipboard(css); err != nil {
					p.Warning(fmt.Sprintf("clipboard unavailable: %s", err))
					fmt.Print(css)
					return nil
				}
				p.Success(fmt.Sprintf("copied %s CSS to clipboard", name))
				return nil
			}

			fmt.Print(css)
			return nil
		},
	}
	cssCmd.Flags().String("font", "", "Override the font value")
	cssCmd.Flags().String("size", "", "Override the font size step")
	cssCmd.Flags().Bool("copy", false, "Copy to the system clipboard instead of printing")

	rootCmd.AddCommand(themesCmd, cssCmd)
}

func diffLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func printDiffLine(line string, style lipgloss.Style, styled bool) {
	if styled {
		line = style.Render(line)
	}
	fmt.Println(line)
}
