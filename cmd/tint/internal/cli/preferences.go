package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"tint/internal/theme"
	"tint/pkg/tinttypes"
)

// addPreferenceCommands adds the commands that read and change the triple.
func (app *App) addPreferenceCommands(rootCmd *cobra.Command) {
	getCmd := &cobra.Command{
		Use:   "get [dimension]",
		Short: "Show current preferences",
		Long: `Show the daemon's current preference triple. With a dimension argument
(theme, font, or fontSize) only that value is printed, suitable for
scripting.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			asJSON, _ := cmd.Flags().GetBool("json")

			if len(args) == 1 {
				d, err := tinttypes.ParseDimension(args[0])
				if err != nil {
					return err
				}
				dv, err := app.Client().Dimension(ctx, d)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(dv)
				}
				fmt.Println(dv.Value)
				return nil
			}

			settings, err := app.Client().Preferences(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(settings)
			}
			app.printSettings(settings)
			return nil
		},
	}
	getCmd.Flags().Bool("json", false, "Emit JSON instead of the styled table")

	setCmd := &cobra.Command{
		Use:   "set <dimension> [value]",
		Short: "Change one preference dimension",
		Long: `Set the theme, font, or font size. Without a value an interactive
picker lists the available choices.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := tinttypes.ParseDimension(args[0])
			if err != nil {
				return err
			}

			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				value, err = app.pickValue(ctx, d)
				if err != nil {
					return err
				}
			}

			dv, err := app.Client().SetDimension(ctx, string(d), value)
			if err != nil {
				return err
			}

			// Style the confirmation with the new theme when the theme
			// itself changed.
			styleWith := ""
			if dv.Dimension == tinttypes.DimensionTheme {
				styleWith = dv.Value
			}
			p := app.printerFor(styleWith)
			p.Success(fmt.Sprintf("%s is now %s", dv.Dimension, dv.Value))
			return nil
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle",
		Short: "Flip the theme between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.Client().Toggle(cmd.Context())
			if err != nil {
				return err
			}
			p := app.printerFor(settings.Theme)
			p.Success(fmt.Sprintf("theme is now %s", settings.Theme))
			return nil
		},
	}

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Re-apply the full triple and fan it out to every context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := app.Client().Apply(cmd.Context())
			if err != nil {
				return err
			}
			p := app.printerFor(report.Settings.Theme)
			p.Success(fmt.Sprintf("applied %s / %s / %s",
				report.Settings.Theme, report.Settings.Font, report.Settings.FontSize))
			if report.Delivered > 0 || report.Failed > 0 {
				p.Printf("  delivered to %d context(s)", report.Delivered)
				if report.Failed > 0 {
					p.Printf(", %d failed", report.Failed)
				}
				p.Println("")
			}
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore configured defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.Client().Reset(cmd.Context())
			if err != nil {
				return err
			}
			p := app.printerFor(settings.Theme)
			p.Success(fmt.Sprintf("restored defaults: %s / %s / %s",
				settings.Theme, settings.Font, settings.FontSize))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove persisted preferences",
		Long: `Remove the daemon's persisted preference values. Live state is not
touched; the next daemon start falls back to configured defaults.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Client().ClearStorage(cmd.Context()); err != nil {
				return err
			}
			app.printerFor("").Success("persisted preferences cleared")
			return nil
		},
	}

	schemeCmd := &cobra.Command{
		Use:   "scheme [light|dark]",
		Short: "Show or override the daemon's system scheme signal",
		Long: `Show what the daemon believes the system color scheme is. With an
argument the signal is overridden, which repaints every surface showing
the "auto" theme. Overriding fails when the daemon detects the scheme
itself.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				if err := app.Client().SetScheme(ctx, tinttypes.Scheme(args[0])); err != nil {
					return err
				}
				app.printerFor("").Success(fmt.Sprintf("scheme set to %s", args[0]))
				return nil
			}

			current, err := app.Client().Scheme(ctx)
			if err != nil {
				return err
			}
			fmt.Println(string(current))
			return nil
		},
	}

	rootCmd.AddCommand(getCmd, setCmd, toggleCmd, applyCmd, resetCmd, clearCmd, schemeCmd)
}

func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// printSettings renders the triple styled with its own theme.
func (app *App) printSettings(settings tinttypes.Settings) {
	p := app.printerFor(settings.Theme)
	p.Title("Tint preferences")
	for _, row := range []struct{ label, value string }{
		{"theme", settings.Theme},
		{"font", settings.Font},
		{"fontSize", settings.FontSize},
	} {
		p.Printf("  ")
		p.Muted(fmt.Sprintf("%-9s", row.label))
		p.Printf(" ")
		p.Accent(row.value)
		p.Println("")
	}
}

// pickValue runs an interactive picker for the dimension's choices. Theme
// options come from the daemon's catalog so the list matches what it can
// actually serve.
func (app *App) pickValue(ctx context.Context, d tinttypes.Dimension) (string, error) {
	var options []huh.Option[string]
	switch d {
	case tinttypes.DimensionTheme:
		infos, err := app.Client().Themes(ctx)
		if err != nil {
			return "", err
		}
		options = append(options, huh.NewOption("auto (follow the system)", tinttypes.ThemeAuto))
		for _, info := range infos {
			label := info.Name
			if info.Description != "" {
				label = fmt.Sprintf("%s (%s)", info.Name, info.Description)
			}
			options = append(options, huh.NewOption(label, info.Name))
		}
	case tinttypes.DimensionFont:
		for _, name := range theme.FontNames() {
			options = append(options, huh.NewOption(name, name))
		}
	case tinttypes.DimensionFontSize:
		for _, name := range theme.SizeNames() {
			options = append(options, huh.NewOption(name, name))
		}
	}

	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Pick a %s", d)).
				Options(options...).
				Value(&value),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return value, nil
}
