package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tint/internal/applicator"
	"tint/internal/broadcast"
	"tint/internal/hub"
	"tint/internal/scheme"
	"tint/pkg/tinttypes"
)

// addContextCommands adds context listing, focus, the live event stream,
// and the terminal page context.
func (app *App) addContextCommands(rootCmd *cobra.Command) {
	contextsCmd := &cobra.Command{
		Use:   "contexts",
		Short: "List attached page contexts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos, err := app.Client().Contexts(cmd.Context())
			if err != nil {
				return err
			}

			p := app.printerFor("")
			if len(infos) == 0 {
				p.Info("no contexts attached")
				return nil
			}

			p.Title("Attached contexts")
			for _, info := range infos {
				p.Printf("  ")
				p.Accent(info.ID)
				p.Printf("  ")
				p.Muted(fmt.Sprintf("%-12s attached %s", info.Label,
					info.AttachedAt.Format(time.TimeOnly)))
				if info.Focused {
					p.Printf("  ")
					p.Badge(" focused ")
				}
				p.Println("")
			}
			return nil
		},
	}

	focusCmd := &cobra.Command{
		Use:   "focus <id>",
		Short: "Give one context the focus",
		Long: `Mark a context as focused. The focused context receives single
dimension changes as they happen; apply still reaches every context.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Client().Focus(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.printerFor("").Success(fmt.Sprintf("context %s focused", args[0]))
			return nil
		},
	}
	contextsCmd.AddCommand(focusCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow preference changes live",
		Long: `Stream the daemon's preference events until interrupted. The first
frame is a snapshot of the current triple.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			asJSON, _ := cmd.Flags().GetBool("json")
			events, errs := app.Client().Events(ctx)

			for {
				select {
				case e, ok := <-events:
					if !ok {
						select {
						case err := <-errs:
							return err
						default:
							return nil
						}
					}
					if asJSON {
						if data, err := json.Marshal(e); err == nil {
							fmt.Println(string(data))
						}
						continue
					}
					app.printEvent(e)
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	watchCmd.Flags().Bool("json", false, "Emit raw event JSON, one object per line")

	attachCmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach as a live page context",
		Long: `Attach to the daemon as a page context. The terminal becomes a
rendering surface: the daemon pushes the full triple on attach and
every change afterwards, and each push repaints the preference block.
The theme's "auto" value resolves against this terminal's background.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			label, _ := cmd.Flags().GetString("label")

			surface := applicator.NewTerminalApplicator(app.catalog, scheme.TerminalResolver())
			agent := broadcast.NewPageAgent(surface)

			conn, err := hub.Attach(ctx, hub.ClientOptions{
				Addr:    app.Client().Host(),
				Label:   label,
				Handler: agent,
				OnMessage: func(tinttypes.Message) {
					fmt.Print("\n" + surface.Render())
				},
			})
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			app.printerFor("").Info(fmt.Sprintf(
				"attached as %s, following changes (Ctrl-C to detach)", conn.ContextID()))

			err = conn.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	attachCmd.Flags().String("label", "terminal", "Context label shown in daemon listings")

	rootCmd.AddCommand(contextsCmd, watchCmd, attachCmd)
}

func (app *App) printEvent(e tinttypes.Event) {
	p := app.printerFor(e.Settings.Theme)
	p.Printf("%s  ", time.Now().Format(time.TimeOnly))
	p.Badge(" " + string(e.Kind) + " ")
	p.Printf("  ")
	p.Accent(fmt.Sprintf("%s / %s / %s", e.Settings.Theme, e.Settings.Font, e.Settings.FontSize))
	p.Println("")
}
