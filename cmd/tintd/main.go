// Package main provides the Tint daemon entry point. tintd owns the
// authoritative theme, font, and font size state: control surfaces talk to
// it over HTTP, page contexts attach over WebSocket and receive every
// preference change.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tint/internal/api"
	"tint/internal/applicator"
	"tint/internal/broadcast"
	"tint/internal/config"
	"tint/internal/document"
	"tint/internal/hub"
	"tint/internal/logger"
	"tint/internal/prefs"
	"tint/internal/scheme"
	"tint/internal/shortcut"
	"tint/internal/store"
	"tint/internal/theme"
	"tint/internal/version"
)

var (
	listenAddr string
	stateDir   string
	logLevel   string
	logFile    string
)

// rootCmd represents the base command; running tintd without a subcommand
// starts the daemon.
var rootCmd = &cobra.Command{
	Use:   "tintd",
	Short: "Tint preference daemon",
	Long: `Tintd keeps three reading preferences, the theme, the font family, and
the font size, in sync across every attached surface. It owns the
authoritative state, persists it, and pushes changes to attached page
contexts as they happen.`,
	Run: runDaemon,
}

// versionCmd reports the daemon build.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.GetFormattedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", "", "Bind address for HTTP and WebSocket [default: 127.0.0.1:7066]")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory for the persisted preference store")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")

	// Bind flags to viper
	if err := viper.BindPFlag("listen", rootCmd.PersistentFlags().Lookup("listen")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding listen flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("state-dir", rootCmd.PersistentFlags().Lookup("state-dir")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding state-dir flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-file flag: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(versionCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) {
	settings := config.Load()

	// CLI flags override file- and environment-based settings only when
	// explicitly provided.
	if cmd.Flags().Changed("listen") {
		settings.ListenAddr = listenAddr
	}
	if cmd.Flags().Changed("state-dir") {
		settings.StateDir = stateDir
	}
	if cmd.Flags().Changed("log-level") {
		settings.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-file") {
		settings.LogFile = logFile
	}

	if err := logger.Configure(settings.LogLevel, settings.LogFile, false); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Starting tintd", "version", version.GetVersion(), "listen", settings.ListenAddr)

	if err := os.MkdirAll(settings.StateDir, 0o755); err != nil {
		logger.Fatal("Failed to create state directory", "dir", settings.StateDir, "error", err)
	}

	st, err := store.OpenFileStore(settings.StorePath())
	if err != nil {
		logger.Fatal("Failed to open preference store", "path", settings.StorePath(), "error", err)
	}
	if settings.WatchStore {
		if err := st.Watch(); err != nil {
			logger.Warn("Store watch unavailable, external edits need a restart", "error", err)
		}
	}

	catalog := theme.NewCatalog()

	// The daemon holds a settable scheme source seeded from one-shot
	// detection. Hosts that track the OS signal feed changes in through
	// PUT /api/scheme.
	detected := scheme.DefaultResolver().Current()
	schemes := scheme.NewStatic(detected)
	logger.Info("System color scheme", "scheme", detected)

	doc := document.New()
	controller := prefs.New(settings.ControllerConfig(), prefs.Options{
		Store:      st,
		Applicator: applicator.NewDocumentApplicator(doc, catalog, schemes),
		Schemes:    schemes,
	})

	contexts := hub.New(hub.Options{})
	caster := broadcast.New(controller, broadcast.Options{
		Store:     st,
		Directory: contexts,
	})

	shortcuts := shortcut.NewRegistry()
	if err := shortcuts.RegisterDefaults(func() error {
		controller.ToggleTheme()
		return nil
	}); err != nil {
		logger.Fatal("Failed to register default shortcuts", "error", err)
	}

	controller.Start()

	server := api.NewServer(api.Options{
		Controller:  controller,
		Broadcaster: caster,
		Hub:         contexts,
		Catalog:     catalog,
		Schemes:     schemes,
		Shortcuts:   shortcuts,
		Gateway:     hub.NewGateway(contexts, controller),
	})
	mux := http.NewServeMux()
	server.Register(mux)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Request contexts derive from baseCtx so canceling it ends the SSE
	// streams that would otherwise keep Shutdown waiting.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Addr:    settings.ListenAddr,
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}

	cancelBase()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}

	caster.Close()
	contexts.Shutdown()
	controller.Teardown()
	controller.Flush()
	if err := st.Close(); err != nil {
		logger.Warn("Store close failed", "error", err)
	}
	logger.Info("Daemon stopped")
}
