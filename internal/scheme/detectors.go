package scheme

import (
	"os"
	"os/exec"
	"strings"

	"github.com/muesli/termenv"

	"tint/pkg/tinttypes"
)

// EnvDetector reads the TINT_COLOR_SCHEME environment variable. It accepts
// "dark" and "light" and declines anything else.
type EnvDetector struct{}

// Name identifies the detector in logs.
func (EnvDetector) Name() string { return "env" }

// Priority places the environment override above command-line fallbacks.
func (EnvDetector) Priority() int { return 50 }

// Available reports whether the variable is set at all.
func (EnvDetector) Available() bool {
	return os.Getenv("TINT_COLOR_SCHEME") != ""
}

// Detect parses the variable.
func (EnvDetector) Detect() (tinttypes.Scheme, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TINT_COLOR_SCHEME"))) {
	case "dark":
		return tinttypes.SchemeDark, true
	case "light":
		return tinttypes.SchemeLight, true
	default:
		return tinttypes.SchemeLight, false
	}
}

// GSettingsDetector shells out to gsettings for the GNOME color-scheme key.
// It is a low-priority fallback for Linux desktops.
type GSettingsDetector struct{}

// Name identifies the detector in logs.
func (GSettingsDetector) Name() string { return "gsettings" }

// Priority places gsettings at the bottom of the chain.
func (GSettingsDetector) Priority() int { return 10 }

// Available reports whether the gsettings binary is on PATH.
func (GSettingsDetector) Available() bool {
	_, err := exec.LookPath("gsettings")
	return err == nil
}

// Detect queries org.gnome.desktop.interface color-scheme. The key reports
// "prefer-dark", "prefer-light", or "default"; default counts as light.
func (GSettingsDetector) Detect() (tinttypes.Scheme, bool) {
	out, err := exec.Command("gsettings", "get", "org.gnome.desktop.interface", "color-scheme").Output()
	if err != nil {
		return tinttypes.SchemeLight, false
	}
	if strings.Contains(string(out), "prefer-dark") {
		return tinttypes.SchemeDark, true
	}
	return tinttypes.SchemeLight, true
}

// TerminalDetector asks the attached terminal for its background color via
// termenv. Used by CLI surfaces where the "system" is the terminal emulator.
type TerminalDetector struct{}

// Name identifies the detector in logs.
func (TerminalDetector) Name() string { return "terminal" }

// Priority places the live terminal query above offline signals.
func (TerminalDetector) Priority() int { return 100 }

// Available reports whether stdout is a terminal worth querying.
func (TerminalDetector) Available() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Detect reports dark when the terminal background is dark.
func (TerminalDetector) Detect() (tinttypes.Scheme, bool) {
	if termenv.HasDarkBackground() {
		return tinttypes.SchemeDark, true
	}
	return tinttypes.SchemeLight, true
}

// DefaultResolver builds the standard daemon-side chain: environment
// override first, then gsettings, falling back to light.
func DefaultResolver() *Resolver {
	return NewResolver(tinttypes.SchemeLight, EnvDetector{}, GSettingsDetector{})
}

// TerminalResolver builds the CLI-side chain: environment override first,
// then the terminal background query, falling back to light.
func TerminalResolver() *Resolver {
	return NewResolver(tinttypes.SchemeLight, EnvDetector{}, TerminalDetector{})
}
