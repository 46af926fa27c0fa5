// Package config resolves daemon settings from built-in defaults, dotenv
// files, and TINT_-prefixed environment variables, in rising priority. All
// sources share one key grammar: a dotenv file carries the same TINT_ keys
// the environment does.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"tint/internal/logger"
	"tint/pkg/tinttypes"
)

const envPrefix = "TINT_"

// Settings is the resolved daemon configuration.
type Settings struct {
	// ListenAddr is the HTTP and WebSocket bind address.
	ListenAddr string

	// StateDir holds the persisted preference store.
	StateDir string

	// StoragePrefix namespaces the persisted keys.
	StoragePrefix string

	DefaultTheme    string
	DefaultFont     string
	DefaultFontSize string

	// AutoDetectSystemTheme feeds the host dark/light signal to "auto".
	AutoDetectSystemTheme bool

	// WatchStore resyncs the controller when the store file changes on disk.
	WatchStore bool

	LogLevel string
	LogFile  string
}

// Defaults returns the built-in settings. StateDir stays empty here and is
// resolved by Load, so tests can substitute their own directory.
func Defaults() Settings {
	return Settings{
		ListenAddr:            "127.0.0.1:7066",
		StoragePrefix:         "tint",
		DefaultTheme:          tinttypes.ThemeLight,
		DefaultFont:           tinttypes.FontSystem,
		DefaultFontSize:       tinttypes.SizeMedium,
		AutoDetectSystemTheme: true,
		WatchStore:            true,
		LogLevel:              "info",
	}
}

// Load resolves settings for a daemon process: defaults, then the user
// config .env, then a local .env, then TINT_ environment variables. File
// problems are logged and skipped, never fatal.
func Load() Settings {
	s := Defaults()

	if dir, err := os.UserConfigDir(); err == nil {
		s.MergeDotEnv(filepath.Join(dir, "tint", ".env"))
	}
	s.MergeDotEnv(".env")
	s.MergeEnviron(os.Environ())

	if s.StateDir == "" {
		s.StateDir = defaultStateDir()
	}
	return s
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".tint"
	}
	return filepath.Join(dir, "tint")
}

// MergeDotEnv folds a dotenv file into the settings. A missing file is not
// an error; an unreadable or malformed one is logged and skipped.
func (s *Settings) MergeDotEnv(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("dotenv read failed", "path", path, "error", err)
		}
		return
	}

	values, err := godotenv.Unmarshal(string(data))
	if err != nil {
		logger.Warn("dotenv parse failed", "path", path, "error", err)
		return
	}
	s.apply(values)
}

// MergeEnviron folds TINT_-prefixed entries of an os.Environ-shaped list
// into the settings.
func (s *Settings) MergeEnviron(environ []string) {
	values := make(map[string]string)
	for _, entry := range environ {
		key, value, found := strings.Cut(entry, "=")
		if found && strings.HasPrefix(key, envPrefix) {
			values[key] = value
		}
	}
	s.apply(values)
}

func (s *Settings) apply(values map[string]string) {
	for key, value := range values {
		switch key {
		case "TINT_LISTEN_ADDR":
			s.ListenAddr = value
		case "TINT_STATE_DIR":
			s.StateDir = value
		case "TINT_STORAGE_PREFIX":
			s.StoragePrefix = value
		case "TINT_DEFAULT_THEME":
			s.DefaultTheme = value
		case "TINT_DEFAULT_FONT":
			s.DefaultFont = value
		case "TINT_DEFAULT_FONT_SIZE":
			s.DefaultFontSize = value
		case "TINT_AUTO_DETECT_SYSTEM_THEME":
			s.AutoDetectSystemTheme = parseBool(key, value, s.AutoDetectSystemTheme)
		case "TINT_WATCH_STORE":
			s.WatchStore = parseBool(key, value, s.WatchStore)
		case "TINT_LOG_LEVEL":
			s.LogLevel = value
		case "TINT_LOG_FILE":
			s.LogFile = value
		}
	}
}

func parseBool(key, value string, current bool) bool {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logger.Warn("invalid boolean setting", "key", key, "value", value)
		return current
	}
	return parsed
}

// StorePath returns the JSON preference store location.
func (s Settings) StorePath() string {
	return filepath.Join(s.StateDir, "prefs.json")
}

// ControllerConfig returns the preference controller's slice of the
// settings.
func (s Settings) ControllerConfig() tinttypes.Config {
	return tinttypes.Config{
		DefaultTheme:          s.DefaultTheme,
		DefaultFont:           s.DefaultFont,
		DefaultFontSize:       s.DefaultFontSize,
		StoragePrefix:         s.StoragePrefix,
		AutoDetectSystemTheme: s.AutoDetectSystemTheme,
		WatchStore:            s.WatchStore,
	}
}
