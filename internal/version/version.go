// Package version provides centralized version management for Tint.
// It supports semantic versioning, build-time injection, and the protocol
// compatibility check used when page contexts attach to the daemon.
package version

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Build information that can be set at compile time via -ldflags
var (
	// Version is the semantic version of the application
	Version = "0.3.0"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built
	BuildDate = "unknown"
)

// ProtocolVersion is the attach protocol spoken between the daemon and page
// contexts. Clients with a different major version are refused at handshake.
const ProtocolVersion = "1.0.0"

// Info represents comprehensive version information
type Info struct {
	Version   string          `json:"version"`
	Protocol  string          `json:"protocol"`
	GitCommit string          `json:"gitCommit"`
	BuildDate string          `json:"buildDate"`
	GoVersion string          `json:"goVersion"`
	Platform  string          `json:"platform"`
	SemVer    *semver.Version `json:"-"`
}

// GetVersion returns the current version string
func GetVersion() string {
	return Version
}

// GetBaseVersion returns the base version (major.minor.patch) without build metadata
func GetBaseVersion() string {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return Version
	}
	return fmt.Sprintf("%d.%d.%d", sv.Major(), sv.Minor(), sv.Patch())
}

// GetBuildMetadata returns the build metadata part of the version (after +)
func GetBuildMetadata() string {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return ""
	}
	return sv.Metadata()
}

// GetCommitCount returns the commit count from the version build metadata
func GetCommitCount() int {
	// For versions like 0.3.0+123.abc1234, parse the build metadata
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return 0
	}

	metadata := sv.Metadata()
	if metadata == "" {
		return 0
	}

	// Split by dots and try to parse the first part as commit count
	parts := strings.Split(metadata, ".")
	if len(parts) > 0 {
		var commitCount int
		if _, err := fmt.Sscanf(parts[0], "%d", &commitCount); err == nil && commitCount > 0 {
			return commitCount
		}
	}
	return 0
}

// GetInfo returns comprehensive version information
func GetInfo() (*Info, error) {
	// Parse semantic version
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:   Version,
		Protocol:  ProtocolVersion,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SemVer:    sv,
	}, nil
}

// GetFormattedVersion returns a nicely formatted version string
func GetFormattedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("Tint v%s (invalid version)", Version)
	}

	parts := []string{fmt.Sprintf("Tint v%s", info.Version)}

	if info.GitCommit != "unknown" && info.GitCommit != "" {
		// Show short commit hash (7 characters)
		shortCommit := info.GitCommit
		if len(shortCommit) > 7 {
			shortCommit = shortCommit[:7]
		}
		parts = append(parts, fmt.Sprintf("commit %s", shortCommit))
	}

	if info.BuildDate != "unknown" && info.BuildDate != "" {
		parts = append(parts, fmt.Sprintf("built %s", info.BuildDate))
	}

	return strings.Join(parts, ", ")
}

// GetDetailedVersion returns detailed version information for debugging
func GetDetailedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("Tint v%s (error: %v)", Version, err)
	}

	lines := []string{
		fmt.Sprintf("Tint v%s", info.Version),
		fmt.Sprintf("Protocol: %s", info.Protocol),
		fmt.Sprintf("Git Commit: %s", info.GitCommit),
		fmt.Sprintf("Build Date: %s", info.BuildDate),
	}

	// Show commit count and build metadata if available
	if commitCount := GetCommitCount(); commitCount > 0 {
		lines = append(lines, fmt.Sprintf("Commit Count: %d", commitCount))
	}
	if buildMeta := GetBuildMetadata(); buildMeta != "" {
		lines = append(lines, fmt.Sprintf("Build Metadata: %s", buildMeta))
	}

	lines = append(lines, fmt.Sprintf("Go Version: %s", info.GoVersion))
	lines = append(lines, fmt.Sprintf("Platform: %s", info.Platform))

	return strings.Join(lines, "\n")
}

// ValidateVersion validates that the current version is a valid semantic version
func ValidateVersion() error {
	_, err := semver.NewVersion(Version)
	if err != nil {
		return fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}
	return nil
}

// IsPrerelease returns true if the current version is a prerelease
func IsPrerelease() bool {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return false
	}
	return sv.Prerelease() != ""
}

// IsDevelopment returns true if this appears to be a development build
func IsDevelopment() bool {
	return GitCommit == "unknown" || BuildDate == "unknown"
}

// CompareVersions compares two version strings and returns:
// -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) (int, error) {
	sv1, err := semver.NewVersion(v1)
	if err != nil {
		return 0, fmt.Errorf("invalid version v1 '%s': %w", v1, err)
	}

	sv2, err := semver.NewVersion(v2)
	if err != nil {
		return 0, fmt.Errorf("invalid version v2 '%s': %w", v2, err)
	}

	return sv1.Compare(sv2), nil
}

// IsProtocolCompatible reports whether a client protocol version can talk to
// this daemon. Compatibility is major-version equality; minor and patch may
// differ freely.
func IsProtocolCompatible(clientProtocol string) (bool, error) {
	server, err := semver.NewVersion(ProtocolVersion)
	if err != nil {
		return false, fmt.Errorf("invalid server protocol '%s': %w", ProtocolVersion, err)
	}

	client, err := semver.NewVersion(clientProtocol)
	if err != nil {
		return false, fmt.Errorf("invalid client protocol '%s': %w", clientProtocol, err)
	}

	return client.Major() == server.Major(), nil
}

// SetBuildInfo sets build information (used for testing)
func SetBuildInfo(version, gitCommit, buildDate string) {
	Version = version
	GitCommit = gitCommit
	BuildDate = buildDate
}

// GetBuildTime returns the build time as a time.Time if parseable
func GetBuildTime() (time.Time, error) {
	if BuildDate == "unknown" || BuildDate == "" {
		return time.Time{}, fmt.Errorf("build date not available")
	}

	// Try different time formats
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, BuildDate); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse build date '%s'", BuildDate)
}
