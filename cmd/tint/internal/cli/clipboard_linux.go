//go:build linux

package cli

import "fmt"

// copyToClipboard is unavailable on Linux, where the clipboard library
// needs cgo and an X11 session.
func copyToClipboard(string) error {
	return fmt.Errorf("clipboard not supported on this platform")
}
