package preflight

// Utility functions common to all preflight applications

import (
	"fmt"
	"strings"
)

// MaskKeyID shortens an access key identifier for diagnostic output, keeping
// just enough of the prefix to recognize which key is in use.
func MaskKeyID(id string) string {
	if len(id) <= 10 {
		return id + "..."
	}
	return id[:10] + "..."
}

// MaskSecret replaces a secret with a fixed-width run of stars. The width is
// constant so output never leaks the secret's length.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	return strings.Repeat("*", 20)
}

// FormatMB renders a byte count in megabytes with two decimals, matching the
// way object sizes are reported throughout the diagnostics.
func FormatMB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/1e6)
}
