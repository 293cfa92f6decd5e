package render

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f should receive styled, human-oriented output.
//
// Returns false if:
//   - PRODMIG_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set
//   - f is not a terminal (piped or redirected)
func IsTerminal(f *os.File) bool {
	if os.Getenv("PRODMIG_NON_INTERACTIVE") == "1" {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// DefaultFormat is FormatTable for terminals and FormatTSV otherwise.
func DefaultFormat(f *os.File) Format {
	if IsTerminal(f) {
		return FormatTable
	}
	return FormatTSV
}
