package output

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ResolveFormat downgrades "pretty" to "plain" when out is not a terminal,
// so that redirected output carries no escape codes or boxes.
func ResolveFormat(requested string, out *os.File) string {
	if requested == "" {
		requested = "pretty"
	}
	if requested == "pretty" && !IsTerminal(out) {
		return "plain"
	}
	return requested
}
