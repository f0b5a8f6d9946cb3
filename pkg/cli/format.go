// Package cli provides shared formatting helpers for the newtverify CLI.
package cli

import (
	"os"
	"strings"
)

// colorEnabled is false when NO_COLOR env var is set (per no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

// SetColor overrides color output, e.g. for --no-color or JSON output.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

func paint(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Green wraps s in ANSI green. Returns s unchanged when color is off.
func Green(s string) string { return paint("32", s) }

// Yellow wraps s in ANSI yellow.
func Yellow(s string) string { return paint("33", s) }

// Red wraps s in ANSI red.
func Red(s string) string { return paint("31", s) }

// Bold wraps s in ANSI bold.
func Bold(s string) string { return paint("1", s) }

// Dim wraps s in ANSI dim.
func Dim(s string) string { return paint("2", s) }

// Mark renders a verdict: green MATCH or red MISMATCH.
func Mark(ok bool) string {
	if ok {
		return Green("MATCH")
	}
	return Red("MISMATCH")
}

// Missing renders an absent value so it stands out from an empty string.
func Missing(s string) string {
	if s == "" {
		return Dim("(none)")
	}
	return s
}

// DotPad pads name with dots to the given width.
// Example: DotPad("SW1", 12) → "SW1 ........"
func DotPad(name string, width int) string {
	n := visualLen(name)
	if width <= 0 || n >= width-1 {
		return name
	}
	return name + " " + strings.Repeat(".", width-n-1)
}
