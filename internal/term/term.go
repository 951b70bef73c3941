// Package term provides color styles and terminal detection.
//
// Styles are package-level because logging and display both need them.
// [Configure] sets the color profile once during startup; when colors are
// disabled every style renders its input unchanged.
package term

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/backmassage/rname/internal/config"
)

var renderer = lipgloss.NewRenderer(os.Stdout)

// Level and accent styles.
var (
	Red     = style("9")
	Green   = style("10")
	Yellow  = style("11")
	Blue    = style("12")
	Cyan    = style("14")
	Magenta = style("13")
)

var enabled bool

func style(color string) lipgloss.Style {
	return renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

// Configure resolves the color mode and sets the renderer's color profile.
// Call once during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode) {
	enabled = resolve(mode)
	if enabled {
		renderer.SetColorProfile(termenv.ANSI)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
}

// Enabled reports whether colors are currently active.
func Enabled() bool { return enabled }

// Paint renders s with st when colors are enabled.
func Paint(st lipgloss.Style, s string) string {
	if !enabled {
		return s
	}
	return st.Render(s)
}

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY, including Cygwin/MSYS
// pseudo terminals.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
