package output

import (
	"github.com/fatih/color"
)

// ColorScheme defines the colors used for the elements of a report line
type ColorScheme struct {
	Name    *color.Color
	Calls   *color.Color
	Rate    *color.Color
	Elapsed *color.Color
	PerCall *color.Color
	Backend *color.Color
	Error   *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Name:    color.New(color.FgCyan, color.Bold),
		Calls:   color.New(color.FgWhite, color.Bold),
		Rate:    color.New(color.FgGreen),
		Elapsed: color.New(color.FgYellow),
		PerCall: color.New(color.FgMagenta),
		Backend: color.New(color.FgBlue),
		Error:   color.New(color.FgRed, color.Bold),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range scheme.all() {
		c.DisableColor()
	}
	return scheme
}

// ForcedColorScheme returns the default scheme with colors enabled even
// when the process is not attached to a terminal
func ForcedColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range scheme.all() {
		c.EnableColor()
	}
	return scheme
}

func (s *ColorScheme) all() []*color.Color {
	return []*color.Color{s.Name, s.Calls, s.Rate, s.Elapsed, s.PerCall, s.Backend, s.Error}
}
