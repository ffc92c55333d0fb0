package display

import (
	"os"

	"golang.org/x/term"
)

// Terminal color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// ColorEnabled reports whether f is a terminal that should receive escapes
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Paint wraps s in a color code when p has color enabled
func (p *Printer) Paint(color, s string) string {
	if !p.color {
		return s
	}
	return color + s + Reset
}

// Prompt returns the readline prompt
func (p *Printer) Prompt(text string) string {
	return p.Paint(Yellow, text+" > ")
}
