package display

import (
	"encoding/json"
	"fmt"
	"io"
)

// Printer writes client output, coloring it only when enabled
type Printer struct {
	w     io.Writer
	color bool
}

func New(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Info prints a cyan line
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintln(p.w, p.Paint(Cyan, fmt.Sprintf(format, a...)))
}

// Error prints a red line
func (p *Printer) Error(format string, a ...any) {
	fmt.Fprintln(p.w, p.Paint(Red, fmt.Sprintf(format, a...)))
}

// PrettyPrintJSON prints formatted JSON
func (p *Printer) PrettyPrintJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		p.Error("Error formatting JSON: %s", err)
		return
	}
	fmt.Fprintln(p.w, string(data))
}
