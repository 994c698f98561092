package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

// Printer writes plain (non-TUI) output in a theme.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	theme Theme
	color bool
}

// New returns a printer for out/errOut. Color is used when out is a terminal
// unless the theme is mono.
func New(out, errOut io.Writer, theme string) *Printer {
	t := ThemeByName(theme)
	return &Printer{Out: out, Err: errOut, theme: t, color: !t.Mono && isTTY(out)}
}

// Stdio is New over os.Stdout and os.Stderr.
func Stdio(theme string) *Printer { return New(os.Stdout, os.Stderr, theme) }

// SetColor forces color on or off.
func (p *Printer) SetColor(on bool) { p.color = on && !p.theme.Mono }

// Theme is the printer's theme.
func (p *Printer) Theme() Theme { return p.theme }

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// C wraps s in color when color is enabled.
func (p *Printer) C(color, s string) string {
	if !p.color || color == "" {
		return s
	}
	return color + s + reset
}

func (p *Printer) OK(msg string)   { fmt.Fprintln(p.Out, p.C(p.theme.Success, symCheck+" "+msg)) }
func (p *Printer) Fail(msg string) { fmt.Fprintln(p.Err, p.C(p.theme.Error, symCross+" "+msg)) }

// Hint prints a muted line to the error stream.
func (p *Printer) Hint(msg string) { fmt.Fprintln(p.Err, p.C(p.theme.Muted, msg)) }

// Println writes a line to the output stream.
func (p *Printer) Println(a ...any) { fmt.Fprintln(p.Out, a...) }
