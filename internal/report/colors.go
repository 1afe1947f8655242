package report

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode controls report colorization.
type ColorMode string

const (
	// ColorAuto colorizes only when writing to a terminal.
	ColorAuto ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

var mode = ColorAuto

// SetColorMode overrides the colorization policy, normally from the config
// file's report.color setting.
func SetColorMode(m ColorMode) {
	mode = m
}

// Scheme holds the colors used for report elements.
type Scheme struct {
	Banner *color.Color
	Name   *color.Color
	Value  *color.Color
}

// DefaultScheme returns the scheme used for terminal output.
func DefaultScheme() *Scheme {
	return &Scheme{
		Banner: color.New(color.FgMagenta, color.Bold),
		Name:   color.New(color.FgCyan, color.Bold),
		Value:  color.New(color.FgGreen),
	}
}

// colorize reports whether output to w should carry ANSI colors.
func colorize(w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
