package app

import (
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// Style is the role of a piece of console output.
type Style int

const (
	Default Style = iota
	SectionHeader
	Label
	Value
	Pass
	Failure
	Warning
	Error
	Output
)

var styles = map[Style]color.Style{
	SectionHeader: color.New(color.FgCyan, color.OpBold),
	Label:         color.New(color.FgGreen),
	Value:         color.New(color.FgWhite, color.OpBold),
	Pass:          color.New(color.FgGreen, color.OpBold),
	Failure:       color.New(color.FgRed, color.OpBold),
	Warning:       color.New(color.FgYellow, color.OpBold),
	Error:         color.New(color.FgRed, color.OpBold),
	Output:        color.New(color.FgWhite),
}

// ConsoleWriter writes styled text, with ANSI colors when enabled. Whether a
// writer gets colors is decided once by the caller.
type ConsoleWriter struct {
	w     io.Writer
	color bool
}

func NewConsoleWriter(w io.Writer, colored bool) *ConsoleWriter {
	return &ConsoleWriter{w: w, color: colored}
}

func (c *ConsoleWriter) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

func (c *ConsoleWriter) paint(style Style, s string) string {
	if !c.color || style == Default {
		return s
	}
	return fmt.Sprintf(color.FullColorTpl, styles[style].Code(), s)
}

func (c *ConsoleWriter) Print(style Style, a ...any) {
	fmt.Fprint(c.w, c.paint(style, fmt.Sprint(a...)))
}

func (c *ConsoleWriter) Println(style Style, a ...any) {
	fmt.Fprintln(c.w, c.paint(style, fmt.Sprint(a...)))
}

func (c *ConsoleWriter) Printf(style Style, format string, a ...any) {
	fmt.Fprint(c.w, c.paint(style, fmt.Sprintf(format, a...)))
}

// LabelLine writes a label followed by its value on one line.
func (c *ConsoleWriter) LabelLine(label string, value any) {
	fmt.Fprintln(c.w, c.paint(Label, label)+c.paint(Value, fmt.Sprint(value)))
}

func (c *ConsoleWriter) Newline() {
	fmt.Fprintln(c.w)
}

// colorSupported reports whether w is a terminal that should get colors.
func colorSupported(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
