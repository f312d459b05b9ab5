package app

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"ssb-go/internal/ssb"
)

// 256-colour palette entries used for progress lines.
const (
	colorDarkGray      = 244
	colorLightGray     = 250
	colorWarningYellow = 143
)

// Console writes user-facing progress, one line per event. Lines are
// coloured only when the output is a terminal.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer, color bool) *Console {
	return &Console{w: w, color: color}
}

// NewStdoutConsole creates a Console on stdout, coloured when stdout is a
// terminal.
func NewStdoutConsole() *Console {
	return NewConsole(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
}

func (c *Console) GameFound(appID uint32, name string) {
	c.line(colorDarkGray, fmt.Sprintf("Found game '%s' with AppID '%d'", name, appID))
}

func (c *Console) FileCopied(location string) {
	c.line(colorLightGray, location)
}

// FileFailed only marks the location in warning colour. The error itself
// goes to the log.
func (c *Console) FileFailed(location string, _ error) {
	c.line(colorWarningYellow, location)
}

// Notice prints an unstyled message.
func (c *Console) Notice(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, msg)
}

// Printf writes formatted text without a trailing newline.
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}

func (c *Console) line(color int, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, c.style(color, text))
}

func (c *Console) style(color int, text string) string {
	if !c.color {
		return text
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, text)
}

var _ ssb.Reporter = (*Console)(nil)
