// Package logging builds the structured logger shared by the CLI and the
// packages it drives.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Options configures New.
type Options struct {
	Level   string // debug, info, warn or error; empty means info
	NoColor bool   // also implied by a non-empty NO_COLOR
	Prefix  string
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) (*log.Logger, error) {
	level := log.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		l, err := log.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", s, err)
		}
		level = l
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: level == log.DebugLevel,
	})
	if opts.NoColor || os.Getenv("NO_COLOR") != "" {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
