// Package logging builds the logrus loggers used by the build pipeline.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/conn-castle/ota-layer/internal/terminal"
)

// Options selects logger verbosity. Quiet wins over Verbose.
type Options struct {
	Verbose bool
	Quiet   bool
}

// Level maps the options onto a logrus level.
func (o Options) Level() logrus.Level {
	switch {
	case o.Quiet:
		return logrus.WarnLevel
	case o.Verbose:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// New returns a logger writing to w. Colors are used only when w is a terminal.
func New(w io.Writer, opts Options) *logrus.Logger {
	if w == nil {
		w = io.Discard
	}
	interactive := terminal.IsTerminal(w)
	return &logrus.Logger{
		Out: w,
		Formatter: &logrus.TextFormatter{
			ForceColors:      interactive,
			DisableColors:    !interactive,
			DisableTimestamp: !interactive,
		},
		Hooks:    make(logrus.LevelHooks),
		Level:    opts.Level(),
		ExitFunc: func(int) {},
	}
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	return New(io.Discard, Options{Quiet: true})
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return Discard()
	}
	return log
}
