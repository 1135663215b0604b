package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options controls how the process logger is built.
type Options struct {
	// Level is a logrus level name; empty means info.
	Level string
	// Verbose forces at least debug level.
	Verbose bool
	// File, if set, receives the log instead of Output.
	File string
	// Quiet discards everything.
	Quiet  bool
	Output io.Writer
}

// New builds the logger shared by every component. The returned
// function closes the log file, if any.
func New(opts Options) (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	done := func() error { return nil }

	level := logrus.InfoLevel
	if opts.Level != "" {
		var err error
		if level, err = logrus.ParseLevel(opts.Level); err != nil {
			return nil, nil, err
		}
	}
	if opts.Verbose && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	switch {
	case opts.Quiet:
		logger.SetOutput(io.Discard)
	case opts.File != "":
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "error opening log file %s", opts.File)
		}
		logger.SetOutput(f)
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
		done = f.Close
	case opts.Output != nil:
		logger.SetOutput(opts.Output)
	default:
		logger.SetOutput(os.Stderr)
	}
	return logger, done, nil
}
