// Package logging builds the application's logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	Level  string // trace|debug|info|warn|error
	Format string // text|json
	Output io.Writer
}

// New returns a logger for opts. An empty level means info; Output defaults to stdout.
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.New()

	level := logrus.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		parsed, err := logrus.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = parsed
	}
	l.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}

	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stdout)
	}
	return l, nil
}
