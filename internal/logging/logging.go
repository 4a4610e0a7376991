// Package logging builds a duckclient.Logger from configuration, backed
// by log/slog or by logrus.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Zereker/duckclient"
)

// New returns a logger writing to w. format is "text", "json" or
// "logrus"; level is "debug", "info", "warn" or "error".
func New(w io.Writer, format, level string) (duckclient.Logger, error) {
	switch format {
	case "logrus":
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(lvl)
		return NewLogrus(logrus.NewEntry(l)), nil
	case "", "text", "json":
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, err
		}
		opts := &slog.HandlerOptions{Level: lvl}
		if format == "json" {
			return slog.New(slog.NewJSONHandler(w, opts)), nil
		}
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
}

// Logrus adapts a logrus entry to duckclient.Logger. Key-value pairs
// become logrus fields.
type Logrus struct {
	entry *logrus.Entry
}

// NewLogrus wraps entry.
func NewLogrus(entry *logrus.Entry) *Logrus {
	return &Logrus{entry: entry}
}

func (l *Logrus) Debug(msg string, args ...any) { l.with(args).Debug(msg) }
func (l *Logrus) Info(msg string, args ...any)  { l.with(args).Info(msg) }
func (l *Logrus) Warn(msg string, args ...any)  { l.with(args).Warn(msg) }
func (l *Logrus) Error(msg string, args ...any) { l.with(args).Error(msg) }

func (l *Logrus) with(args []any) *logrus.Entry {
	if len(args) == 0 {
		return l.entry
	}
	fields := make(logrus.Fields, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 == len(args) {
			fields["!BADKEY"] = args[i]
			break
		}
		fields[key] = args[i+1]
	}
	return l.entry.WithFields(fields)
}
