package wlb

import (
	"log/slog"
	"os"
)

// PrintLog controls whether WLB emits log records. By default, it is enabled.
var PrintLog = true

// wlblog is a wrapper around a *slog.Logger so we can control whether it
// should output anything.
type wlblog struct {
	*slog.Logger
}

var logger = newLogger()

func newLogger() wlblog {
	return wlblog{slog.New(slog.NewTextHandler(os.Stderr, nil)).With("lib", "wlb")}
}

// SetLogger replaces the logger used by WLB. Call it before NewConn.
func SetLogger(l *slog.Logger) {
	logger = wlblog{l.With("lib", "wlb")}
}

func (lg wlblog) Debug(msg string, args ...any) {
	if PrintLog {
		lg.Logger.Debug(msg, args...)
	}
}

func (lg wlblog) Info(msg string, args ...any) {
	if PrintLog {
		lg.Logger.Info(msg, args...)
	}
}

func (lg wlblog) Warn(msg string, args ...any) {
	if PrintLog {
		lg.Logger.Warn(msg, args...)
	}
}

func (lg wlblog) Error(msg string, args ...any) {
	if PrintLog {
		lg.Logger.Error(msg, args...)
	}
}
