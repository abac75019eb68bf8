// Package logging builds the zap logger used by the command line tool.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to w. Debug entries are only written
// when debug is set; stack traces are left out either way.
func New(w io.Writer, debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeCaller = nil
	cfg.CallerKey = zapcore.OmitKey

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level.SetLevel(zap.DebugLevel)
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// Location describes where in the input something happened.
func Location(line, column int, offset int64) zap.Field {
	return zap.Dict("at",
		zap.Int("line", line),
		zap.Int("column", column),
		zap.Int64("offset", offset),
	)
}
