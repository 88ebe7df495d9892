// Package logging provides a file-backed logger for promptdeck.
// The TUI owns the terminal, so logs never go to stdout or stderr;
// when debug mode is off nothing is written at all.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing JSON lines to the given file. When debug
// is false, or the file cannot be opened, it returns a no-op logger so
// callers never have to nil-check.
func New(path string, debug bool) *zap.Logger {
	if !debug || path == "" {
		return zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zap.NewNop()
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return zap.NewNop()
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(file),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}
