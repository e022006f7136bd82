// Package logging builds the zap loggers used across docquery.
package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats accepted by New.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// shortTimeEncoder encodes time in HH:MM:SS format for cleaner console output
func shortTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// New creates a logger writing to stderr. format is "json" or "console";
// level is any zapcore level name.
func New(format, level string) (*zap.Logger, error) {
	return NewWithOutput(format, level, zapcore.Lock(os.Stderr))
}

// NewWithOutput creates a logger with a custom output.
func NewWithOutput(format, level string, output zapcore.WriteSyncer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	econf := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var core zapcore.Core
	switch format {
	case FormatJSON:
		core = zapcore.NewCore(zapcore.NewJSONEncoder(econf), output, lvl)
	case FormatConsole, "":
		econf.EncodeLevel = zapcore.CapitalLevelEncoder
		econf.EncodeTime = shortTimeEncoder
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(econf), output, lvl)
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return zap.New(core), nil
}
