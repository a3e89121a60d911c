// Package logging builds the process *zap.Logger from configuration.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string

	// Format is "console" (default) or "json".
	Format string

	// ErrorFile, when set, additionally receives every error-level entry as
	// JSON lines, appended across runs.
	ErrorFile string
}

// New builds a logger writing to stderr. The returned close function syncs
// the logger and closes the error file; it is safe to call once.
func New(opt Options) (*zap.Logger, func(), error) {
	level, err := ParseLevel(opt.Level)
	if err != nil {
		return nil, nil, err
	}

	enc, err := encoder(opt.Format)
	if err != nil {
		return nil, nil, err
	}
	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level),
	}

	var errFile *os.File
	if opt.ErrorFile != "" {
		if dir := filepath.Dir(opt.ErrorFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("logging: create error file dir: %w", err)
			}
		}
		errFile, err = os.OpenFile(opt.ErrorFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open error file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			zapcore.AddSync(errFile),
			zapcore.ErrorLevel,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	closeFn := func() {
		_ = logger.Sync()
		if errFile != nil {
			_ = errFile.Close()
		}
	}
	return logger, closeFn, nil
}

// ParseLevel maps a level name onto a zapcore.Level.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("logging: unknown level %q", s)
	}
	return l, nil
}

func encoder(format string) (zapcore.Encoder, error) {
	switch format {
	case "", "console":
		return zapcore.NewConsoleEncoder(encoderConfig()), nil
	case "json":
		return zapcore.NewJSONEncoder(encoderConfig()), nil
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
