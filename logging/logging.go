// Package logging is the process-wide logger. It keeps the Log(message, level)
// call shape used throughout the backup manager and writes through zap.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop().Sugar()
)

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// ParseLevel maps the level names used in config and log calls ("Debug",
// "Info", "Warn", "Error", any case) to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	l, ok := levels[strings.ToLower(level)]
	if !ok {
		return zapcore.InfoLevel, fmt.Errorf("log level %q does not exist", level)
	}
	return l, nil
}

// Init builds the process logger. format is "console" or "json"; an empty
// file logs to stderr.
func Init(level, format, file string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	var zapConfig zap.Config
	if format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.DisableStacktrace = true
	}
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)

	if file != "" {
		zapConfig.OutputPaths = []string{file}
		zapConfig.ErrorOutputPaths = []string{file}
	} else {
		zapConfig.OutputPaths = []string{"stderr"}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	}

	built, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	SetLogger(built)
	return nil
}

// SetLogger replaces the process logger.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l.Sugar()
}

// Logger returns the current sugared logger.
func Logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Log writes message at the given level (Info when omitted). It returns an
// error for an unknown level and does not log in that case.
func Log(message string, level ...string) error {
	lvl := zapcore.InfoLevel
	if len(level) > 0 {
		var err error
		if lvl, err = ParseLevel(level[0]); err != nil {
			return err
		}
	}

	l := Logger()
	switch lvl {
	case zapcore.DebugLevel:
		l.Debug(message)
	case zapcore.WarnLevel:
		l.Warn(message)
	case zapcore.ErrorLevel:
		l.Error(message)
	default:
		l.Info(message)
	}
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger().Sync()
}
