package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the client's leveled logger.
type Logger struct {
	file *os.File
	zl   *zap.Logger
}

// NewLogger creates a logger writing to filePath, or to stderr when filePath is empty.
func NewLogger(filePath, level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var (
		file *os.File
		sink zapcore.WriteSyncer
	)
	if filePath == "" {
		sink = zapcore.Lock(os.Stderr)
	} else {
		file, err = os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sink = zapcore.AddSync(file)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if file != nil {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, sink, lvl)
	return &Logger{file: file, zl: zap.New(core)}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// FromZap wraps an existing zap logger (zaptest loggers in tests).
func FromZap(zl *zap.Logger) *Logger {
	return &Logger{zl: zl}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zl.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.zl.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.zl.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zl.Error(msg, fields...) }

// Named returns a child logger for one component (store, router, auth, ...).
func (l *Logger) Named(name string) *Logger {
	return &Logger{zl: l.zl.Named(name)}
}

// Close flushes buffered entries and closes the log file, if any.
func (l *Logger) Close() {
	_ = l.zl.Sync()
	if l.file != nil {
		l.file.Close()
	}
}

// ParseLevel parses a zap level name. An empty level is info and
// "warning" is accepted for warn.
func ParseLevel(level string) (zapcore.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return zapcore.InfoLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}
	return zapcore.ParseLevel(level)
}
