package logging

import (
	"errors"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface for structured logging operations.
// This abstraction allows for testing and swapping implementations.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

// zapLogger wraps zap.Logger to implement our Logger interface.
type zapLogger struct {
	logger *zap.Logger
}

// NewFromZap wraps an already configured zap logger.
func NewFromZap(z *zap.Logger) Logger {
	return &zapLogger{logger: z}
}

// NewLogger creates a logger for the given environment ("development" or "production"),
// level and encoding ("json" or "console"). An empty encoding keeps the environment default.
func NewLogger(environment, logLevel, encoding string) (Logger, error) {
	var config zap.Config

	if environment == "development" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	}

	if encoding == "json" || encoding == "console" {
		config.Encoding = encoding
	}

	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	logger, err := config.Build(
		zap.AddCallerSkip(1), // Skip one level to show correct caller
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, err
	}

	return &zapLogger{logger: logger}, nil
}

// NewDevelopmentLogger creates a logger optimized for development.
func NewDevelopmentLogger() (Logger, error) {
	return NewLogger("development", "debug", "console")
}

// NewProductionLogger creates a logger optimized for production.
func NewProductionLogger() (Logger, error) {
	return NewLogger("production", "info", "json")
}

// NewFromEnv creates a logger from ENVIRONMENT, LOG_LEVEL and LOG_ENCODING.
func NewFromEnv() (Logger, error) {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "production"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return NewLogger(environment, logLevel, os.Getenv("LOG_ENCODING"))
}

// Zap returns the *zap.Logger behind l for libraries that need one, such as the
// gin middleware. Loggers not backed by zap get a no-op logger.
func Zap(l Logger) *zap.Logger {
	if zl, ok := l.(*zapLogger); ok {
		// Undo the caller skip added for the interface methods.
		return zl.logger.WithOptions(zap.AddCallerSkip(-1))
	}
	return zap.NewNop()
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Debug(msg, fields...)
}

func (l *zapLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Info(msg, fields...)
}

func (l *zapLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Warn(msg, fields...)
}

func (l *zapLogger) Error(msg string, fields ...zap.Field) {
	l.logger.Error(msg, fields...)
}

// Fatal logs a fatal-level message and exits the application.
func (l *zapLogger) Fatal(msg string, fields ...zap.Field) {
	l.logger.Fatal(msg, fields...)
}

// With creates a child logger with fields permanently attached.
func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{logger: l.logger.With(fields...)}
}

// Sync flushes any buffered log entries.
// Should be called before application exits.
func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

// SyncQuietly flushes l, ignoring the errors returned when stdout or stderr is a
// terminal or pipe that cannot be synced.
func SyncQuietly(l Logger) error {
	err := l.Sync()
	if err == nil || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

// NoOpLogger is a logger that does nothing. Useful for testing.
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(msg string, fields ...zap.Field) {}
func (l *NoOpLogger) Info(msg string, fields ...zap.Field)  {}
func (l *NoOpLogger) Warn(msg string, fields ...zap.Field)  {}
func (l *NoOpLogger) Error(msg string, fields ...zap.Field) {}
func (l *NoOpLogger) Fatal(msg string, fields ...zap.Field) {}
func (l *NoOpLogger) With(fields ...zap.Field) Logger       { return l }
func (l *NoOpLogger) Sync() error                           { return nil }

// NewNoOpLogger creates a no-op logger for testing.
func NewNoOpLogger() Logger {
	return &NoOpLogger{}
}
