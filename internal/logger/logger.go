package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel is the minimum severity that gets written
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// Logger wraps a zap logger with printf-style helpers
type Logger struct {
	zapLogger *zap.Logger
}

// Config describes where logs go
type Config struct {
	Level      string
	Output     string // file, stderr or none
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// The terminal belongs to the UI, so nothing is written until Init is called.
var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(nop())
}

func nop() *Logger {
	return &Logger{zapLogger: zap.NewNop()}
}

// Init builds a logger from cfg and installs it as the default
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	SetDefaultLogger(l)
	return nil
}

// New creates a logger from cfg
func New(cfg Config) (*Logger, error) {
	level := zap.NewAtomicLevelAt(zapLevelFromLogLevel(ParseLogLevel(cfg.Level)))
	encoder := zapcore.NewJSONEncoder(encoderConfig())

	var sink zapcore.WriteSyncer
	switch strings.ToLower(cfg.Output) {
	case "none":
		return &Logger{zapLogger: zap.NewNop()}, nil
	case "stderr":
		sink = zapcore.Lock(os.Stderr)
	default:
		if cfg.File == "" {
			return nil, fmt.Errorf("log file path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSize, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAge, 28),
			Compress:   cfg.Compress,
		})
	}

	core := zapcore.NewCore(encoder, sink, level)
	return &Logger{zapLogger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))}, nil
}

// NewWithZap wraps an existing zap logger. Used by tests with zaptest/observer.
func NewWithZap(z *zap.Logger) *Logger {
	return &Logger{zapLogger: z}
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05"))
	}
	ec.CallerKey = "caller"
	ec.EncodeCaller = zapcore.ShortCallerEncoder
	ec.LevelKey = "level"
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	ec.MessageKey = "message"
	return ec
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.zapLogger.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.zapLogger.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.zapLogger.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.zapLogger.Error(fmt.Sprintf(format, args...))
}

// Sync flushes buffered entries
func (l *Logger) Sync() {
	_ = l.zapLogger.Sync()
}

// With returns a child logger carrying fields
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zapLogger: l.zapLogger.With(fields...)}
}

// SetDefaultLogger replaces the package-level logger. It is safe to call
// while other goroutines are logging; nil installs a no-op logger.
func SetDefaultLogger(l *Logger) {
	if l == nil {
		l = nop()
	}
	if prev := defaultLogger.Swap(l); prev != nil {
		prev.Sync()
	}
}

// Default returns the package-level logger
func Default() *Logger {
	return defaultLogger.Load()
}

func Debug(format string, args ...interface{}) {
	Default().Debug(format, args...)
}

func Info(format string, args ...interface{}) {
	Default().Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	Default().Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	Default().Error(format, args...)
}

func Sync() {
	Default().Sync()
}

func With(fields ...zap.Field) *Logger {
	return Default().With(fields...)
}

// ParseLogLevel parses a level name; unknown names mean INFO
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func zapLevelFromLogLevel(level LogLevel) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
