package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop().Sugar()
)

// Init builds the package logger. "production" gets JSON output at info level,
// anything else a console encoder at debug level.
func Init(environment string) {
	var cfg zap.Config
	if strings.EqualFold(environment, "production") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewExample()
	}

	mu.Lock()
	log = l.Sugar()
	mu.Unlock()
}

// Sync flushes buffered entries.
func Sync() {
	_ = current().Sync()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// fields turns a loose argument list into key/value pairs. A trailing value
// without a key (usually an error) is logged under "error".
func fields(args []any) []any {
	if len(args)%2 == 0 {
		return args
	}
	out := make([]any, 0, len(args)+1)
	out = append(out, args[:len(args)-1]...)
	return append(out, "error", args[len(args)-1])
}

func Debug(msg string, args ...any) {
	current().Debugw(msg, fields(args)...)
}

func Info(msg string, args ...any) {
	current().Infow(msg, fields(args)...)
}

func Warn(msg string, args ...any) {
	current().Warnw(msg, fields(args)...)
}

func Error(msg string, args ...any) {
	current().Errorw(msg, fields(args)...)
}

func Fatal(msg string, args ...any) {
	current().Fatalw(msg, fields(args)...)
}
