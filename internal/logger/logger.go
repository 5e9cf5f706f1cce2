package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process wide logger. It is a no-op logger until Init is called.
var Log = zap.NewNop()

var (
	level    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	initOnce sync.Once
)

// Init builds the global logger. Set GOPHER_LOG=production for JSON output.
func Init() {
	initOnce.Do(func() {
		var cfg zap.Config
		if os.Getenv("GOPHER_LOG") == "production" {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cfg.Level = level

		l, err := cfg.Build()
		if err != nil {
			// Fall back to stderr so startup errors are still visible
			l = zap.New(zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.Lock(os.Stderr),
				level,
			))
		}
		Log = l
	})
}

// SetLevel changes the minimum level of the global logger.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// ParseLevel maps names like "debug" or "warn" to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Sync flushes buffered entries.
func Sync() {
	_ = Log.Sync()
}
