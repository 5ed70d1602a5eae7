package observability

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogLevel = "info"

// LoggerOptions selects the logger's level, encoding and optional rotated file output.
type LoggerOptions struct {
	Level string
	// Mode is "production" (JSON) or "development" (console).
	Mode string
	// File, when set, receives a JSON copy of every entry with size-based rotation.
	File string
}

type loggerKey struct{}

// NewLogger constructs a zap logger emitting structured entries with severity/message keys.
func NewLogger(opts LoggerOptions) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(opts.Level)))); err != nil {
		// Fallback to default level when unset or invalid.
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		NameKey:    "logger",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
	}

	var stdoutEncoder zapcore.Encoder
	if strings.EqualFold(opts.Mode, "development") {
		devCfg := encoderCfg
		devCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		stdoutEncoder = zapcore.NewConsoleEncoder(devCfg)
	} else {
		stdoutEncoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEncoder, zapcore.Lock(os.Stdout), level),
	}
	if file := strings.TrimSpace(opts.File); file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotating), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr))), nil
}

// WithLogger injects the logger into the provided context.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the logger from context, defaulting to a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}
