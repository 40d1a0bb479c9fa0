package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configure the zap-backed Logger. They mirror conf.Logger
// field-for-field so callers can pass the config struct straight
// through without this package importing conf.
type Options struct {
	Level      string
	Path       string
	Caller     bool
	MaxSize    int
	MaxAge     int
	MaxBackups int
	Compress   bool
}

type zapLogger struct {
	z *zap.Logger
}

// NewZapLogger builds a Logger writing to opts.Path (rotated through
// lumberjack) or, if Path is empty, to stderr.
func NewZapLogger(opts Options) Logger {
	var ws zapcore.WriteSyncer
	if opts.Path == "" {
		ws = zapcore.AddSync(os.Stderr)
	} else {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    orDefault(opts.MaxSize, 100),
			MaxAge:     orDefault(opts.MaxAge, 28),
			MaxBackups: orDefault(opts.MaxBackups, 7),
			Compress:   opts.Compress,
		})
	}

	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, ws, parseLevel(opts.Level))

	zapOpts := make([]zap.Option, 0, 1)
	if opts.Caller {
		zapOpts = append(zapOpts, zap.AddCaller(), zap.AddCallerSkip(2))
	}

	return &zapLogger{z: zap.New(core, zapOpts...)}
}

func (l *zapLogger) Log(level Level, keyvals ...any) error {
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, _ := keyvals[i].(string)
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	switch level {
	case DebugLevel:
		l.z.Debug("", fields...)
	case InfoLevel:
		l.z.Info("", fields...)
	case WarnLevel:
		l.z.Warn("", fields...)
	case ErrorLevel:
		l.z.Error("", fields...)
	case FatalLevel:
		l.z.Error("", fields...) // os.Exit is handled by Helper, not zap
	}
	return nil
}

func parseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
