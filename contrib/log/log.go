// Package log is a small leveled-logging facade, backed by zap. It keeps
// the shape the rest of the tree calls through (SetLogger/GetLogger,
// With, NewHelper, package-level Infof/Warnf/Errorf/Debugf/Fatalf) so
// call sites never import zap directly.
package log

import (
	"context"
	"fmt"
	"os"
)

// Level is a logging severity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// Logger is the minimal structured-logging capability every backend
// must provide. Keyvals are alternating key/value pairs, as with
// go-kit/log and kratos log.
type Logger interface {
	Log(level Level, keyvals ...any) error
}

var global Logger = NewStdLogger(os.Stderr)

// SetLogger installs the process-wide default logger.
func SetLogger(l Logger) { global = l }

// GetLogger returns the process-wide default logger.
func GetLogger() Logger { return global }

// With returns a Logger that always prepends the given keyvals.
func With(l Logger, keyvals ...any) Logger {
	return &context_{logger: l, prefix: keyvals}
}

type context_ struct {
	logger Logger
	prefix []any
}

func (c *context_) Log(level Level, keyvals ...any) error {
	return c.logger.Log(level, append(append([]any{}, c.prefix...), keyvals...)...)
}

// Helper is a convenience wrapper exposing level methods and
// printf-style variants over a Logger.
type Helper struct {
	logger Logger
}

func NewHelper(l Logger) *Helper { return &Helper{logger: l} }

func (h *Helper) log(level Level, msg string) {
	_ = h.logger.Log(level, "msg", msg)
}

func (h *Helper) Debug(a ...any)          { h.log(DebugLevel, fmt.Sprint(a...)) }
func (h *Helper) Debugf(f string, a ...any) { h.log(DebugLevel, fmt.Sprintf(f, a...)) }
func (h *Helper) Info(a ...any)          { h.log(InfoLevel, fmt.Sprint(a...)) }
func (h *Helper) Infof(f string, a ...any) { h.log(InfoLevel, fmt.Sprintf(f, a...)) }
func (h *Helper) Warn(a ...any)          { h.log(WarnLevel, fmt.Sprint(a...)) }
func (h *Helper) Warnf(f string, a ...any) { h.log(WarnLevel, fmt.Sprintf(f, a...)) }
func (h *Helper) Error(a ...any)         { h.log(ErrorLevel, fmt.Sprint(a...)) }
func (h *Helper) Errorf(f string, a ...any) { h.log(ErrorLevel, fmt.Sprintf(f, a...)) }
func (h *Helper) Fatal(a ...any) {
	h.log(FatalLevel, fmt.Sprint(a...))
	os.Exit(1)
}
func (h *Helper) Fatalf(f string, a ...any) {
	h.log(FatalLevel, fmt.Sprintf(f, a...))
	os.Exit(1)
}

// package-level helpers delegate to a Helper over the global logger.
func Debug(a ...any)            { NewHelper(global).Debug(a...) }
func Debugf(f string, a ...any) { NewHelper(global).Debugf(f, a...) }
func Info(a ...any)             { NewHelper(global).Info(a...) }
func Infof(f string, a ...any)  { NewHelper(global).Infof(f, a...) }
func Warn(a ...any)             { NewHelper(global).Warn(a...) }
func Warnf(f string, a ...any)  { NewHelper(global).Warnf(f, a...) }
func Error(a ...any)            { NewHelper(global).Error(a...) }
func Errorf(f string, a ...any) { NewHelper(global).Errorf(f, a...) }
func Fatal(a ...any)            { NewHelper(global).Fatal(a...) }
func Fatalf(f string, a ...any) { NewHelper(global).Fatalf(f, a...) }

type ctxKey struct{}

// NewContext attaches a request-scoped Helper (already tagged with a
// connection id) to ctx.
func NewContext(ctx context.Context, h *Helper) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

// Context extracts the request-scoped Helper, falling back to the
// global logger if none was attached.
func Context(ctx context.Context) *Helper {
	if h, ok := ctx.Value(ctxKey{}).(*Helper); ok {
		return h
	}
	return NewHelper(global)
}
