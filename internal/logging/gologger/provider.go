// Package gologger backs the folio logging interfaces with go-logger, for
// structured JSON or pretty output in CI and watch sessions.
package gologger

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// ModulePrefix is prepended to focus entries given without a namespace, so
// "aggregate" focuses the "folio.aggregate" module.
const ModulePrefix = "folio."

var (
	ErrUnsupportedFormat = errors.New("gologger: unsupported format")
	ErrUnsupportedLevel  = errors.New("gologger: unsupported level")
)

// Config mirrors the logging section of the folio config file.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Provider hands out go-logger children per folio module.
type Provider struct {
	root  *glog.BaseLogger
	focus []string
}

// NewProvider builds the root go-logger from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	opts, err := loggerOptions(cfg)
	if err != nil {
		return nil, err
	}
	root := glog.NewLogger(opts...)
	focus := FocusModules(cfg.Focus)
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root, focus: focus}, nil
}

// Focus reports the module names output is restricted to.
func (p *Provider) Focus() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.focus)
}

// GetLogger returns the child logger for a module such as "folio.markdown".
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return wrap(p.root)
	}
	return wrap(p.root.GetLogger(name))
}

func loggerOptions(cfg Config) ([]glog.Option, error) {
	var opts []glog.Option

	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		level, ok := levels[strings.ToLower(raw)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedLevel, cfg.Level)
		}
		opts = append(opts, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		opts = append(opts, glog.WithLoggerTypeJSON())
	case "pretty":
		opts = append(opts, glog.WithLoggerTypePretty())
	case "", "console", "text":
		opts = append(opts, glog.WithLoggerTypeConsole())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, cfg.Format)
	}

	if cfg.AddSource {
		opts = append(opts, glog.WithAddSource(true))
	}
	return opts, nil
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// FocusModules trims names, drops blanks and duplicates, and qualifies bare
// names with ModulePrefix.
func FocusModules(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.Contains(name, ".") {
			name = ModulePrefix + name
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

type moduleLogger struct {
	inner glog.Logger
}

var (
	_ interfaces.Logger       = (*moduleLogger)(nil)
	_ interfaces.FieldsLogger = (*moduleLogger)(nil)
)

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &moduleLogger{inner: inner}
}

func (l *moduleLogger) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *moduleLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *moduleLogger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *moduleLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *moduleLogger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *moduleLogger) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

// WithFields attaches fields natively when go-logger supports it, otherwise
// as sorted key/value args.
func (l *moduleLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	if native, ok := l.inner.(glog.FieldsLogger); ok {
		return wrap(native.WithFields(maps.Clone(fields)))
	}
	if with, ok := l.inner.(interface{ With(...any) *glog.BaseLogger }); ok {
		return wrap(with.With(fieldArgs(fields)...))
	}
	return l
}

func (l *moduleLogger) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return wrap(l.inner.WithContext(ctx))
}

func fieldArgs(fields map[string]any) []any {
	keys := slices.Sorted(maps.Keys(fields))
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
