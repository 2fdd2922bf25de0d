package tui

import (
	"time"

	"github.com/evanschultz/minik/internal/app"
)

// Logger receives diagnostics from the board runtime.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// RuntimeConfig holds timing and layout settings for the board.
type RuntimeConfig struct {
	PollInterval   time.Duration
	BannerTimeout  time.Duration
	ClickSuppress  time.Duration
	MenuCloseGrace time.Duration
	ColumnWidth    int
	ColumnGap      int
	Padding        int
	MaxCardLines   int
	MenuMargin     int
}

// DefaultRuntimeConfig returns the stock board settings.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		PollInterval:   5 * time.Minute,
		BannerTimeout:  10 * time.Second,
		ClickSuppress:  250 * time.Millisecond,
		MenuCloseGrace: 300 * time.Millisecond,
		ColumnWidth:    28,
		ColumnGap:      1,
		Padding:        1,
		MaxCardLines:   2,
		MenuMargin:     4,
	}
}

// normalized fills zero values with defaults.
func (c RuntimeConfig) normalized() RuntimeConfig {
	def := DefaultRuntimeConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.BannerTimeout <= 0 {
		c.BannerTimeout = def.BannerTimeout
	}
	if c.ClickSuppress < 0 {
		c.ClickSuppress = def.ClickSuppress
	}
	if c.MenuCloseGrace < 0 {
		c.MenuCloseGrace = def.MenuCloseGrace
	}
	if c.ColumnWidth < 12 {
		c.ColumnWidth = def.ColumnWidth
	}
	if c.ColumnGap < 0 {
		c.ColumnGap = def.ColumnGap
	}
	if c.Padding < 0 {
		c.Padding = def.Padding
	}
	if c.MaxCardLines < 1 {
		c.MaxCardLines = def.MaxCardLines
	}
	if c.MenuMargin < 0 {
		c.MenuMargin = def.MenuMargin
	}
	return c
}

type Option func(*Model)

// WithRuntimeConfig applies timing and layout settings.
func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(m *Model) {
		m.cfg = cfg.normalized()
	}
}

// WithWindow sets the host window port used for resize requests.
func WithWindow(window app.Window) Option {
	return func(m *Model) {
		m.window = window
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithURLOpener overrides how card links are opened.
func WithURLOpener(open func(string) error) Option {
	return func(m *Model) {
		if open != nil {
			m.openURL = open
		}
	}
}

// WithClipboard overrides how card links are copied.
func WithClipboard(copyFn func(string) error) Option {
	return func(m *Model) {
		if copyFn != nil {
			m.copyText = copyFn
		}
	}
}
