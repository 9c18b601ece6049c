package tui

import (
	"context"
	"time"

	"github.com/hylla/vitui/internal/app"
	"github.com/hylla/vitui/internal/session"
)

// Option configures a Model.
type Option func(*Model, *[]session.MachineOption)

// WithContext sets the parent context for remote requests.
func WithContext(ctx context.Context) Option {
	return func(m *Model, _ *[]session.MachineOption) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithRequestTimeout bounds each remote request.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(m *Model, _ *[]session.MachineOption) {
		m.timeout = timeout
	}
}

// WithLogger routes request lifecycle events to logger.
func WithLogger(logger app.Logger) Option {
	return func(m *Model, _ *[]session.MachineOption) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClipboard replaces the clipboard writer used by copy-link.
func WithClipboard(write func(string) error) Option {
	return func(m *Model, _ *[]session.MachineOption) {
		if write != nil {
			m.writeClip = write
		}
	}
}

// WithLocation sets the zone used for parsed due dates.
func WithLocation(loc *time.Location) Option {
	return func(_ *Model, opts *[]session.MachineOption) {
		*opts = append(*opts, session.WithLocation(loc))
	}
}
