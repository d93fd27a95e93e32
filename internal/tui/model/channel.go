package model

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/VoxDroid/nycschools/internal/tui/adapters"
)

// ErrDispatcherClosed is returned by UpdateChannel.Run when the UI context
// stops accepting tasks.
var ErrDispatcherClosed = errors.New("ui dispatcher closed")

// RefreshFunc receives the outcome of a refresh triggered by the channel. It
// runs on the UI context.
type RefreshFunc func(rs adapters.ResultSet, err error)

// UpdateChannel turns "data changed" signals from any goroutine into
// refreshes of a QueryBinding that run on the UI context.
//
// Signals are coalesced: at most one is pending at a time, so a burst of
// signals produces as few as one refresh. A signal that arrives after the
// pending one was taken leaves a new one pending, so at least one refresh
// always starts after the last signal.
type UpdateChannel struct {
	binding   *QueryBinding
	ui        Dispatcher
	debounce  time.Duration
	onRefresh RefreshFunc
	log       *zap.Logger

	pending chan struct{}

	signals   atomic.Uint64
	refreshes atomic.Uint64
}

// ChannelOption configures an UpdateChannel.
type ChannelOption func(*UpdateChannel)

// WithDebounce waits until no signal has arrived for d before refreshing.
func WithDebounce(d time.Duration) ChannelOption {
	return func(c *UpdateChannel) { c.debounce = d }
}

// WithRefreshHandler sets the function called on the UI context after each
// refresh.
func WithRefreshHandler(fn RefreshFunc) ChannelOption {
	return func(c *UpdateChannel) { c.onRefresh = fn }
}

// WithLogger sets the channel's logger.
func WithLogger(log *zap.Logger) ChannelOption {
	return func(c *UpdateChannel) {
		if log != nil {
			c.log = log
		}
	}
}

// NewUpdateChannel returns a channel that refreshes binding through ui.
func NewUpdateChannel(binding *QueryBinding, ui Dispatcher, opts ...ChannelOption) *UpdateChannel {
	c := &UpdateChannel{
		binding: binding,
		ui:      ui,
		log:     zap.NewNop(),
		pending: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// OnDataChanged records that the underlying data changed. It never blocks and
// is safe to call from any goroutine.
func (c *UpdateChannel) OnDataChanged() {
	c.signals.Add(1)
	select {
	case c.pending <- struct{}{}:
	default:
	}
}

// Run forwards pending signals to the UI context until ctx is done. It
// returns ErrDispatcherClosed if the UI context stops first.
func (c *UpdateChannel) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.pending:
		}
		if c.debounce > 0 {
			if err := c.settle(ctx); err != nil {
				return err
			}
		}
		if !c.ui.Dispatch(func() { c.refresh(ctx) }) {
			return ErrDispatcherClosed
		}
	}
}

// settle waits for a quiet period of c.debounce, absorbing signals that
// arrive in the meantime.
func (c *UpdateChannel) settle(ctx context.Context) error {
	t := time.NewTimer(c.debounce)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.pending:
			t.Reset(c.debounce)
		case <-t.C:
			return nil
		}
	}
}

func (c *UpdateChannel) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	rs, err := c.binding.Refresh(ctx)
	if errors.Is(err, ErrSuperseded) {
		return
	}
	c.refreshes.Add(1)
	if err != nil {
		c.log.Warn("refresh after data change failed", zap.Error(err))
	} else {
		c.log.Debug("refreshed after data change", zap.Int("schools", rs.Count()))
	}
	if c.onRefresh != nil {
		c.onRefresh(rs, err)
	}
}

// Stats returns the number of signals received and refreshes completed.
func (c *UpdateChannel) Stats() (signals, refreshes uint64) {
	return c.signals.Load(), c.refreshes.Load()
}
