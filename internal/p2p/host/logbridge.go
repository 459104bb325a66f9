package host

import (
	"context"
	"log/slog"
	"sync"
)

// installLogBridge wraps slog's process-wide default handler (slog.Default)
// so every record logged through it is also delivered on the given events
// channel, once per process. Every subsequent Host's call to this
// function is a no-op: the first installer keeps the sink, so later hosts
// share the same sink and embedders should not rely on per-host isolation
// of log events. Records written through internal/logger's global logger,
// which the event loop and the transport use, do not pass through
// slog.Default and are not forwarded.
var (
	bridgeOnce sync.Once
)

func installLogBridge(events chan<- Event) {
	bridgeOnce.Do(func() {
		inner := slog.Default().Handler()
		slog.SetDefault(slog.New(&bridgeHandler{inner: inner, events: events}))
	})
}

// bridgeHandler forwards every record it handles to events as a Log event
// via a non-blocking send — a full channel drops the record rather than
// stalling whatever goroutine is logging.
type bridgeHandler struct {
	inner  slog.Handler
	events chan<- Event
}

func (h *bridgeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *bridgeHandler) Handle(ctx context.Context, r slog.Record) error {
	select {
	case h.events <- logEvent(r.Level.String(), "mydia-p2p", r.Message):
	default:
	}
	return h.inner.Handle(ctx, r)
}

func (h *bridgeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &bridgeHandler{inner: h.inner.WithAttrs(attrs), events: h.events}
}

func (h *bridgeHandler) WithGroup(name string) slog.Handler {
	return &bridgeHandler{inner: h.inner.WithGroup(name), events: h.events}
}
