package host

import (
	"context"
	"time"

	"github.com/alxayo/mydia-p2p/internal/p2p/transport"
)

const (
	monitorInterval = 5 * time.Second
	monitorWindow   = 2 * time.Minute
)

// monitorPathsWith polls conn's path list every interval for up to window,
// emitting ConnectionTypeChanged only when the derived connection type
// changes from the last observation. It stops as soon as Direct is observed
// or the window elapses — purely observational, it never closes or
// otherwise touches conn. loop.go always calls this with monitorInterval/
// monitorWindow in production and shorter durations in tests.
func monitorPathsWith(ctx context.Context, peerID string, conn transport.Conn, last transport.ConnectionType, events chan<- Event, interval, window time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(window)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
			current := transport.ClassifyPaths(conn.Paths())
			if current != last {
				last = current
				select {
				case events <- connectionTypeChangedEvent(peerID, current):
				case <-ctx.Done():
					return
				}
			}
			if current == transport.ConnDirect {
				return
			}
		}
	}
}
