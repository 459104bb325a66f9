package host

import (
	"sync"
	"time"

	"github.com/alxayo/mydia-p2p/internal/p2p/transport"
)

// pendingRequest is a live inbound request send-half awaiting an
// embedder-supplied response, plus the timer that fires the synthetic
// timeout response.
type pendingRequest struct {
	peerID string
	stream transport.Stream
	timer  *time.Timer
}

// pendingStream is a live inbound send-half for a server-push (HlsStream)
// request, with no implicit timeout.
type pendingStream struct {
	peerID string
	stream transport.Stream
}

// pendingTables holds both inbound pending-work tables under a single
// shared mutex. Critical sections here are map operations only, never I/O;
// all are O(1) except dropRequestsForPeer, which scans the request table.
type pendingTables struct {
	mu       sync.Mutex
	requests map[string]*pendingRequest
	streams  map[string]*pendingStream
}

func newPendingTables() *pendingTables {
	return &pendingTables{
		requests: make(map[string]*pendingRequest),
		streams:  make(map[string]*pendingStream),
	}
}

func (t *pendingTables) putRequest(id string, pr *pendingRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests[id] = pr
}

// takeRequest removes and returns the pending request, stopping its timer.
// Returns ok=false if the id is unknown (already answered, timed out, or
// the peer disconnected) — callers treat that as a silent no-op.
func (t *pendingTables) takeRequest(id string) (*pendingRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pr, ok := t.requests[id]
	if !ok {
		return nil, false
	}
	delete(t.requests, id)
	if pr.timer != nil {
		pr.timer.Stop()
	}
	return pr, true
}

func (t *pendingTables) putStream(id string, ps *pendingStream) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.streams[id] = ps
}

func (t *pendingTables) getStream(id string) (*pendingStream, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ps, ok := t.streams[id]
	return ps, ok
}

func (t *pendingTables) takeStream(id string) (*pendingStream, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ps, ok := t.streams[id]
	if !ok {
		return nil, false
	}
	delete(t.streams, id)
	return ps, true
}

// dropRequestsForPeer removes (without writing anything further) every
// pending request belonging to peerID, used when a connection drops.
// Streams are left for the embedder to notice on next write.
func (t *pendingTables) dropRequestsForPeer(peerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, pr := range t.requests {
		if pr.peerID == peerID {
			if pr.timer != nil {
				pr.timer.Stop()
			}
			delete(t.requests, id)
		}
	}
}
