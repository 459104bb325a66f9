// Package registry tracks the set of live peer connections a host holds,
// keyed by peer node id.
package registry

import (
	"sync"

	"github.com/alxayo/mydia-p2p/internal/logger"
	"github.com/alxayo/mydia-p2p/internal/p2p/transport"
)

// Registry is a concurrency-safe, peer-id-keyed table of live connections.
// A second Register call for the same peer id replaces and closes the
// displaced connection rather than rejecting the new one: the newest
// connection for a peer always wins.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]transport.Conn
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{conns: make(map[string]transport.Conn)}
}

// Register stores conn under its peer node id. If a connection already
// exists for that id, it is closed and replaced.
func (r *Registry) Register(conn transport.Conn) {
	peerID := conn.PeerNodeID()

	r.mu.Lock()
	old, existed := r.conns[peerID]
	r.conns[peerID] = conn
	r.mu.Unlock()

	if existed && old != conn {
		logger.WithPeer(logger.Logger(), peerID).Info("registry: replacing existing connection")
		_ = old.Close()
	}
}

// Unregister removes conn if it is still the one on record for its peer
// id. A connection that was already displaced by a newer Register call is
// left alone, so a stale close doesn't evict the replacement.
func (r *Registry) Unregister(conn transport.Conn) {
	peerID := conn.PeerNodeID()

	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[peerID]; ok && current == conn {
		delete(r.conns, peerID)
	}
}

// Get returns the live connection for peerID, if any.
func (r *Registry) Get(peerID string) (transport.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[peerID]
	return conn, ok
}

// Len reports the number of connections currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Peers returns the node ids of all currently registered connections.
func (r *Registry) Peers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

// CloseAll closes every registered connection and empties the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]transport.Conn)
	r.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}
