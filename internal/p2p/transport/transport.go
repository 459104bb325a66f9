// Package transport defines the seam between the event loop and the
// authenticated QUIC-style transport used as an external collaborator:
// binding an endpoint, accepting/dialing bidirectional streams, and
// enumerating a connection's paths (direct vs relay). The quic-go-backed
// implementation lives in endpoint.go; host package tests substitute an
// in-memory fake behind the same interfaces.
package transport

import (
	"context"
	"io"

	"github.com/alxayo/mydia-p2p/internal/p2p/addr"
)

// ALPN is the single application protocol identifier negotiated on every
// connection.
const ALPN = "/mydia/1.0.0"

// PathKind classifies one route within a Conn.
type PathKind int

const (
	PathUnknown PathKind = iota
	PathDirect
	PathRelay
)

// Path is one concrete byte-carrying route of a Conn.
type Path struct {
	Kind PathKind
	Addr string
}

// ConnectionType is the host-facing classification derived from a Conn's
// current Paths().
type ConnectionType string

const (
	ConnDirect ConnectionType = "direct"
	ConnRelay  ConnectionType = "relay"
	ConnMixed  ConnectionType = "mixed"
	ConnNone   ConnectionType = "none"
)

// ClassifyPaths reduces a connection's concrete paths to one of four
// host-facing classifications: direct, relay, mixed, or none.
func ClassifyPaths(paths []Path) ConnectionType {
	var hasDirect, hasRelay bool
	for _, p := range paths {
		switch p.Kind {
		case PathDirect:
			hasDirect = true
		case PathRelay:
			hasRelay = true
		}
	}
	switch {
	case hasDirect && hasRelay:
		return ConnMixed
	case hasDirect:
		return ConnDirect
	case hasRelay:
		return ConnRelay
	default:
		return ConnNone
	}
}

// Stream is one bidirectional QUIC stream.
type Stream interface {
	io.Reader
	io.Writer
	// CloseWrite finishes the send half without affecting the receive half.
	CloseWrite() error
	// Close tears down both halves immediately (used on error paths).
	Close() error
}

// Conn is a live, authenticated connection to one peer.
type Conn interface {
	// PeerNodeID is the remote peer's stable node identifier, derived
	// from its transport-layer identity.
	PeerNodeID() string
	OpenStream(ctx context.Context) (Stream, error)
	AcceptStream(ctx context.Context) (Stream, error)
	Paths() []Path
	Close() error
}

// Endpoint is the local binding that owns a secret key and can accept and
// dial authenticated connections.
type Endpoint interface {
	Accept(ctx context.Context) (Conn, error)
	Dial(ctx context.Context, target addr.Address) (Conn, error)
	LocalAddress() addr.Address
	// WaitOnline blocks until a relay has accepted the endpoint, or ctx
	// is done. It is a no-op success if no relay is configured.
	WaitOnline(ctx context.Context) error
	Close() error
}
