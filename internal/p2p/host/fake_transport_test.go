package host

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/alxayo/mydia-p2p/internal/p2p/addr"
	"github.com/alxayo/mydia-p2p/internal/p2p/transport"
)

// fakeEndpoint is an in-memory transport.Endpoint double, following the same
// interface-plus-factory-closure pattern used elsewhere in this codebase for
// swapping a real network client behind a test double: it satisfies the same
// seam real quic-go does so the loop's correlation/pending-table/monitor
// logic can be tested without sockets.
type fakeEndpoint struct {
	nodeID   string
	incoming chan transport.Conn
	peer     *fakeEndpoint
	closed   atomic.Bool
}

func newFakeEndpointPair(idA, idB string) (*fakeEndpoint, *fakeEndpoint) {
	a := &fakeEndpoint{nodeID: idA, incoming: make(chan transport.Conn, 8)}
	b := &fakeEndpoint{nodeID: idB, incoming: make(chan transport.Conn, 8)}
	a.peer = b
	b.peer = a
	return a, b
}

func (e *fakeEndpoint) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case c := <-e.incoming:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *fakeEndpoint) Dial(ctx context.Context, target addr.Address) (transport.Conn, error) {
	if e.peer == nil || target.NodeID != e.peer.nodeID {
		return nil, fmt.Errorf("fake transport: no route to %s", target.NodeID)
	}
	clientSide, serverSide := newFakeConnPair(e.nodeID, e.peer.nodeID)
	select {
	case e.peer.incoming <- serverSide:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return clientSide, nil
}

func (e *fakeEndpoint) LocalAddress() addr.Address { return addr.Address{NodeID: e.nodeID} }

func (e *fakeEndpoint) WaitOnline(ctx context.Context) error { return nil }

func (e *fakeEndpoint) Close() error {
	e.closed.Store(true)
	return nil
}

// fakeConn is one side of an in-memory connection. OpenStream on one side
// delivers the paired stream's server half to the other side's
// AcceptStream.
type fakeConn struct {
	localID, remoteID string
	acceptCh          chan transport.Stream
	openTarget        chan<- transport.Stream
	pathKind          transport.PathKind
}

func newFakeConnPair(aID, bID string) (*fakeConn, *fakeConn) {
	aAccept := make(chan transport.Stream, 16)
	bAccept := make(chan transport.Stream, 16)
	a := &fakeConn{localID: aID, remoteID: bID, acceptCh: aAccept, openTarget: bAccept, pathKind: transport.PathDirect}
	b := &fakeConn{localID: bID, remoteID: aID, acceptCh: bAccept, openTarget: aAccept, pathKind: transport.PathDirect}
	return a, b
}

func (c *fakeConn) PeerNodeID() string { return c.remoteID }

func (c *fakeConn) OpenStream(ctx context.Context) (transport.Stream, error) {
	client, server := newFakeStreamPair()
	select {
	case c.openTarget <- server:
		return client, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) AcceptStream(ctx context.Context) (transport.Stream, error) {
	select {
	case s := <-c.acceptCh:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Paths() []transport.Path {
	return []transport.Path{{Kind: c.pathKind, Addr: "fake:" + c.localID}}
}

func (c *fakeConn) Close() error { return nil }

// fakeStream is a bidirectional in-memory stream backed by two pipes.
type fakeStream struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func newFakeStreamPair() (client *fakeStream, server *fakeStream) {
	clientToServerR, clientToServerW := io.Pipe()
	serverToClientR, serverToClientW := io.Pipe()
	client = &fakeStream{r: serverToClientR, w: clientToServerW}
	server = &fakeStream{r: clientToServerR, w: serverToClientW}
	return client, server
}

func (s *fakeStream) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s *fakeStream) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s *fakeStream) CloseWrite() error           { return s.w.Close() }
func (s *fakeStream) Close() error {
	_ = s.w.Close()
	_ = s.r.Close()
	return nil
}
