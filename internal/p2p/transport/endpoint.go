package transport

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quic-go/quic-go"

	mydiaerrors "github.com/alxayo/mydia-p2p/internal/errors"
	"github.com/alxayo/mydia-p2p/internal/logger"
	"github.com/alxayo/mydia-p2p/internal/p2p/addr"
	"github.com/alxayo/mydia-p2p/internal/p2p/identity"
)

// Config binds one quic-go endpoint.
type Config struct {
	Secret     *identity.Secret
	BindPort   int    // 0 = random
	RelayURL   string // empty = none
	QUICConfig *quic.Config
}

type quicEndpoint struct {
	secret   *identity.Secret
	listener *quic.Listener
	relayURL string

	relayMu        sync.Mutex
	relayConn      quic.Connection
	relayConnected chan struct{}
	relayOnce      sync.Once

	closed atomic.Bool
}

// Bind opens a UDP socket on BindPort (or a random one) and starts
// accepting authenticated QUIC connections under the mydia ALPN. If a
// RelayURL is configured, the endpoint also attempts to register with it
// in the background; WaitOnline returns once registration succeeds.
func Bind(cfg Config) (Endpoint, error) {
	if cfg.Secret == nil {
		return nil, mydiaerrors.NewBindError("transport.bind", fmt.Errorf("identity secret is required"))
	}
	tlsConf, err := serverTLSConfig(cfg.Secret)
	if err != nil {
		return nil, mydiaerrors.NewBindError("transport.bind", err)
	}

	qcfg := cfg.QUICConfig
	if qcfg == nil {
		qcfg = &quic.Config{MaxIdleTimeout: 60 * time.Second, KeepAlivePeriod: 15 * time.Second}
	}

	addrStr := net.JoinHostPort("0.0.0.0", strconv.Itoa(cfg.BindPort))
	ln, err := quic.ListenAddr(addrStr, tlsConf, qcfg)
	if err != nil {
		return nil, mydiaerrors.NewBindError("transport.bind", err)
	}

	ep := &quicEndpoint{
		secret:         cfg.Secret,
		listener:       ln,
		relayURL:       cfg.RelayURL,
		relayConnected: make(chan struct{}),
	}
	if cfg.RelayURL != "" {
		go ep.connectRelay(cfg.Secret, qcfg)
	}
	return ep, nil
}

func (e *quicEndpoint) connectRelay(secret *identity.Secret, qcfg *quic.Config) {
	tlsConf, err := clientTLSConfig(secret)
	if err != nil {
		logger.Logger().Warn("transport: relay TLS setup failed", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	conn, err := quic.DialAddr(ctx, e.relayURL, tlsConf, qcfg)
	if err != nil {
		logger.Logger().Warn("transport: relay connect failed", "relay", e.relayURL, "error", err)
		return
	}
	e.relayMu.Lock()
	e.relayConn = conn
	e.relayMu.Unlock()
	e.relayOnce.Do(func() { close(e.relayConnected) })
}

func (e *quicEndpoint) Accept(ctx context.Context) (Conn, error) {
	conn, err := e.listener.Accept(ctx)
	if err != nil {
		return nil, mydiaerrors.NewTransportError("transport.accept", err)
	}
	peerID, err := peerNodeID(conn)
	if err != nil {
		_ = conn.CloseWithError(alpnMismatchCode, "alpn mismatch")
		return nil, mydiaerrors.NewProtocolError("transport.accept", err)
	}
	return &quicConn{conn: conn, peerID: peerID}, nil
}

func (e *quicEndpoint) Dial(ctx context.Context, target addr.Address) (Conn, error) {
	tlsConf, err := clientTLSConfig(e.secret)
	if err != nil {
		return nil, mydiaerrors.NewTransportError("transport.dial", err)
	}
	qcfg := &quic.Config{MaxIdleTimeout: 60 * time.Second, KeepAlivePeriod: 15 * time.Second}

	var lastErr error
	for _, hostport := range target.Direct {
		conn, err := quic.DialAddr(ctx, hostport, tlsConf, qcfg)
		if err == nil {
			return e.wrapDialed(conn, target.NodeID, PathDirect)
		}
		lastErr = err
	}

	if e.relayURL != "" {
		conn, err := quic.DialAddr(ctx, e.relayURL, tlsConf, qcfg)
		if err == nil {
			return e.wrapDialed(conn, target.NodeID, PathRelay)
		}
		lastErr = err
	}
	for _, relayURL := range target.Relays {
		conn, err := quic.DialAddr(ctx, relayURL, tlsConf, qcfg)
		if err == nil {
			return e.wrapDialed(conn, target.NodeID, PathRelay)
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no reachable address for peer %s", target.NodeID)
	}
	return nil, mydiaerrors.NewTransportError("transport.dial", lastErr)
}

func (e *quicEndpoint) wrapDialed(conn quic.Connection, expectedNodeID string, initial PathKind) (Conn, error) {
	peerID, err := peerNodeID(conn)
	if err != nil {
		_ = conn.CloseWithError(alpnMismatchCode, "alpn mismatch")
		return nil, mydiaerrors.NewProtocolError("transport.dial", err)
	}
	if expectedNodeID != "" && peerID != expectedNodeID {
		_ = conn.CloseWithError(alpnMismatchCode, "peer mismatch")
		return nil, mydiaerrors.NewProtocolError("transport.dial", fmt.Errorf("dialed %s but reached %s", expectedNodeID, peerID))
	}
	return &quicConn{conn: conn, peerID: peerID, forcedKind: initial}, nil
}

func (e *quicEndpoint) LocalAddress() addr.Address {
	a := addr.Address{NodeID: e.secret.NodeID}
	if udpAddr, ok := e.listener.Addr().(*net.UDPAddr); ok {
		a.Direct = []string{udpAddr.String()}
	}
	if e.relayURL != "" {
		a.Relays = []string{e.relayURL}
	}
	return a
}

func (e *quicEndpoint) WaitOnline(ctx context.Context) error {
	if e.relayURL == "" {
		return nil
	}
	select {
	case <-e.relayConnected:
		return nil
	case <-ctx.Done():
		return mydiaerrors.NewTimeoutError("transport.waitOnline", 30*time.Second, ctx.Err())
	}
}

func (e *quicEndpoint) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.relayMu.Lock()
	if e.relayConn != nil {
		_ = e.relayConn.CloseWithError(0, "endpoint closing")
	}
	e.relayMu.Unlock()
	return e.listener.Close()
}

// quicConn adapts quic.Connection to the Conn interface.
type quicConn struct {
	conn       quic.Connection
	peerID     string
	forcedKind PathKind
}

func (c *quicConn) PeerNodeID() string { return c.peerID }

func (c *quicConn) OpenStream(ctx context.Context) (Stream, error) {
	s, err := c.conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, mydiaerrors.NewTransportError("transport.openStream", err)
	}
	return &quicStream{s}, nil
}

func (c *quicConn) AcceptStream(ctx context.Context) (Stream, error) {
	s, err := c.conn.AcceptStream(ctx)
	if err != nil {
		return nil, mydiaerrors.NewTransportError("transport.acceptStream", err)
	}
	return &quicStream{s}, nil
}

func (c *quicConn) Paths() []Path {
	kind := c.forcedKind
	if kind == PathUnknown {
		kind = PathDirect
	}
	return []Path{{Kind: kind, Addr: c.conn.RemoteAddr().String()}}
}

func (c *quicConn) Close() error {
	return c.conn.CloseWithError(0, "closed")
}

// quicStream adapts quic.Stream to the Stream interface.
type quicStream struct {
	s quic.Stream
}

func (s *quicStream) Read(p []byte) (int, error)  { return s.s.Read(p) }
func (s *quicStream) Write(p []byte) (int, error) { return s.s.Write(p) }
func (s *quicStream) CloseWrite() error            { return s.s.Close() }
func (s *quicStream) Close() error {
	s.s.CancelRead(0)
	return s.s.Close()
}

const alpnMismatchCode quic.ApplicationErrorCode = 1

// peerNodeID derives the stable node id from the peer's certificate public
// key, the same hex-encoding identity.Secret uses.
func peerNodeID(conn quic.Connection) (string, error) {
	state := conn.ConnectionState().TLS
	if len(state.PeerCertificates) == 0 {
		return "", fmt.Errorf("peer presented no certificate")
	}
	pub, ok := state.PeerCertificates[0].PublicKey.(ed25519.PublicKey)
	if !ok {
		return "", fmt.Errorf("peer certificate is not Ed25519")
	}
	return nodeIDFromKey(pub), nil
}
