package transport

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alxayo/mydia-p2p/internal/p2p/addr"
	"github.com/alxayo/mydia-p2p/internal/p2p/identity"
)

func mustSecret(t *testing.T) *identity.Secret {
	t.Helper()
	s, err := identity.LoadOrGenerate("")
	if err != nil {
		t.Fatalf("identity.LoadOrGenerate: %v", err)
	}
	return s
}

// TestDialAcceptStreamRoundTrip exercises the real quic-go binding over
// loopback: one endpoint binds and accepts, the other dials by direct
// address and opens a stream, and a message is sent from client to server.
func TestDialAcceptStreamRoundTrip(t *testing.T) {
	serverSecret := mustSecret(t)
	clientSecret := mustSecret(t)

	server, err := Bind(Config{Secret: serverSecret, BindPort: 0})
	if err != nil {
		t.Fatalf("Bind server: %v", err)
	}
	defer server.Close()

	serverAddr := server.LocalAddress()
	if len(serverAddr.Direct) != 1 {
		t.Fatalf("expected one direct address, got %v", serverAddr.Direct)
	}

	client, err := Bind(Config{Secret: clientSecret, BindPort: 0})
	if err != nil {
		t.Fatalf("Bind client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	acceptedCh := make(chan Conn, 1)
	acceptErrCh := make(chan error, 1)
	go func() {
		c, err := server.Accept(ctx)
		if err != nil {
			acceptErrCh <- err
			return
		}
		acceptedCh <- c
	}()

	dialTarget := addr.Address{NodeID: serverSecret.NodeID, Direct: serverAddr.Direct}
	clientConn, err := client.Dial(ctx, dialTarget)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer clientConn.Close()

	if clientConn.PeerNodeID() != serverSecret.NodeID {
		t.Fatalf("peer node id mismatch: got %q want %q", clientConn.PeerNodeID(), serverSecret.NodeID)
	}

	var serverConn Conn
	select {
	case serverConn = <-acceptedCh:
	case err := <-acceptErrCh:
		t.Fatalf("Accept: %v", err)
	case <-ctx.Done():
		t.Fatalf("timed out waiting for accept")
	}
	defer serverConn.Close()

	if serverConn.PeerNodeID() != clientSecret.NodeID {
		t.Fatalf("accepted peer node id mismatch: got %q want %q", serverConn.PeerNodeID(), clientSecret.NodeID)
	}

	clientStream, err := clientConn.OpenStream(ctx)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}

	serverStreamCh := make(chan Stream, 1)
	go func() {
		s, err := serverConn.AcceptStream(ctx)
		if err != nil {
			acceptErrCh <- err
			return
		}
		serverStreamCh <- s
	}()

	payload := []byte("ping from client")
	if _, err := clientStream.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := clientStream.CloseWrite(); err != nil {
		t.Fatalf("CloseWrite: %v", err)
	}

	var serverStream Stream
	select {
	case serverStream = <-serverStreamCh:
	case err := <-acceptErrCh:
		t.Fatalf("AcceptStream: %v", err)
	case <-ctx.Done():
		t.Fatalf("timed out waiting for stream")
	}

	got, err := io.ReadAll(serverStream)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch: got %q want %q", got, payload)
	}
}

func TestClassifyPaths(t *testing.T) {
	tests := []struct {
		name  string
		paths []Path
		want  ConnectionType
	}{
		{"none", nil, ConnNone},
		{"direct only", []Path{{Kind: PathDirect}}, ConnDirect},
		{"relay only", []Path{{Kind: PathRelay}}, ConnRelay},
		{"mixed", []Path{{Kind: PathDirect}, {Kind: PathRelay}}, ConnMixed},
		{"duplicate direct", []Path{{Kind: PathDirect}, {Kind: PathDirect}}, ConnDirect},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyPaths(tc.paths); got != tc.want {
				t.Fatalf("ClassifyPaths(%v) = %v, want %v", tc.paths, got, tc.want)
			}
		})
	}
}

func TestDialUnreachableFails(t *testing.T) {
	clientSecret := mustSecret(t)
	client, err := Bind(Config{Secret: clientSecret, BindPort: 0})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err = client.Dial(ctx, addr.Address{NodeID: "nobody", Direct: []string{"127.0.0.1:1"}})
	if err == nil {
		t.Fatalf("expected dial to unreachable address to fail")
	}
}
