// Package host is the embedder-facing surface of the p2p application
// host: a background event loop that owns one transport endpoint plus a
// thin façade exposing both blocking and cooperative call shapes over a
// single command channel.
package host

import (
	"context"

	mydiaerrors "github.com/alxayo/mydia-p2p/internal/errors"
	"github.com/alxayo/mydia-p2p/internal/p2p/identity"
	"github.com/alxayo/mydia-p2p/internal/p2p/transport"
	"github.com/alxayo/mydia-p2p/internal/p2p/wire"
)

const (
	commandQueueSize = 32
	eventQueueSize   = 100
)

// Config is the closed set of options New accepts.
type Config struct {
	RelayURL    string // empty: use the transport's default relay set
	BindPort    int    // 0: random
	KeypairPath string // empty: ephemeral identity
}

// Host is the embedder-facing handle to one running event loop.
type Host struct {
	commands chan command
	events   chan Event
	nodeID   string
}

// New loads or generates the node identity, binds the transport endpoint,
// installs the process-wide log bridge, and spawns the event loop in its
// own goroutine. It returns once the endpoint is bound, before Ready has
// necessarily been delivered on Events().
func New(cfg Config) (*Host, string, error) {
	secret, err := identity.LoadOrGenerate(cfg.KeypairPath)
	if err != nil {
		return nil, "", err
	}

	endpoint, err := transport.Bind(transport.Config{
		Secret:   secret,
		BindPort: cfg.BindPort,
		RelayURL: cfg.RelayURL,
	})
	if err != nil {
		return nil, "", err
	}

	h := &Host{
		commands: make(chan command, commandQueueSize),
		events:   make(chan Event, eventQueueSize),
		nodeID:   secret.NodeID,
	}
	installLogBridge(h.events)

	l := newLoop(endpoint, cfg.RelayURL, h.commands, h.events)
	go l.run()

	return h, secret.NodeID, nil
}

// NodeID is the stable public identifier derived from this host's secret.
func (h *Host) NodeID() string { return h.nodeID }

// Events is the single channel every lifecycle, inbound-request, and log
// notification is delivered on.
func (h *Host) Events() <-chan Event { return h.events }

// Close stops accepting commands; the event loop cancels in-flight work,
// closes every registered connection and the endpoint, and closes Events().
func (h *Host) Close() {
	close(h.commands)
}

// --- blocking entry points ---

// Dial decodes address and, unless already connected to that peer,
// opens an authenticated connection to it.
func (h *Host) Dial(address string) error {
	reply := make(chan error, 1)
	h.commands <- dialCommand{address: address, reply: reply}
	return <-reply
}

// GetNodeAddr returns this host's current address blob. The endpoint is
// bound before the loop starts and the loop handles commands only after
// emitting Ready, so the result is empty only if the address cannot be
// encoded.
func (h *Host) GetNodeAddr() string {
	reply := make(chan string, 1)
	h.commands <- getNodeAddrCommand{reply: reply}
	return <-reply
}

// GetNetworkStats composes a snapshot of connected peers and their
// current path classification.
func (h *Host) GetNetworkStats() NetworkStats {
	reply := make(chan NetworkStats, 1)
	h.commands <- getNetworkStatsCommand{reply: reply}
	return <-reply
}

// SendResponse answers a previously received RequestReceived event. A
// requestID with no matching pending request is a silent no-op.
func (h *Host) SendResponse(requestID string, resp wire.Response) {
	h.commands <- sendResponseCommand{requestID: requestID, response: resp}
}

// SendHlsHeader writes the header frame of an HlsStreamRequest response.
func (h *Host) SendHlsHeader(streamID string, header wire.HlsHeaderResponse) error {
	reply := make(chan error, 1)
	h.commands <- sendHlsHeaderCommand{streamID: streamID, header: header, reply: reply}
	return <-reply
}

// SendHlsChunk writes one opaque length-prefixed chunk.
func (h *Host) SendHlsChunk(streamID string, data []byte) error {
	reply := make(chan error, 1)
	h.commands <- sendHlsChunkCommand{streamID: streamID, data: data, reply: reply}
	return <-reply
}

// FinishHlsStream writes the zero-length terminator and finishes the
// send half.
func (h *Host) FinishHlsStream(streamID string) error {
	reply := make(chan error, 1)
	h.commands <- finishHlsStreamCommand{streamID: streamID, reply: reply}
	return <-reply
}

// --- cooperative/async entry points ---

// SendRequest opens a bidirectional stream to target (a bare node id or
// an address blob), writes req, and returns the peer's decoded response.
// It honors ctx for both the command handoff and the reply wait.
func (h *Host) SendRequest(ctx context.Context, target string, req wire.Request) (wire.Response, error) {
	reply := make(chan sendRequestResult, 1)
	select {
	case h.commands <- sendRequestCommand{target: target, request: req, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SendResponseAsync is SendResponse with ctx-aware command handoff, for
// callers on a cooperative scheduler that must not block indefinitely if
// the command queue is full.
func (h *Host) SendResponseAsync(ctx context.Context, requestID string, resp wire.Response) error {
	select {
	case h.commands <- sendResponseCommand{requestID: requestID, response: resp}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HlsStreamResponse pairs the header of a server-push response with the
// channel its subsequent chunks are delivered on, closed when the stream
// finishes or fails.
type HlsStreamResponse struct {
	Header wire.HlsHeaderResponse
	Chunks <-chan []byte
}

// SendHlsRequest opens a bidirectional stream, writes req, reads and
// validates the header frame, and hands the remaining chunk sequence to a
// detached reader feeding the returned channel (capacity 16).
func (h *Host) SendHlsRequest(ctx context.Context, target string, req wire.Request) (HlsStreamResponse, error) {
	reply := make(chan hlsRequestResult, 1)
	select {
	case h.commands <- sendHlsRequestCommand{target: target, request: req, reply: reply}:
	case <-ctx.Done():
		return HlsStreamResponse{}, ctx.Err()
	}
	select {
	case r := <-reply:
		if r.err != nil {
			return HlsStreamResponse{}, r.err
		}
		return HlsStreamResponse{Header: r.header, Chunks: r.chunks}, nil
	case <-ctx.Done():
		return HlsStreamResponse{}, ctx.Err()
	}
}

// ErrString reduces err to the short human-readable form every façade
// entry point promises; embedders across a language boundary use this
// instead of Go's error type.
func ErrString(err error) string { return mydiaerrors.Reduce(err) }
