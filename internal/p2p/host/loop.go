package host

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	mydiaerrors "github.com/alxayo/mydia-p2p/internal/errors"
	"github.com/alxayo/mydia-p2p/internal/logger"
	"github.com/alxayo/mydia-p2p/internal/p2p/addr"
	"github.com/alxayo/mydia-p2p/internal/p2p/registry"
	"github.com/alxayo/mydia-p2p/internal/p2p/transport"
	"github.com/alxayo/mydia-p2p/internal/p2p/wire"
)

const requestTimeout = 30 * time.Second

type acceptResult struct {
	conn transport.Conn
	err  error
}

// loop is the single owner of the connection registry, the pending-work
// tables, and the transport endpoint. Exactly one goroutine
// ever calls run(); everything else reaches in only through the commands
// channel or the thread-safe registry/pending tables.
type loop struct {
	endpoint transport.Endpoint
	relayURL string

	commands <-chan command
	events   chan Event

	registry *registry.Registry
	pending  *pendingTables

	ctx    context.Context
	cancel context.CancelFunc

	requestTimeout  time.Duration
	monitorInterval time.Duration
	monitorWindow   time.Duration
}

func newLoop(endpoint transport.Endpoint, relayURL string, commands <-chan command, events chan Event) *loop {
	ctx, cancel := context.WithCancel(context.Background())
	return &loop{
		endpoint:        endpoint,
		relayURL:        relayURL,
		commands:        commands,
		events:          events,
		registry:        registry.New(),
		pending:         newPendingTables(),
		ctx:             ctx,
		cancel:          cancel,
		requestTimeout:  requestTimeout,
		monitorInterval: monitorInterval,
		monitorWindow:   monitorWindow,
	}
}

func (l *loop) run() {
	defer close(l.events)
	defer l.registry.CloseAll()
	defer l.endpoint.Close()

	nodeAddr, err := addr.Encode(l.endpoint.LocalAddress())
	if err != nil {
		logger.Logger().Error("host: failed to encode local address", "error", err)
		return
	}
	l.events <- readyEvent(nodeAddr)

	if l.relayURL != "" {
		go l.waitRelay()
	}

	acceptCh := make(chan acceptResult)
	go l.acceptLoop(acceptCh)

	for {
		select {
		case <-l.ctx.Done():
			return
		case cmd, ok := <-l.commands:
			if !ok {
				l.cancel()
				return
			}
			l.dispatch(cmd)
		case res := <-acceptCh:
			l.handleAccept(res)
		}
	}
}

func (l *loop) waitRelay() {
	ctx, cancel := context.WithTimeout(l.ctx, 30*time.Second)
	defer cancel()
	if err := l.endpoint.WaitOnline(ctx); err != nil {
		logger.Logger().Warn("host: relay did not become reachable", "error", err)
		return
	}
	select {
	case l.events <- relayConnectedEvent():
	case <-l.ctx.Done():
	}
}

func (l *loop) acceptLoop(out chan<- acceptResult) {
	for {
		conn, err := l.endpoint.Accept(l.ctx)
		select {
		case out <- acceptResult{conn: conn, err: err}:
		case <-l.ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (l *loop) handleAccept(res acceptResult) {
	if res.err != nil {
		logger.Logger().Warn("host: accept failed", "error", res.err)
		return
	}
	l.registerConn(res.conn)
}

// registerConn is the shared tail of both accept and dial: register,
// classify the initial path mix, emit Connected, and spawn the
// per-connection servicing and monitoring goroutines.
func (l *loop) registerConn(conn transport.Conn) {
	peerID := conn.PeerNodeID()
	l.registry.Register(conn)

	connType := transport.ClassifyPaths(conn.Paths())
	select {
	case l.events <- connectedEvent(peerID, connType):
	case <-l.ctx.Done():
		return
	}

	go l.serviceConnection(conn)
	go monitorPathsWith(l.ctx, peerID, conn, connType, l.events, l.monitorInterval, l.monitorWindow)
}

// serviceConnection accepts inbound bidirectional streams on conn until it
// fails, then unregisters, drops that peer's pending requests, and emits
// Disconnected.
func (l *loop) serviceConnection(conn transport.Conn) {
	peerID := conn.PeerNodeID()
	for {
		stream, err := conn.AcceptStream(l.ctx)
		if err != nil {
			l.registry.Unregister(conn)
			l.pending.dropRequestsForPeer(peerID)
			select {
			case l.events <- disconnectedEvent(peerID):
			case <-l.ctx.Done():
			}
			return
		}
		go l.serviceInboundStream(peerID, stream)
	}
}

// serviceInboundStream reads one fully-framed request off stream and
// routes it by its concrete request type: Ping answers inline, an
// HlsStreamRequest opens a pending server-push slot, and anything else
// becomes a pending request awaiting an embedder response.
func (l *loop) serviceInboundStream(peerID string, stream transport.Stream) {
	data, err := wire.ReadAll(stream, wire.MaxFrameSize)
	if err != nil {
		logger.Logger().Warn("host: failed reading inbound request", "peer", peerID, "error", err)
		_ = stream.Close()
		return
	}
	req, err := wire.DecodeRequest(data)
	if err != nil {
		logger.Logger().Warn("host: failed decoding inbound request", "peer", peerID, "error", err)
		_ = stream.Close()
		return
	}

	switch req.(type) {
	case wire.PingRequest:
		l.replyInline(stream, wire.PongResponse{})
	case wire.HlsStreamRequest:
		streamID := uuid.NewString()
		l.pending.putStream(streamID, &pendingStream{peerID: peerID, stream: stream})
		select {
		case l.events <- hlsStreamRequestEvent(peerID, req, streamID):
		case <-l.ctx.Done():
		}
	default:
		requestID := uuid.NewString()
		pr := &pendingRequest{peerID: peerID, stream: stream}
		pr.timer = time.AfterFunc(l.requestTimeout, func() { l.fireRequestTimeout(requestID) })
		l.pending.putRequest(requestID, pr)
		select {
		case l.events <- requestReceivedEvent(peerID, req, requestID):
		case <-l.ctx.Done():
		}
	}
}

func (l *loop) replyInline(stream transport.Stream, resp wire.Response) {
	data, err := wire.EncodeResponse(resp)
	if err != nil {
		logger.Logger().Warn("host: failed encoding inline response", "error", err)
		_ = stream.Close()
		return
	}
	if _, err := stream.Write(data); err != nil {
		logger.Logger().Info("host: failed writing inline response", "error", err)
		_ = stream.Close()
		return
	}
	_ = stream.CloseWrite()
}

func (l *loop) fireRequestTimeout(requestID string) {
	pr, ok := l.pending.takeRequest(requestID)
	if !ok {
		return
	}
	logger.WithRequest(logger.Logger(), requestID).Warn("host: reply slot timed out, returning synthetic timeout", "peer", pr.peerID)
	l.replyInline(pr.stream, wire.NewTimeoutResponse())
}

func (l *loop) dispatch(cmd command) {
	switch c := cmd.(type) {
	case dialCommand:
		go l.handleDial(c)
	case sendRequestCommand:
		go l.handleSendRequest(c)
	case sendResponseCommand:
		go l.handleSendResponse(c)
	case sendHlsHeaderCommand:
		go l.handleSendHlsHeader(c)
	case sendHlsChunkCommand:
		go l.handleSendHlsChunk(c)
	case finishHlsStreamCommand:
		go l.handleFinishHlsStream(c)
	case sendHlsRequestCommand:
		go l.handleSendHlsRequest(c)
	case getNodeAddrCommand:
		c.reply <- l.localAddrString()
	case getNetworkStatsCommand:
		c.reply <- l.networkStats()
	}
}

func (l *loop) localAddrString() string {
	s, err := addr.Encode(l.endpoint.LocalAddress())
	if err != nil {
		return ""
	}
	return s
}

func (l *loop) networkStats() NetworkStats {
	peers := l.registry.Peers()
	stats := NetworkStats{ConnectedPeers: len(peers), PeerTypes: make(map[string]string, len(peers))}
	for _, peerID := range peers {
		conn, ok := l.registry.Get(peerID)
		if !ok {
			continue
		}
		stats.PeerTypes[peerID] = string(transport.ClassifyPaths(conn.Paths()))
	}
	return stats
}

func (l *loop) handleDial(c dialCommand) {
	target, err := addr.Decode(c.address)
	if err != nil {
		c.reply <- err
		return
	}
	if _, ok := l.registry.Get(target.NodeID); ok {
		c.reply <- nil
		return
	}
	ctx, cancel := context.WithTimeout(l.ctx, l.requestTimeout)
	defer cancel()
	conn, err := l.endpoint.Dial(ctx, target)
	if err != nil {
		c.reply <- err
		return
	}
	l.registerConn(conn)
	c.reply <- nil
}

func (l *loop) handleSendRequest(c sendRequestCommand) {
	peerID, err := addr.NodeIDOf(c.target)
	if err != nil {
		c.reply <- sendRequestResult{err: err}
		return
	}
	conn, ok := l.registry.Get(peerID)
	if !ok {
		c.reply <- sendRequestResult{err: mydiaerrors.NewNotConnectedError(peerID)}
		return
	}
	stream, err := conn.OpenStream(l.ctx)
	if err != nil {
		c.reply <- sendRequestResult{err: mydiaerrors.NewTransportError("host.sendRequest", err)}
		return
	}
	data, err := wire.EncodeRequest(c.request)
	if err != nil {
		c.reply <- sendRequestResult{err: err}
		return
	}
	if _, err := stream.Write(data); err != nil {
		c.reply <- sendRequestResult{err: mydiaerrors.NewTransportError("host.sendRequest", err)}
		return
	}
	if err := stream.CloseWrite(); err != nil {
		c.reply <- sendRequestResult{err: mydiaerrors.NewTransportError("host.sendRequest", err)}
		return
	}
	raw, err := wire.ReadAll(stream, wire.MaxFrameSize)
	if err != nil {
		c.reply <- sendRequestResult{err: err}
		return
	}
	resp, err := wire.DecodeResponse(raw)
	if err != nil {
		c.reply <- sendRequestResult{err: err}
		return
	}
	c.reply <- sendRequestResult{resp: resp}
}

func (l *loop) handleSendResponse(c sendResponseCommand) {
	pr, ok := l.pending.takeRequest(c.requestID)
	if !ok {
		logger.WithRequest(logger.Logger(), c.requestID).Debug("host: response for unknown or already-timed-out request")
		return
	}
	l.replyInline(pr.stream, c.response)
}

func (l *loop) handleSendHlsHeader(c sendHlsHeaderCommand) {
	ps, ok := l.pending.getStream(c.streamID)
	if !ok {
		c.reply <- mydiaerrors.NewProtocolError("host.sendHlsHeader", fmt.Errorf("unknown stream id: %s", c.streamID))
		return
	}
	data, err := wire.EncodeResponse(c.header)
	if err != nil {
		c.reply <- err
		return
	}
	if err := wire.WriteFrame(ps.stream, data); err != nil {
		c.reply <- err
		return
	}
	c.reply <- nil
}

func (l *loop) handleSendHlsChunk(c sendHlsChunkCommand) {
	ps, ok := l.pending.getStream(c.streamID)
	if !ok {
		c.reply <- nil // silent no-op: counterpart may have finished/timed out
		return
	}
	if err := wire.WriteFrame(ps.stream, c.data); err != nil {
		c.reply <- err
		return
	}
	c.reply <- nil
}

func (l *loop) handleFinishHlsStream(c finishHlsStreamCommand) {
	ps, ok := l.pending.takeStream(c.streamID)
	if !ok {
		c.reply <- nil // silent no-op
		return
	}
	if err := wire.WriteTerminator(ps.stream); err != nil {
		c.reply <- err
		return
	}
	c.reply <- ps.stream.CloseWrite()
}

func (l *loop) handleSendHlsRequest(c sendHlsRequestCommand) {
	peerID, err := addr.NodeIDOf(c.target)
	if err != nil {
		c.reply <- hlsRequestResult{err: err}
		return
	}
	conn, ok := l.registry.Get(peerID)
	if !ok {
		c.reply <- hlsRequestResult{err: mydiaerrors.NewNotConnectedError(peerID)}
		return
	}
	stream, err := conn.OpenStream(l.ctx)
	if err != nil {
		c.reply <- hlsRequestResult{err: mydiaerrors.NewTransportError("host.sendHlsRequest", err)}
		return
	}
	data, err := wire.EncodeRequest(c.request)
	if err != nil {
		c.reply <- hlsRequestResult{err: err}
		return
	}
	if _, err := stream.Write(data); err != nil {
		c.reply <- hlsRequestResult{err: mydiaerrors.NewTransportError("host.sendHlsRequest", err)}
		return
	}
	if err := stream.CloseWrite(); err != nil {
		c.reply <- hlsRequestResult{err: mydiaerrors.NewTransportError("host.sendHlsRequest", err)}
		return
	}

	headerFrame, err := wire.ReadFrame(stream, wire.MaxFrameSize)
	if err != nil {
		c.reply <- hlsRequestResult{err: err}
		return
	}
	if headerFrame == nil {
		c.reply <- hlsRequestResult{err: mydiaerrors.NewProtocolError("host.sendHlsRequest", fmt.Errorf("stream closed before header"))}
		return
	}
	resp, err := wire.DecodeResponse(headerFrame)
	if err != nil {
		c.reply <- hlsRequestResult{err: err}
		return
	}
	header, ok := resp.(wire.HlsHeaderResponse)
	if !ok {
		if errResp, isErr := resp.(wire.ErrorResponse); isErr {
			c.reply <- hlsRequestResult{err: fmt.Errorf("%s", errResp.Message)}
			return
		}
		c.reply <- hlsRequestResult{err: mydiaerrors.NewProtocolError("host.sendHlsRequest", fmt.Errorf("unexpected response variant for stream header"))}
		return
	}

	chunks := make(chan []byte, 16)
	go l.pumpHlsChunks(stream, chunks)
	c.reply <- hlsRequestResult{header: header, chunks: chunks}
}

// pumpHlsChunks reads the length-prefixed chunk sequence until the zero
// terminator and pushes each chunk into chunks, blocking when the queue is
// full so a slow consumer applies backpressure all the way to the sender.
func (l *loop) pumpHlsChunks(stream transport.Stream, chunks chan<- []byte) {
	defer close(chunks)
	for {
		chunk, err := wire.ReadFrame(stream, wire.MaxChunkSize)
		if err != nil {
			logger.Logger().Info("host: hls chunk stream ended with error", "error", err)
			return
		}
		if chunk == nil {
			return
		}
		select {
		case chunks <- chunk:
		case <-l.ctx.Done():
			return
		}
	}
}
