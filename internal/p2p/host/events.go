package host

import (
	"fmt"

	"github.com/alxayo/mydia-p2p/internal/p2p/transport"
	"github.com/alxayo/mydia-p2p/internal/p2p/wire"
)

// EventType tags the closed set of events a Host can emit.
type EventType int

const (
	EventReady EventType = iota
	EventRelayConnected
	EventConnected
	EventConnectionTypeChanged
	EventDisconnected
	EventRequestReceived
	EventHlsStreamRequest
	EventLog
)

func (t EventType) String() string {
	switch t {
	case EventReady:
		return "Ready"
	case EventRelayConnected:
		return "RelayConnected"
	case EventConnected:
		return "Connected"
	case EventConnectionTypeChanged:
		return "ConnectionTypeChanged"
	case EventDisconnected:
		return "Disconnected"
	case EventRequestReceived:
		return "RequestReceived"
	case EventHlsStreamRequest:
		return "HlsStreamRequest"
	case EventLog:
		return "Log"
	default:
		return "Unknown"
	}
}

// Event is one notification the event loop delivers to the embedder over
// the events channel. Only the fields relevant to Type are populated.
type Event struct {
	Type EventType

	NodeAddr string // Ready

	PeerID         string             // Connected, ConnectionTypeChanged, Disconnected, RequestReceived, HlsStreamRequest
	ConnectionType transport.ConnectionType // Connected, ConnectionTypeChanged

	Request   wire.Request // RequestReceived, HlsStreamRequest
	RequestID string       // RequestReceived
	StreamID  string       // HlsStreamRequest

	LogLevel   string // Log
	LogTarget  string // Log
	LogMessage string // Log
}

func (e Event) String() string {
	switch e.Type {
	case EventReady:
		return fmt.Sprintf("Ready{node_addr=%s}", e.NodeAddr)
	case EventRelayConnected:
		return "RelayConnected"
	case EventConnected:
		return fmt.Sprintf("Connected{peer=%s, type=%s}", e.PeerID, e.ConnectionType)
	case EventConnectionTypeChanged:
		return fmt.Sprintf("ConnectionTypeChanged{peer=%s, type=%s}", e.PeerID, e.ConnectionType)
	case EventDisconnected:
		return fmt.Sprintf("Disconnected{peer=%s}", e.PeerID)
	case EventRequestReceived:
		return fmt.Sprintf("RequestReceived{peer=%s, request_id=%s}", e.PeerID, e.RequestID)
	case EventHlsStreamRequest:
		return fmt.Sprintf("HlsStreamRequest{peer=%s, stream_id=%s}", e.PeerID, e.StreamID)
	case EventLog:
		return fmt.Sprintf("Log{level=%s, target=%s, message=%s}", e.LogLevel, e.LogTarget, e.LogMessage)
	default:
		return "Event{unknown}"
	}
}

func readyEvent(nodeAddr string) Event { return Event{Type: EventReady, NodeAddr: nodeAddr} }

func relayConnectedEvent() Event { return Event{Type: EventRelayConnected} }

func connectedEvent(peerID string, ct transport.ConnectionType) Event {
	return Event{Type: EventConnected, PeerID: peerID, ConnectionType: ct}
}

func connectionTypeChangedEvent(peerID string, ct transport.ConnectionType) Event {
	return Event{Type: EventConnectionTypeChanged, PeerID: peerID, ConnectionType: ct}
}

func disconnectedEvent(peerID string) Event {
	return Event{Type: EventDisconnected, PeerID: peerID}
}

func requestReceivedEvent(peerID string, req wire.Request, requestID string) Event {
	return Event{Type: EventRequestReceived, PeerID: peerID, Request: req, RequestID: requestID}
}

func hlsStreamRequestEvent(peerID string, req wire.Request, streamID string) Event {
	return Event{Type: EventHlsStreamRequest, PeerID: peerID, Request: req, StreamID: streamID}
}

func logEvent(level, target, message string) Event {
	return Event{Type: EventLog, LogLevel: level, LogTarget: target, LogMessage: message}
}
