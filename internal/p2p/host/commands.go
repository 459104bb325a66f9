package host

import "github.com/alxayo/mydia-p2p/internal/p2p/wire"

// command is the closed tagged union of operations the façade can submit
// to the event loop over the commands channel. Each concrete type carries
// its own reply channel, or none for fire-and-forget commands.
type command interface{ isCommand() }

type dialCommand struct {
	address string
	reply   chan error
}

func (dialCommand) isCommand() {}

type sendRequestResult struct {
	resp wire.Response
	err  error
}

type sendRequestCommand struct {
	target  string // bare node id or address blob
	request wire.Request
	reply   chan sendRequestResult
}

func (sendRequestCommand) isCommand() {}

// sendResponseCommand has no reply: it is a no-op if requestID is unknown.
type sendResponseCommand struct {
	requestID string
	response  wire.Response
}

func (sendResponseCommand) isCommand() {}

type sendHlsHeaderCommand struct {
	streamID string
	header   wire.HlsHeaderResponse
	reply    chan error
}

func (sendHlsHeaderCommand) isCommand() {}

type sendHlsChunkCommand struct {
	streamID string
	data     []byte
	reply    chan error
}

func (sendHlsChunkCommand) isCommand() {}

type finishHlsStreamCommand struct {
	streamID string
	reply    chan error
}

func (finishHlsStreamCommand) isCommand() {}

type hlsRequestResult struct {
	header wire.HlsHeaderResponse
	chunks <-chan []byte
	err    error
}

type sendHlsRequestCommand struct {
	target  string
	request wire.Request
	reply   chan hlsRequestResult
}

func (sendHlsRequestCommand) isCommand() {}

type getNodeAddrCommand struct {
	reply chan string
}

func (getNodeAddrCommand) isCommand() {}

// NetworkStats is the snapshot composed by GetNetworkStats.
type NetworkStats struct {
	ConnectedPeers int
	PeerTypes      map[string]string // peer id -> connection type string
}

type getNetworkStatsCommand struct {
	reply chan NetworkStats
}

func (getNetworkStatsCommand) isCommand() {}
