// Package wire implements the deterministic binary encoding of the two
// sibling request/response sum types exchanged over a host connection, plus
// the length-prefixed framing used for server-push (HLS) streams.
package wire

// Request is implemented by every request variant. It is a closed set;
// callers type-switch on the concrete type to dispatch.
type Request interface {
	isRequest()
}

// PingRequest carries no payload; the event loop answers it inline with a
// PongResponse without ever surfacing it to the embedder.
type PingRequest struct{}

func (PingRequest) isRequest() {}

// PairingRequest is sent by a client claiming a pairing code issued
// out-of-band (e.g. scanned from a QR code).
type PairingRequest struct {
	ClaimCode  string `cbor:"1,keyasint"`
	DeviceName string `cbor:"2,keyasint"`
	DeviceType string `cbor:"3,keyasint"`
	DeviceOS   string `cbor:"4,keyasint,omitempty"`
}

func (PairingRequest) isRequest() {}

// ReadMediaRequest asks the peer for a byte range of a named file.
type ReadMediaRequest struct {
	FilePath string `cbor:"1,keyasint"`
	Offset   uint64 `cbor:"2,keyasint"`
	Length   uint32 `cbor:"3,keyasint"`
}

func (ReadMediaRequest) isRequest() {}

// GraphQLRequest carries a single GraphQL operation. Variables and the
// operation name are opaque JSON-encoded text, passed through unexamined.
type GraphQLRequest struct {
	Query         string `cbor:"1,keyasint"`
	Variables     string `cbor:"2,keyasint,omitempty"`
	OperationName string `cbor:"3,keyasint,omitempty"`
	AuthToken     string `cbor:"4,keyasint,omitempty"`
}

func (GraphQLRequest) isRequest() {}

// HlsStreamRequest is a stream-initiation request: consuming it on the
// inbound side hands the send-half to the embedder instead of routing a
// synchronous reply (see host.Event HlsStreamRequest).
type HlsStreamRequest struct {
	SessionID  string  `cbor:"1,keyasint"`
	Path       string  `cbor:"2,keyasint"`
	RangeStart *uint64 `cbor:"3,keyasint,omitempty"`
	RangeEnd   *uint64 `cbor:"4,keyasint,omitempty"`
	AuthToken  string  `cbor:"5,keyasint,omitempty"`
}

func (HlsStreamRequest) isRequest() {}

// BlobDownloadRequest asks the peer to resolve a previously issued job id
// into a download ticket. The ticket itself is an opaque string; the core
// never interprets it.
type BlobDownloadRequest struct {
	JobID     string `cbor:"1,keyasint"`
	AuthToken string `cbor:"2,keyasint,omitempty"`
}

func (BlobDownloadRequest) isRequest() {}

// CustomRequest is an opaque pass-through payload. The core neither produces
// nor consumes these; they exist so an embedder-defined protocol extension
// can ride the same transport without a core release.
type CustomRequest struct {
	Data []byte `cbor:"1,keyasint"`
}

func (CustomRequest) isRequest() {}

// Response is implemented by every response variant.
type Response interface {
	isResponse()
}

// PongResponse answers PingRequest.
type PongResponse struct{}

func (PongResponse) isResponse() {}

// PairingResponse answers PairingRequest. On failure Success is false and
// Error carries a short message; on success the token fields are populated
// as applicable and DirectURLs may list endpoint candidates for the caller
// to try directly.
type PairingResponse struct {
	Success     bool     `cbor:"1,keyasint"`
	MediaToken  string   `cbor:"2,keyasint,omitempty"`
	AccessToken string   `cbor:"3,keyasint,omitempty"`
	DeviceToken string   `cbor:"4,keyasint,omitempty"`
	Error       string   `cbor:"5,keyasint,omitempty"`
	DirectURLs  []string `cbor:"6,keyasint,omitempty"`
}

func (PairingResponse) isResponse() {}

// MediaChunkResponse carries one opaque byte range from ReadMediaRequest.
type MediaChunkResponse struct {
	Data []byte `cbor:"1,keyasint"`
}

func (MediaChunkResponse) isResponse() {}

// GraphQLResponse carries the raw JSON `data` and `errors` members of a
// GraphQL execution result, passed through unexamined.
type GraphQLResponse struct {
	Data   []byte `cbor:"1,keyasint,omitempty"`
	Errors []byte `cbor:"2,keyasint,omitempty"`
}

func (GraphQLResponse) isResponse() {}

// HlsHeaderResponse is the first frame written on an HLS server-push
// stream, describing the byte range that follows.
type HlsHeaderResponse struct {
	Status        uint16 `cbor:"1,keyasint"`
	ContentType   string `cbor:"2,keyasint"`
	ContentLength uint64 `cbor:"3,keyasint"`
	ContentRange  string `cbor:"4,keyasint,omitempty"`
	CacheControl  string `cbor:"5,keyasint,omitempty"`
}

func (HlsHeaderResponse) isResponse() {}

// BlobDownloadResponse answers BlobDownloadRequest.
type BlobDownloadResponse struct {
	Success  bool   `cbor:"1,keyasint"`
	Ticket   string `cbor:"2,keyasint,omitempty"`
	Filename string `cbor:"3,keyasint,omitempty"`
	FileSize uint64 `cbor:"4,keyasint,omitempty"`
	Error    string `cbor:"5,keyasint,omitempty"`
}

func (BlobDownloadResponse) isResponse() {}

// CustomResponse mirrors CustomRequest: opaque pass-through bytes.
type CustomResponse struct {
	Data []byte `cbor:"1,keyasint"`
}

func (CustomResponse) isResponse() {}

// ErrorResponse is returned in place of any response variant when a
// request could not be fulfilled, including the synthetic
// "Request timeout" response (see host package).
type ErrorResponse struct {
	Message string `cbor:"1,keyasint"`
}

func (ErrorResponse) isResponse() {}

// NewTimeoutResponse builds the synthetic response sent to a remote peer
// whose request was never answered by the embedder within the deadline.
func NewTimeoutResponse() Response {
	return ErrorResponse{Message: "Request timeout"}
}
