package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	mydiaerrors "github.com/alxayo/mydia-p2p/internal/errors"
)

// requestTag/responseTag identify the concrete variant inside the envelope.
// The numeric values are part of the wire format and must never be reused
// for a different variant once shipped.
type requestTag uint8

const (
	tagPing requestTag = iota
	tagPairing
	tagReadMedia
	tagGraphQL
	tagHlsStream
	tagBlobDownload
	tagCustomRequest
)

type responseTag uint8

const (
	tagPong responseTag = iota
	tagPairingResponse
	tagMediaChunk
	tagGraphQLResponse
	tagHlsHeader
	tagBlobDownloadResponse
	tagCustomResponse
	tagError
)

// envelope is the on-wire shape for both sum types: a small integer tag
// followed by the CBOR encoding of the concrete variant, packed as a
// 2-element array rather than a map to keep single-shot frames small.
type envelope struct {
	_     struct{} `cbor:",toarray"`
	Tag   uint8
	Value cbor.RawMessage
}

var encMode = func() cbor.EncMode {
	m, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return m
}()

func requestTagOf(r Request) (requestTag, error) {
	switch r.(type) {
	case PingRequest:
		return tagPing, nil
	case PairingRequest:
		return tagPairing, nil
	case ReadMediaRequest:
		return tagReadMedia, nil
	case GraphQLRequest:
		return tagGraphQL, nil
	case HlsStreamRequest:
		return tagHlsStream, nil
	case BlobDownloadRequest:
		return tagBlobDownload, nil
	case CustomRequest:
		return tagCustomRequest, nil
	default:
		return 0, fmt.Errorf("unknown request type %T", r)
	}
}

func responseTagOf(r Response) (responseTag, error) {
	switch r.(type) {
	case PongResponse:
		return tagPong, nil
	case PairingResponse:
		return tagPairingResponse, nil
	case MediaChunkResponse:
		return tagMediaChunk, nil
	case GraphQLResponse:
		return tagGraphQLResponse, nil
	case HlsHeaderResponse:
		return tagHlsHeader, nil
	case BlobDownloadResponse:
		return tagBlobDownloadResponse, nil
	case CustomResponse:
		return tagCustomResponse, nil
	case ErrorResponse:
		return tagError, nil
	default:
		return 0, fmt.Errorf("unknown response type %T", r)
	}
}

// EncodeRequest serializes a request variant to its wire form.
func EncodeRequest(r Request) ([]byte, error) {
	tag, err := requestTagOf(r)
	if err != nil {
		return nil, mydiaerrors.NewDecodeError("wire.encodeRequest", err)
	}
	raw, err := encMode.Marshal(r)
	if err != nil {
		return nil, mydiaerrors.NewDecodeError("wire.encodeRequest", err)
	}
	out, err := encMode.Marshal(envelope{Tag: uint8(tag), Value: raw})
	if err != nil {
		return nil, mydiaerrors.NewDecodeError("wire.encodeRequest", err)
	}
	if len(out) > MaxFrameSize {
		return nil, mydiaerrors.NewDecodeError("wire.encodeRequest", fmt.Errorf("encoded request exceeds %d bytes", MaxFrameSize))
	}
	return out, nil
}

// DecodeRequest parses a request variant from its wire form.
func DecodeRequest(data []byte) (Request, error) {
	if len(data) > MaxFrameSize {
		return nil, mydiaerrors.NewDecodeError("wire.decodeRequest", fmt.Errorf("frame exceeds %d bytes", MaxFrameSize))
	}
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, mydiaerrors.NewDecodeError("wire.decodeRequest", err)
	}
	switch requestTag(env.Tag) {
	case tagPing:
		var v PingRequest
		return v, unmarshalInto(env.Value, &v)
	case tagPairing:
		var v PairingRequest
		return v, unmarshalInto(env.Value, &v)
	case tagReadMedia:
		var v ReadMediaRequest
		return v, unmarshalInto(env.Value, &v)
	case tagGraphQL:
		var v GraphQLRequest
		return v, unmarshalInto(env.Value, &v)
	case tagHlsStream:
		var v HlsStreamRequest
		return v, unmarshalInto(env.Value, &v)
	case tagBlobDownload:
		var v BlobDownloadRequest
		return v, unmarshalInto(env.Value, &v)
	case tagCustomRequest:
		var v CustomRequest
		return v, unmarshalInto(env.Value, &v)
	default:
		return nil, mydiaerrors.NewDecodeError("wire.decodeRequest", fmt.Errorf("unknown request tag %d", env.Tag))
	}
}

// EncodeResponse serializes a response variant to its wire form.
func EncodeResponse(r Response) ([]byte, error) {
	tag, err := responseTagOf(r)
	if err != nil {
		return nil, mydiaerrors.NewDecodeError("wire.encodeResponse", err)
	}
	raw, err := encMode.Marshal(r)
	if err != nil {
		return nil, mydiaerrors.NewDecodeError("wire.encodeResponse", err)
	}
	out, err := encMode.Marshal(envelope{Tag: uint8(tag), Value: raw})
	if err != nil {
		return nil, mydiaerrors.NewDecodeError("wire.encodeResponse", err)
	}
	if len(out) > MaxFrameSize {
		return nil, mydiaerrors.NewDecodeError("wire.encodeResponse", fmt.Errorf("encoded response exceeds %d bytes", MaxFrameSize))
	}
	return out, nil
}

// DecodeResponse parses a response variant from its wire form.
func DecodeResponse(data []byte) (Response, error) {
	if len(data) > MaxFrameSize {
		return nil, mydiaerrors.NewDecodeError("wire.decodeResponse", fmt.Errorf("frame exceeds %d bytes", MaxFrameSize))
	}
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, mydiaerrors.NewDecodeError("wire.decodeResponse", err)
	}
	switch responseTag(env.Tag) {
	case tagPong:
		var v PongResponse
		return v, unmarshalInto(env.Value, &v)
	case tagPairingResponse:
		var v PairingResponse
		return v, unmarshalInto(env.Value, &v)
	case tagMediaChunk:
		var v MediaChunkResponse
		return v, unmarshalInto(env.Value, &v)
	case tagGraphQLResponse:
		var v GraphQLResponse
		return v, unmarshalInto(env.Value, &v)
	case tagHlsHeader:
		var v HlsHeaderResponse
		return v, unmarshalInto(env.Value, &v)
	case tagBlobDownloadResponse:
		var v BlobDownloadResponse
		return v, unmarshalInto(env.Value, &v)
	case tagCustomResponse:
		var v CustomResponse
		return v, unmarshalInto(env.Value, &v)
	case tagError:
		var v ErrorResponse
		return v, unmarshalInto(env.Value, &v)
	default:
		return nil, mydiaerrors.NewDecodeError("wire.decodeResponse", fmt.Errorf("unknown response tag %d", env.Tag))
	}
}

func unmarshalInto(raw cbor.RawMessage, out any) error {
	if err := cbor.Unmarshal(raw, out); err != nil {
		return mydiaerrors.NewDecodeError("wire.decodeVariant", err)
	}
	return nil
}
