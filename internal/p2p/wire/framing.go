package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/alxayo/mydia-p2p/internal/bufpool"
	mydiaerrors "github.com/alxayo/mydia-p2p/internal/errors"
)

// MaxFrameSize bounds a single-shot request or response frame: large
// enough for any realistic control message, small enough to cap
// allocation from an untrusted peer.
const MaxFrameSize = 64 * 1024

// MaxChunkSize bounds one server-push chunk: a local implementation
// detail, not negotiated on the wire, that keeps the client side's chunk
// queue (capacity 16, see host package) bounded in memory.
const MaxChunkSize = 1 << 20

// lenPrefixSize is the width of the big-endian length prefix used by the
// server-push frame format.
const lenPrefixSize = 4

// WriteFrame writes a length-prefixed frame: a 4-byte big-endian length
// followed by payload. A zero-length payload is reserved for the stream
// terminator and must never be passed here for a real chunk/header.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 {
		return mydiaerrors.NewProtocolError("wire.writeFrame", fmt.Errorf("refusing to write a zero-length frame"))
	}
	var hdr [lenPrefixSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return mydiaerrors.NewTransportError("wire.writeFrame", err)
	}
	if _, err := w.Write(payload); err != nil {
		return mydiaerrors.NewTransportError("wire.writeFrame", err)
	}
	return nil
}

// WriteTerminator writes the four-byte zero length that ends a server-push
// stream.
func WriteTerminator(w io.Writer) error {
	var hdr [lenPrefixSize]byte
	if _, err := w.Write(hdr[:]); err != nil {
		return mydiaerrors.NewTransportError("wire.writeTerminator", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame, enforcing limit on the payload
// size. It returns (nil, nil) when the frame read is the zero-length
// terminator, so callers can distinguish "clean end of stream" from a
// transport error.
func ReadFrame(r io.Reader, limit int) ([]byte, error) {
	var hdr [lenPrefixSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, mydiaerrors.NewTransportError("wire.readFrame", err)
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n == 0 {
		return nil, nil
	}
	if int(n) > limit {
		return nil, mydiaerrors.NewDecodeError("wire.readFrame", fmt.Errorf("frame of %d bytes exceeds limit %d", n, limit))
	}
	scratch := bufpool.Get(int(n))
	defer bufpool.Put(scratch)
	if _, err := io.ReadFull(r, scratch); err != nil {
		return nil, mydiaerrors.NewTransportError("wire.readFrame", err)
	}
	buf := make([]byte, n)
	copy(buf, scratch)
	return buf, nil
}

// ReadAll reads the full remaining contents of r up to limit+1 bytes,
// failing if more than limit bytes are present. This backs the single-shot
// request/response read path, which has no length prefix of its own — the
// transport's stream-finish signals the end. The read itself lands in a
// pooled scratch buffer; only the correctly-sized copy handed back to the
// caller escapes the pool.
func ReadAll(r io.Reader, limit int) ([]byte, error) {
	scratch := bufpool.Get(limit + 1)
	defer bufpool.Put(scratch)
	n, err := io.ReadFull(r, scratch)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, mydiaerrors.NewTransportError("wire.readAll", err)
	}
	if n > limit {
		return nil, mydiaerrors.NewDecodeError("wire.readAll", fmt.Errorf("message exceeds %d bytes", limit))
	}
	buf := make([]byte, n)
	copy(buf, scratch[:n])
	return buf, nil
}
