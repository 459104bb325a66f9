// Package addr implements the self-describing textual endpoint address
// blob: a node id plus zero or more direct socket addresses and relay
// URLs, round-tripped through an opaque JSON-shaped string.
package addr

import (
	"encoding/json"
	"strings"

	mydiaerrors "github.com/alxayo/mydia-p2p/internal/errors"
)

// Address is the decoded form of an endpoint contact descriptor.
type Address struct {
	NodeID string   `json:"node_id"`
	Direct []string `json:"direct,omitempty"`
	Relays []string `json:"relays,omitempty"`
}

// wireAddress is the JSON-shaped textual form. Kept distinct from Address
// so the public API can evolve independently of the wire tags.
type wireAddress struct {
	V      int      `json:"v"`
	NodeID string   `json:"node_id"`
	Direct []string `json:"direct,omitempty"`
	Relays []string `json:"relays,omitempty"`
}

const currentVersion = 1

// Encode serializes addr to its textual blob form. The result always uses
// the full JSON shape; bare node-id strings are only ever something Decode
// accepts for backward compatibility, never something Encode produces.
func Encode(a Address) (string, error) {
	w := wireAddress{V: currentVersion, NodeID: a.NodeID, Direct: a.Direct, Relays: a.Relays}
	data, err := json.Marshal(w)
	if err != nil {
		return "", mydiaerrors.NewDecodeError("addr.encode", err)
	}
	return string(data), nil
}

// Decode parses either the full JSON blob form or, for backward
// compatibility, a bare node-id string. It detects which by sniffing the
// first non-space byte for '{'.
func Decode(s string) (Address, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Address{}, mydiaerrors.NewDecodeError("addr.decode", errEmptyAddress)
	}
	if trimmed[0] != '{' {
		return Address{NodeID: trimmed}, nil
	}
	var w wireAddress
	if err := json.Unmarshal([]byte(trimmed), &w); err != nil {
		return Address{}, mydiaerrors.NewDecodeError("addr.decode", err)
	}
	if w.NodeID == "" {
		return Address{}, mydiaerrors.NewDecodeError("addr.decode", errMissingNodeID)
	}
	return Address{NodeID: w.NodeID, Direct: w.Direct, Relays: w.Relays}, nil
}

// IsBlob reports whether s looks like the full blob form rather than a bare
// node id, per the same leading-'{' sniff Decode uses. The event loop uses
// this to project a send-request target argument to a node id without a
// full decode.
func IsBlob(s string) bool {
	trimmed := strings.TrimSpace(s)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// NodeIDOf extracts the target node id from either address shape. Kept as
// the single "sniff the first byte" projection so callers never duplicate
// the blob-vs-bare-id check.
func NodeIDOf(s string) (string, error) {
	if !IsBlob(s) {
		return strings.TrimSpace(s), nil
	}
	a, err := Decode(s)
	if err != nil {
		return "", err
	}
	return a.NodeID, nil
}

var (
	errEmptyAddress  = decodeErr("empty address string")
	errMissingNodeID = decodeErr("address blob missing node_id")
)

type decodeErr string

func (e decodeErr) Error() string { return string(e) }
