package addr

import "testing"

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		a    Address
	}{
		{"empty", Address{NodeID: "abc123"}},
		{"direct_only", Address{NodeID: "abc123", Direct: []string{"1.2.3.4:4242"}}},
		{"relay_only", Address{NodeID: "abc123", Relays: []string{"https://relay.example/"}}},
		{"both", Address{NodeID: "abc123", Direct: []string{"1.2.3.4:4242", "[::1]:4242"}, Relays: []string{"https://relay.example/"}}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			blob, err := Encode(tc.a)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Decode(blob)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.NodeID != tc.a.NodeID {
				t.Fatalf("node id mismatch: got %q want %q", got.NodeID, tc.a.NodeID)
			}
			if len(got.Direct) != len(tc.a.Direct) {
				t.Fatalf("direct addr count mismatch: got %d want %d", len(got.Direct), len(tc.a.Direct))
			}
			if len(got.Relays) != len(tc.a.Relays) {
				t.Fatalf("relay count mismatch: got %d want %d", len(got.Relays), len(tc.a.Relays))
			}
		})
	}
}

func TestDecodeBareNodeID(t *testing.T) {
	got, err := Decode("abc123")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.NodeID != "abc123" || len(got.Direct) != 0 || len(got.Relays) != 0 {
		t.Fatalf("unexpected address from bare node id: %+v", got)
	}
}

func TestDecodeRejectsMalformedBlob(t *testing.T) {
	if _, err := Decode("{not json"); err == nil {
		t.Fatalf("expected error decoding malformed blob")
	}
	if _, err := Decode("{}"); err == nil {
		t.Fatalf("expected error decoding blob without node_id")
	}
	if _, err := Decode(""); err == nil {
		t.Fatalf("expected error decoding empty string")
	}
}

func TestIsBlobAndNodeIDOf(t *testing.T) {
	if IsBlob("abc123") {
		t.Fatalf("bare node id should not be detected as blob")
	}
	blob, _ := Encode(Address{NodeID: "n1", Direct: []string{"1.2.3.4:1"}})
	if !IsBlob(blob) {
		t.Fatalf("full blob should be detected as blob")
	}

	id, err := NodeIDOf(blob)
	if err != nil {
		t.Fatalf("NodeIDOf: %v", err)
	}
	if id != "n1" {
		t.Fatalf("unexpected node id: %q", id)
	}

	id2, err := NodeIDOf("bare-id")
	if err != nil {
		t.Fatalf("NodeIDOf: %v", err)
	}
	if id2 != "bare-id" {
		t.Fatalf("unexpected node id: %q", id2)
	}
}
