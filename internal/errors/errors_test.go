package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"
	"time"
)

// fakeTimeoutErr simulates a net.Error with Timeout semantics (we don't need full net.Error here).
type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string { return "fake timeout" }
func (fakeTimeoutErr) Timeout() bool { return true }

func TestIsProtocolErrorClassification(t *testing.T) {
	root := stdErrors.New("root")
	wrapped := fmt.Errorf("adding context: %w", root)
	p := NewProtocolError("stream.validateHeader", wrapped)
	if !IsProtocolError(p) {
		t.Fatalf("expected IsProtocolError=true")
	}
	if !stdErrors.Is(p, root) {
		t.Fatalf("expected errors.Is to find root cause")
	}
	var pe *ProtocolError
	if !stdErrors.As(p, &pe) {
		t.Fatalf("expected errors.As to *ProtocolError")
	}
	if pe.Op != "stream.validateHeader" {
		t.Fatalf("unexpected op: %s", pe.Op)
	}

	dec := NewDecodeError("wire.decodeRequest", nil)
	if Class(dec) != "decode" {
		t.Fatalf("expected decode classification, got %q", Class(dec))
	}
	bnd := NewBindError("endpoint.bind", stdErrors.New("addr in use"))
	if Class(bnd) != "bind" {
		t.Fatalf("expected bind classification, got %q", Class(bnd))
	}
}

func TestIsTimeout(t *testing.T) {
	root := fakeTimeoutErr{}
	to := NewTimeoutError("inbound.reply", 30*time.Second, root)
	if !IsTimeout(to) {
		t.Fatalf("expected TimeoutError recognized")
	}
	if IsProtocolError(to) {
		t.Fatalf("timeout should NOT be protocol error")
	}
	if !IsTimeout(context.DeadlineExceeded) {
		t.Fatalf("expected context deadline recognized")
	}
	var ne error = root
	if !IsTimeout(ne) {
		t.Fatalf("expected net-like timeout recognized")
	}
}

func TestUnwrapChains(t *testing.T) {
	base := stdErrors.New("stream reset")
	l1 := fmt.Errorf("read: %w", base)
	l2 := NewTransportError("conn.read", l1)
	if !stdErrors.Is(l2, base) {
		t.Fatalf("errors.Is should reach base cause")
	}
	var cm classMarker
	if !stdErrors.As(l2, &cm) {
		t.Fatalf("expected to match classMarker via As")
	}
}

func TestNotConnectedError(t *testing.T) {
	err := NewNotConnectedError("peer-123")
	if err.Error() != "Not connected to peer: peer-123" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !IsNotConnected(err) {
		t.Fatalf("expected IsNotConnected=true")
	}
	if IsNotConnected(stdErrors.New("plain")) {
		t.Fatalf("plain error shouldn't classify as not-connected")
	}
}

func TestNilSafety(t *testing.T) {
	if IsProtocolError(nil) {
		t.Fatalf("nil should not be protocol error")
	}
	if IsTimeout(nil) {
		t.Fatalf("nil should not be timeout")
	}
	if Reduce(nil) != "" {
		t.Fatalf("Reduce(nil) should be empty string")
	}
}

func TestConstructorWithoutCause(t *testing.T) {
	ce := NewConfigError("identity.load", nil)
	if ce == nil {
		t.Fatalf("constructor returned nil")
	}
	if errStr := ce.Error(); errStr == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestNilErrBranchesAndStrings(t *testing.T) {
	p := NewProtocolError("op1", nil)
	if !IsProtocolError(p) {
		t.Fatalf("expected protocol classification")
	}
	if s := p.Error(); s == "" || s == "protocol error:" {
		t.Fatalf("unexpected protocol error string: %q", s)
	}

	tr := NewTransportError("op2", nil)
	if s := tr.Error(); s == "" {
		t.Fatalf("bad transport error string: %q", s)
	}

	dec := NewDecodeError("op3", nil)
	if s := dec.Error(); s == "" {
		t.Fatalf("empty decode error string")
	}

	bnd := NewBindError("op4", nil)
	if s := bnd.Error(); s == "" {
		t.Fatalf("empty bind error string")
	}

	to := NewTimeoutError("op5", 100*time.Millisecond, nil)
	if !IsTimeout(to) {
		t.Fatalf("timeout classification failed")
	}
	if IsProtocolError(to) {
		t.Fatalf("timeout misclassified as protocol")
	}
	if s := to.Error(); s == "" {
		t.Fatalf("empty timeout error string")
	}
}

func TestNegativePredicates(t *testing.T) {
	if IsProtocolError(stdErrors.New("plain")) {
		t.Fatalf("plain error shouldn't be protocol")
	}
	if IsTimeout(stdErrors.New("plain")) {
		t.Fatalf("plain error shouldn't be timeout")
	}
	if Class(stdErrors.New("plain")) != "" {
		t.Fatalf("plain error should have no class")
	}
}
