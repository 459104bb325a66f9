package identity

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrGenerateStableAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.key")

	s1, err := LoadOrGenerate(path)
	if err != nil {
		t.Fatalf("first LoadOrGenerate: %v", err)
	}
	s2, err := LoadOrGenerate(path)
	if err != nil {
		t.Fatalf("second LoadOrGenerate: %v", err)
	}
	if s1.NodeID != s2.NodeID {
		t.Fatalf("expected stable node id, got %q then %q", s1.NodeID, s2.NodeID)
	}
}

func TestLoadOrGenerateEphemeralWithoutPath(t *testing.T) {
	s1, err := LoadOrGenerate("")
	if err != nil {
		t.Fatalf("LoadOrGenerate: %v", err)
	}
	s2, err := LoadOrGenerate("")
	if err != nil {
		t.Fatalf("LoadOrGenerate: %v", err)
	}
	if s1.NodeID == s2.NodeID {
		t.Fatalf("expected distinct ephemeral node ids, got the same twice")
	}
}

func TestLoadOrGenerateRejectsWrongLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.key")
	if err := os.WriteFile(path, []byte("too short"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	s, err := LoadOrGenerate(path)
	if err != nil {
		t.Fatalf("expected fallback to generation, got error: %v", err)
	}
	if s.NodeID == "" {
		t.Fatalf("expected a generated node id")
	}
}

func TestLoadOrGeneratePersistsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "node.key")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := LoadOrGenerate(path); err != nil {
		t.Fatalf("LoadOrGenerate: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected persisted key file: %v", err)
	}
	if len(data) != SeedSize {
		t.Fatalf("expected %d byte key file, got %d", SeedSize, len(data))
	}
}
