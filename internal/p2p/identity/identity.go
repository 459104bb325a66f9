// Package identity loads or generates the host's Ed25519 secret key and
// derives its stable public node id.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	mydiaerrors "github.com/alxayo/mydia-p2p/internal/errors"
	"github.com/alxayo/mydia-p2p/internal/logger"
)

// SeedSize is the length in bytes of the persisted secret (an Ed25519 seed,
// not the expanded 64-byte private key).
const SeedSize = ed25519.SeedSize // 32

// Secret is a loaded or generated node identity.
type Secret struct {
	seed   [SeedSize]byte
	pub    ed25519.PublicKey
	priv   ed25519.PrivateKey
	NodeID string
}

// LoadOrGenerate loads a persisted identity if path is non-empty and names a
// file holding exactly SeedSize bytes. Otherwise a fresh seed is generated;
// if path was supplied, it is persisted best effort (failures are logged and
// never returned). An error (a ConfigError) is returned only if generating a
// fresh seed fails.
func LoadOrGenerate(path string) (*Secret, error) {
	if path != "" {
		if s, err := loadFromFile(path); err == nil {
			return s, nil
		} else if !os.IsNotExist(err) {
			logger.Logger().Warn("identity: falling back to generated key", "path", path, "error", err)
		}
	}

	s, err := generate()
	if err != nil {
		return nil, mydiaerrors.NewConfigError("identity.generate", err)
	}
	if path != "" {
		if err := persist(path, s.seed); err != nil {
			logger.Logger().Warn("identity: failed to persist generated key", "path", path, "error", err)
		}
	}
	return s, nil
}

func loadFromFile(path string) (*Secret, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) != SeedSize {
		return nil, mydiaerrors.NewConfigError("identity.load", fmt.Errorf("key file %s has %d bytes, expected %d", path, len(data), SeedSize))
	}
	var seed [SeedSize]byte
	copy(seed[:], data)
	return fromSeed(seed), nil
}

func generate() (*Secret, error) {
	var seed [SeedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	return fromSeed(seed), nil
}

func fromSeed(seed [SeedSize]byte) *Secret {
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)
	return &Secret{
		seed:   seed,
		pub:    pub,
		priv:   priv,
		NodeID: hex.EncodeToString(pub),
	}
}

func persist(path string, seed [SeedSize]byte) error {
	return os.WriteFile(path, seed[:], 0o600)
}

// PublicKey returns the node's Ed25519 public key.
func (s *Secret) PublicKey() ed25519.PublicKey { return s.pub }

// PrivateKey returns the node's Ed25519 private key, used by the transport
// layer to authenticate the endpoint's TLS identity.
func (s *Secret) PrivateKey() ed25519.PrivateKey { return s.priv }
