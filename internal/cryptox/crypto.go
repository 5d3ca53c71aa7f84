// Package cryptox seals small values with XChaCha20-Poly1305.
//
// The session store uses a Sealer whose key is generated at startup and kept
// only in memory: whatever one process writes, no later process can open.
package cryptox

import (
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/ajenda/ajenda/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrOpen is returned when a sealed value cannot be authenticated, most
// often because it was sealed under another key.
var ErrOpen = errors.New("cannot open sealed value")

// Sealer encrypts and authenticates values under a single key.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// NewEphemeralSealer builds a Sealer over a fresh random key that is never
// written anywhere.
func NewEphemeralSealer() *Sealer {
	key := common.GenerateRandByteArray(chacha20poly1305.KeySize)
	defer common.WipeByteArray(key)

	s, err := NewSealer(key)
	if err != nil {
		// only reachable with a wrong key size
		panic(err)
	}
	return s
}

// Seal returns nonce||ciphertext for plaintext. The additional data binds the
// value to its slot (e.g. the storage key) so values cannot be swapped.
func (s *Sealer) Seal(plaintext, additionalData []byte) []byte {
	nonce := common.GenerateRandByteArray(s.aead.NonceSize())
	out := make([]byte, 0, len(nonce)+len(plaintext)+s.aead.Overhead())
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plaintext, additionalData)
}

// Open reverses Seal. It returns ErrOpen for truncated, tampered or foreign
// input.
func (s *Sealer) Open(sealed, additionalData []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns+s.aead.Overhead() {
		return nil, ErrOpen
	}
	plaintext, err := s.aead.Open(nil, sealed[:ns], sealed[ns:], additionalData)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}
