package store

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// sealer encrypts stored snapshots so the secrets inside them are not
// readable straight from the database file.
type sealer struct {
	key [32]byte
}

// newSealer derives the box key from an arbitrary passphrase.
func newSealer(passphrase string) *sealer {
	return &sealer{key: sha256.Sum256([]byte(passphrase))}
}

// seal returns nonce || box.
func (s *sealer) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

func (s *sealer) open(blob []byte) ([]byte, error) {
	if len(blob) < nonceSize+secretbox.Overhead {
		return nil, errors.New("sealed blob too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], blob[:nonceSize])
	plain, ok := secretbox.Open(nil, blob[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, errors.New("sealed blob failed authentication")
	}
	return plain, nil
}
