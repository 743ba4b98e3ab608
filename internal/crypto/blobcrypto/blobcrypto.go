// Package blobcrypto seals on-device blobs at rest with a passphrase-derived key.
package blobcrypto

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Params
const (
	KeyLen  = 32
	SaltLen = 16

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
)

// ErrShortBlob is returned by Open for input shorter than a nonce.
var ErrShortBlob = errors.New("blob too short")

// Rand returns n random bytes.
func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveKey derives a sealing key from passphrase and salt using Argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, KeyLen)
}

// Sealer encrypts blobs with XChaCha20-Poly1305; output is nonce||ciphertext.
type Sealer struct {
	aead cipher.AEAD
}

// New builds a Sealer from a KeyLen-byte key.
func New(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// NewFromPassphrase derives the key from passphrase and salt and builds a Sealer.
func NewFromPassphrase(passphrase string, salt []byte) (*Sealer, error) {
	return New(DeriveKey([]byte(passphrase), salt))
}

// Seal encrypts plaintext bound to aad with a random nonce.
func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce, err := Rand(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+s.aead.Overhead())
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plaintext, aad), nil
}

// Open decrypts a blob produced by Seal with the same aad.
func (s *Sealer) Open(blob, aad []byte) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, ErrShortBlob
	}
	nonce := blob[:chacha20poly1305.NonceSizeX]
	ct := blob[chacha20poly1305.NonceSizeX:]
	return s.aead.Open(nil, nonce, ct, aad)
}
