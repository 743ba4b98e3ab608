package blobcrypto

import (
	"bytes"
	"crypto/subtle"
	"testing"
)

func TestRand_LengthUniq(t *testing.T) {
	t.Parallel()
	a, err := Rand(SaltLen)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	if len(a) != SaltLen {
		t.Fatalf("len=%d, want=%d", len(a), SaltLen)
	}
	b, _ := Rand(SaltLen)
	if bytes.Equal(a, b) {
		t.Fatalf("Rand produced equal slices")
	}
}

func TestDeriveKey_DeterministicAndSaltDependent(t *testing.T) {
	t.Parallel()
	pw := []byte("correct horse")
	k1 := DeriveKey(pw, []byte("salt-1"))
	k2 := DeriveKey(pw, []byte("salt-1"))
	if len(k1) != KeyLen {
		t.Fatalf("key len=%d", len(k1))
	}
	if subtle.ConstantTimeCompare(k1, k2) != 1 {
		t.Fatalf("DeriveKey not deterministic")
	}
	if subtle.ConstantTimeCompare(k1, DeriveKey(pw, []byte("salt-2"))) != 0 {
		t.Fatalf("DeriveKey must change with salt")
	}
}

func TestSealOpen_RoundTripAndAAD(t *testing.T) {
	t.Parallel()
	salt, _ := Rand(SaltLen)
	s, err := NewFromPassphrase("pw", salt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	plain := []byte(`[{"id":"x"}]`)
	aad := []byte("sleep_entries")

	blob, err := s.Seal(plain, aad)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Contains(blob, plain) {
		t.Fatalf("blob contains plaintext")
	}
	got, err := s.Open(blob, aad)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("round trip mismatch")
	}

	if _, err := s.Open(blob, []byte("user_settings")); err == nil {
		t.Fatalf("Open must fail with a different aad")
	}
	blob[len(blob)-1] ^= 0xFF
	if _, err := s.Open(blob, aad); err == nil {
		t.Fatalf("Open must fail on tampered blob")
	}
	if _, err := s.Open([]byte{1, 2, 3}, aad); err != ErrShortBlob {
		t.Fatalf("want ErrShortBlob, got %v", err)
	}
}

func TestOpen_WrongKey(t *testing.T) {
	t.Parallel()
	s1, _ := New(bytes.Repeat([]byte{1}, KeyLen))
	s2, _ := New(bytes.Repeat([]byte{2}, KeyLen))
	blob, err := s1.Seal([]byte("data"), nil)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := s2.Open(blob, nil); err == nil {
		t.Fatalf("Open with another key must fail")
	}
	if _, err := New([]byte("short")); err == nil {
		t.Fatalf("New must reject short key")
	}
}
