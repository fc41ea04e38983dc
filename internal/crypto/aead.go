package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the AES-256 key length used for local storage encryption.
const KeySize = 32

var (
	ErrInvalidKeyLength = errors.New("invalid key length")
	ErrCiphertextShort  = errors.New("ciphertext too short")
)

// DeriveStorageKey derives the local storage key from master key material.
// The salt binds the key to one storage location.
func DeriveStorageKey(master []byte, salt string) ([]byte, error) {
	if len(master) == 0 {
		return nil, ErrInvalidKeyLength
	}
	h := hkdf.New(sha256.New, master, []byte(salt), []byte("emailforms-storage"))
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseKeyHex decodes a 64-char hex key.
func ParseKeyHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("key hex decode error: %w", err)
	}
	if len(b) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes (hex %d chars)", ErrInvalidKeyLength, KeySize, KeySize*2)
	}
	return b, nil
}

// NewKeyHex returns a fresh random key, hex encoded.
func NewKeyHex() (string, error) {
	b := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Seal encrypts plaintext with AES-256-GCM. The nonce is prepended.
func Seal(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ct := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ct...), nil
}

// Open reverses Seal.
func Open(key, blob []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	ns := gcm.NonceSize()
	if len(blob) < ns {
		return nil, ErrCiphertextShort
	}
	return gcm.Open(nil, blob[:ns], blob[ns:], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
