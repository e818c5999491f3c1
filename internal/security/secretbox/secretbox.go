// Package secretbox sella datos sensibles en reposo (tokens de provider
// guardados en accounts.auth_data) con XChaCha20-Poly1305.
package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const requiredKeyLength = chacha20poly1305.KeySize // 32 bytes

// ErrOpen indica que el ciphertext fue alterado o la clave no corresponde.
var ErrOpen = errors.New("secretbox: open failed")

// Box sella y abre datos con una clave fija.
type Box struct {
	key []byte
}

// New crea un Box con una clave cruda de 32 bytes.
func New(key []byte) (*Box, error) {
	if len(key) != requiredKeyLength {
		return nil, fmt.Errorf("secretbox: clave inválida: %d bytes (requiere %d)", len(key), requiredKeyLength)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Box{key: k}, nil
}

// ParseKey acepta la clave en base64 (std o raw) o hex.
// Genere una con: openssl rand -base64 32
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if len(s) == 2*requiredKeyLength {
		if b, err := hex.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("secretbox: la clave debe decodificar a %d bytes (base64 o hex)", requiredKeyLength)
}

// Seal devuelve nonce|ciphertext.
func (b *Box) Seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return nil, fmt.Errorf("secretbox: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("secretbox: nonce random: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open revierte Seal.
func (b *Box) Open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return nil, fmt.Errorf("secretbox: %w", err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext demasiado corto", ErrOpen)
	}
	nonce, ct := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return pt, nil
}
