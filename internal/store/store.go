// Package store contiene lo compartido por los adapters de persistencia de
// cuentas: sellado de auth_data, codificación JSON y migraciones.
package store

import (
	"encoding/json"
	"fmt"
)

// Sealer cifra auth_data antes de persistirlo. Ver security/secretbox.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// Codec serializa los mapas de Account hacia/desde columnas.
type Codec struct {
	Sealer Sealer // nil = sin cifrado
}

// EncodeAuth serializa y (opcionalmente) sella auth_data.
func (c Codec) EncodeAuth(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode auth_data: %w", err)
	}
	if c.Sealer == nil {
		return b, nil
	}
	sealed, err := c.Sealer.Seal(b)
	if err != nil {
		return nil, fmt.Errorf("seal auth_data: %w", err)
	}
	return sealed, nil
}

// DecodeAuth revierte EncodeAuth.
func (c Codec) DecodeAuth(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if c.Sealer != nil {
		pt, err := c.Sealer.Open(b)
		if err != nil {
			return nil, fmt.Errorf("open auth_data: %w", err)
		}
		b = pt
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode auth_data: %w", err)
	}
	return m, nil
}

// EncodeProfile serializa profile_data; nil se guarda como {}.
func (Codec) EncodeProfile(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode profile_data: %w", err)
	}
	return b, nil
}

// DecodeProfile revierte EncodeProfile.
func (Codec) DecodeProfile(b []byte) (map[string]any, error) {
	m := map[string]any{}
	if len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode profile_data: %w", err)
	}
	return m, nil
}
