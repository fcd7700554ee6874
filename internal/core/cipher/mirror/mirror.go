// Package mirror is a plaintext Algebra for tests and the dev profile
// handles carry their value in the clear so a harness can check sums without keys
package mirror

import (
	"encoding/binary"

	"allocvault/internal/core/cipher"
)

const (
	magic = 'M'
	size  = 9
)

// Algebra implements cipher.Algebra and cipher.Decrypter over cleartext uint64 values
type Algebra struct{}

// New returns the mirror backend
func New() Algebra { return Algebra{} }

// Name identifies the backend
func (Algebra) Name() string { return "mirror" }

// Encrypt wraps v
func (Algebra) Encrypt(v uint32) (cipher.Handle, error) { return Of(uint64(v)), nil }

// Zero is the additive identity
func (Algebra) Zero() (cipher.Handle, error) { return Of(0), nil }

// Add sums two mirror handles
func (m Algebra) Add(a, b cipher.Handle) (cipher.Handle, error) {
	x, err := m.Decrypt(a)
	if err != nil {
		return nil, err
	}
	y, err := m.Decrypt(b)
	if err != nil {
		return nil, err
	}
	return Of(x + y), nil
}

// IsInitialized reports whether h was produced by this backend
func (Algebra) IsInitialized(h cipher.Handle) bool { return len(h) == size && h[0] == magic }

// Decrypt reads the value back
func (m Algebra) Decrypt(h cipher.Handle) (uint64, error) {
	if !m.IsInitialized(h) {
		return 0, cipher.ErrUninitialized
	}
	return binary.BigEndian.Uint64(h[1:]), nil
}

// Of builds a handle holding v
func Of(v uint64) cipher.Handle {
	h := make(cipher.Handle, size)
	h[0] = magic
	binary.BigEndian.PutUint64(h[1:], v)
	return h
}

// Value is Decrypt for tests; uninitialized handles read as 0
func Value(h cipher.Handle) uint64 {
	v, _ := Algebra{}.Decrypt(h)
	return v
}
