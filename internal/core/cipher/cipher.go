// Package cipher defines the additive ciphertext algebra the ledger and zone accumulators run on
package cipher

import (
	"encoding/base64"
	"errors"
)

// Handle is an opaque serialized ciphertext
// the core never looks inside; only the backend that produced it can
type Handle []byte

// MaxTerms caps how many uint32 encryptions one accumulator may fold
// every backend's plaintext space holds MaxTerms * MaxUint32 without wrapping
const MaxTerms = 1 << 26

// ErrUninitialized is returned for handles the backend does not recognise
var ErrUninitialized = errors.New("cipher: uninitialized handle")

// Algebra is the encrypted integer capability
// Add must be associative and commutative in plaintext terms; Zero is its identity
type Algebra interface {
	Name() string
	Encrypt(v uint32) (Handle, error)
	Add(a, b Handle) (Handle, error)
	Zero() (Handle, error)
	IsInitialized(h Handle) bool
}

// Decrypter opens handles; only the oracle process holds one
type Decrypter interface {
	Decrypt(h Handle) (uint64, error)
}

// Serialize returns the wire bytes of h
func Serialize(h Handle) []byte { return append([]byte(nil), h...) }

// String renders h as standard base64, the JSON form used by the API
func (h Handle) String() string { return base64.StdEncoding.EncodeToString(h) }

// Parse decodes a base64 handle and checks it against a
func Parse(a Algebra, s string) (Handle, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	h := Handle(b)
	if !a.IsInitialized(h) {
		return nil, ErrUninitialized
	}
	return h, nil
}

// Sum folds handles onto Zero
func Sum(a Algebra, hs ...Handle) (Handle, error) {
	acc, err := a.Zero()
	if err != nil {
		return nil, err
	}
	for _, h := range hs {
		if acc, err = a.Add(acc, h); err != nil {
			return nil, err
		}
	}
	return acc, nil
}
