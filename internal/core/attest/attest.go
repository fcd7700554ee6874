// Package attest signs and verifies oracle cleartext
// a proof is a secp256k1 signature over keccak256(callbackID || cleartext)
package attest

import (
	"crypto/ecdsa"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ProofLen is the length of an [R || S || V] signature
const ProofLen = crypto.SignatureLength

// Digest is the message an oracle proof commits to
func Digest(callbackID string, cleartext []byte) common.Hash {
	return crypto.Keccak256Hash([]byte(callbackID), cleartext)
}

// ZoneHash is the correlation key for a zone name
func ZoneHash(name string) common.Hash { return crypto.Keccak256Hash([]byte(name)) }

// Signer holds the oracle signing key
type Signer struct{ key *ecdsa.PrivateKey }

// NewSigner parses a hex private key, with or without 0x
func NewSigner(hexKey string) (*Signer, error) {
	k, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, err
	}
	return &Signer{key: k}, nil
}

// GenerateSigner makes a throwaway key, used by tests and the dev profile
func GenerateSigner() (*Signer, error) {
	k, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Signer{key: k}, nil
}

// Address is the identity verifiers pin
func (s *Signer) Address() common.Address { return crypto.PubkeyToAddress(s.key.PublicKey) }

// KeyHex exports the private key in the form NewSigner reads
func (s *Signer) KeyHex() string { return hexutil.Encode(crypto.FromECDSA(s.key)) }

// Sign produces the proof for cleartext under callbackID
func (s *Signer) Sign(callbackID string, cleartext []byte) ([]byte, error) {
	return crypto.Sign(Digest(callbackID, cleartext).Bytes(), s.key)
}

// Verifier checks proofs against one oracle address
type Verifier struct{ oracle common.Address }

// NewVerifier pins the oracle address; the zero address is rejected
func NewVerifier(addr string) (Verifier, error) {
	if !common.IsHexAddress(addr) {
		return Verifier{}, errors.New("attest: invalid oracle address")
	}
	a := common.HexToAddress(addr)
	if a == (common.Address{}) {
		return Verifier{}, errors.New("attest: zero oracle address")
	}
	return Verifier{oracle: a}, nil
}

// VerifierFor pins a signer's own address
func VerifierFor(s *Signer) Verifier { return Verifier{oracle: s.Address()} }

// Oracle returns the pinned address
func (v Verifier) Oracle() common.Address { return v.oracle }

// Verify reports whether proof recovers to the pinned oracle
func (v Verifier) Verify(callbackID string, cleartext, proof []byte) bool {
	if len(proof) != ProofLen || v.oracle == (common.Address{}) {
		return false
	}
	pub, err := crypto.SigToPub(Digest(callbackID, cleartext).Bytes(), proof)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == v.oracle
}
