// Package bgv is the lattigo BGV backend for cipher.Algebra
package bgv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"allocvault/internal/core/cipher"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"
)

// PlaintextModulus is the smallest prime above 2^58 that is 1 mod 2^14 (NTT friendly for LogN 13)
// cipher.MaxTerms uint32 encryptions sum to less than it, so totals decrypt exactly
const PlaintextModulus uint64 = 0x40000000000c001

// Literal is the parameter set every process must share
var Literal = bgv.ParametersLiteral{
	LogN:             13,
	LogQ:             []int{60, 60},
	LogP:             []int{61},
	PlaintextModulus: PlaintextModulus,
}

// Params instantiates Literal
func Params() (bgv.Parameters, error) {
	return bgv.NewParametersFromLiteral(Literal)
}

// Algebra encrypts and adds under a public key
// lattigo encoders and evaluators carry scratch buffers, so calls are serialized
type Algebra struct {
	mu      sync.Mutex
	params  bgv.Parameters
	encoder *bgv.Encoder
	enc     *rlwe.Encryptor
	eval    *bgv.Evaluator
}

// New builds the backend from a public key
func New(pk *rlwe.PublicKey) (*Algebra, error) {
	if pk == nil {
		return nil, errors.New("bgv: nil public key")
	}
	p, err := Params()
	if err != nil {
		return nil, err
	}
	return &Algebra{
		params:  p,
		encoder: bgv.NewEncoder(p),
		enc:     bgv.NewEncryptor(p, pk),
		eval:    bgv.NewEvaluator(p, nil),
	}, nil
}

// Name identifies the backend
func (a *Algebra) Name() string { return "bgv" }

// Encrypt encodes v in slot 0 and encrypts it at the top level
func (a *Algebra) Encrypt(v uint32) (cipher.Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pt := bgv.NewPlaintext(a.params, a.params.MaxLevel())
	if err := a.encoder.Encode([]uint64{uint64(v)}, pt); err != nil {
		return nil, fmt.Errorf("bgv encode: %w", err)
	}
	ct := bgv.NewCiphertext(a.params, 1, a.params.MaxLevel())
	if err := a.enc.Encrypt(pt, ct); err != nil {
		return nil, fmt.Errorf("bgv encrypt: %w", err)
	}
	return ct.MarshalBinary()
}

// Zero is a fresh encryption of 0
func (a *Algebra) Zero() (cipher.Handle, error) { return a.Encrypt(0) }

// Add returns a+b
func (a *Algebra) Add(x, y cipher.Handle) (cipher.Handle, error) {
	cx, err := a.parse(x)
	if err != nil {
		return nil, err
	}
	cy, err := a.parse(y)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	out, err := a.eval.AddNew(cx, cy)
	if err != nil {
		return nil, fmt.Errorf("bgv add: %w", err)
	}
	return out.MarshalBinary()
}

// IsInitialized reports whether h is a degree one ciphertext for these parameters
func (a *Algebra) IsInitialized(h cipher.Handle) bool {
	_, err := a.parse(h)
	return err == nil
}

func (a *Algebra) parse(h cipher.Handle) (*rlwe.Ciphertext, error) {
	return parse(a.params, h)
}

// parse recovers because lattigo sizes buffers from the header it reads
func parse(p bgv.Parameters, h cipher.Handle) (ct *rlwe.Ciphertext, err error) {
	// two polynomials of N uint64 coefficients at level 0 at least
	if len(h) < 2*p.N()*8 {
		return nil, cipher.ErrUninitialized
	}
	defer func() {
		if r := recover(); r != nil {
			ct, err = nil, fmt.Errorf("%w: %v", cipher.ErrUninitialized, r)
		}
	}()
	ct = new(rlwe.Ciphertext)
	if err := ct.UnmarshalBinary(h); err != nil {
		return nil, fmt.Errorf("%w: %v", cipher.ErrUninitialized, err)
	}
	if ct.Degree() != 1 || len(ct.Value[0].Coeffs) == 0 || ct.Level() > p.MaxLevel() {
		return nil, cipher.ErrUninitialized
	}
	if len(ct.Value[0].Coeffs[0]) != p.N() {
		return nil, cipher.ErrUninitialized
	}
	return ct, nil
}

// Decrypter opens handles with the secret key
type Decrypter struct {
	mu      sync.Mutex
	params  bgv.Parameters
	encoder *bgv.Encoder
	dec     *rlwe.Decryptor
}

// NewDecrypter builds a Decrypter from a secret key
func NewDecrypter(sk *rlwe.SecretKey) (*Decrypter, error) {
	if sk == nil {
		return nil, errors.New("bgv: nil secret key")
	}
	p, err := Params()
	if err != nil {
		return nil, err
	}
	return &Decrypter{params: p, encoder: bgv.NewEncoder(p), dec: bgv.NewDecryptor(p, sk)}, nil
}

// Decrypt returns slot 0 of h
func (d *Decrypter) Decrypt(h cipher.Handle) (uint64, error) {
	ct, err := parse(d.params, h)
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	pt := d.dec.DecryptNew(ct)
	out := make([]uint64, d.params.MaxSlots())
	if err := d.encoder.Decode(pt, out); err != nil {
		return 0, fmt.Errorf("bgv decode: %w", err)
	}
	return out[0], nil
}

// GenerateKeys creates a fresh key pair
func GenerateKeys() (*rlwe.SecretKey, *rlwe.PublicKey, error) {
	p, err := Params()
	if err != nil {
		return nil, nil, err
	}
	kg := rlwe.NewKeyGenerator(p)
	sk := kg.GenSecretKeyNew()
	return sk, kg.GenPublicKeyNew(sk), nil
}

// Key file names written by WriteKeys
const (
	SecretKeyFile = "bgv.sk"
	PublicKeyFile = "bgv.pk"
)

// WriteKeys stores both keys under dir; the secret key is owner readable only
func WriteKeys(dir string, sk *rlwe.SecretKey, pk *rlwe.PublicKey) error {
	skb, err := sk.MarshalBinary()
	if err != nil {
		return err
	}
	pkb, err := pk.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, SecretKeyFile), skb, 0o600); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, PublicKeyFile), pkb, 0o644)
}

// LoadPublicKey reads a key written by WriteKeys
func LoadPublicKey(path string) (*rlwe.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pk := new(rlwe.PublicKey)
	if err := pk.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("bgv public key %s: %w", path, err)
	}
	return pk, nil
}

// LoadSecretKey reads a key written by WriteKeys
func LoadSecretKey(path string) (*rlwe.SecretKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sk := new(rlwe.SecretKey)
	if err := sk.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("bgv secret key %s: %w", path, err)
	}
	return sk, nil
}
