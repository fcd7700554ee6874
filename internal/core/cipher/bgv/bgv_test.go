package bgv

import (
	"math"
	"math/big"
	"path/filepath"
	"testing"

	"allocvault/internal/core/cipher"

	"github.com/stretchr/testify/require"
)

func newPair(t *testing.T) (*Algebra, *Decrypter) {
	t.Helper()
	sk, pk, err := GenerateKeys()
	require.NoError(t, err)
	a, err := New(pk)
	require.NoError(t, err)
	d, err := NewDecrypter(sk)
	require.NoError(t, err)
	return a, d
}

func TestHomomorphicSum(t *testing.T) {
	a, d := newPair(t)

	var hs []cipher.Handle
	for _, v := range []uint32{5, 3, 11} {
		h, err := a.Encrypt(v)
		require.NoError(t, err)
		require.True(t, a.IsInitialized(h))
		hs = append(hs, h)
	}
	sum, err := cipher.Sum(a, hs...)
	require.NoError(t, err)

	got, err := d.Decrypt(sum)
	require.NoError(t, err)
	require.Equal(t, uint64(19), got)
}

func TestUint32RangeDoesNotWrap(t *testing.T) {
	a, d := newPair(t)

	x, err := a.Encrypt(4294967295)
	require.NoError(t, err)
	zero, err := a.Zero()
	require.NoError(t, err)
	s, err := a.Add(zero, x)
	require.NoError(t, err)

	got, err := d.Decrypt(s)
	require.NoError(t, err)
	require.Equal(t, uint64(4294967295), got)
}

func TestSumsAboveUint32DecryptExactly(t *testing.T) {
	a, d := newPair(t)

	x, err := a.Encrypt(math.MaxUint32)
	require.NoError(t, err)
	y, err := a.Encrypt(math.MaxUint32)
	require.NoError(t, err)
	s, err := cipher.Sum(a, x, y)
	require.NoError(t, err)

	got, err := d.Decrypt(s)
	require.NoError(t, err)
	require.Equal(t, uint64(2*math.MaxUint32), got)
}

func TestModulusHoldsMaxTerms(t *testing.T) {
	require.True(t, new(big.Int).SetUint64(PlaintextModulus).ProbablyPrime(32))
	require.Equal(t, uint64(1), PlaintextModulus%(2<<Literal.LogN))

	ceiling := new(big.Int).Mul(big.NewInt(cipher.MaxTerms), big.NewInt(math.MaxUint32))
	require.Equal(t, -1, ceiling.Cmp(new(big.Int).SetUint64(PlaintextModulus)))
}

func TestRejectsGarbage(t *testing.T) {
	a, d := newPair(t)
	require.False(t, a.IsInitialized(nil))
	require.False(t, a.IsInitialized(cipher.Handle{0x4d, 0, 0, 0, 0, 0, 0, 0, 5}))

	_, err := d.Decrypt(cipher.Handle("junk"))
	require.ErrorIs(t, err, cipher.ErrUninitialized)
}

func TestKeysRoundTripThroughFiles(t *testing.T) {
	sk, pk, err := GenerateKeys()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, WriteKeys(dir, sk, pk))

	pk2, err := LoadPublicKey(filepath.Join(dir, PublicKeyFile))
	require.NoError(t, err)
	sk2, err := LoadSecretKey(filepath.Join(dir, SecretKeyFile))
	require.NoError(t, err)

	a, err := New(pk2)
	require.NoError(t, err)
	d, err := NewDecrypter(sk2)
	require.NoError(t, err)

	h, err := a.Encrypt(42)
	require.NoError(t, err)
	got, err := d.Decrypt(h)
	require.NoError(t, err)
	require.Equal(t, uint64(42), got)

	_, err = LoadPublicKey(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
