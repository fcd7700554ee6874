package attest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	s, err := GenerateSigner()
	require.NoError(t, err)
	v, err := NewVerifier(s.Address().Hex())
	require.NoError(t, err)

	clear, err := EncodeRequest(5, 2)
	require.NoError(t, err)
	proof, err := s.Sign("cb-1", clear)
	require.NoError(t, err)
	require.Len(t, proof, ProofLen)

	require.True(t, v.Verify("cb-1", clear, proof))
	require.False(t, v.Verify("cb-2", clear, proof), "proof is bound to the callback id")

	other, err := EncodeRequest(6, 2)
	require.NoError(t, err)
	require.False(t, v.Verify("cb-1", other, proof), "proof is bound to the cleartext")

	forged := append([]byte(nil), proof...)
	forged[10] ^= 0xff
	require.False(t, v.Verify("cb-1", clear, forged))
	require.False(t, v.Verify("cb-1", clear, proof[:64]))

	mallory, err := GenerateSigner()
	require.NoError(t, err)
	mp, err := mallory.Sign("cb-1", clear)
	require.NoError(t, err)
	require.False(t, v.Verify("cb-1", clear, mp))
}

func TestNewVerifierRejectsBadAddresses(t *testing.T) {
	_, err := NewVerifier("nope")
	require.Error(t, err)
	_, err = NewVerifier("0x0000000000000000000000000000000000000000")
	require.Error(t, err)
	require.False(t, Verifier{}.Verify("cb", nil, make([]byte, ProofLen)))
}

func TestNewSignerAcceptsPrefixedHex(t *testing.T) {
	const key = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	s, err := NewSigner(key)
	require.NoError(t, err)
	s2, err := NewSigner(key[2:])
	require.NoError(t, err)
	require.Equal(t, s.Address(), s2.Address())

	require.Equal(t, key, s.KeyHex())

	_, err = NewSigner("zz")
	require.Error(t, err)
}

func TestCodec(t *testing.T) {
	b, err := EncodeRequest(4294967295, 7)
	require.NoError(t, err)
	require.Len(t, b, 64)
	d, p, err := DecodeRequest(b)
	require.NoError(t, err)
	require.Equal(t, uint32(4294967295), d)
	require.Equal(t, uint32(7), p)

	z, err := EncodeZone(12)
	require.NoError(t, err)
	total, err := DecodeZone(z)
	require.NoError(t, err)
	require.Equal(t, uint32(12), total)

	_, _, err = DecodeRequest(z)
	require.Error(t, err)
	_, err = DecodeZone(b)
	require.Error(t, err)

	// upper bytes set overflow uint32
	bad := make([]byte, 32)
	bad[0] = 1
	_, err = DecodeZone(bad)
	require.Error(t, err)
}

func TestZoneHashIsStable(t *testing.T) {
	require.Equal(t, ZoneHash("north"), ZoneHash("north"))
	require.NotEqual(t, ZoneHash("north"), ZoneHash("south"))
	require.Len(t, ZoneHash("north").Bytes(), 32)
}
