package mirror

import (
	"testing"

	"allocvault/internal/core/cipher"

	"github.com/stretchr/testify/require"
)

func TestMirrorSums(t *testing.T) {
	a := New()
	var hs []cipher.Handle
	var want uint64
	for _, v := range []uint32{5, 3, 0, 4294967295} {
		h, err := a.Encrypt(v)
		require.NoError(t, err)
		require.True(t, a.IsInitialized(h))
		hs = append(hs, h)
		want += uint64(v)
	}
	sum, err := cipher.Sum(a, hs...)
	require.NoError(t, err)
	got, err := a.Decrypt(sum)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestMirrorRejectsForeignHandles(t *testing.T) {
	a := New()
	require.False(t, a.IsInitialized(nil))
	require.False(t, a.IsInitialized(cipher.Handle("not a handle")))

	_, err := a.Add(Of(1), cipher.Handle{0x01})
	require.ErrorIs(t, err, cipher.ErrUninitialized)

	_, err = cipher.Parse(a, "!!!")
	require.Error(t, err)
	_, err = cipher.Parse(a, cipher.Handle("xyz").String())
	require.ErrorIs(t, err, cipher.ErrUninitialized)

	h, err := cipher.Parse(a, Of(9).String())
	require.NoError(t, err)
	require.Equal(t, uint64(9), Value(h))
}
