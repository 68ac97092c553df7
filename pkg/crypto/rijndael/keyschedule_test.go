package rijndael

import (
	"encoding/hex"
	"testing"

	"github.com/Davincible/rijndael/pkg/crypto/gf256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRounds(t *testing.T) {
	tests := []struct {
		nb, nk int
		want   int
	}{
		{4, 4, 10},
		{4, 6, 12},
		{6, 4, 12},
		{6, 6, 12},
		{4, 8, 14},
		{8, 4, 14},
		{6, 8, 14},
		{8, 8, 14},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Rounds(tt.nb, tt.nk), "nb=%d nk=%d", tt.nb, tt.nk)
	}
}

func TestExpandKey(t *testing.T) {
	sbox, err := NewSBox(gf256.DefaultModulus)
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
		nk   int
		// word index and its expected value
		word  int
		value string
	}{
		{
			name:  "AES-128 A.1",
			key:   "2b7e151628aed2a6abf7158809cf4f3c",
			nk:    4,
			word:  43,
			value: "b6630ca6",
		},
		{
			name:  "AES-192 A.2",
			key:   "8e73b0f7da0e6452c810f32b809079e562f8ead2522c6b7b",
			nk:    6,
			word:  51,
			value: "01002202",
		},
		{
			name:  "AES-256 A.3",
			key:   "603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4",
			nk:    8,
			word:  59,
			value: "706c631e",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rounds := Rounds(4, tt.nk)
			keys, err := ExpandKey(mustHex(t, tt.key), 4, tt.nk, rounds, sbox)
			require.NoError(t, err)
			require.Len(t, keys, rounds+1)

			assert.Equal(t, tt.key[:32], hex.EncodeToString(keys[0]))

			rk := keys[tt.word/4]
			offset := 4 * (tt.word % 4)
			assert.Equal(t, tt.value, hex.EncodeToString(rk[offset:offset+4]))
		})
	}

	t.Run("AES-128 last round key", func(t *testing.T) {
		keys, err := ExpandKey(mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c"), 4, 4, 10, sbox)
		require.NoError(t, err)
		assert.Equal(t, "d014f9a8c9ee2589e13f0cc8b6630ca6", hex.EncodeToString(keys[10]))
	})
}

func TestExpandKeyWideBlock(t *testing.T) {
	sbox, err := NewSBox(gf256.DefaultModulus)
	require.NoError(t, err)

	key := sequence(Size128, 0)
	keys, err := ExpandKey(key, 8, 4, Rounds(8, 4), sbox)
	require.NoError(t, err)
	require.Len(t, keys, 15)
	for _, rk := range keys {
		assert.Len(t, rk, Size256)
	}
	assert.Equal(t, key, keys[0][:Size128])
}

func TestExpandKeyRejectsWrongLength(t *testing.T) {
	sbox, err := NewSBox(gf256.DefaultModulus)
	require.NoError(t, err)

	_, err = ExpandKey(make([]byte, 15), 4, 4, 10, sbox)
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}
