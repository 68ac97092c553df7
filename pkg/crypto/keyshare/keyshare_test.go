package keyshare

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAndCombine(t *testing.T) {
	tests := []struct {
		name      string
		key       []byte
		parts     int
		threshold int
	}{
		{
			name:      "128-bit key 2 of 3",
			key:       bytes.Repeat([]byte{0x42}, 16),
			parts:     3,
			threshold: 2,
		},
		{
			name:      "192-bit key 3 of 5",
			key:       bytes.Repeat([]byte{0x07}, 24),
			parts:     5,
			threshold: 3,
		},
		{
			name:      "256-bit key 5 of 7",
			key:       bytes.Repeat([]byte{0xA5, 0x5A}, 16),
			parts:     7,
			threshold: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Split(tt.key, Config{Parts: tt.parts, Threshold: tt.threshold})
			require.NoError(t, err)
			assert.Len(t, shares, tt.parts)

			for i, share := range shares {
				assert.Equal(t, i+1, share.Index)
				assert.Len(t, share.Data, len(tt.key)+1)
			}

			key, err := Combine(shares[:tt.threshold])
			require.NoError(t, err)
			assert.Equal(t, tt.key, key)

			key, err = Combine(shares[tt.parts-tt.threshold:])
			require.NoError(t, err)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError bool
	}{
		{"Valid config", Config{Parts: 5, Threshold: 3}, false},
		{"Parts too small", Config{Parts: 1, Threshold: 1}, true},
		{"Threshold too small", Config{Parts: 5, Threshold: 1}, true},
		{"Threshold greater than parts", Config{Parts: 3, Threshold: 5}, true},
		{"Parts exceeds maximum", Config{Parts: 256, Threshold: 100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncodeAndParse(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 16)
	shares, err := Split(key, Config{Parts: 3, Threshold: 2})
	require.NoError(t, err)

	parsed := make([]Share, 0, 2)
	for i, share := range shares[1:] {
		p, err := Parse(" "+share.Encode()+"\n", i+1)
		require.NoError(t, err)
		assert.Equal(t, share.Data, p.Data)
		parsed = append(parsed, p)
	}

	recovered, err := Combine(parsed)
	require.NoError(t, err)
	assert.Equal(t, key, recovered)

	_, err = Parse("zz", 1)
	assert.Error(t, err)
	_, err = Parse("ab", 2)
	assert.ErrorContains(t, err, "too short")
}

func TestCombineErrors(t *testing.T) {
	key := bytes.Repeat([]byte{0x22}, 16)
	shares, err := Split(key, Config{Parts: 3, Threshold: 2})
	require.NoError(t, err)

	_, err = Combine(shares[:1])
	assert.ErrorContains(t, err, "at least 2 shares")

	_, err = Combine([]Share{shares[0], {Index: 9, Data: []byte{1}}})
	assert.ErrorContains(t, err, "too short")

	_, err = Combine([]Share{shares[0], {Index: 9, Data: []byte{1, 2, 3}}})
	assert.ErrorContains(t, err, "expected 17")
}

func TestSplitErrors(t *testing.T) {
	_, err := Split(nil, Config{Parts: 3, Threshold: 2})
	assert.ErrorContains(t, err, "key cannot be empty")

	_, err = Split([]byte{1}, Config{Parts: 2, Threshold: 3})
	assert.ErrorContains(t, err, "invalid config")
}

func TestWipe(t *testing.T) {
	share := Share{Index: 1, Data: []byte{1, 2, 3}}
	share.Wipe()
	assert.Equal(t, []byte{0, 0, 0}, share.Data)
}
