package gf2poly

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]int
	}{
		{
			name:  "x^7 + 1",
			input: "10000001",
			want: map[string]int{
				"x + 1":         1,
				"x^3 + x + 1":   1,
				"x^3 + x^2 + 1": 1,
			},
		},
		{
			name:  "(x + 1)^4",
			input: "10001",
			want:  map[string]int{"x + 1": 4},
		},
		{
			name:  "x^3 * (x^2 + x + 1)^2",
			input: "x^7 + x^5 + x^3",
			want: map[string]int{
				"x":           3,
				"x^2 + x + 1": 2,
			},
		},
		{
			name:  "Rijndael polynomial is irreducible",
			input: "0x11B",
			want:  map[string]int{"x^8 + x^4 + x^3 + x + 1": 1},
		},
		{
			name:  "x^15 + 1",
			input: "x^15 + 1",
			want: map[string]int{
				"x + 1":                   1,
				"x^2 + x + 1":             1,
				"x^4 + x + 1":             1,
				"x^4 + x^3 + 1":           1,
				"x^4 + x^3 + x^2 + x + 1": 1,
			},
		},
		{
			name:  "x alone",
			input: "x",
			want:  map[string]int{"x": 1},
		},
		{
			name:  "constant",
			input: "1",
			want:  map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustParse(t, tt.input)

			result, err := Factorize(p, nil)
			require.NoError(t, err)
			require.True(t, result.Complete(), "unresolved: %s", result)
			assert.Len(t, result.Factors, len(tt.want))

			for poly, multiplicity := range tt.want {
				assert.Equal(t, multiplicity, result.Multiplicity(mustParse(t, poly)), "factor %s", poly)
			}
			for _, factor := range result.Factors {
				assert.True(t, IsIrreducible(factor.Poly), "factor %s", Format(factor.Poly))
			}
			assert.Equal(t, p, result.Product())
		})
	}
}

func TestFactorizeOrderAndString(t *testing.T) {
	result, err := Factorize(mustParse(t, "10000001"), &Options{Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, "(x + 1) * (x^3 + x + 1) * (x^3 + x^2 + 1)", result.String())
	assert.Equal(t, "(x + 1)^4", mustFactor(t, "10001").String())
}

func TestFactorizeBudgetExhaustion(t *testing.T) {
	// With one trial per split, some seeds leave the two cubic factors of
	// x^7 + 1 joined; the result must say so and still multiply back.
	p := mustParse(t, "x^7 + 1")
	sawUnresolved := false

	for seed := uint64(0); seed < 64; seed++ {
		result, err := Factorize(p, &Options{MaxTrials: 1, Seed: seed})
		require.NoError(t, err)
		assert.Equal(t, p, result.Product())

		if !result.Complete() {
			sawUnresolved = true
			require.Len(t, result.Unresolved, 1)
			assert.Equal(t, mustParse(t, "x^6 + x^5 + x^4 + x^3 + x^2 + x + 1"), result.Unresolved[0].Poly)
			assert.Contains(t, result.String(), "?")
		}
	}

	assert.True(t, sawUnresolved)
}

func TestFactorizeRejectsZero(t *testing.T) {
	_, err := Factorize(new(big.Int), nil)
	assert.ErrorIs(t, err, ErrZeroPolynomial)
}

func TestFactorizeLargeProduct(t *testing.T) {
	factors := []string{
		"x^16 + x^12 + x^3 + x + 1",
		"x^8 + x^4 + x^3 + x + 1",
		"x^8 + x^4 + x^3 + x^2 + 1",
		"x^3 + x + 1",
	}
	p := One()
	for _, f := range factors {
		p = Mul(p, mustParse(t, f))
	}
	p = Mul(p, mustParse(t, "x^3 + x + 1"))

	result, err := Factorize(p, &Options{Seed: 42})
	require.NoError(t, err)
	require.True(t, result.Complete())
	assert.Equal(t, 2, result.Multiplicity(mustParse(t, "x^3 + x + 1")))
	assert.Equal(t, 1, result.Multiplicity(mustParse(t, "x^16 + x^12 + x^3 + x + 1")))
	assert.Equal(t, 1, result.Multiplicity(mustParse(t, "x^8 + x^4 + x^3 + x^2 + 1")))
	assert.Equal(t, p, result.Product())
}

func mustFactor(t *testing.T, s string) *Factorization {
	t.Helper()
	result, err := Factorize(mustParse(t, s), nil)
	require.NoError(t, err)
	return result
}
