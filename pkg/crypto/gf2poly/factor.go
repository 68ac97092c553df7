package gf2poly

import (
	"fmt"
	"math/big"
	"math/rand/v2"
	"sort"
	"strings"
)

// DefaultMaxTrials bounds the random splitting attempts per equal-degree product.
const DefaultMaxTrials = 64

// Factor is an irreducible polynomial and its multiplicity.
type Factor struct {
	Poly         *big.Int
	Multiplicity int
}

// Factorization is the result of Factorize. Unresolved holds products that
// the randomized splitting step could not break within its trial budget;
// each one is known to be a product of distinct irreducibles of equal degree.
type Factorization struct {
	Factors    []Factor
	Unresolved []Factor
}

// Options tunes Factorize. The zero value uses DefaultMaxTrials and seed 0.
type Options struct {
	MaxTrials int
	Seed      uint64
}

// Complete reports whether every factor was resolved to an irreducible.
func (f *Factorization) Complete() bool {
	return len(f.Unresolved) == 0
}

// Multiplicity returns how many times p occurs among the resolved factors.
func (f *Factorization) Multiplicity(p *big.Int) int {
	for _, factor := range f.Factors {
		if factor.Poly.Cmp(p) == 0 {
			return factor.Multiplicity
		}
	}
	return 0
}

// Product multiplies resolved and unresolved factors back together.
func (f *Factorization) Product() *big.Int {
	result := One()
	for _, list := range [][]Factor{f.Factors, f.Unresolved} {
		for _, factor := range list {
			for i := 0; i < factor.Multiplicity; i++ {
				result = Mul(result, factor.Poly)
			}
		}
	}
	return result
}

func (f *Factorization) String() string {
	parts := make([]string, 0, len(f.Factors)+len(f.Unresolved))
	render := func(factor Factor, suffix string) string {
		s := "(" + Format(factor.Poly) + ")"
		if factor.Multiplicity > 1 {
			s += fmt.Sprintf("^%d", factor.Multiplicity)
		}
		return s + suffix
	}
	for _, factor := range f.Factors {
		parts = append(parts, render(factor, ""))
	}
	for _, factor := range f.Unresolved {
		parts = append(parts, render(factor, "?"))
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, " * ")
}

// Factorize splits p into irreducible factors. Factors of x are stripped
// first, repeated factors are separated with the formal derivative, each
// square-free part is grouped by factor degree and every group is split with
// random trace polynomials in the Cantor-Zassenhaus manner.
func Factorize(p *big.Int, opts *Options) (*Factorization, error) {
	if p.Sign() == 0 {
		return nil, ErrZeroPolynomial
	}

	f := &factorizer{
		maxTrials:  DefaultMaxTrials,
		resolved:   make(map[string]*Factor),
		unresolved: make(map[string]*Factor),
	}
	var seed uint64
	if opts != nil {
		if opts.MaxTrials > 0 {
			f.maxTrials = opts.MaxTrials
		}
		seed = opts.Seed
	}
	f.rng = rand.New(rand.NewPCG(seed, 0x9E3779B97F4A7C15))

	rem := new(big.Int).Set(p)
	xCount := 0
	for rem.BitLen() > 1 && rem.Bit(0) == 0 {
		rem.Rsh(rem, 1)
		xCount++
	}
	if xCount > 0 {
		f.add(f.resolved, X(), xCount)
	}

	f.squareFree(rem, 1)

	return &Factorization{
		Factors:    sortedFactors(f.resolved),
		Unresolved: sortedFactors(f.unresolved),
	}, nil
}

type factorizer struct {
	rng        *rand.Rand
	maxTrials  int
	resolved   map[string]*Factor
	unresolved map[string]*Factor
}

func (f *factorizer) add(into map[string]*Factor, p *big.Int, multiplicity int) {
	key := p.Text(16)
	if existing, ok := into[key]; ok {
		existing.Multiplicity += multiplicity
		return
	}
	into[key] = &Factor{Poly: new(big.Int).Set(p), Multiplicity: multiplicity}
}

// squareFree adds the factors of p, each counted multiplicity times.
func (f *factorizer) squareFree(p *big.Int, multiplicity int) {
	switch n := Degree(p); {
	case n <= 0:
		return
	case n == 1:
		f.add(f.resolved, p, multiplicity)
		return
	}

	d := Derivative(p)
	if d.Sign() == 0 {
		f.squareFree(sqrt(p), 2*multiplicity)
		return
	}

	g := GCD(p, d)
	if Degree(g) > 0 {
		q, _ := DivMod(p, g)
		f.squareFree(g, multiplicity)
		f.squareFree(q, multiplicity)
		return
	}

	f.distinctDegree(p, multiplicity)
}

// distinctDegree separates a square-free p into products of irreducibles
// sharing one degree: gcd(p, x^(2^d) - x) collects every factor of degree d.
func (f *factorizer) distinctDegree(p *big.Int, multiplicity int) {
	rem := new(big.Int).Set(p)
	h := X()
	for d := 1; 2*d <= Degree(rem); d++ {
		h = MulMod(h, h, rem)
		g := GCD(rem, Add(h, X()))
		if Degree(g) > 0 {
			f.equalDegree(g, d, multiplicity)
			rem, _ = DivMod(rem, g)
			h = Mod(h, rem)
		}
	}
	if Degree(rem) > 0 {
		f.add(f.resolved, rem, multiplicity)
	}
}

// equalDegree splits g, a product of distinct irreducibles of degree d.
func (f *factorizer) equalDegree(g *big.Int, d, multiplicity int) {
	n := Degree(g)
	if n == d {
		f.add(f.resolved, g, multiplicity)
		return
	}

	for trial := 0; trial < f.maxTrials; trial++ {
		a := f.randomBelow(n)
		if Degree(a) <= 0 {
			continue
		}
		h := GCD(g, trace(a, d, g))
		if dh := Degree(h); dh > 0 && dh < n {
			q, _ := DivMod(g, h)
			f.equalDegree(h, d, multiplicity)
			f.equalDegree(q, d, multiplicity)
			return
		}
	}

	f.add(f.unresolved, g, multiplicity)
}

// randomBelow returns a random polynomial of degree below n.
func (f *factorizer) randomBelow(n int) *big.Int {
	a := new(big.Int)
	for i := 0; i < n; i++ {
		if f.rng.Uint64()&1 == 1 {
			a.SetBit(a, i, 1)
		}
	}
	return a
}

// trace returns a + a^2 + a^4 + ... + a^(2^(d-1)) mod m. Modulo each
// degree-d factor of m this lands in GF(2), which splits m in two.
func trace(a *big.Int, d int, m *big.Int) *big.Int {
	s := Mod(a, m)
	t := new(big.Int).Set(s)
	for i := 1; i < d; i++ {
		s = MulMod(s, s, m)
		t.Xor(t, s)
	}
	return t
}

func sortedFactors(m map[string]*Factor) []Factor {
	result := make([]Factor, 0, len(m))
	for _, factor := range m {
		result = append(result, *factor)
	}
	sort.Slice(result, func(i, j int) bool {
		di, dj := Degree(result[i].Poly), Degree(result[j].Poly)
		if di != dj {
			return di < dj
		}
		return result[i].Poly.Cmp(result[j].Poly) < 0
	})
	return result
}
