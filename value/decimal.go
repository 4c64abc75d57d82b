package value

import (
	"encoding/binary"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimal64Value and Decimal128Value wrap shopspring/decimal with a
// declared byte width, standing in for Firebird's Decimal64/Decimal128
// scalar types (spec.md §4.1).
type Decimal64Value struct {
	D decimal.Decimal
}

type Decimal128Value struct {
	D decimal.Decimal
}

// decimalStage is the aligned temporary spec.md §4.1 requires: the
// decimal type's makeKey is staged into a properly aligned int64 local,
// then copied byte-for-byte into the (possibly unaligned) key slot.
type decimalStage struct {
	coeff int64
}

// canonicalCoefficient64 strips trailing base-10 zeros from a decimal
// coefficient. Two representations of the same number differ only by an
// overall power-of-ten split between coefficient and exponent (c*10^e is
// invariant under c' = c*10^k, e' = e-k); fully reducing the coefficient
// this way collapses any such pair to the same integer regardless of
// which exponent each was originally staged at.
func canonicalCoefficient64(c int64) int64 {
	if c == 0 {
		return 0
	}
	for c%10 == 0 {
		c /= 10
	}
	return c
}

// canonicalCoefficientBig is canonicalCoefficient64's big.Int counterpart,
// for Decimal128's wider range.
func canonicalCoefficientBig(c *big.Int) *big.Int {
	if c.Sign() == 0 {
		return big.NewInt(0)
	}
	ten := big.NewInt(10)
	q, r := new(big.Int), new(big.Int)
	out := new(big.Int).Set(c)
	for {
		q.QuoRem(out, ten, r)
		if r.Sign() != 0 {
			return out
		}
		out.Set(q)
	}
}

// makeKey64 stages a Decimal64Value into an 8-byte byte-comparable key
// image: the full signed coefficient, canonicalized to strip scale
// ambiguity and sign bit flipped so two's-complement byte order tracks
// numeric order. Decimal64's declared 8-byte key length leaves no room
// alongside the coefficient for the exponent, so two materially
// different values may still share a key after canonicalization —
// acceptable under this operator's hash-equality-only contract (spec.md
// §4.5: callers re-check actual value equality downstream) — but the
// coefficient itself must never be truncated before canonicalizing, and
// two representations of the SAME value at different scales (e.g.
// decimal.New(500, 0) vs decimal.New(5000, -1)) must never produce
// different keys, since that would silently drop a match the probe is
// contractually required to find.
func makeKey64(v Decimal64Value) [8]byte {
	var stage decimalStage
	stage.coeff = canonicalCoefficient64(v.D.CoefficientInt64())

	var out [8]byte
	const signBit = uint64(1) << 63
	binary.BigEndian.PutUint64(out[:], uint64(stage.coeff)^signBit)
	return out
}

// makeKey128 stages a Decimal128Value into a 16-byte key image using the
// canonicalized coefficient's decimal string form (not the value's own
// String(), which carries the original, uncanonicalized exponent).
// Decimal128's wider range rules out the truncated int64 coefficient
// makeKey64 can use. Canonicalizing before staging gives the same
// same-value/different-scale guarantee makeKey64 provides, and dropping
// the exponent entirely (like makeKey64) means scale alone never
// distinguishes two values that would otherwise share this key.
func makeKey128(v Decimal128Value) [16]byte {
	var out [16]byte
	coeff := canonicalCoefficientBig(v.D.Coefficient())
	b := []byte(coeff.String())
	n := copy(out[:], b)
	for i := n; i < 16; i++ {
		out[i] = 0
	}
	return out
}

// WriteDecimalKey writes the type-defined key image for a Decimal64 or
// Decimal128 descriptor into dst, which must be exactly the declared key
// length for that type (8 or 16 bytes respectively).
func WriteDecimalKey(dst []byte, d Descriptor) {
	switch d.DType {
	case Decimal64:
		k := makeKey64(d.Dec64)
		copy(dst, k[:])
	case Decimal128:
		k := makeKey128(d.Dec128)
		copy(dst, k[:])
	}
}
