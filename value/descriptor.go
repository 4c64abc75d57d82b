// Package value models the typed scalar descriptors that key expressions
// evaluate to. It is a narrow stand-in for the expression evaluator and
// value-descriptor collaborators spec.md treats as external services
// (spec.md §6): callers hand the join a Descriptor per key per row, and
// the join never looks past this package's vocabulary of types.
package value

import "time"

// DType enumerates the scalar kinds the key encoder knows how to
// normalize, following spec.md §4.1's per-type table.
type DType int

const (
	Text DType = iota
	TextCollated
	Time
	TimeStamp
	Decimal64
	Decimal128
	Float32
	Float64
	FixedScalar
)

// Descriptor carries one evaluated key-expression result, mirroring the
// evaluator/value-descriptor contract of spec.md §6: dtype, length,
// address (here a Go byte slice or typed field), text-type, and a null
// flag set by the expression evaluator.
type Descriptor struct {
	DType    DType
	Null     bool
	Length   int    // declared length for Text/FixedScalar
	Bytes    []byte // raw bytes for Text/FixedScalar
	TextType int    // collation id, meaningful only when DType == TextCollated
	Time     time.Time
	Dec64    Decimal64Value
	Dec128   Decimal128Value
	F32      float32
	F64      float64
}

func (d Descriptor) IsText() bool      { return d.DType == Text || d.DType == TextCollated }
func (d Descriptor) IsTime() bool      { return d.DType == Time }
func (d Descriptor) IsTimeStamp() bool { return d.DType == TimeStamp }
func (d Descriptor) IsDecFloat() bool  { return d.DType == Decimal64 || d.DType == Decimal128 }
