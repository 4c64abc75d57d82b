// Package keyenc implements the fixed-length, byte-comparable key image
// and 32-bit hash spec.md §4.1 calls the Key Encoder. One Spec describes
// the key layout shared by every row of a single stream (leader or
// inner); Encode walks a row's Descriptors and writes each key's
// normalized bytes at its fixed offset.
package keyenc

import (
	"math"
	"time"

	"github.com/mrgleba/firebird/value"
)

// Spec is the plan-time-immutable key layout for one stream: the byte
// length reserved for each key expression and their sum, matching
// spec.md §3's keyLengths[j]/totalKeyLength invariants.
type Spec struct {
	KeyLengths     []int
	TotalKeyLength int
	Collation      value.CollationService
}

// NewSpec computes a Spec from per-key declared lengths, mirroring the
// plan-time length computation spec.md §4.1 assumes already happened
// (string length, TIME/TIMESTAMP fixed size, Decimal64/128 fixed size,
// float width, or dsc_length for other fixed scalars).
func NewSpec(keyLengths []int, collation value.CollationService) Spec {
	total := 0
	for _, l := range keyLengths {
		total += l
	}
	return Spec{KeyLengths: append([]int(nil), keyLengths...), TotalKeyLength: total, Collation: collation}
}

// Encode normalizes vals into dst (which must be exactly
// s.TotalKeyLength bytes) and returns the 32-bit hash of the resulting
// key image. dst is zero-filled first per spec.md §4.1, so NULL keys,
// short text, and omitted tail bytes are deterministic.
//
// anyNull reports whether any of the per-key Descriptors was NULL, so
// callers that want strict SQL NULL exclusion (SPEC_FULL.md §4) can skip
// the row without re-walking it.
func (s Spec) Encode(dst []byte, vals []value.Descriptor) (hash uint32, anyNull bool) {
	for i := range dst {
		dst[i] = 0
	}

	offset := 0
	for j, v := range vals {
		length := s.KeyLengths[j]
		slot := dst[offset : offset+length]
		if v.Null {
			anyNull = true
			offset += length
			continue
		}
		writeKey(slot, v, s.Collation)
		offset += length
	}

	return Hash(dst), anyNull
}

// writeKey applies the per-type normalization rule from spec.md §4.1's
// table to one key's slot.
func writeKey(slot []byte, v value.Descriptor, collation value.CollationService) {
	switch v.DType {
	case value.Text:
		// Pad/copy with the type's move semantics: copy up to the
		// declared length, then fill the rest of the slot with the
		// CHAR pad byte (space).
		n := copy(slot, v.Bytes)
		for i := n; i < len(slot); i++ {
			slot[i] = ' '
		}

	case value.TextCollated:
		if collation != nil {
			collation.StringToKey(v.TextType, v.Bytes, slot, value.FlavorUnique)
		} else {
			copy(slot, v.Bytes)
		}

	case value.Time:
		writeUTCScalar(slot, v.Time)

	case value.TimeStamp:
		writeUTCScalar(slot, v.Time)

	case value.Decimal64, value.Decimal128:
		value.WriteDecimalKey(slot, v)

	case value.Float32:
		f := v.F32
		if f == 0 {
			// Signed-zero collapse: spec.md §4.1 rationale, +0.0 == -0.0.
			return
		}
		bits := math.Float32bits(f)
		slot[0] = byte(bits)
		slot[1] = byte(bits >> 8)
		slot[2] = byte(bits >> 16)
		slot[3] = byte(bits >> 24)

	case value.Float64:
		f := v.F64
		if f == 0 {
			return
		}
		bits := math.Float64bits(f)
		for i := 0; i < 8; i++ {
			slot[i] = byte(bits >> (8 * i))
		}

	default: // FixedScalar
		copy(slot, v.Bytes)
	}
}

// writeUTCScalar copies only the UTC instant, dropping zone information,
// per spec.md §4.1's TIME/TIMESTAMP rule: zoned and unzoned instants of
// the same moment must produce the same key.
func writeUTCScalar(slot []byte, t time.Time) {
	utc := t.UTC().UnixNano()
	for i := 0; i < len(slot) && i < 8; i++ {
		slot[i] = byte(utc >> (8 * i))
	}
}
