package keyenc

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/mrgleba/firebird/value"
)

func textDesc(s string) value.Descriptor {
	return value.Descriptor{DType: value.Text, Bytes: []byte(s)}
}

func TestEncodeSameInputSameHash(t *testing.T) {
	spec := NewSpec([]int{8}, nil)
	buf1 := make([]byte, spec.TotalKeyLength)
	buf2 := make([]byte, spec.TotalKeyLength)

	h1, null1 := spec.Encode(buf1, []value.Descriptor{textDesc("ab")})
	h2, null2 := spec.Encode(buf2, []value.Descriptor{textDesc("ab")})

	assert.Equal(t, h1, h2)
	assert.Equal(t, buf1, buf2)
	assert.False(t, null1)
	assert.False(t, null2)
}

func TestEncodeTextPaddedWithSpaces(t *testing.T) {
	spec := NewSpec([]int{4}, nil)
	buf := make([]byte, spec.TotalKeyLength)
	spec.Encode(buf, []value.Descriptor{textDesc("ab")})
	assert.Equal(t, []byte("ab  "), buf)
}

func TestEncodeNullSetsFlagAndZeroesSlot(t *testing.T) {
	spec := NewSpec([]int{4}, nil)
	buf := []byte{1, 2, 3, 4}
	_, anyNull := spec.Encode(buf, []value.Descriptor{{DType: value.Text, Null: true}})
	assert.True(t, anyNull)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf)
}

func TestEncodeSignedZeroFloatsCollapse(t *testing.T) {
	spec := NewSpec([]int{8}, nil)
	bufPos := make([]byte, spec.TotalKeyLength)
	bufNeg := make([]byte, spec.TotalKeyLength)

	hPos, _ := spec.Encode(bufPos, []value.Descriptor{{DType: value.Float64, F64: 0.0}})
	hNeg, _ := spec.Encode(bufNeg, []value.Descriptor{{DType: value.Float64, F64: math.Copysign(0, -1)}})

	assert.Equal(t, hPos, hNeg)
	assert.Equal(t, bufPos, bufNeg)
}

func TestEncodeDecimal64EndToEnd(t *testing.T) {
	spec := NewSpec([]int{8}, nil)
	buf1 := make([]byte, spec.TotalKeyLength)
	buf2 := make([]byte, spec.TotalKeyLength)
	buf3 := make([]byte, spec.TotalKeyLength)

	desc := func(d decimal.Decimal) value.Descriptor {
		return value.Descriptor{DType: value.Decimal64, Dec64: value.Decimal64Value{D: d}}
	}

	h1, _ := spec.Encode(buf1, []value.Descriptor{desc(decimal.New(12345, -2))})
	h2, _ := spec.Encode(buf2, []value.Descriptor{desc(decimal.New(12345, -2))})
	h3, _ := spec.Encode(buf3, []value.Descriptor{desc(decimal.New(99999999000000, 0))})

	assert.Equal(t, h1, h2)
	assert.Equal(t, buf1, buf2)
	assert.NotEqual(t, h1, h3)
	assert.NotEqual(t, buf1, buf3)
}

func TestEncodeDecimal128EndToEnd(t *testing.T) {
	spec := NewSpec([]int{16}, nil)
	buf1 := make([]byte, spec.TotalKeyLength)
	buf2 := make([]byte, spec.TotalKeyLength)

	desc := func(d decimal.Decimal) value.Descriptor {
		return value.Descriptor{DType: value.Decimal128, Dec128: value.Decimal128Value{D: d}}
	}

	h1, _ := spec.Encode(buf1, []value.Descriptor{desc(decimal.New(123456789012345, 3))})
	h2, _ := spec.Encode(buf2, []value.Descriptor{desc(decimal.New(987654321098765, 3))})

	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, buf1, buf2)
}

// TextCollated is the one writeKey branch that delegates to a real
// external collaborator (golang.org/x/text/collate) rather than a plain
// byte copy; exercise it end to end through Spec.Encode rather than unit
// testing value.CollationService in isolation. The slot is sized to hold
// the whole collation key: case differences sit at the tertiary level,
// after the primary and secondary weights, and a shorter slot would
// truncate them away.
func TestEncodeTextCollatedEndToEnd(t *testing.T) {
	svc := value.NewCollationService(language.Und)
	spec := NewSpec([]int{64}, svc)
	buf1 := make([]byte, spec.TotalKeyLength)
	buf2 := make([]byte, spec.TotalKeyLength)
	buf3 := make([]byte, spec.TotalKeyLength)

	collated := func(s string) value.Descriptor {
		return value.Descriptor{DType: value.TextCollated, Bytes: []byte(s)}
	}

	h1, _ := spec.Encode(buf1, []value.Descriptor{collated("resume")})
	h2, _ := spec.Encode(buf2, []value.Descriptor{collated("resume")})
	h3, _ := spec.Encode(buf3, []value.Descriptor{collated("RESUME")})

	assert.Equal(t, h1, h2)
	assert.Equal(t, buf1, buf2)
	// FlavorUnique (the only flavor writeKey ever requests, per
	// value.KeyFlavor's doc comment) is case-sensitive, so a
	// differently-cased string must not collide with the original.
	assert.NotEqual(t, h1, h3)
	assert.NotEqual(t, buf1, buf3)
}

func TestWriteUTCScalarDropsZone(t *testing.T) {
	utc := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	loc := time.FixedZone("test", 3600)
	zoned := time.Date(2024, 1, 1, 13, 0, 0, 0, loc)

	slotA := make([]byte, 8)
	slotB := make([]byte, 8)
	writeUTCScalar(slotA, utc)
	writeUTCScalar(slotB, zoned)

	assert.Equal(t, slotA, slotB)
}
