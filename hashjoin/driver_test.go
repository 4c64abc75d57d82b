package hashjoin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrgleba/firebird/keyenc"
	"github.com/mrgleba/firebird/recsrc"
	"github.com/mrgleba/firebird/value"
)

// keyOf extracts field 0 of a Record as a text key descriptor; every
// fixture row in this file carries its join key in position 0.
func keyOf(row recsrc.Record) (value.Descriptor, error) {
	s, ok := row[0].(string)
	if !ok {
		return value.Descriptor{Null: true, DType: value.Text}, nil
	}
	return value.Descriptor{DType: value.Text, Bytes: []byte(s)}, nil
}

func keySpec() keyenc.Spec {
	return keyenc.NewSpec([]int{8}, nil)
}

func substream(rows ...recsrc.Record) SubStream {
	return SubStream{
		Source: &sliceSource{rows: rows},
		Keys:   []KeyExpr{keyOf},
		Spec:   keySpec(),
	}
}

func drainAll(t *testing.T, d *Driver) []recsrc.Record {
	t.Helper()
	ctx := recsrc.NewExecContext(nil)
	require.NoError(t, d.Open(ctx))
	var out []recsrc.Record
	for {
		row, ok, err := d.GetRecord(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, row)
	}
	require.NoError(t, d.Close(ctx))
	return out
}

// S1: simple two-way join, one match per leader row.
func TestDriverTwoWayJoin(t *testing.T) {
	leader := substream(recsrc.Record{"a"}, recsrc.Record{"b"})
	inner := substream(recsrc.Record{"a", 1}, recsrc.Record{"b", 2}, recsrc.Record{"c", 3})

	d := New(leader, []SubStream{inner})
	out := drainAll(t, d)

	require.Len(t, out, 2)
	assert.Equal(t, recsrc.Record{"a", "a", 1}, out[0])
	assert.Equal(t, recsrc.Record{"b", "b", 2}, out[1])
}

// S2: three-way Cartesian cascade — two inner streams sharing the same
// key each contribute multiple rows, so one leader row must yield the
// full cross product (2 x 3 = 6 combinations).
func TestDriverThreeWayCartesianCascade(t *testing.T) {
	leader := substream(recsrc.Record{"k"})
	inner1 := substream(recsrc.Record{"k", "i1-a"}, recsrc.Record{"k", "i1-b"})
	inner2 := substream(
		recsrc.Record{"k", "i2-a"},
		recsrc.Record{"k", "i2-b"},
		recsrc.Record{"k", "i2-c"},
	)

	d := New(leader, []SubStream{inner1, inner2})
	out := drainAll(t, d)

	assert.Len(t, out, 6)
}

// S3: two rows hash to the same bucket slot but carry different keys;
// the join must not conflate them (hash collision, not key equality).
func TestDriverHashCollisionDoesNotMatchDifferentKeys(t *testing.T) {
	leader := substream(recsrc.Record{"x"}, recsrc.Record{"y"})
	inner := substream(recsrc.Record{"x", 1}, recsrc.Record{"y", 2})

	d := New(leader, []SubStream{inner}, WithHashSize(1))
	out := drainAll(t, d)

	require.Len(t, out, 2)
	assert.Equal(t, recsrc.Record{"x", "x", 1}, out[0])
	assert.Equal(t, recsrc.Record{"y", "y", 2}, out[1])
}

// S4: +0.0 and -0.0 must match under the signed-zero collapse rule.
func TestDriverSignedZeroFloatsMatch(t *testing.T) {
	floatKey := func(row recsrc.Record) (value.Descriptor, error) {
		return value.Descriptor{DType: value.Float64, F64: row[0].(float64)}, nil
	}
	spec := keyenc.NewSpec([]int{8}, nil)

	leader := SubStream{
		Source: &sliceSource{rows: []recsrc.Record{{0.0}}},
		Keys:   []KeyExpr{floatKey},
		Spec:   spec,
	}
	inner := SubStream{
		Source: &sliceSource{rows: []recsrc.Record{{math.Copysign(0, -1), "matched"}}},
		Keys:   []KeyExpr{floatKey},
		Spec:   spec,
	}

	d := New(leader, []SubStream{inner})
	out := drainAll(t, d)
	require.Len(t, out, 1)
	assert.Equal(t, "matched", out[0][2])
}

// S4 (32-bit width): the signed-zero collapse rule applies equally to
// Float32, per spec.md §8 invariant 8 ("both float widths").
func TestDriverSignedZeroFloat32Match(t *testing.T) {
	floatKey := func(row recsrc.Record) (value.Descriptor, error) {
		return value.Descriptor{DType: value.Float32, F32: row[0].(float32)}, nil
	}
	spec := keyenc.NewSpec([]int{4}, nil)

	leader := SubStream{
		Source: &sliceSource{rows: []recsrc.Record{{float32(0.0)}}},
		Keys:   []KeyExpr{floatKey},
		Spec:   spec,
	}
	inner := SubStream{
		Source: &sliceSource{rows: []recsrc.Record{{float32(math.Copysign(0, -1)), "matched"}}},
		Keys:   []KeyExpr{floatKey},
		Spec:   spec,
	}

	d := New(leader, []SubStream{inner})
	out := drainAll(t, d)
	require.Len(t, out, 1)
	assert.Equal(t, "matched", out[0][2])
}

// S5: default strict NULL exclusion — a NULL-keyed leader row matches
// nothing even if an inner row is also NULL-keyed.
func TestDriverNullKeysExcludedByDefault(t *testing.T) {
	leader := substream(recsrc.Record{nil})
	inner := substream(recsrc.Record{nil, "x"})

	d := New(leader, []SubStream{inner})
	out := drainAll(t, d)
	assert.Empty(t, out)
}

// S5b: with WithNullExclusion(false), a NULL-keyed leader row matches a
// NULL-keyed inner row, since both encode to the same all-zero key slot
// and the driver no longer skips null-flagged rows at build or probe
// time. This is the permissive, raw hash-equality behavior DESIGN.md's
// Open Question 2 names as the reason the option exists.
func TestDriverNullKeysMatchWhenExclusionDisabled(t *testing.T) {
	leader := substream(recsrc.Record{nil})
	inner := substream(recsrc.Record{nil, "x"})

	d := New(leader, []SubStream{inner}, WithNullExclusion(false))
	out := drainAll(t, d)

	require.Len(t, out, 1)
	assert.Equal(t, "x", out[0][2])
}

// S6: an empty inner stream leaves every bucket absent, so setup fails
// for each leader row in turn and the join yields no rows.
func TestDriverEmptyInnerShortCircuits(t *testing.T) {
	leader := substream(recsrc.Record{"a"}, recsrc.Record{"b"})
	emptyInner := substream()

	d := New(leader, []SubStream{emptyInner})
	out := drainAll(t, d)
	assert.Empty(t, out)
}

// Build runs exactly once per Open, even across many leader rows.
func TestDriverBuildsOnce(t *testing.T) {
	leaderSrc := &sliceSource{rows: []recsrc.Record{{"a"}, {"b"}, {"c"}}}
	innerSrc := &sliceSource{rows: []recsrc.Record{{"a", 1}, {"b", 2}, {"c", 3}}}

	leader := SubStream{Source: leaderSrc, Keys: []KeyExpr{keyOf}, Spec: keySpec()}
	inner := SubStream{Source: innerSrc, Keys: []KeyExpr{keyOf}, Spec: keySpec()}

	d := New(leader, []SubStream{inner})
	out := drainAll(t, d)

	assert.Len(t, out, 3)
	assert.Equal(t, 1, innerSrc.opens)
}

// Close is idempotent: a second Close after the first must not error.
func TestDriverCloseIsIdempotent(t *testing.T) {
	leader := substream(recsrc.Record{"a"})
	inner := substream(recsrc.Record{"a", 1})
	d := New(leader, []SubStream{inner})

	ctx := recsrc.NewExecContext(nil)
	require.NoError(t, d.Open(ctx))
	_, _, _ = d.GetRecord(ctx)
	require.NoError(t, d.Close(ctx))
	require.NoError(t, d.Close(ctx))
}

// LockRecord is unconditionally unsupported.
func TestDriverLockRecordUnsupported(t *testing.T) {
	leader := substream(recsrc.Record{"a"})
	inner := substream(recsrc.Record{"a", 1})
	d := New(leader, []SubStream{inner})

	err := d.LockRecord(recsrc.NewExecContext(nil))
	require.Error(t, err)
	assert.True(t, recsrc.IsKind(err, recsrc.KindUnsupported))
}

// Re-opening the driver produces the same results deterministically.
func TestDriverReopenIsDeterministic(t *testing.T) {
	leader := substream(recsrc.Record{"a"}, recsrc.Record{"b"})
	inner := substream(recsrc.Record{"a", 1}, recsrc.Record{"b", 2})
	d := New(leader, []SubStream{inner})

	first := drainAll(t, d)
	second := drainAll(t, d)
	assert.Equal(t, first, second)
}
