package hashjoin

import (
	"github.com/mrgleba/firebird/keyenc"
	"github.com/mrgleba/firebird/recsrc"
	"github.com/mrgleba/firebird/value"
)

// KeyExpr is the narrow expression-evaluator collaborator spec.md §6
// names: "evaluate(ctx, expr) -> Descriptor | null-flag". The join never
// interprets an expression itself; it only asks for the Descriptor a row
// produces for one key position.
type KeyExpr func(row recsrc.Record) (value.Descriptor, error)

// SubStream is spec.md §3's per-input descriptor. The leader is a
// SubStream without a Buffer; every inner SubStream carries one.
type SubStream struct {
	Source recsrc.RecordSource
	Keys   []KeyExpr
	Spec   keyenc.Spec

	// Buffer is non-nil only for inner streams, set by Driver's build()
	// and cleared again when the Driver is reopened or closed.
	Buffer *MaterializedInner
}

// evaluate runs every key expression against row, returning one
// Descriptor per key in order, plus whether any of them was NULL.
func (s SubStream) evaluate(row recsrc.Record) ([]value.Descriptor, bool, error) {
	out := make([]value.Descriptor, len(s.Keys))
	anyNull := false
	for i, expr := range s.Keys {
		d, err := expr(row)
		if err != nil {
			return nil, false, err
		}
		out[i] = d
		if d.Null {
			anyNull = true
		}
	}
	return out, anyNull, nil
}
