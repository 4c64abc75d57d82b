package hashjoin

import "github.com/mrgleba/firebird/recsrc"

// MaterializedInner is spec.md §4.4's buffered random-access view over an
// inner stream's source: it buffers rows as they are read during build
// and later replays them by position during the probe cascade. Grounded
// on datalog/executor/buffered_iterator.go's BufferedIterator (which
// buffers a streaming iterator's rows to support re-iteration), adapted
// from "replay from the start" semantics to spec.md's
// locate(position)/getRecord() random-access contract.
type MaterializedInner struct {
	source   recsrc.RecordSource
	rows     []recsrc.Record
	position int
	exhausted bool
}

// NewMaterializedInner wraps source; it does not read anything until
// Open/GetRecord are called.
func NewMaterializedInner(source recsrc.RecordSource) *MaterializedInner {
	return &MaterializedInner{source: source, position: -1}
}

// Open prepares the underlying source, per spec.md §4.4: "may be called
// repeatedly per operator open but only once per build."
func (m *MaterializedInner) Open(ctx *recsrc.ExecContext) error {
	m.rows = m.rows[:0]
	m.position = -1
	m.exhausted = false
	return m.source.Open(ctx)
}

// GetRecord advances to the next row. Called repeatedly during build
// (until exhausted) to populate the buffer, and once after each Locate
// during the probe cascade to replay an already-buffered row.
func (m *MaterializedInner) GetRecord(ctx *recsrc.ExecContext) (recsrc.Record, bool, error) {
	m.position++

	if m.position < len(m.rows) {
		return m.rows[m.position], true, nil
	}

	if m.exhausted {
		return nil, false, nil
	}

	row, ok, err := m.source.GetRecord(ctx)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		m.exhausted = true
		m.position--
		return nil, false, nil
	}

	m.rows = append(m.rows, row)
	return row, true, nil
}

// Locate repositions the cursor to a previously produced row index;
// position values start at 0 and correspond 1:1 to build order
// (spec.md §4.4). The next GetRecord call replays that row.
func (m *MaterializedInner) Locate(ctx *recsrc.ExecContext, position int) error {
	if position < 0 || position >= len(m.rows) {
		return recsrc.Fail(recsrc.KindChildFailure, "locate out of range", nil)
	}
	m.position = position - 1
	return nil
}

// Len reports how many rows have been buffered so far; used by build()
// to derive the position argument to HashTable.put.
func (m *MaterializedInner) Len() int {
	return len(m.rows)
}

// Close releases the buffer and closes the underlying source.
func (m *MaterializedInner) Close(ctx *recsrc.ExecContext) error {
	m.rows = nil
	m.position = -1
	return m.source.Close(ctx)
}
