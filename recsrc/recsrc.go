// Package recsrc defines the record-source contract the hash-join
// operator presents to its parent plan node and requires of its
// children, per spec.md §6 and §9's "capability set" guidance.
package recsrc

import "context"

// Record is a single output row. The join never interprets its
// contents; it only moves rows between children and its own output slot.
// Concrete record sources decide what a Record actually holds.
type Record = []interface{}

// RecordSource is the minimal capability set a leader or inner child
// must support: open/getRecord/close, matching spec.md §4.4's contract
// minus random access.
type RecordSource interface {
	Open(ctx *ExecContext) error
	GetRecord(ctx *ExecContext) (Record, bool, error)
	Close(ctx *ExecContext) error
}

// Locator extends RecordSource with random access by position, required
// of every inner stream's materialized view (spec.md §4.4).
type Locator interface {
	RecordSource
	Locate(ctx *ExecContext, position int) error
}

// ExecContext is the per-request execution context threaded through
// every call, modeling spec.md §5's single-threaded cooperative
// scheduling: a request owns one ExecContext and advances it
// sequentially, checking for cancellation at the top of each loop
// iteration (spec.md §5 "cooperative reschedule call").
type ExecContext struct {
	ctx   context.Context
	Debug bool
}

// NewExecContext wraps a context.Context for one request's execution.
func NewExecContext(ctx context.Context) *ExecContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExecContext{ctx: ctx}
}

// Context returns the underlying context.Context.
func (c *ExecContext) Context() context.Context {
	return c.ctx
}

// Check honors an abort status set on the enclosing request, per
// spec.md §5: "the operator must honor it by propagating the failure
// upward on the next call."
func (c *ExecContext) Check() error {
	select {
	case <-c.ctx.Done():
		return Fail(KindChildFailure, "request aborted", c.ctx.Err())
	default:
		return nil
	}
}
