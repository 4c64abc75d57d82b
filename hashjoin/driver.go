// Package hashjoin implements the multi-way hash-join operator of
// spec.md: one leader (probe) stream joined against N inner (build)
// streams on equality of encoded keys. See SPEC_FULL.md for the full
// module map and DESIGN.md for per-part grounding.
package hashjoin

import "github.com/mrgleba/firebird/recsrc"

// Driver is the Join Driver state machine of spec.md §4.5: it owns the
// per-request impure state (hash table, leader buffer, flags) and drives
// the build-once / probe-many lifecycle a parent plan node pulls via
// Open/GetRecord/Close.
type Driver struct {
	cfg           Config
	logger        Logger
	nullExclusion bool

	leader SubStream
	inners []SubStream

	// impure state, recreated on each Open (spec.md §3).
	isOpen     bool
	mustRead   bool
	first      bool
	built      bool
	hashTable  *HashTable
	leaderBuf  []byte
	leaderHash uint32

	currentLeader recsrc.Record
	currentInner  []recsrc.Record
}

// New constructs a Driver over one leader and one or more inner
// SubStreams, per spec.md §3's "length >= 1" inner-stream requirement.
func New(leader SubStream, inners []SubStream, opts ...Option) *Driver {
	d := &Driver{
		cfg:           DefaultConfig(),
		logger:        noopLogger{},
		nullExclusion: true,
		leader:        leader,
		inners:        append([]SubStream(nil), inners...),
		currentInner:  make([]recsrc.Record, len(inners)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open implements spec.md §4.5 "open": clears any impure state left from
// a prior open, then opens only the leader — inner streams are opened
// lazily at build() (spec.md's documented empty-outer optimization).
func (d *Driver) Open(ctx *recsrc.ExecContext) error {
	if err := d.releaseImpure(ctx); err != nil {
		return err
	}

	d.isOpen = true
	d.mustRead = true
	d.first = false
	d.built = false

	if err := d.leader.Source.Open(ctx); err != nil {
		return recsrc.Fail(recsrc.KindChildFailure, "leader open failed", err)
	}
	d.leaderBuf = make([]byte, d.leader.Spec.TotalKeyLength)
	return nil
}

// releaseImpure drops the hash table and leader buffer and closes any
// inner buffers left open from a previous Open, per spec.md §4.5 step 1.
func (d *Driver) releaseImpure(ctx *recsrc.ExecContext) error {
	var firstErr error
	for i := range d.inners {
		if d.inners[i].Buffer != nil {
			if err := d.inners[i].Buffer.Close(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
			d.inners[i].Buffer = nil
		}
	}
	if d.isOpen {
		if err := d.leader.Source.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.hashTable = nil
	d.leaderBuf = nil
	d.leaderHash = 0
	d.built = false
	d.isOpen = false
	return firstErr
}

// GetRecord implements spec.md §4.5's getRecord loop exactly.
func (d *Driver) GetRecord(ctx *recsrc.ExecContext) (recsrc.Record, bool, error) {
	if !d.isOpen {
		return nil, false, nil
	}

	for {
		if err := ctx.Check(); err != nil {
			return nil, false, err
		}

		if d.mustRead {
			row, ok, err := d.leader.Source.GetRecord(ctx)
			if err != nil {
				return nil, false, recsrc.Fail(recsrc.KindChildFailure, "leader read failed", err)
			}
			if !ok {
				return nil, false, nil
			}
			d.currentLeader = row

			if !d.built {
				if err := d.build(ctx); err != nil {
					return nil, false, err
				}
			}

			descs, anyNull, err := d.leader.evaluate(row)
			if err != nil {
				return nil, false, err
			}
			if d.nullExclusion && anyNull {
				continue
			}
			hash, _ := d.leader.Spec.Encode(d.leaderBuf, descs)
			d.leaderHash = hash
			d.logger.Probef("leader row hash=%d", hash)

			if !d.hashTable.setup(hash) {
				continue
			}
			d.mustRead = false
			d.first = true
		}

		if d.first {
			ok, err := d.fetchAllFirst(ctx)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				d.mustRead = true
				continue
			}
			d.first = false
		} else {
			ok, err := d.fetch(ctx, len(d.inners)-1)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				d.mustRead = true
				continue
			}
		}

		return combine(d.currentLeader, d.currentInner), true, nil
	}
}

// fetchAllFirst pulls one row from every inner stream for a freshly
// set-up probe hash (spec.md §4.5 "Matched(first)").
func (d *Driver) fetchAllFirst(ctx *recsrc.ExecContext) (bool, error) {
	for s := 0; s < len(d.inners); s++ {
		ok, err := d.fetchOne(ctx, s)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// fetchOne advances stream s's cursor once against the current probe
// hash without any cascade, used by fetchAllFirst and as the base case
// fetch uses internally.
func (d *Driver) fetchOne(ctx *recsrc.ExecContext, s int) (bool, error) {
	pos, ok := d.hashTable.iterate(s, d.leaderHash)
	if !ok {
		return false, nil
	}
	if err := d.locateAndGet(ctx, s, pos); err != nil {
		return false, err
	}
	return true, nil
}

// fetch is spec.md §4.5's Cartesian-product cascade over inner stream
// index `target`, reimplemented as an explicit loop with a cursor index
// rather than recursion, per spec.md §9's design-notes guidance ("prefer
// an explicit loop with an index variable... to keep stack bounded").
// Behavior is equivalent to the recursive formulation in spec.md §4.5.
func (d *Driver) fetch(ctx *recsrc.ExecContext, target int) (bool, error) {
	s := target
	needReset := false

	for {
		if err := ctx.Check(); err != nil {
			return false, err
		}

		if needReset {
			d.hashTable.reset(s, d.leaderHash)
		}

		pos, ok := d.hashTable.iterate(s, d.leaderHash)
		if ok {
			if err := d.locateAndGet(ctx, s, pos); err != nil {
				return false, err
			}
			if s == target {
				return true, nil
			}
			d.logger.Cascadef("stream %d advanced, climbing back to %d", s, s+1)
			s++
			needReset = true
			continue
		}

		if s == 0 {
			return false, nil
		}
		d.logger.Cascadef("stream %d exhausted, cascading to %d", s, s-1)
		s--
		needReset = false
	}
}

// locateAndGet repositions inner stream s's materialized buffer to pos
// and pulls the row into the current combination.
func (d *Driver) locateAndGet(ctx *recsrc.ExecContext, s int, pos uint32) error {
	buf := d.inners[s].Buffer
	if err := buf.Locate(ctx, int(pos)); err != nil {
		return err
	}
	row, ok, err := buf.GetRecord(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return recsrc.Fail(recsrc.KindChildFailure, "inner buffer exhausted unexpectedly", nil)
	}
	d.currentInner[s] = row
	return nil
}

// build is spec.md §4.5's one-shot build(), invoked on the first leader
// row: opens every inner stream, fully materializes it through its
// buffer while hashing each row's key into the shared HashTable, then
// rehashes (if warranted) and sorts every bucket exactly once.
func (d *Driver) build(ctx *recsrc.ExecContext) error {
	d.hashTable = NewHashTable(len(d.inners), d.cfg)

	total := 0
	for i := range d.inners {
		buf := NewMaterializedInner(d.inners[i].Source)
		d.inners[i].Buffer = buf
		if err := buf.Open(ctx); err != nil {
			return recsrc.Fail(recsrc.KindChildFailure, "inner open failed", err)
		}

		keyBuf := make([]byte, d.inners[i].Spec.TotalKeyLength)
		count := 0
		for {
			if err := ctx.Check(); err != nil {
				return err
			}
			row, ok, err := buf.GetRecord(ctx)
			if err != nil {
				return recsrc.Fail(recsrc.KindChildFailure, "inner read failed", err)
			}
			if !ok {
				break
			}
			position := buf.Len() - 1

			descs, anyNull, err := d.inners[i].evaluate(row)
			if err != nil {
				return err
			}
			if d.nullExclusion && anyNull {
				continue
			}
			hash, _ := d.inners[i].Spec.Encode(keyBuf, descs)
			d.hashTable.put(i, hash, uint32(position))
			count++
		}
		d.logger.Buildf("stream %d: %d keyed rows", i, count)
		total += count
	}

	if total > d.cfg.MaxCapacity {
		return recsrc.Fail(recsrc.KindCapacityExceeded, "hash table exceeds declared capacity ceiling", nil)
	}

	d.hashTable.maybeRehash()
	d.hashTable.sort()
	d.built = true
	return nil
}

// combine assembles the output row from the leader and every inner
// stream's current row, in stream order.
func combine(leader recsrc.Record, inners []recsrc.Record) recsrc.Record {
	n := len(leader)
	for _, r := range inners {
		n += len(r)
	}
	out := make(recsrc.Record, 0, n)
	out = append(out, leader...)
	for _, r := range inners {
		out = append(out, r...)
	}
	return out
}

// Close implements spec.md §4.5's close: release hash table and leader
// buffer, close every inner buffered stream, close the leader. Repeated
// Close after the first has no observable effect (spec.md §8 property 7).
func (d *Driver) Close(ctx *recsrc.ExecContext) error {
	if !d.isOpen {
		return nil
	}
	return d.releaseImpure(ctx)
}

// LockRecord always fails, per spec.md §6.
func (d *Driver) LockRecord(ctx *recsrc.ExecContext) error {
	return recsrc.Fail(recsrc.KindUnsupported, "record lock not supported", nil)
}

// RefetchRecord returns a fixed true response: the current combination
// is already materialized via its children (spec.md §6).
func (d *Driver) RefetchRecord(ctx *recsrc.ExecContext) (bool, error) {
	return true, nil
}

// HashTableStats exposes the built hash table for diagnostics; nil
// until the first successful leader row has triggered build().
func (d *Driver) HashTableStats() *HashTable {
	return d.hashTable
}
