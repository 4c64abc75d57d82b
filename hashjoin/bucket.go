package hashjoin

import "sort"

// bucketEntry is spec.md §3's Entry{hash, position}.
type bucketEntry struct {
	hash     uint32
	position uint32
}

// CollisionBucket is the sorted (hash, position) list of spec.md §4.2:
// append-only during build, sorted once, then read-only with an internal
// iteration cursor. The teacher's own hash-map structure
// (datalog/executor/tuple_key.go's TupleKeyMap) deliberately avoids a
// sorted layout in favor of unsorted linear collision chains, so this is
// new code written to spec.md's stated design directly, using the
// standard library's sort.Sort/sort.Search the way any idiomatic Go
// sorted-slice structure would (no pack member uses a third-party sorted
// container for an analogous structure).
type CollisionBucket struct {
	entries []bucketEntry
	sorted  bool

	cursor      int
	cursorHash  uint32
	cursorValid bool
}

func newCollisionBucket(prealloc int) *CollisionBucket {
	return &CollisionBucket{entries: make([]bucketEntry, 0, prealloc)}
}

// add appends an entry; buckets are append-only during build (spec.md §4.2).
func (b *CollisionBucket) add(hash uint32, position uint32) {
	b.entries = append(b.entries, bucketEntry{hash: hash, position: position})
	b.sorted = false
}

// sort orders entries by hash ascending. Stability is not required
// (spec.md §4.2), so plain sort.Sort suffices.
func (b *CollisionBucket) sort() {
	if b.sorted {
		return
	}
	sort.Sort(byHash(b.entries))
	b.sorted = true
}

type byHash []bucketEntry

func (s byHash) Len() int           { return len(s) }
func (s byHash) Less(i, j int) bool { return s[i].hash < s[j].hash }
func (s byHash) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// locate performs a binary search for the lowest entry with the given
// hash and positions the cursor there. On "not found" the cursor is
// invalidated, per spec.md §4.2.
func (b *CollisionBucket) locate(hash uint32) bool {
	idx := sort.Search(len(b.entries), func(i int) bool {
		return b.entries[i].hash >= hash
	})
	if idx >= len(b.entries) || b.entries[idx].hash != hash {
		b.cursorValid = false
		return false
	}
	b.cursor = idx
	b.cursorHash = hash
	b.cursorValid = true
	return true
}

// iterate returns the position at the cursor if its hash matches, and
// advances the cursor; otherwise invalidates the cursor and returns
// false, per spec.md §4.2.
func (b *CollisionBucket) iterate(hash uint32) (uint32, bool) {
	if !b.cursorValid || b.cursorHash != hash || b.cursor >= len(b.entries) || b.entries[b.cursor].hash != hash {
		b.cursorValid = false
		return 0, false
	}
	pos := b.entries[b.cursor].position
	b.cursor++
	return pos, true
}

// len reports the current entry count, used by HashTable's one-shot
// rehash to decide average occupancy.
func (b *CollisionBucket) len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
