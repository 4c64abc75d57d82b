package hashjoin

// HashTable is spec.md §4.3's two-dimensional indexing: a flat vector of
// length streamCount*hashSize, each cell an optional owned
// CollisionBucket, per spec.md §9's explicit "do not use a mapping from
// key -> list; slot bucketing is the whole point" guidance.
type HashTable struct {
	cfg         Config
	streamCount int
	hashSize    int
	buckets     []*CollisionBucket

	currentSlot int
}

// NewHashTable allocates a hash table sized to streamCount inner streams,
// per spec.md §4.5's build() step: "Allocate hash table sized to
// inner-stream count."
func NewHashTable(streamCount int, cfg Config) *HashTable {
	size := cfg.HashSize
	if size <= 0 {
		size = DefaultConfig().HashSize
	}
	return &HashTable{
		cfg:         cfg,
		streamCount: streamCount,
		hashSize:    size,
		buckets:     make([]*CollisionBucket, streamCount*size),
	}
}

func (h *HashTable) index(stream, slot int) int {
	return stream*h.hashSize + slot
}

func (h *HashTable) slotOf(hash uint32) int {
	return int(hash % uint32(h.hashSize))
}

// put creates the bucket lazily on first insert, per spec.md §4.3.
func (h *HashTable) put(stream int, hash uint32, position uint32) {
	slot := h.slotOf(hash)
	idx := h.index(stream, slot)
	b := h.buckets[idx]
	if b == nil {
		b = newCollisionBucket(h.cfg.BucketPreallocate)
		h.buckets[idx] = b
	}
	b.add(hash, position)
}

// sort orders every non-absent bucket by hash, called once at the end of
// build (spec.md §4.3).
func (h *HashTable) sort() {
	for _, b := range h.buckets {
		if b != nil {
			b.sort()
		}
	}
}

// maybeRehash performs the bounded, one-shot rehash this module adds per
// SPEC_FULL.md §4 / DESIGN.md Open Question 1: if the average bucket
// occupancy exceeds cfg.RehashLoadFactor, grow hashSize (by doubling)
// and redistribute every existing entry, preserving their hashes and
// positions exactly — only the slot each entry lands in changes. Doubling
// stops as soon as hashSize reaches or passes cfg.MaxCapacity/1000, so a
// table that starts at or above that bound (as DefaultConfig's does) is
// never grown. Runs once, after every put() of build() and strictly
// before sort().
func (h *HashTable) maybeRehash() {
	if h.cfg.RehashLoadFactor <= 0 {
		return
	}
	total := 0
	for _, b := range h.buckets {
		total += b.len()
	}
	if total == 0 {
		return
	}
	avg := total / (h.streamCount * h.hashSize)
	if avg <= h.cfg.RehashLoadFactor {
		return
	}

	newSize := h.hashSize
	maxSize := h.cfg.MaxCapacity / 1000
	if maxSize <= 0 {
		maxSize = h.hashSize
	}
	for avg > h.cfg.RehashLoadFactor && newSize < maxSize {
		newSize *= 2
		avg = total / (h.streamCount * newSize)
	}
	if newSize == h.hashSize {
		return
	}

	old := h.buckets
	oldSize := h.hashSize
	h.hashSize = newSize
	h.buckets = make([]*CollisionBucket, h.streamCount*newSize)
	for stream := 0; stream < h.streamCount; stream++ {
		for slot := 0; slot < oldSize; slot++ {
			b := old[stream*oldSize+slot]
			if b == nil {
				continue
			}
			for _, e := range b.entries {
				h.put(stream, e.hash, e.position)
			}
		}
	}
}

// setup computes slot = hash mod hashSize and requires every inner
// stream's bucket to exist and locate(hash) to succeed. On any failure
// it returns false without changing currentSlot; on success it records
// currentSlot and returns true — spec.md §4.3's "is there at least one
// matching entry in every inner stream's bucket for this hash?"
func (h *HashTable) setup(hash uint32) bool {
	slot := h.slotOf(hash)
	for stream := 0; stream < h.streamCount; stream++ {
		b := h.buckets[h.index(stream, slot)]
		if b == nil || !b.locate(hash) {
			return false
		}
	}
	h.currentSlot = slot
	return true
}

// reset re-locates hash in bucket(stream, currentSlot), used to restart
// an inner stream's cursor when an outer stream advances (spec.md §4.3).
func (h *HashTable) reset(stream int, hash uint32) {
	b := h.buckets[h.index(stream, h.currentSlot)]
	if b != nil {
		b.locate(hash)
	}
}

// iterate delegates to bucket(stream, currentSlot) (spec.md §4.3).
func (h *HashTable) iterate(stream int, hash uint32) (uint32, bool) {
	b := h.buckets[h.index(stream, h.currentSlot)]
	if b == nil {
		return 0, false
	}
	return b.iterate(hash)
}

// BucketStats reports, for one inner stream, how many slots are
// occupied, the deepest single bucket, and the total entry count —
// used by the diagnostic CLI to surface skew that would otherwise only
// show up as probe latency.
func (h *HashTable) BucketStats(stream int) (occupied, maxDepth, total int) {
	base := stream * h.hashSize
	for slot := 0; slot < h.hashSize; slot++ {
		b := h.buckets[base+slot]
		n := b.len()
		if n == 0 {
			continue
		}
		occupied++
		total += n
		if n > maxDepth {
			maxDepth = n
		}
	}
	return occupied, maxDepth, total
}

// HashSize reports the current slot count, after any one-shot rehash.
func (h *HashTable) HashSize() int { return h.hashSize }

// StreamCount reports the configured inner-stream count.
func (h *HashTable) StreamCount() int { return h.streamCount }
