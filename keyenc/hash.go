package keyenc

// Hash is the fixed internal byte hash spec.md §4.1 requires: "the same
// function is used on build and probe". It is an FNV-1a accumulator
// folded to 32 bits, in the spirit of the teacher's own hand-rolled
// hashBytes (datalog/executor/tuple_key.go) rather than a library hash —
// the teacher never reaches for a hashing package for this, and no other
// pack member does either for a domain key hash of this kind.
func Hash(b []byte) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for _, c := range b {
		h ^= uint32(c)
		h *= prime32
	}
	return h
}
