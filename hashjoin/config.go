package hashjoin

// Config holds the plan-time constants spec.md §6 names explicitly
// (HashSize, BucketPreallocate, maxCapacity) plus the cardinality-estimate
// selectivity constants from spec.md §4.5, and the one-shot rehash
// threshold this module adds per SPEC_FULL.md §4 / REDESIGN FLAGS.
type Config struct {
	HashSize          int
	BucketPreallocate int
	MaxCapacity       int

	// RehashLoadFactor bounds the average bucket occupancy this module
	// tolerates before growing HashSize once at the end of build(),
	// ahead of sort(). Zero disables rehashing (pure spec.md §3 fixed
	// HASH_SIZE behavior). Growth stops once HashSize reaches
	// MaxCapacity/1000, so under DefaultConfig (HashSize 1009, MaxCapacity
	// 1009*1000) the table never grows.
	RehashLoadFactor int

	MaxSelectivity       float64
	ReduceFactorEquality float64
}

// DefaultConfig matches spec.md §6's declared constants.
func DefaultConfig() Config {
	const hashSize = 1009
	return Config{
		HashSize:             hashSize,
		BucketPreallocate:    32,
		MaxCapacity:          hashSize * 1000,
		RehashLoadFactor:     8,
		MaxSelectivity:       1.0,
		ReduceFactorEquality: 0.1,
	}
}

// Option configures a Driver at construction, mirroring the teacher's
// ExecutorOptions struct-of-flags plumbed through functional
// constructors (datalog/executor/options.go).
type Option func(*Driver)

func WithHashSize(n int) Option {
	return func(d *Driver) { d.cfg.HashSize = n }
}

func WithBucketPreallocate(n int) Option {
	return func(d *Driver) { d.cfg.BucketPreallocate = n }
}

func WithRehashLoadFactor(n int) Option {
	return func(d *Driver) { d.cfg.RehashLoadFactor = n }
}

func WithDebugLogging(enabled bool) Option {
	return func(d *Driver) {
		if enabled {
			d.logger = newColorLogger()
		} else {
			d.logger = noopLogger{}
		}
	}
}

// WithNullExclusion controls the NULL-key join policy decided in
// DESIGN.md's Open Questions §2: true (the default) skips build/probe
// rows whose key evaluation set the null flag, matching strict SQL
// semantics; false reproduces the permissive raw hash-equality behavior.
func WithNullExclusion(enabled bool) Option {
	return func(d *Driver) { d.nullExclusion = enabled }
}
