package recsrc

// The following optional capability interfaces let a RecordSource
// participate in plan introspection without widening the core
// RecordSource contract, per spec.md §6's forwarding list
// (print/getChildren/markRecursive/findUsedStreams/invalidateRecords/
// nullRecords) and spec.md §9's "capability set via a variant or
// interface abstraction" guidance. A concrete source implements only the
// ones relevant to it; callers type-assert and no-op otherwise.

type PlanPrinter interface {
	// PrintPlan renders this node and (if recurse) its children.
	// detailed selects the multi-line form over the terse one-liner;
	// level is the current indentation depth.
	PrintPlan(detailed bool, level int, recurse bool) string
}

type Recursive interface {
	MarkRecursive()
}

type UsedStreamsFinder interface {
	FindUsedStreams(out map[int]bool)
}

type Invalidator interface {
	InvalidateRecords()
}

type Nuller interface {
	NullRecords()
}
