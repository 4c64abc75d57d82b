package hashjoin

import (
	"fmt"
	"strings"

	"github.com/mrgleba/firebird/recsrc"
)

// PrintPlan implements spec.md §6's plan text: the terse form lists the
// leader followed by every inner source on one line; the detailed form
// renders "Hash Join (inner)" and recurses into each child that
// implements recsrc.PlanPrinter, indented by level.
func (d *Driver) PrintPlan(detailed bool, level int, recurse bool) string {
	if !detailed {
		names := make([]string, 0, len(d.inners)+1)
		names = append(names, describeChild(d.leader.Source))
		for _, in := range d.inners {
			names = append(names, describeChild(in.Source))
		}
		return "HASH (" + strings.Join(names, ", ") + ")"
	}

	indent := strings.Repeat("    ", level)
	var b strings.Builder
	fmt.Fprintf(&b, "%sHash Join (inner)\n", indent)
	if recurse {
		b.WriteString(childPlan(d.leader.Source, level+1))
		for _, in := range d.inners {
			b.WriteString(childPlan(in.Source, level+1))
		}
	}
	return b.String()
}

func describeChild(src recsrc.RecordSource) string {
	if p, ok := src.(recsrc.PlanPrinter); ok {
		return p.PrintPlan(false, 0, false)
	}
	return fmt.Sprintf("%T", src)
}

func childPlan(src recsrc.RecordSource, level int) string {
	if p, ok := src.(recsrc.PlanPrinter); ok {
		return p.PrintPlan(true, level, true)
	}
	return strings.Repeat("    ", level) + fmt.Sprintf("%T\n", src)
}

// GetChildren returns every child source in stream order (leader first),
// per spec.md §6's forwarding list.
func (d *Driver) GetChildren() []recsrc.RecordSource {
	out := make([]recsrc.RecordSource, 0, len(d.inners)+1)
	out = append(out, d.leader.Source)
	for _, in := range d.inners {
		out = append(out, in.Source)
	}
	return out
}

// MarkRecursive forwards to every child that opts into recsrc.Recursive,
// per DESIGN.md's Open Question 3: forwarding targets a SubStream's
// Source, never its transient MaterializedInner buffer.
func (d *Driver) MarkRecursive() {
	if r, ok := d.leader.Source.(recsrc.Recursive); ok {
		r.MarkRecursive()
	}
	for _, in := range d.inners {
		if r, ok := in.Source.(recsrc.Recursive); ok {
			r.MarkRecursive()
		}
	}
}

// FindUsedStreams forwards to every child that reports stream usage.
func (d *Driver) FindUsedStreams(out map[int]bool) {
	if f, ok := d.leader.Source.(recsrc.UsedStreamsFinder); ok {
		f.FindUsedStreams(out)
	}
	for _, in := range d.inners {
		if f, ok := in.Source.(recsrc.UsedStreamsFinder); ok {
			f.FindUsedStreams(out)
		}
	}
}

// InvalidateRecords forwards to every child, per spec.md §6.
func (d *Driver) InvalidateRecords() {
	if inv, ok := d.leader.Source.(recsrc.Invalidator); ok {
		inv.InvalidateRecords()
	}
	for _, in := range d.inners {
		if inv, ok := in.Source.(recsrc.Invalidator); ok {
			inv.InvalidateRecords()
		}
	}
}

// NullRecords forwards to every child, per spec.md §6.
func (d *Driver) NullRecords() {
	if n, ok := d.leader.Source.(recsrc.Nuller); ok {
		n.NullRecords()
	}
	for _, in := range d.inners {
		if n, ok := in.Source.(recsrc.Nuller); ok {
			n.NullRecords()
		}
	}
}
