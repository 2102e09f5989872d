package hashtable

import "fmt"

// LongestProbingChain returns the longest run of contiguous everfull
// buckets found across both physical tables, walked in the same
// reverse-bit cursor order a lookup's probe sequence follows (not raw
// array index order, which is not the order collisions actually chain
// in). A long chain means lookups for keys in it must walk many
// buckets before concluding a miss; it is meant for diagnostics, not a
// hot path.
func (t *Table[K, E, M]) LongestProbingChain() int {
	longest := 0
	for ti := 0; ti < 2; ti++ {
		st := &t.tables[ti]
		if !st.allocated() {
			continue
		}
		mask := st.mask()
		run := 0
		cursor := uint64(0)
		for i := 0; i < st.numBuckets(); i++ {
			if st.buckets[cursor&mask].everfull() {
				run++
				if run > longest {
					longest = run
				}
			} else {
				run = 0
			}
			cursor = nextCursor(cursor, mask)
		}
	}
	return longest
}

// BucketStats summarizes one bucket for Histogram/Dump.
type BucketStats struct {
	Table    int
	Index    uint64
	Occupied int
	Everfull bool
}

// Histogram returns per-bucket occupancy across both currently
// allocated physical tables, in bucket index order (table 0 first). It
// is a diagnostic, not something a caller should parse on a hot path.
func (t *Table[K, E, M]) Histogram() []BucketStats {
	var out []BucketStats
	for ti := 0; ti < 2; ti++ {
		st := &t.tables[ti]
		if !st.allocated() {
			continue
		}
		n := st.numBuckets()
		for i := 0; i < n; i++ {
			b := &st.buckets[i]
			out = append(out, BucketStats{
				Table:    ti,
				Index:    uint64(i),
				Occupied: b.count(),
				Everfull: b.everfull(),
			})
		}
	}
	return out
}

// Dump renders Histogram as a line-per-bucket string, for use in tests
// and ad-hoc debugging.
func (t *Table[K, E, M]) Dump() string {
	s := ""
	for _, bs := range t.Histogram() {
		s += fmt.Sprintf("table=%d bucket=%d occupied=%d everfull=%t\n", bs.Table, bs.Index, bs.Occupied, bs.Everfull)
	}
	return s
}
