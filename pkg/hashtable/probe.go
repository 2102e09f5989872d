package hashtable

// findBucket locates the slot holding key, searching table 1 before
// table 0 so that, while rehashing, freshly migrated elements are
// found without waiting for the source table's copy to be visited.
// As a side effect, under PolicyAllow, it advances an in-progress
// rehash by one step before searching.
func (t *Table[K, E, M]) findBucket(hash uint64, key K) (tableIdx int, idx uint64, pos int, ok bool) {
	if t.IsRehashing() && t.pauseRehash == 0 && t.ctx.Policy() == PolicyAllow {
		t.rehashStep()
	}

	for ti := 1; ti >= 0; ti-- {
		st := &t.tables[ti]
		if st.used == 0 {
			continue
		}
		mask := st.mask()
		bi := hash & mask
		for {
			b := &st.buckets[bi]
			for p := 0; p < bucketSlots; p++ {
				if !b.hasSlot(p) {
					continue
				}
				if b.hashFrag[p] != highBits(hash) {
					continue
				}
				if t.cb.Equal(key, t.cb.GetKey(b.elems[p])) {
					return ti, bi, p, true
				}
			}
			if !b.everfull() {
				break
			}
			bi = nextCursor(bi, mask)
		}
	}
	return 0, 0, 0, false
}

// findBucketForInsert returns the first empty slot for hash, always in
// the table new elements belong in: table 1 while rehashing, table 0
// otherwise.
func (t *Table[K, E, M]) findBucketForInsert(hash uint64) (tableIdx int, idx uint64, pos int) {
	ti := 0
	if t.IsRehashing() {
		ti = 1
	}
	st := &t.tables[ti]
	mask := st.mask()
	bi := hash & mask
	for {
		b := &st.buckets[bi]
		for p := 0; p < bucketSlots; p++ {
			if !b.hasSlot(p) {
				return ti, bi, p
			}
		}
		bi = nextCursor(bi, mask)
	}
}
