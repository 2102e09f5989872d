package hashtable

// rehashStep migrates every element out of the single source bucket at
// t.rehashIdx, in table 0, into table 1, then advances rehashIdx to the
// next bucket in cursor order. If the advance wraps back to 0, the
// rehash is complete and the tables are swapped.
func (t *Table[K, E, M]) rehashStep() {
	src := &t.tables[0]
	dstExp := t.tables[1].exp
	idx := uint64(t.rehashIdx)
	b := &src.buckets[idx]

	shrinking := dstExp < src.exp
	predecessorFull := shrinking && src.buckets[prevCursor(idx, src.mask())].everfull()

	for p := 0; p < bucketSlots; p++ {
		if !b.hasSlot(p) {
			continue
		}
		elem := b.elems[p]
		frag := b.hashFrag[p]

		var hash uint64
		if shrinking && !predecessorFull {
			// The destination bucket for a shrink is a deterministic
			// function of the source index alone: synthesize it
			// instead of recomputing Hash, and carry the stored
			// fragment over unchanged.
			hash = idx
		} else {
			hash = t.cb.Hash(t.cb.GetKey(elem))
		}

		dstTi, dstIdx, dstPos := t.findBucketForInsert(hash)
		dst := &t.tables[dstTi].buckets[dstIdx]
		dst.elems[dstPos] = elem
		dst.hashFrag[dstPos] = frag
		dst.setSlot(dstPos)
		if dst.isFull() {
			dst.setEverfull()
		}

		src.used--
		t.tables[dstTi].used++
	}

	b.clearPresence()

	t.rehashIdx = int(nextCursor(idx, src.mask()))
	if t.metrics != nil {
		t.metrics.rehashStepsTotal.Inc()
	}
	if t.rehashIdx == 0 {
		t.rehashingCompleted()
	}
}

func (t *Table[K, E, M]) rehashingCompleted() {
	if t.cb.RehashingCompleted != nil {
		t.cb.RehashingCompleted()
	}
	t.tables[0] = t.tables[1]
	t.tables[1] = subTable[E]{exp: -1}
	t.rehashIdx = -1
	if t.metrics != nil {
		t.metrics.size.Set(float64(t.Size()))
		t.metrics.bucketsAllocated.Set(float64(t.tables[0].numBuckets()))
	}
}
