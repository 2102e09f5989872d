package hashtable

// Scan visits a batch of buckets starting at cursor and calls fn once
// for each live element found, then returns the cursor to pass on the
// next call. A full scan is the sequence of calls starting at cursor 0
// until the returned cursor is again 0. Rehashing is paused for the
// duration of each call so that no element visible at the start of the
// call moves out from under it; it is safe to call Scan repeatedly
// while concurrent inserts and deletes happen between calls, including
// ones that trigger a resize, per the stateless reverse-bit cursor
// design: an element present for the whole scan is visited at least
// once, and no element is visited more than once unless it was
// rehashed into an already-visited bucket during the scan.
func (t *Table[K, E, M]) Scan(cursor uint64, fn func(elem E)) uint64 {
	if t.Size() == 0 {
		return 0
	}

	t.PauseRehash()
	defer t.ResumeRehash()

	for {
		var wasEverfull bool
		if !t.IsRehashing() {
			cursor, wasEverfull = t.scanOneTable(0, cursor, fn)
		} else {
			cursor, wasEverfull = t.scanBothTables(cursor, fn)
		}
		if !wasEverfull || cursor == 0 {
			break
		}
	}
	return cursor
}

func (t *Table[K, E, M]) scanOneTable(ti int, cursor uint64, fn func(elem E)) (uint64, bool) {
	st := &t.tables[ti]
	mask := st.mask()
	b := &st.buckets[cursor&mask]
	emitBucket(b, fn)
	return nextCursor(cursor, mask), b.everfull()
}

// scanBothTables visits the bucket a cursor maps to in the smaller of
// the two physical tables once, then every corresponding bucket in the
// larger table until the cursor's low bits (mod the smaller table's
// size) would repeat.
func (t *Table[K, E, M]) scanBothTables(cursor uint64, fn func(elem E)) (uint64, bool) {
	smallIdx, largeIdx := 0, 1
	if t.tables[0].exp > t.tables[1].exp {
		smallIdx, largeIdx = 1, 0
	}
	maskSmall := t.tables[smallIdx].mask()
	maskLarge := t.tables[largeIdx].mask()

	b := &t.tables[smallIdx].buckets[cursor&maskSmall]
	emitBucket(b, fn)
	wasEverfull := b.everfull()

	for {
		b = &t.tables[largeIdx].buckets[cursor&maskLarge]
		emitBucket(b, fn)
		wasEverfull = wasEverfull || b.everfull()
		cursor = nextCursor(cursor, maskLarge)
		if cursor&(maskSmall^maskLarge) == 0 {
			break
		}
	}
	return cursor, wasEverfull
}

func emitBucket[E any](b *bucket[E], fn func(elem E)) {
	for p := 0; p < bucketSlots; p++ {
		if b.hasSlot(p) {
			fn(b.elems[p])
		}
	}
}

// ScanFilter is Scan with an in-place delete: fn reports whether to
// keep the element. Deletions happen immediately, inside the same
// rehash-paused window as the visit, so the source table's used count
// stays accurate without a second pass. An automatic shrink check, if
// any deletions happened, runs once after rehashing resumes rather
// than mid-scan, since the table invariants forbid resizing while a
// scan holds the pause.
func (t *Table[K, E, M]) ScanFilter(cursor uint64, fn func(elem E) bool) (next uint64, deleted int) {
	if t.Size() == 0 {
		return 0, 0
	}

	t.PauseRehash()
	filtered := 0
	for {
		var wasEverfull bool
		if !t.IsRehashing() {
			cursor, wasEverfull = t.scanFilterOneTable(0, cursor, fn, &filtered)
		} else {
			cursor, wasEverfull = t.scanFilterBothTables(cursor, fn, &filtered)
		}
		if !wasEverfull || cursor == 0 {
			break
		}
	}
	t.ResumeRehash()

	if filtered > 0 && t.metrics != nil {
		t.metrics.size.Set(float64(t.Size()))
	}

	if filtered > 0 && t.pauseAutoShrink == 0 {
		t.shrinkIfNeeded()
	}
	return cursor, filtered
}

func (t *Table[K, E, M]) scanFilterOneTable(ti int, cursor uint64, fn func(elem E) bool, filtered *int) (uint64, bool) {
	st := &t.tables[ti]
	mask := st.mask()
	b := &st.buckets[cursor&mask]
	filterBucket(b, fn, st, filtered)
	return nextCursor(cursor, mask), b.everfull()
}

func (t *Table[K, E, M]) scanFilterBothTables(cursor uint64, fn func(elem E) bool, filtered *int) (uint64, bool) {
	smallIdx, largeIdx := 0, 1
	if t.tables[0].exp > t.tables[1].exp {
		smallIdx, largeIdx = 1, 0
	}
	maskSmall := t.tables[smallIdx].mask()
	maskLarge := t.tables[largeIdx].mask()

	b := &t.tables[smallIdx].buckets[cursor&maskSmall]
	filterBucket(b, fn, &t.tables[smallIdx], filtered)
	wasEverfull := b.everfull()

	for {
		b = &t.tables[largeIdx].buckets[cursor&maskLarge]
		filterBucket(b, fn, &t.tables[largeIdx], filtered)
		wasEverfull = wasEverfull || b.everfull()
		cursor = nextCursor(cursor, maskLarge)
		if cursor&(maskSmall^maskLarge) == 0 {
			break
		}
	}
	return cursor, wasEverfull
}

func filterBucket[E any](b *bucket[E], fn func(elem E) bool, st *subTable[E], filtered *int) {
	for p := 0; p < bucketSlots; p++ {
		if !b.hasSlot(p) {
			continue
		}
		if fn(b.elems[p]) {
			continue
		}
		var zero E
		b.elems[p] = zero
		b.clearSlot(p)
		st.used--
		*filtered++
	}
}
