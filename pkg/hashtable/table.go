package hashtable

import "github.com/go-kit/log"

// Table is an open-addressing hash table mapping keys of type K to
// elements of type E, with an arbitrary host-supplied metadata value M
// carried alongside (the generic substitute for the source's flexible
// array member on struct hashtab). A Table is not safe for concurrent
// mutation; see the package doc for the concurrent-read caveat.
type Table[K any, E any, M any] struct {
	cb  Callbacks[K, E]
	ctx *Context

	tables    [2]subTable[E]
	rehashIdx int // -1 when not rehashing

	pauseRehash     int
	pauseAutoShrink int

	logger  log.Logger
	metrics *Metrics

	// Metadata is opaque to the table; callers use it to stash whatever
	// per-table bookkeeping they need (e.g. a shard index or a name).
	Metadata M
}

// Option configures a Table at construction time.
type Option[K any, E any, M any] func(*Table[K, E, M])

// WithLogger overrides the table's default no-op logger.
func WithLogger[K any, E any, M any](l log.Logger) Option[K, E, M] {
	return func(t *Table[K, E, M]) { t.logger = l }
}

// WithMetrics attaches prometheus instrumentation to the table.
func WithMetrics[K any, E any, M any](m *Metrics) Option[K, E, M] {
	return func(t *Table[K, E, M]) { t.metrics = m }
}

// WithMetadata sets the table's initial Metadata value.
func WithMetadata[K any, E any, M any](md M) Option[K, E, M] {
	return func(t *Table[K, E, M]) { t.Metadata = md }
}

// New constructs an empty Table. ctx may be shared across multiple
// tables that should move through resize policies together; pass a
// fresh NewContext otherwise.
func New[K any, E any, M any](cb Callbacks[K, E], ctx *Context, opts ...Option[K, E, M]) *Table[K, E, M] {
	t := &Table[K, E, M]{
		cb:        cb.withDefaults(),
		ctx:       ctx,
		rehashIdx: -1,
		logger:    log.NewNopLogger(),
	}
	t.tables[0] = subTable[E]{exp: -1}
	t.tables[1] = subTable[E]{exp: -1}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewSimple is New without a metadata type, for the common case where a
// table needs no per-instance bookkeeping.
func NewSimple[K any, E any](cb Callbacks[K, E], ctx *Context, opts ...Option[K, E, struct{}]) *Table[K, E, struct{}] {
	return New[K, E, struct{}](cb, ctx, opts...)
}

// Size returns the number of live elements across both physical tables.
func (t *Table[K, E, M]) Size() int {
	return t.tables[0].used + t.tables[1].used
}

// IsRehashing reports whether a resize is in progress.
func (t *Table[K, E, M]) IsRehashing() bool {
	return t.rehashIdx != -1
}

// PauseRehash increments the rehash-pause counter: while it is nonzero,
// lookups and inserts never advance an in-progress rehash. Calls
// nest; ResumeRehash decrements the same counter.
func (t *Table[K, E, M]) PauseRehash() { t.pauseRehash++ }

// ResumeRehash decrements the rehash-pause counter.
func (t *Table[K, E, M]) ResumeRehash() {
	assert(t.pauseRehash > 0, "ResumeRehash called without a matching PauseRehash")
	t.pauseRehash--
}

// PauseAutoShrink increments the auto-shrink-pause counter: while it is
// nonzero, Delete never triggers an automatic shrink.
func (t *Table[K, E, M]) PauseAutoShrink() { t.pauseAutoShrink++ }

// ResumeAutoShrink decrements the auto-shrink-pause counter, and runs a
// shrink check immediately if it reaches zero, rather than waiting for
// the next Delete.
func (t *Table[K, E, M]) ResumeAutoShrink() {
	assert(t.pauseAutoShrink > 0, "ResumeAutoShrink called without a matching PauseAutoShrink")
	t.pauseAutoShrink--
	if t.pauseAutoShrink == 0 {
		t.shrinkIfNeeded()
	}
}

// Find returns the element stored under key, if any.
func (t *Table[K, E, M]) Find(key K) (E, bool) {
	var zero E
	if t.Size() == 0 {
		return zero, false
	}
	hash := t.cb.Hash(key)
	ti, bi, pos, ok := t.findBucket(hash, key)
	if !ok {
		return zero, false
	}
	return t.tables[ti].buckets[bi].elems[pos], true
}

// Add inserts elem if no element with the same key already exists. It
// reports whether the element was inserted.
func (t *Table[K, E, M]) Add(elem E) bool {
	_, inserted := t.AddRaw(elem)
	return inserted
}

// AddRaw is Add, also returning the existing element when insertion was
// skipped because the key was already present.
func (t *Table[K, E, M]) AddRaw(elem E) (existing E, inserted bool) {
	key := t.cb.GetKey(elem)
	hash := t.cb.Hash(key)

	if t.Size() > 0 {
		if ti, bi, pos, ok := t.findBucket(hash, key); ok {
			return t.tables[ti].buckets[bi].elems[pos], false
		}
	}

	t.insert(hash, elem)
	var zero E
	return zero, true
}

// Replace inserts elem, overwriting any existing element with the same
// key (calling Callbacks.Destroy on the element it replaces, if set).
// It reports whether the key was new.
func (t *Table[K, E, M]) Replace(elem E) (wasNew bool) {
	key := t.cb.GetKey(elem)
	hash := t.cb.Hash(key)

	if t.Size() > 0 {
		if ti, bi, pos, ok := t.findBucket(hash, key); ok {
			b := &t.tables[ti].buckets[bi]
			if t.cb.Destroy != nil {
				t.cb.Destroy(b.elems[pos])
			}
			b.elems[pos] = elem
			return false
		}
	}

	t.insert(hash, elem)
	return true
}

// Delete removes the element stored under key, if any, reporting
// whether one was found. It runs an automatic shrink check afterward
// unless PauseAutoShrink is in effect.
func (t *Table[K, E, M]) Delete(key K) bool {
	if t.Size() == 0 {
		return false
	}
	hash := t.cb.Hash(key)
	ti, bi, pos, ok := t.findBucket(hash, key)
	if !ok {
		return false
	}

	st := &t.tables[ti]
	b := &st.buckets[bi]
	if t.cb.Destroy != nil {
		t.cb.Destroy(b.elems[pos])
	}
	var zero E
	b.elems[pos] = zero
	b.clearSlot(pos)
	st.used--

	if t.pauseAutoShrink == 0 {
		t.shrinkIfNeeded()
	}
	if t.metrics != nil {
		t.metrics.size.Set(float64(t.Size()))
	}
	return true
}

// Destroy tears the table down: it calls Callbacks.Destroy, if set, on
// every live element across both physical tables, then releases the
// bucket arrays and leaves the table in its empty, freshly-constructed
// state. It is not an error to keep using the table afterward, but
// elements added before Destroy was called are gone, along with
// whatever resources their destructor released.
func (t *Table[K, E, M]) Destroy() {
	if t.cb.Destroy != nil {
		for ti := range t.tables {
			st := &t.tables[ti]
			if !st.allocated() {
				continue
			}
			for bi := range st.buckets {
				b := &st.buckets[bi]
				for p := 0; p < bucketSlots; p++ {
					if b.hasSlot(p) {
						t.cb.Destroy(b.elems[p])
					}
				}
			}
		}
	}

	t.tables[0] = subTable[E]{exp: -1}
	t.tables[1] = subTable[E]{exp: -1}
	t.rehashIdx = -1

	if t.metrics != nil {
		t.metrics.size.Set(0)
		t.metrics.bucketsAllocated.Set(0)
	}
}

func (t *Table[K, E, M]) insert(hash uint64, elem E) {
	t.expandIfNeeded()
	if t.IsRehashing() && t.pauseRehash == 0 && t.ctx.Policy() == PolicyAvoid {
		t.rehashStep()
	}

	ti, bi, pos := t.findBucketForInsert(hash)
	b := &t.tables[ti].buckets[bi]
	b.elems[pos] = elem
	b.hashFrag[pos] = highBits(hash)
	b.setSlot(pos)
	if b.isFull() {
		b.setEverfull()
	}
	t.tables[ti].used++

	if t.metrics != nil {
		t.metrics.size.Set(float64(t.Size()))
	}
}
