package hashtable

import "go.uber.org/atomic"

// ResizePolicy controls whether lookups and inserts are allowed to grow
// or shrink a Table, and whether a lookup may advance an in-progress
// rehash as a side effect.
type ResizePolicy int32

const (
	// PolicyAllow lets both lookups and inserts advance a pending
	// rehash and lets automatic expand/shrink fire at their soft
	// thresholds. The default for a table with no concurrent readers.
	PolicyAllow ResizePolicy = iota
	// PolicyAvoid defers rehash stepping to inserts only (a lookup
	// never mutates table state) and raises the automatic thresholds
	// to their hard limits. Inserts still step a pending rehash, so
	// this does not make unsynchronized concurrent reads safe.
	PolicyAvoid
	// PolicyForbid disables automatic shrinking entirely. Callers are
	// expected not to insert under this policy; nothing in the table
	// itself blocks an insert from still growing a table that has
	// exceeded its hard fill factor.
	PolicyForbid
)

const (
	bucketSlots   = 7
	bucketFactor  = 3
	bucketDivisor = 16

	maxFillPercentSoft = 77
	maxFillPercentHard = 90
	minFillPercentSoft = 13
	minFillPercentHard = 3

	// maxBucketCount bounds the bucket array so that numBuckets*bucketSlots
	// cannot overflow a platform int; resize requests beyond it fail
	// with ErrOverflow instead of attempting the allocation.
	maxBucketCount = 1 << 60

	// maxExp is the exponent nextBucketExp falls back to for a
	// minCapacity too large to size safely; it is comfortably above
	// maxBucketCount's exponent (60) but still well clear of 63, so
	// numBucketsForExp(maxExp) stays a positive int that resize's
	// overflow check rejects outright.
	maxExp = 61
)

// Context carries the state spec.md describes as process-wide but
// explicitly passed: the resize policy and the table's hash seed. A
// single Context may be shared by multiple Tables, e.g. so a host can
// flip every table in a shard group from PolicyAllow to PolicyAvoid
// around a bulk scan without touching each table individually.
type Context struct {
	policy atomic.Int32
	seed   [16]byte
}

// NewContext returns a Context with PolicyAllow and the given seed. The
// seed is opaque to the table; callers typically fold it into their
// Callbacks.Hash function to defend against hash-flooding.
func NewContext(seed [16]byte) *Context {
	ctx := &Context{seed: seed}
	ctx.policy.Store(int32(PolicyAllow))
	return ctx
}

// Policy returns the current resize policy. Safe for concurrent use.
func (c *Context) Policy() ResizePolicy {
	return ResizePolicy(c.policy.Load())
}

// SetPolicy updates the resize policy. Safe for concurrent use, but
// taking effect is only guaranteed for operations that start after the
// store is observed.
func (c *Context) SetPolicy(p ResizePolicy) {
	c.policy.Store(int32(p))
}

// Seed returns the 16-byte seed this Context was created with.
func (c *Context) Seed() [16]byte {
	return c.seed
}
