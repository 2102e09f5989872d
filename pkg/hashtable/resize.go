package hashtable

import (
	"context"
	"math"
	"math/bits"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/go-kit/log/level"
)

// nextBucketExp returns the smallest exp such that a table of 2^exp
// buckets, each holding bucketSlots elements, can hold minCapacity
// elements without exceeding maxFillPercentSoft on the very next
// insert. BUCKET_FACTOR/BUCKET_DIVISOR (3/16) are the source's fixed
// constants for a 7-slot bucket; they are not derived from the fill
// percentages above, just tuned to land close to them.
//
// The source guards its equivalent multiply with
// `if (min_buckets >= SIZE_MAX/2) return width-1;` before it can
// overflow; this mirrors that guard so minCapacity*bucketFactor never
// silently wraps for a huge request. maxExp is already above
// maxBucketCount's exponent, so resize's own capacity check rejects it with
// ErrOverflow rather than this function ever returning a value that
// looks like a small, satisfiable table.
func nextBucketExp(minCapacity int) int {
	if minCapacity <= 0 {
		return -1
	}
	if minCapacity > math.MaxInt/bucketFactor {
		return maxExp
	}
	minBuckets := (minCapacity*bucketFactor-1)/bucketDivisor + 1
	if minBuckets <= 1 {
		return 0
	}
	return bits.Len64(uint64(minBuckets - 1))
}

// resize starts (or no-ops) a rehash targeting a table sized for
// minCapacity elements. Any existing rehash is fast-forwarded to
// completion first, since a table only ever has two physical arrays.
// A request that would overflow maxBucketCount always returns
// (false, ErrOverflow)-wrapped; Go's make() gives no recoverable
// allocation-failure signal to distinguish a "try" caller from any
// other, so this is the only failure mode left to report.
func (t *Table[K, E, M]) resize(ctx context.Context, minCapacity int) (bool, error) {
	_, span := tracer.Start(ctx, "hashtable.resize")
	defer span.End()

	exp := nextBucketExp(minCapacity)
	n := numBucketsForExp(exp)
	span.SetAttributes(attribute.Int("hashtable.target_exp", exp), attribute.Int("hashtable.target_buckets", n))

	if n > maxBucketCount || n*bucketSlots < minCapacity {
		return false, errors.Wrap(ErrOverflow, "hashtable: resize")
	}

	liveExp := t.tables[0].exp
	if t.IsRehashing() {
		liveExp = t.tables[1].exp
	}
	if exp == liveExp {
		return false, nil
	}

	for t.IsRehashing() {
		t.rehashStep()
	}

	buckets := make([]bucket[E], n)
	t.tables[1] = subTable[E]{buckets: buckets, exp: exp, used: 0}
	t.rehashIdx = 0

	level.Debug(t.logger).Log(
		"msg", "hashtable resize started",
		"buckets", n,
		"bytes", humanize.Bytes(uint64(n)*bucketByteSize),
	)

	if t.cb.RehashingStarted != nil {
		t.cb.RehashingStarted()
	}
	if t.metrics != nil {
		t.metrics.resizeTotal.Inc()
		t.metrics.bucketsAllocated.Set(float64(t.tables[0].numBuckets() + t.tables[1].numBuckets()))
	}

	if t.tables[0].used == 0 {
		t.rehashingCompleted()
	}

	return true, nil
}

// TryExpand resizes the table to the bucket count sized for size
// elements, unless size is below the current live count, in which case
// it returns false without doing anything. A target smaller than the
// current bucket array shrinks the table; a target equal to it returns
// false without error. It returns an error only if the requested
// capacity overflows maxBucketCount.
func (t *Table[K, E, M]) TryExpand(ctx context.Context, size int) (bool, error) {
	if size < t.Size() {
		return false, nil
	}
	ok, err := t.resize(ctx, size)
	if err != nil {
		return false, errors.Wrap(err, "hashtable: try-expand")
	}
	return ok, nil
}

// Expand is TryExpand's unconditional counterpart: it panics (wrapping
// ErrOverflow) instead of returning an error, for callers that treat an
// overflowing resize request as a programming error.
func (t *Table[K, E, M]) Expand(ctx context.Context, size int) bool {
	if size < t.Size() {
		return false
	}
	ok, err := t.resize(ctx, size)
	if err != nil {
		panic(err)
	}
	return ok
}

// Resize unconditionally targets minCapacity, growing or shrinking the
// table even below its current live count (the caller is asserting
// they know more elements are about to be deleted, or that minCapacity
// already accounts for them). Expand is the narrower form most callers
// want: it refuses a size below the current live count.
func (t *Table[K, E, M]) Resize(ctx context.Context, minCapacity int) bool {
	ok, err := t.resize(ctx, minCapacity)
	if err != nil {
		panic(err)
	}
	return ok
}

func (t *Table[K, E, M]) expandIfNeeded() {
	minCapacity := t.tables[0].used + t.tables[1].used + 1
	ti := 0
	if t.IsRehashing() {
		ti = 1
	}
	currentCapacity := t.tables[ti].numBuckets() * bucketSlots
	maxFillPercent := maxFillPercentSoft
	if t.ctx.Policy() != PolicyAllow {
		maxFillPercent = maxFillPercentHard
	}
	if minCapacity*100 <= currentCapacity*maxFillPercent {
		return
	}
	_, _ = t.resize(context.Background(), minCapacity)
}

func (t *Table[K, E, M]) shrinkIfNeeded() {
	if t.IsRehashing() || t.ctx.Policy() == PolicyForbid {
		return
	}
	currentCapacity := t.tables[0].numBuckets() * bucketSlots
	if currentCapacity == 0 {
		return
	}
	minFillPercent := minFillPercentSoft
	if t.ctx.Policy() == PolicyAvoid {
		minFillPercent = minFillPercentHard
	}
	if t.tables[0].used*100 > currentCapacity*minFillPercent {
		return
	}
	_, _ = t.resize(context.Background(), t.tables[0].used)
}
