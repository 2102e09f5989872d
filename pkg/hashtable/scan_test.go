package hashtable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullScan(tb *Table[string, *entry, struct{}]) map[string]int {
	seen := map[string]int{}
	cursor := uint64(0)
	for {
		cursor = tb.Scan(cursor, func(e *entry) {
			seen[e.key]++
		})
		if cursor == 0 {
			break
		}
	}
	return seen
}

func TestScanCoversEveryElementExactlyOnceWhenStable(t *testing.T) {
	tb := newTestTable()
	const n = 500
	for i := 0; i < n; i++ {
		tb.Add(&entry{key: fmt.Sprintf("k%d", i), val: i})
	}
	for tb.IsRehashing() {
		tb.rehashStep()
	}

	seen := fullScan(tb)
	assert.Equal(t, n, len(seen))
	for _, c := range seen {
		assert.Equal(t, 1, c)
	}
}

func TestScanCoversEveryElementAtLeastOnceDuringRehash(t *testing.T) {
	tb := newTestTable()
	const n = 3000
	for i := 0; i < n; i++ {
		tb.Add(&entry{key: fmt.Sprintf("k%d", i), val: i})
	}
	require.True(t, tb.IsRehashing(), "this test wants to scan a table mid-rehash")

	seen := fullScan(tb)
	assert.Equal(t, n, len(seen), "every live key must be visited at least once")
	for key, c := range seen {
		assert.GreaterOrEqual(t, c, 1, "key %s missing from scan", key)
	}
}

func TestScanTerminatesAndEmptyTableReturnsZero(t *testing.T) {
	tb := newTestTable()
	assert.Equal(t, uint64(0), tb.Scan(0, func(*entry) {
		t.Fatal("must not be called on an empty table")
	}))
}

func TestScanFilterDeletesDuringScan(t *testing.T) {
	tb := newTestTable()
	const n = 300
	for i := 0; i < n; i++ {
		tb.Add(&entry{key: fmt.Sprintf("k%d", i), val: i})
	}

	totalDeleted := 0
	cursor := uint64(0)
	for {
		var d int
		cursor, d = tb.ScanFilter(cursor, func(e *entry) bool {
			return e.val%2 != 0
		})
		totalDeleted += d
		if cursor == 0 {
			break
		}
	}

	assert.Equal(t, n/2, totalDeleted)
	assert.Equal(t, n/2, tb.Size())
	for i := 0; i < n; i++ {
		_, found := tb.Find(fmt.Sprintf("k%d", i))
		assert.Equal(t, i%2 != 0, found)
	}
}

func TestLongestProbingChainGrowsWithCollisions(t *testing.T) {
	// A constant-hash callback forces every element into one bucket's
	// probe chain, so the everfull run should grow monotonically.
	cb := Callbacks[int, *entry]{
		Hash:   func(int) uint64 { return 0 },
		Equal:  func(a, b int) bool { return a == b },
		GetKey: func(e *entry) int { v := 0; fmt.Sscanf(e.key, "%d", &v); return v },
	}
	tb := NewSimple[int, *entry](cb, NewContext([16]byte{}))

	before := tb.LongestProbingChain()
	for i := 0; i < bucketSlots*3; i++ {
		tb.Add(&entry{key: fmt.Sprintf("%d", i), val: i})
	}
	after := tb.LongestProbingChain()
	assert.GreaterOrEqual(t, after, before)
	assert.Greater(t, after, 0, "forcing collisions into one bucket must mark it everfull")
}

func TestHistogramCoversAllocatedBuckets(t *testing.T) {
	tb := newTestTable()
	for i := 0; i < 200; i++ {
		tb.Add(&entry{key: fmt.Sprintf("k%d", i), val: i})
	}
	hist := tb.Histogram()
	assert.Equal(t, tb.tables[0].numBuckets()+tb.tables[1].numBuckets(), len(hist))
}
