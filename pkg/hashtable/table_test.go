package hashtable

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	key string
	val int
}

func newTestTable() *Table[string, *entry, struct{}] {
	cb := Callbacks[string, *entry]{
		Hash:   HashString,
		Equal:  func(a, b string) bool { return a == b },
		GetKey: func(e *entry) string { return e.key },
	}
	return NewSimple[string, *entry](cb, NewContext([16]byte{}))
}

func TestAddFindDelete(t *testing.T) {
	tb := newTestTable()

	ok := tb.Add(&entry{key: "a", val: 1})
	require.True(t, ok)
	assert.Equal(t, 1, tb.Size())

	got, found := tb.Find("a")
	require.True(t, found)
	assert.Equal(t, 1, got.val)

	_, found = tb.Find("missing")
	assert.False(t, found)

	deleted := tb.Delete("a")
	assert.True(t, deleted)
	assert.Equal(t, 0, tb.Size())

	_, found = tb.Find("a")
	assert.False(t, found)

	assert.False(t, tb.Delete("a"), "deleting a missing key twice must report false")
}

func TestAddRejectsDuplicateKey(t *testing.T) {
	tb := newTestTable()
	require.True(t, tb.Add(&entry{key: "a", val: 1}))
	assert.False(t, tb.Add(&entry{key: "a", val: 2}), "Add must not overwrite an existing key")

	got, _ := tb.Find("a")
	assert.Equal(t, 1, got.val, "the original value must survive a rejected Add")
}

func TestReplaceIsIdempotent(t *testing.T) {
	tb := newTestTable()
	wasNew := tb.Replace(&entry{key: "a", val: 1})
	assert.True(t, wasNew)

	wasNew = tb.Replace(&entry{key: "a", val: 2})
	assert.False(t, wasNew)
	assert.Equal(t, 1, tb.Size())

	got, _ := tb.Find("a")
	assert.Equal(t, 2, got.val, "Replace must overwrite the stored value")
}

func TestDeleteThenReinsert(t *testing.T) {
	tb := newTestTable()
	require.True(t, tb.Add(&entry{key: "a", val: 1}))
	require.True(t, tb.Delete("a"))
	require.True(t, tb.Add(&entry{key: "a", val: 2}))

	got, found := tb.Find("a")
	require.True(t, found)
	assert.Equal(t, 2, got.val)
}

func TestManyInsertsAndLookups(t *testing.T) {
	tb := newTestTable()
	const n = 5000

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key-%d", i)
		require.True(t, tb.Add(&entry{key: key, val: i}))
	}
	assert.Equal(t, n, tb.Size())

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key-%d", i)
		got, found := tb.Find(key)
		require.True(t, found, "key %s must be found", key)
		assert.Equal(t, i, got.val)
	}

	for i := 0; i < n; i += 2 {
		key := fmt.Sprintf("key-%d", i)
		require.True(t, tb.Delete(key))
	}
	assert.Equal(t, n/2, tb.Size())

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key-%d", i)
		_, found := tb.Find(key)
		assert.Equal(t, i%2 != 0, found)
	}
}

func TestDestroyCallbackFiresOnReplaceAndDelete(t *testing.T) {
	var destroyed []string
	cb := Callbacks[string, *entry]{
		Hash:   HashString,
		Equal:  func(a, b string) bool { return a == b },
		GetKey: func(e *entry) string { return e.key },
		Destroy: func(e *entry) {
			destroyed = append(destroyed, e.key)
		},
	}
	tb := NewSimple[string, *entry](cb, NewContext([16]byte{}))

	tb.Replace(&entry{key: "a", val: 1})
	tb.Replace(&entry{key: "a", val: 2})
	assert.Equal(t, []string{"a"}, destroyed)

	tb.Delete("a")
	assert.Equal(t, []string{"a", "a"}, destroyed)
}

func TestDestroyCallsDestructorOnEveryLiveElementAcrossBothTables(t *testing.T) {
	var destroyed []string
	cb := Callbacks[string, *entry]{
		Hash:   HashString,
		Equal:  func(a, b string) bool { return a == b },
		GetKey: func(e *entry) string { return e.key },
		Destroy: func(e *entry) {
			destroyed = append(destroyed, e.key)
		},
	}
	tb := NewSimple[string, *entry](cb, NewContext([16]byte{}))

	const n = 3000
	var want []string
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("k%d", i)
		tb.Add(&entry{key: key, val: i})
		want = append(want, key)
	}
	for tb.IsRehashing() {
		tb.rehashStep()
	}
	// Force a pending rehash deterministically so Destroy is exercised
	// while both tables[0] and tables[1] hold live elements, rather than
	// relying on insertion order to happen to land mid-rehash.
	_, err := tb.resize(context.Background(), n*4)
	require.NoError(t, err)
	for tb.tables[1].used == 0 {
		tb.rehashStep()
	}
	require.True(t, tb.IsRehashing())
	require.Greater(t, tb.tables[0].used, 0)

	tb.Destroy()

	assert.ElementsMatch(t, want, destroyed, "Destroy must call the destructor on every live element in both physical tables")
	assert.Equal(t, 0, tb.Size())
	assert.False(t, tb.IsRehashing())
	_, found := tb.Find("k0")
	assert.False(t, found)
}

func TestDestroyOnEmptyTableDoesNotPanic(t *testing.T) {
	tb := newTestTable()
	assert.NotPanics(t, func() { tb.Destroy() })
	assert.Equal(t, 0, tb.Size())
}

func TestPauseAutoShrinkDefersShrink(t *testing.T) {
	tb := newTestTable()
	const n = 2000
	for i := 0; i < n; i++ {
		tb.Add(&entry{key: fmt.Sprintf("k%d", i), val: i})
	}
	sizeBeforeShrink := tb.tables[0].numBuckets()

	tb.PauseAutoShrink()
	for i := 0; i < n-1; i++ {
		tb.Delete(fmt.Sprintf("k%d", i))
	}
	assert.Equal(t, sizeBeforeShrink, tb.tables[0].numBuckets(), "shrink must not happen while paused")

	tb.ResumeAutoShrink()
	for tb.IsRehashing() {
		tb.rehashStep()
	}
	assert.Less(t, tb.tables[0].numBuckets(), sizeBeforeShrink, "ResumeAutoShrink must trigger the deferred shrink")
}
