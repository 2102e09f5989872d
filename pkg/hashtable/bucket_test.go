package hashtable

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

type bucketTestElem struct {
	key string
	val int
}

func TestBucketSizeIsOneCacheLineForPointerElements(t *testing.T) {
	var b bucket[*bucketTestElem]
	assert.Equal(t, uintptr(64), unsafe.Sizeof(b), "bucket[*T] must fit a 64-byte cache line")
}

func TestBucketPresenceAndEverfull(t *testing.T) {
	var b bucket[*bucketTestElem]
	assert.False(t, b.hasSlot(0))
	assert.False(t, b.everfull())
	assert.False(t, b.isFull())

	for i := 0; i < bucketSlots; i++ {
		b.setSlot(i)
	}
	assert.True(t, b.isFull())
	assert.Equal(t, bucketSlots, b.count())

	b.setEverfull()
	assert.True(t, b.everfull())

	b.clearSlot(3)
	assert.False(t, b.hasSlot(3))
	assert.True(t, b.everfull(), "clearing a slot must not clear the sticky everfull bit")

	b.clearPresence()
	assert.Equal(t, 0, b.count())
	assert.True(t, b.everfull(), "clearPresence must preserve everfull")
}
