package hashtable

// Callbacks is the table's type vtable: the set of operations a Table
// needs to know about its key and element types. This replaces the
// source's hashtabType function-pointer struct with a generic struct of
// function fields, resolved at compile time instead of through a vtable
// indirection.
//
// Hash, Equal and GetKey are required conceptually but may be left nil;
// withDefaults fills in a pointer-identity (or integer/string) hash, a
// comparison via ==,
// and a key extractor that requires E and K to be the same type.
// Destroy, RehashingStarted and RehashingCompleted are always optional.
type Callbacks[K any, E any] struct {
	// Hash returns the 64-bit hash of a key. The top 8 bits of the
	// result are stored in the bucket as the hash fragment.
	Hash func(key K) uint64
	// Equal reports whether two keys are the same key.
	Equal func(a, b K) bool
	// GetKey extracts the key from a stored element.
	GetKey func(elem E) K
	// Destroy, if set, is called on an element that is being removed
	// from the table by Replace or Delete, and on every live element
	// still in the table when Table.Destroy tears it down.
	Destroy func(elem E)
	// RehashingStarted, if set, is called once when a resize begins
	// migrating elements into a second table.
	RehashingStarted func()
	// RehashingCompleted, if set, is called once when the last bucket
	// of an in-progress rehash has been migrated.
	RehashingCompleted func()
}

func (c Callbacks[K, E]) withDefaults() Callbacks[K, E] {
	if c.Hash == nil {
		c.Hash = defaultHash[K]
	}
	if c.Equal == nil {
		c.Equal = defaultEqual[K]
	}
	if c.GetKey == nil {
		c.GetKey = defaultGetKey[K, E]
	}
	return c
}

func defaultEqual[K any](a, b K) bool {
	return any(a) == any(b)
}

func defaultGetKey[K any, E any](e E) K {
	k, ok := any(e).(K)
	if !ok {
		panic("hashtable: default key extractor requires the element type to be the key type; set Callbacks.GetKey")
	}
	return k
}
