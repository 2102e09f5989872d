package hashtable

import (
	"encoding/binary"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/fasthash/fnv1a"
)

// HashBytes is the default byte-slice hash, offered to callers building
// a Callbacks.Hash function instead of rolling their own.
func HashBytes(b []byte) uint64 { return xxhash.Sum64(b) }

// HashString is the default string hash, using the same xxhash
// implementation as HashBytes.
func HashString(s string) uint64 { return xxhash.Sum64String(s) }

// HashStringFNV is an allocation-free alternative to HashString for
// callers who want FNV-1a instead of xxhash, e.g. to match hashing
// already used elsewhere in a host process.
func HashStringFNV(s string) uint64 { return fnv1a.HashString64(s) }

// defaultHash is used when Callbacks.Hash is nil. It requires K to be a
// pointer-like type (pointer, map, chan, func, unsafe.Pointer), an
// integer or a string, since there is no generic way to hash an
// arbitrary Go value.
func defaultHash[K any](key K) uint64 {
	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Chan, reflect.Map, reflect.Func:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v.Pointer()))
		return xxhash.Sum64(buf[:])
	case reflect.Uintptr:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v.Uint()))
		return xxhash.Sum64(buf[:])
	case reflect.String:
		return xxhash.Sum64String(v.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v.Int()))
		return xxhash.Sum64(buf[:])
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v.Uint())
		return xxhash.Sum64(buf[:])
	default:
		panic("hashtable: no default hash function for this key type; set Callbacks.Hash")
	}
}

// highBits extracts the hash fragment a bucket stores alongside each
// element: the top byte of the 64-bit hash.
func highBits(hash uint64) uint8 { return uint8(hash >> 56) }
