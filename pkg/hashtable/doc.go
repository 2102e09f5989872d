// Package hashtable implements an open-addressing hash table with
// cache-line-sized buckets, incremental two-table rehashing, and a
// stateless scan cursor based on reverse-bit increment.
//
// The table is single-writer: callers must provide their own
// synchronization if more than one goroutine mutates a Table
// concurrently. Concurrent readers are safe only while the resize
// policy is PolicyForbid, since lookups otherwise perform rehash
// steps as a side effect.
package hashtable
