package hashtable

import (
	"errors"
	"fmt"
)

// ErrOverflow is returned (wrapped) by TryExpand, and is the wrapped
// panic value of Expand and Resize, when the requested capacity would
// require more buckets than the table can address. Go's
// make() has no recoverable allocation-failure signal the way the
// source's malloc does, so this is the only failure mode a resize can
// report; see DESIGN.md.
var ErrOverflow = errors.New("hashtable: resize would exceed maximum bucket count")

func assert(cond bool, msg string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("hashtable: invariant violated: "+msg, args...))
	}
}
