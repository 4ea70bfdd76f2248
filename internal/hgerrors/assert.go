package hgerrors

import "fmt"

// Assert panics if cond is false. Invariant violations (spec §3) are
// programming errors, not recoverable conditions, so they are fatal
// rather than returned through the error taxonomy.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("hypergraph invariant violation: "+format, args...))
	}
}
