//go:build debug
// +build debug

package debug

import (
	"fmt"
	"os"
)

// Assert panics with msg if cond is false. Used for invariant violations
// that indicate a programmer error rather than a condition the caller can
// be expected to recover from.
//
// msg must be a string, func() string, or fmt.Stringer.
func Assert(cond bool, msg interface{}) {
	if !cond {
		fmt.Fprintln(os.Stderr, "assertion failed:", getStringValue(msg))
		panic(getStringValue(msg))
	}
}

func getStringValue(msg interface{}) string {
	switch m := msg.(type) {
	case string:
		return m
	case func() string:
		return m()
	case fmt.Stringer:
		return m.String()
	default:
		return fmt.Sprintf("%v", m)
	}
}
