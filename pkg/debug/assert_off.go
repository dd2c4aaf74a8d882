//go:build !debug
// +build !debug

package debug

// Assert is a no-op outside of debug builds. See assert_on.go.
func Assert(cond bool, msg interface{}) {
}
