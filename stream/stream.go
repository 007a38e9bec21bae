// Package stream holds forward-only readers that add bookkeeping to an
// io.Reader: a byte counter with push-back, and a reader that can reopen
// its source to move backwards.
package stream

// availabler is implemented by readers that can estimate how many bytes
// can be read without blocking.
type availabler interface {
	Available() int
}
