package compiler

import (
	"strconv"
	"sync/atomic"

	"github.com/roach88/pathq/internal/queryir"
)

// Allocator hands out query variable names that are never repeated.
//
// Thread-safety: Allocator is safe for concurrent use (atomic operations).
// There is deliberately no Reset: a name handed out once stays taken for the
// allocator's lifetime.
type Allocator struct {
	seq atomic.Int64
}

// DefaultAllocator is the process-wide allocator used by compilers that are
// not given one.
var DefaultAllocator = NewAllocator()

// NewAllocator creates an allocator whose first name is "var1".
// Tests use private allocators to get stable names.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns a fresh variable.
// Calls are linearizable - each call returns a distinct name.
func (a *Allocator) Next() queryir.Var {
	return queryir.Var("var" + strconv.FormatInt(a.seq.Add(1), 10))
}

// Issued returns how many names have been handed out.
func (a *Allocator) Issued() int64 {
	return a.seq.Load()
}
