// Package bufpool recycles fixed-size page buffers.
//
// File content lives in page-granular byte slices that are allocated on
// first write and dropped on truncation. Churning those through the
// garbage collector is wasteful when files are created and destroyed at
// a high rate, so the package keeps per-size pools of cleared pages and
// hands them back out instead of allocating fresh ones.
//
// Buffers returned with Put are zeroed before they are pooled, so a
// recycled page never leaks content from a previous file. Callers that
// never Put simply fall back to normal allocation behavior.
//
// All operations are safe for concurrent use.
package bufpool

import (
	"sync"
)

// DefaultPageSize is the page size used when a caller asks for a
// non-positive size.
const DefaultPageSize = 4 << 10

// Pool recycles byte slices of a single fixed size.
type Pool struct {
	size int
	pool sync.Pool
}

// NewPool creates a pool of buffers of the given size.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPageSize
	}
	p := &Pool{size: size}
	p.pool = sync.Pool{
		New: func() any {
			buf := make([]byte, p.size)
			return &buf
		},
	}
	return p
}

// PageSize returns the buffer size this pool hands out.
func (p *Pool) PageSize() int {
	return p.size
}

// Get returns a zeroed buffer of exactly the pool's size.
func (p *Pool) Get() []byte {
	bufPtr := p.pool.Get().(*[]byte)
	return *bufPtr
}

// Put returns a buffer to the pool for reuse. The buffer is zeroed
// before pooling so recycled pages read back empty. Buffers whose
// capacity does not match the pool size are dropped and garbage
// collected normally.
func (p *Pool) Put(buf []byte) {
	if cap(buf) != p.size {
		return
	}
	buf = buf[:cap(buf)]
	clear(buf)
	p.pool.Put(&buf)
}

// Package-level pools keyed by size, so stores with different page
// sizes each recycle into their own pool.
var pools sync.Map // int -> *Pool

// ForSize returns the shared pool for the given buffer size, creating
// it on first use.
func ForSize(size int) *Pool {
	if size <= 0 {
		size = DefaultPageSize
	}
	if p, ok := pools.Load(size); ok {
		return p.(*Pool)
	}
	p, _ := pools.LoadOrStore(size, NewPool(size))
	return p.(*Pool)
}

// Get returns a zeroed buffer of the given size from the shared pool
// for that size.
func Get(size int) []byte {
	return ForSize(size).Get()
}

// Put returns a buffer to the shared pool matching its capacity.
func Put(buf []byte) {
	if len(buf) == 0 && cap(buf) == 0 {
		return
	}
	if p, ok := pools.Load(cap(buf)); ok {
		p.(*Pool).Put(buf)
	}
}
