// Package nodepool provides a pooled node allocator. Nodes are carved
// out of fixed-size arena chunks and recycled through a free list, so
// a create-heavy workload reuses storage instead of churning the heap.
//
// Each slot carries a one-time initializer: the first time a slot is
// handed out, the pool runs the configured OnInit hook; on every reuse
// it only resets the node's mutable state. Substructure built by
// OnInit, such as an attached page store, survives across the slot's
// whole lifetime.
package nodepool

import (
	"sync"
	"sync/atomic"

	"github.com/marmos91/ramfs/internal/logger"
	"github.com/marmos91/ramfs/pkg/vfs"
)

// DefaultChunkSize is the number of node slots per arena chunk.
const DefaultChunkSize = 64

// Metrics receives pool events. Implementations must be safe for
// concurrent use. A nil Metrics disables reporting.
type Metrics interface {
	// ObserveAlloc records one allocation. reused is true when the slot
	// had been handed out before.
	ObserveAlloc(reused bool)

	// ObserveRelease records one node returned to the free list.
	ObserveRelease()

	// SetCapacity records the pool's total slot count.
	SetCapacity(n int)
}

// Config controls pool construction.
type Config struct {
	// ChunkSize is the number of slots per arena chunk. Zero means
	// DefaultChunkSize.
	ChunkSize int

	// Class tags nodes from this pool with a storage class.
	Class vfs.StorageClass

	// OnInit runs exactly once per slot, the first time it is handed
	// out. Optional.
	OnInit func(n *vfs.Node)

	// Metrics receives pool events. Optional.
	Metrics Metrics
}

// slot is one pooled node. Slots live inside arena chunks and their
// addresses never change.
type slot struct {
	node   vfs.Node
	inited bool
}

// Pool is a vfs.NodeAllocator backed by arena chunks and a LIFO free
// list.
type Pool struct {
	cfg Config

	mu     sync.Mutex
	chunks [][]slot
	free   []*slot
	index  map[*vfs.Node]*slot

	tornDown atomic.Bool
}

var _ vfs.NodeAllocator = (*Pool)(nil)

// New creates an empty pool. The first allocation grows it by one
// chunk.
func New(cfg Config) *Pool {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &Pool{
		cfg:   cfg,
		index: make(map[*vfs.Node]*slot),
	}
}

// NewNode hands out a node slot, growing the arena when the free list
// is empty. Implements vfs.NodeAllocator.
func (p *Pool) NewNode() (*vfs.Node, error) {
	if p.tornDown.Load() {
		return nil, vfs.NewNoMemoryError("node pool is torn down")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		p.grow()
	}

	s := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	reused := s.inited
	if reused {
		vfs.ResetNode(&s.node)
	} else {
		if p.cfg.OnInit != nil {
			p.cfg.OnInit(&s.node)
		}
		s.inited = true
	}

	if p.cfg.Metrics != nil {
		p.cfg.Metrics.ObserveAlloc(reused)
	}
	return &s.node, nil
}

// grow appends one arena chunk. Chunks are separate allocations so
// existing slot addresses stay valid. Caller holds p.mu.
func (p *Pool) grow() {
	chunk := make([]slot, p.cfg.ChunkSize)
	p.chunks = append(p.chunks, chunk)
	for i := range chunk {
		s := &chunk[i]
		p.index[&s.node] = s
		p.free = append(p.free, s)
	}

	capacity := len(p.chunks) * p.cfg.ChunkSize
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.SetCapacity(capacity)
	}
	logger.Debug("node pool grew",
		logger.Allocator(string(p.cfg.Class)),
		logger.Size(uint64(capacity)))
}

// Destroy returns a node's slot to the free list. Nodes that did not
// come from this pool are ignored. Implements vfs.NodeAllocator.
func (p *Pool) Destroy(n *vfs.Node) {
	if p.tornDown.Load() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.index[n]
	if !ok {
		logger.Warn("destroy of node not owned by pool",
			logger.Allocator(string(p.cfg.Class)),
			logger.Ino(n.Ino))
		return
	}
	p.free = append(p.free, s)

	if p.cfg.Metrics != nil {
		p.cfg.Metrics.ObserveRelease()
	}
}

// Teardown releases the whole arena. Safe to call more than once;
// only the first call does anything.
func (p *Pool) Teardown() {
	if !p.tornDown.CompareAndSwap(false, true) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.chunks = nil
	p.free = nil
	p.index = make(map[*vfs.Node]*slot)

	if p.cfg.Metrics != nil {
		p.cfg.Metrics.SetCapacity(0)
	}
	logger.Debug("node pool torn down", logger.Allocator(string(p.cfg.Class)))
}

// Class reports the storage class of nodes from this pool. Implements
// vfs.NodeAllocator.
func (p *Pool) Class() vfs.StorageClass {
	return p.cfg.Class
}

// Capacity returns the total number of slots across all chunks.
func (p *Pool) Capacity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.chunks) * p.cfg.ChunkSize
}

// FreeCount returns the number of slots currently on the free list.
func (p *Pool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
