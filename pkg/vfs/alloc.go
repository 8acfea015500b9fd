package vfs

// NodeAllocator is the allocation strategy behind a filesystem type:
// it decides where node memory comes from and how it is returned. The
// framework never frees a node directly; it always goes back through
// the allocator that produced it.
//
// A strategy is picked once per filesystem type at registration time,
// not per call.
type NodeAllocator interface {
	// NewNode produces a zeroed, unbound node. A nil node never comes
	// back; allocation failure is reported as an error and callers must
	// abort the enclosing operation without partial namespace mutation.
	NewNode() (*Node, error)

	// Destroy returns a node's memory to the strategy. The node must
	// already be unreferenced and detached from the namespace.
	Destroy(n *Node)

	// Teardown reclaims any memory the strategy holds in bulk. Called
	// once at filesystem type unregistration; must be idempotent.
	Teardown()

	// Class is the placement hint the strategy tags node storage with.
	Class() StorageClass
}

// HeapAllocator is the generic allocation strategy: every node is a
// fresh allocation from the Go heap and is released individually to the
// garbage collector. No shared state, nothing to tear down. Adequate
// when node counts are small or the allocation pattern is unpredictable.
type HeapAllocator struct{}

// NewNode implements NodeAllocator.
func (HeapAllocator) NewNode() (*Node, error) {
	return &Node{}, nil
}

// Destroy implements NodeAllocator. The garbage collector does the work.
func (HeapAllocator) Destroy(n *Node) {}

// Teardown implements NodeAllocator.
func (HeapAllocator) Teardown() {}

// Class implements NodeAllocator.
func (HeapAllocator) Class() StorageClass { return StorageClassNone }
