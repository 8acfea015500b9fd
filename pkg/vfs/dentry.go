package vfs

import (
	"sync"
	"sync/atomic"
)

// Dentry binds a name within one parent directory to a node. The
// framework owns the name-to-node lookup structure entirely; drivers
// only instantiate the target node and hand it over to bind.
//
// A dentry with a nil node is negative: the name is reserved while a
// driver create operation is in flight.
type Dentry struct {
	id     uint64
	name   string
	parent *Dentry
	sb     *Superblock

	// mu serializes mutation of this directory's children. All
	// directory-mutating operations on the same parent go through it,
	// which is the serialization drivers assume and do not re-implement.
	mu       sync.Mutex
	children map[string]*Dentry

	node *Node
	pins atomic.Int32
}

// Name returns the entry's name within its parent.
func (d *Dentry) Name() string {
	return d.name
}

// Node returns the bound node, or nil for a negative entry.
func (d *Dentry) Node() *Node {
	return d.node
}

// Parent returns the parent entry, or nil for a root.
func (d *Dentry) Parent() *Dentry {
	return d.parent
}

// Superblock returns the superblock this entry belongs to.
func (d *Dentry) Superblock() *Superblock {
	return d.sb
}

// Pin takes an extra count on the binding so it survives in core until
// explicitly removed.
func (d *Dentry) Pin() {
	d.pins.Add(1)
}

// Unpin drops a pin count.
func (d *Dentry) Unpin() {
	d.pins.Add(-1)
}

// Pins returns the current pin count. Intended for tests.
func (d *Dentry) Pins() int32 {
	return d.pins.Load()
}

// Path returns the entry's path from its root.
func (d *Dentry) Path() string {
	if d.parent == nil {
		return "/"
	}
	prefix := d.parent.Path()
	if prefix == "/" {
		return "/" + d.name
	}
	return prefix + "/" + d.name
}

// Instantiate binds node to the entry, consuming the caller's node
// reference. The entry must be negative.
func Instantiate(d *Dentry, n *Node) {
	if d.node != nil {
		panic("vfs: dentry already instantiated")
	}
	d.node = n
}

// nextDentryID feeds the lock ordering used by two-directory renames.
var nextDentryID atomic.Uint64

// MakeRoot wraps a freshly created directory node as a superblock
// root entry. A nil node means the root could not be allocated and the
// mount must fail.
func MakeRoot(sb *Superblock, n *Node) (*Dentry, error) {
	if n == nil {
		return nil, NewNoMemoryError("cannot bind nil root node")
	}
	d := &Dentry{
		id:       nextDentryID.Add(1),
		name:     "/",
		sb:       sb,
		children: make(map[string]*Dentry),
		node:     n,
	}
	d.Pin()
	return d, nil
}

// newChild reserves name under parent as a negative entry. Caller holds
// parent.mu and has verified the name is free.
func (parent *Dentry) newChild(name string) *Dentry {
	d := &Dentry{
		id:       nextDentryID.Add(1),
		name:     name,
		parent:   parent,
		sb:       parent.sb,
		children: make(map[string]*Dentry),
	}
	parent.children[name] = d
	return d
}

// dropChild removes a child entry. Caller holds parent.mu.
func (parent *Dentry) dropChild(name string) {
	delete(parent.children, name)
}
