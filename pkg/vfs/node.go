package vfs

import (
	"sync/atomic"
	"time"
)

// Mode bit layout, matching the POSIX st_mode convention: the high bits
// select the node type, the low 12 bits are permission bits. The type
// portion is fixed at creation and never mutated.
const (
	ModeTypeMask    uint32 = 0o170000
	ModeSocket      uint32 = 0o140000
	ModeSymlink     uint32 = 0o120000
	ModeRegular     uint32 = 0o100000
	ModeBlockDevice uint32 = 0o060000
	ModeDirectory   uint32 = 0o040000
	ModeCharDevice  uint32 = 0o020000
	ModeFIFO        uint32 = 0o010000

	ModePermMask uint32 = 0o7777
	ModeSetUID   uint32 = 0o4000
	ModeSetGID   uint32 = 0o2000
)

// NodeType identifies what kind of filesystem object a node is.
type NodeType int

const (
	NodeRegular NodeType = iota
	NodeDirectory
	NodeSymlink
	NodeBlockDevice
	NodeCharDevice
	NodeSocket
	NodeFIFO
)

// String returns a human-readable name for the node type.
func (t NodeType) String() string {
	switch t {
	case NodeRegular:
		return "regular"
	case NodeDirectory:
		return "directory"
	case NodeSymlink:
		return "symlink"
	case NodeBlockDevice:
		return "block-device"
	case NodeCharDevice:
		return "char-device"
	case NodeSocket:
		return "socket"
	case NodeFIFO:
		return "fifo"
	default:
		return "unknown"
	}
}

// TypeFromMode derives the node type strictly from the type bits of mode.
func TypeFromMode(mode uint32) NodeType {
	switch mode & ModeTypeMask {
	case ModeRegular:
		return NodeRegular
	case ModeDirectory:
		return NodeDirectory
	case ModeSymlink:
		return NodeSymlink
	case ModeBlockDevice:
		return NodeBlockDevice
	case ModeCharDevice:
		return NodeCharDevice
	case ModeSocket:
		return NodeSocket
	default:
		return NodeFIFO
	}
}

// Credentials identify the effective caller for ownership assignment.
type Credentials struct {
	UID uint32
	GID uint32
}

// Node is the filesystem's unit of storage identity. A node is created
// by a driver's node factory, bound into the namespace by directory
// entries, and destroyed when the last reference is dropped. The memory
// behind a node is owned by the superblock's NodeAllocator.
type Node struct {
	// Ino is the unique node identifier, assigned once at creation.
	Ino uint64

	// Mode carries the type bits and permission bits.
	Mode uint32

	// UID and GID identify the owner.
	UID uint32
	GID uint32

	// Nlink is the number of namespace links referencing this node.
	// Directories start at 2 for the implicit "." entry.
	Nlink uint32

	// Size is the node size in bytes (content size for regular files,
	// target length including terminator for symlinks).
	Size uint64

	// Atime, Mtime and Ctime are the access, modification and change times.
	Atime time.Time
	Mtime time.Time
	Ctime time.Time

	// Rdev carries device numbers for special nodes.
	Rdev uint64

	ops  Operations
	sb   *Superblock
	data *PageStore
	refs atomic.Int32
}

// Type returns the node type derived from the mode's type bits.
func (n *Node) Type() NodeType {
	return TypeFromMode(n.Mode)
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Mode&ModeTypeMask == ModeDirectory
}

// Ops returns the node's operation table. The table is selected once at
// creation and immutable thereafter.
func (n *Node) Ops() Operations {
	return n.ops
}

// SetOps installs the node's operation table. Drivers call this exactly
// once from their node factory.
func (n *Node) SetOps(ops Operations) {
	if n.ops != nil {
		panic("vfs: node operation table already set")
	}
	n.ops = ops
}

// Data returns the node's page store, or nil if none is attached.
func (n *Node) Data() *PageStore {
	return n.data
}

// AttachData attaches a page store to the node. For pooled nodes the
// store is attached once per slot and survives reuse; AttachData is a
// no-op when a store is already present.
func (n *Node) AttachData(ps *PageStore) {
	if n.data == nil {
		n.data = ps
	}
}

// Superblock returns the superblock the node belongs to.
func (n *Node) Superblock() *Superblock {
	return n.sb
}

// IncNlink increments the link count. Callers hold the parent
// directory's lock when the count change is namespace-driven.
func (n *Node) IncNlink() {
	n.Nlink++
}

// DropNlink decrements the link count.
func (n *Node) DropNlink() {
	if n.Nlink > 0 {
		n.Nlink--
	}
}

// Refs returns the current reference count. Intended for tests and
// diagnostics.
func (n *Node) Refs() int32 {
	return n.refs.Load()
}

// Grab takes an additional reference on the node.
func (n *Node) Grab() {
	n.refs.Add(1)
}

// Put drops a reference. When the last reference goes away the node's
// content is discarded and its memory is returned through the
// allocator; how it is returned (freed or recycled) is the allocator's
// business, not ours.
func (n *Node) Put() {
	if n.refs.Add(-1) > 0 {
		return
	}
	if n.data != nil {
		n.data.Truncate(0)
	}
	sb := n.sb
	if sb != nil {
		sb.destroyNode(n)
	}
}

// InitOwner assigns ownership and permission bits to a freshly created
// node. Ownership comes from the mount credentials; a set-group-ID
// parent directory donates its group instead, and propagates the
// set-group-ID bit to child directories.
func InitOwner(n *Node, dir *Node, mode uint32, creds Credentials) {
	n.UID = creds.UID
	n.GID = creds.GID
	if dir != nil && dir.Mode&ModeSetGID != 0 {
		n.GID = dir.GID
		if mode&ModeTypeMask == ModeDirectory {
			mode |= ModeSetGID
		}
	}
	n.Mode = mode
}

// InitSpecialNode is the framework's initializer for device, FIFO and
// socket nodes. Drivers delegate here rather than building their own
// special-node handling.
func InitSpecialNode(n *Node, mode uint32, dev uint64) {
	n.Mode = mode
	n.Rdev = dev
	n.SetOps(SpecialOperations{Type: TypeFromMode(mode)})
}

// ResetNode clears a node's identity so its memory slot can be handed
// out again. The page store is deliberately left in place: it is the
// one-time-initialized substructure that persists across reuse as long
// as the slot returns to its pool rather than to the general allocator.
func ResetNode(n *Node) {
	n.Ino = 0
	n.Mode = 0
	n.UID = 0
	n.GID = 0
	n.Nlink = 0
	n.Size = 0
	n.Atime = time.Time{}
	n.Mtime = time.Time{}
	n.Ctime = time.Time{}
	n.Rdev = 0
	n.ops = nil
	n.sb = nil
	n.refs.Store(0)
}
