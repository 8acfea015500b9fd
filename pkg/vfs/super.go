package vfs

import (
	"sync/atomic"
	"time"
)

// NodeMetrics receives node lifecycle events across all mounts, keyed
// by the allocator's storage class. A nil value disables reporting.
type NodeMetrics interface {
	// ObserveNodeCreated records one node allocation.
	ObserveNodeCreated(class StorageClass)

	// ObserveNodeDestroyed records one node release.
	ObserveNodeDestroyed(class StorageClass)
}

// nodeMetricsBox wraps the interface so the sink can live in an atomic
// pointer.
type nodeMetricsBox struct {
	sink NodeMetrics
}

var nodeMetrics atomic.Pointer[nodeMetricsBox]

// SetNodeMetrics installs the process-wide node lifecycle sink. Call
// before any mounts are created.
func SetNodeMetrics(m NodeMetrics) {
	nodeMetrics.Store(&nodeMetricsBox{sink: m})
}

func nodeMetricsSink() NodeMetrics {
	if box := nodeMetrics.Load(); box != nil {
		return box.sink
	}
	return nil
}

// Superblock is the per-mount filesystem instance: fixed capacity and
// identity constants, the root entry, the allocation strategy, and a
// slot for driver-private mount state. It is owned exclusively by one
// mount and never shared across mounts.
type Superblock struct {
	// MaxBytes is the maximum file size ceiling.
	MaxBytes int64

	// BlockSize is the block size and alignment constant, normally the
	// platform page size.
	BlockSize int

	// Magic is the identifying magic value for the filesystem type.
	Magic uint64

	// TimeGran is the timestamp granularity.
	TimeGran time.Duration

	root  *Dentry
	alloc NodeAllocator
	creds Credentials
	info  any // driver-private mount state

	nodesLive    atomic.Int64
	nodesCreated atomic.Int64
}

// NewSuperblock creates a superblock backed by the given allocation
// strategy.
func NewSuperblock(alloc NodeAllocator) *Superblock {
	return &Superblock{alloc: alloc}
}

// Allocator returns the superblock's allocation strategy.
func (sb *Superblock) Allocator() NodeAllocator {
	return sb.alloc
}

// Credentials returns the mount credentials used for ownership of new
// nodes.
func (sb *Superblock) Credentials() Credentials {
	return sb.creds
}

// SetCredentials sets the mount credentials.
func (sb *Superblock) SetCredentials(creds Credentials) {
	sb.creds = creds
}

// Info returns the driver-private mount state, or nil after release.
// Mount state is installed at mount time and released at unmount; it is
// not touched on the operation path, so no locking is needed here.
func (sb *Superblock) Info() any {
	return sb.info
}

// SetInfo installs or releases the driver-private mount state.
func (sb *Superblock) SetInfo(v any) {
	sb.info = v
}

// Root returns the root entry.
func (sb *Superblock) Root() *Dentry {
	return sb.root
}

// SetRoot installs the root entry.
func (sb *Superblock) SetRoot(d *Dentry) {
	sb.root = d
}

// NewNode allocates a node through the superblock's strategy and hands
// it back with one reference held by the caller.
func (sb *Superblock) NewNode() (*Node, error) {
	n, err := sb.alloc.NewNode()
	if err != nil {
		return nil, err
	}
	n.sb = sb
	n.refs.Store(1)
	sb.nodesLive.Add(1)
	sb.nodesCreated.Add(1)
	if sink := nodeMetricsSink(); sink != nil {
		sink.ObserveNodeCreated(sb.alloc.Class())
	}
	return n, nil
}

// destroyNode returns a node to the allocator once the last reference
// is gone.
func (sb *Superblock) destroyNode(n *Node) {
	sb.nodesLive.Add(-1)
	if sink := nodeMetricsSink(); sink != nil {
		sink.ObserveNodeDestroyed(sb.alloc.Class())
	}
	sb.alloc.Destroy(n)
}

// LiveNodes returns the number of nodes currently alive on this mount.
func (sb *Superblock) LiveNodes() int64 {
	return sb.nodesLive.Load()
}

// CreatedNodes returns the total number of nodes ever created on this
// mount.
func (sb *Superblock) CreatedNodes() int64 {
	return sb.nodesCreated.Load()
}

// Statfs describes a mounted filesystem's capacity and identity.
type Statfs struct {
	BlockSize int
	MaxBytes  int64
	Nodes     int64
	Magic     uint64
}

// Statfs returns capacity and identity information for the mount.
func (sb *Superblock) Statfs() Statfs {
	return Statfs{
		BlockSize: sb.BlockSize,
		MaxBytes:  sb.MaxBytes,
		Nodes:     sb.nodesLive.Load(),
		Magic:     sb.Magic,
	}
}

// Shutdown recursively releases every entry and node still reachable
// from the root. Called by the registry after the driver has released
// its private mount state.
func (sb *Superblock) Shutdown() {
	if sb.root == nil {
		return
	}
	releaseTree(sb.root)
	sb.root = nil
	sb.alloc = nil
}

// releaseTree drops a dentry subtree bottom-up. Each binding holds one
// node reference; hard-linked nodes are destroyed on their last
// binding's release.
func releaseTree(d *Dentry) {
	d.mu.Lock()
	children := make([]*Dentry, 0, len(d.children))
	for _, child := range d.children {
		children = append(children, child)
	}
	d.children = nil
	d.mu.Unlock()

	for _, child := range children {
		releaseTree(child)
	}

	if n := d.node; n != nil {
		d.node = nil
		n.Nlink = 0
		n.Put()
	}
	d.pins.Store(0)
}
