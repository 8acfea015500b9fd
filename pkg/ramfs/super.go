package ramfs

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/marmos91/ramfs/internal/logger"
	"github.com/marmos91/ramfs/pkg/nodepool"
	"github.com/marmos91/ramfs/pkg/vfs"
)

// Magic identifies ramfs superblocks.
const Magic uint64 = 0x858458f6

// MaxFileSize is the file size ceiling. In-memory pages are the only
// limit, so this is the largest offset the page math supports.
const MaxFileSize int64 = 1<<63 - 1

// Registered filesystem type names.
const (
	FSTypeRAM  = "ramfs"   // heap-allocated nodes
	FSTypePool = "rampool" // pooled nodes recycled through an arena
)

// PoolStorageClass tags page stores of nodes that came from the arena.
const PoolStorageClass vfs.StorageClass = "pooled"

// mountInfo is the driver-private mount state kept on the superblock.
type mountInfo struct {
	mode uint32
}

// RootMode returns the root permission bits a mount was created with.
// ok is false once the mount state has been released.
func RootMode(sb *vfs.Superblock) (uint32, bool) {
	fsi, ok := sb.Info().(*mountInfo)
	if !ok {
		return 0, false
	}
	return fsi.mode, true
}

// fillSuper builds a fully wired superblock on top of the given
// allocation strategy: constants, parsed options, and a root directory
// bound as the tree's anchor.
func fillSuper(alloc vfs.NodeAllocator, options string) (*vfs.Superblock, error) {
	opts, err := parseOptions(options)
	if err != nil {
		return nil, err
	}

	sb := vfs.NewSuperblock(alloc)
	sb.MaxBytes = MaxFileSize
	sb.BlockSize = os.Getpagesize()
	sb.Magic = Magic
	sb.TimeGran = time.Nanosecond
	sb.SetInfo(&mountInfo{mode: opts.mode})

	root, err := GetNode(sb, nil, vfs.ModeDirectory|opts.mode, 0)
	if err != nil {
		return nil, vfs.NewNoMemoryError("cannot allocate root node")
	}
	rootEntry, err := vfs.MakeRoot(sb, root)
	if err != nil {
		return nil, err
	}
	sb.SetRoot(rootEntry)
	return sb, nil
}

// killSuper releases the driver-private mount state. The framework
// tears down the tree itself afterwards.
func killSuper(sb *vfs.Superblock) {
	sb.SetInfo(nil)
}

// Driver owns the registration lifecycle of the ramfs filesystem
// types: a heap-backed flavor and a pooled flavor sharing one node
// arena. Registration happens at most once per driver; teardown is
// idempotent.
type Driver struct {
	registry    *vfs.Registry
	poolMetrics nodepool.Metrics

	pool       *nodepool.Pool
	registered atomic.Bool
	tornDown   atomic.Bool
}

// NewDriver creates a driver that registers against reg. poolMetrics
// may be nil.
func NewDriver(reg *vfs.Registry, poolMetrics nodepool.Metrics) *Driver {
	return &Driver{registry: reg, poolMetrics: poolMetrics}
}

// Register registers the "ramfs" and "rampool" filesystem types and
// builds the shared node arena. Calling it again is a no-op.
func (d *Driver) Register() error {
	if !d.registered.CompareAndSwap(false, true) {
		return nil
	}

	pageSize := os.Getpagesize()
	d.pool = nodepool.New(nodepool.Config{
		Class:   PoolStorageClass,
		Metrics: d.poolMetrics,
		OnInit: func(n *vfs.Node) {
			n.AttachData(vfs.NewPageStore(pageSize))
		},
	})

	if err := d.registry.RegisterFilesystem(&vfs.FilesystemType{
		Name: FSTypeRAM,
		Mount: func(options string) (*vfs.Superblock, error) {
			return fillSuper(vfs.HeapAllocator{}, options)
		},
		KillSuper: killSuper,
	}); err != nil {
		return err
	}

	if err := d.registry.RegisterFilesystem(&vfs.FilesystemType{
		Name: FSTypePool,
		Mount: func(options string) (*vfs.Superblock, error) {
			return fillSuper(d.pool, options)
		},
		KillSuper: killSuper,
	}); err != nil {
		return err
	}

	logger.Info("ramfs driver registered")
	return nil
}

// Teardown unregisters the filesystem types and releases the arena.
// Only the first call does anything.
func (d *Driver) Teardown() {
	if !d.tornDown.CompareAndSwap(false, true) {
		return
	}
	if !d.registered.Load() {
		return
	}

	if err := d.registry.UnregisterFilesystem(FSTypeRAM); err != nil {
		logger.Warn("unregister failed", logger.FSType(FSTypeRAM), logger.Err(err))
	}
	if err := d.registry.UnregisterFilesystem(FSTypePool); err != nil {
		logger.Warn("unregister failed", logger.FSType(FSTypePool), logger.Err(err))
	}
	d.pool.Teardown()

	logger.Info("ramfs driver torn down")
}

// defaultDriver backs the package-level Init and Teardown used by the
// daemon entrypoint.
var defaultDriver atomic.Pointer[Driver]

// Init registers the ramfs filesystem types with the process-wide
// registry. poolMetrics may be nil.
func Init(poolMetrics nodepool.Metrics) error {
	d := NewDriver(vfs.DefaultRegistry, poolMetrics)
	if !defaultDriver.CompareAndSwap(nil, d) {
		return nil
	}
	return d.Register()
}

// Teardown tears down the process-wide driver.
func Teardown() {
	if d := defaultDriver.Swap(nil); d != nil {
		d.Teardown()
	}
}
