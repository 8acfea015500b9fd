// Package ramfs implements a volatile in-memory filesystem. All state
// lives in page stores attached to nodes; nothing is ever written back,
// and unmounting discards the whole tree.
//
// Two flavors are registered: "ramfs" allocates nodes straight from the
// heap, "rampool" recycles them through a nodepool arena.
package ramfs

import (
	"sync/atomic"
	"time"

	"github.com/marmos91/ramfs/internal/logger"
	"github.com/marmos91/ramfs/pkg/vfs"
)

// nextIno hands out node identifiers. Shared across mounts so an ino
// never repeats within a process.
var nextIno atomic.Uint64

// GetNode is the node factory: it allocates a node through the
// superblock's strategy and wires the operation table matching the
// type bits in mode. dir is the parent directory, or nil for a root.
func GetNode(sb *vfs.Superblock, dir *vfs.Node, mode uint32, dev uint64) (*vfs.Node, error) {
	n, err := sb.NewNode()
	if err != nil {
		return nil, err
	}

	n.Ino = nextIno.Add(1)
	vfs.InitOwner(n, dir, mode, sb.Credentials())

	now := time.Now().Truncate(sb.TimeGran)
	n.Atime = now
	n.Mtime = now
	n.Ctime = now
	n.Nlink = 1

	switch mode & vfs.ModeTypeMask {
	case vfs.ModeRegular:
		n.SetOps(vfs.RegularOperations{IO: vfs.PageIO{}})
		n.AttachData(vfs.NewPageStore(sb.BlockSize))
		// Volatile pages have no backing store, so they must never be
		// considered for eviction.
		n.Data().SetUnevictable(true)
		n.Data().SetStorageClass(sb.Allocator().Class())
	case vfs.ModeDirectory:
		n.SetOps(vfs.DirectoryOperations{Dir: dirDriver{}})
		// A directory's implicit "." self-link.
		n.IncNlink()
	case vfs.ModeSymlink:
		n.SetOps(vfs.SymlinkOperations{})
		n.AttachData(vfs.NewPageStore(sb.BlockSize))
		n.Data().SetUnevictable(true)
	default:
		vfs.InitSpecialNode(n, mode, dev)
	}

	logger.Debug("allocated node",
		logger.Ino(n.Ino),
		logger.TypeStr(n.Type().String()),
		logger.Mode(mode&vfs.ModePermMask),
		logger.Allocator(string(sb.Allocator().Class())))
	return n, nil
}

// dirDriver plugs the create-style operations into directory nodes.
// The framework calls these with the parent entry locked and the name
// verified unique.
type dirDriver struct{}

var _ vfs.DirDriver = dirDriver{}

// Mknod creates a node of the type carried in mode and binds it to
// entry. Allocation failure surfaces as a no-space condition.
func (dirDriver) Mknod(dir *vfs.Node, entry *vfs.Dentry, mode uint32, dev uint64) error {
	sb := entry.Superblock()
	n, err := GetNode(sb, dir, mode, dev)
	if err != nil {
		return vfs.NewNoSpaceError(entry.Path())
	}

	vfs.Instantiate(entry, n)
	entry.Pin()

	now := time.Now().Truncate(sb.TimeGran)
	dir.Mtime = now
	dir.Ctime = now
	return nil
}

// Mkdir creates a directory and bumps the parent's link count for the
// child's ".." back-reference.
func (d dirDriver) Mkdir(dir *vfs.Node, entry *vfs.Dentry, mode uint32) error {
	if err := d.Mknod(dir, entry, mode|vfs.ModeDirectory, 0); err != nil {
		return err
	}
	dir.IncNlink()
	return nil
}

// Create creates a regular file.
func (d dirDriver) Create(dir *vfs.Node, entry *vfs.Dentry, mode uint32) error {
	return d.Mknod(dir, entry, mode|vfs.ModeRegular, 0)
}

// Symlink creates a symbolic link to target. If storing the target
// fails the orphan node is released before the error surfaces.
func (dirDriver) Symlink(dir *vfs.Node, entry *vfs.Dentry, target string) error {
	sb := entry.Superblock()
	n, err := GetNode(sb, dir, vfs.ModeSymlink|0o777, 0)
	if err != nil {
		return vfs.NewNoSpaceError(entry.Path())
	}

	if err := vfs.WriteSymlink(n, target); err != nil {
		n.Put()
		return err
	}

	vfs.Instantiate(entry, n)
	entry.Pin()

	now := time.Now().Truncate(sb.TimeGran)
	dir.Mtime = now
	dir.Ctime = now

	logger.Debug("created symlink",
		logger.Path(entry.Path()),
		logger.LinkTarget(target))
	return nil
}
