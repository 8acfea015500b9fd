package vfs

// Operations is the per-type capability table attached to a node at
// creation time. It is a tagged variant: exactly one of the concrete
// tables below is installed per node, selected from the mode's type
// bits, and never swapped afterwards.
type Operations interface {
	// Kind reports which node type this table serves.
	Kind() NodeType
}

// FileIO is the byte-range storage contract for regular files. The
// framework supplies the implementation; drivers attach it and never
// implement the bodies themselves.
type FileIO interface {
	// ReadRange reads from the file's content at off.
	ReadRange(n *Node, off int64, p []byte) (int, error)

	// WriteRange writes to the file's content at off, extending it as needed.
	WriteRange(n *Node, off int64, p []byte) (int, error)

	// MarkDirty marks a byte range dirty. In-memory filesystems have no
	// writeback, so this is bookkeeping only.
	MarkDirty(n *Node, off, length int64)
}

// DirDriver is the set of create-style operations a filesystem driver
// plugs into its directory nodes. The framework calls these with the
// parent directory's lock held and the entry name already verified
// unique; the driver allocates the node, binds it, and updates parent
// bookkeeping.
type DirDriver interface {
	// Mknod creates a node of the type carried in mode and binds it to entry.
	Mknod(dir *Node, entry *Dentry, mode uint32, dev uint64) error

	// Create creates a regular file and binds it to entry.
	Create(dir *Node, entry *Dentry, mode uint32) error

	// Mkdir creates a directory and binds it to entry.
	Mkdir(dir *Node, entry *Dentry, mode uint32) error

	// Symlink creates a symbolic link to target and binds it to entry.
	Symlink(dir *Node, entry *Dentry, target string) error
}

// RegularOperations is the operation table for regular files.
type RegularOperations struct {
	// IO performs byte-range reads and writes against the node's storage.
	IO FileIO
}

// Kind implements Operations.
func (RegularOperations) Kind() NodeType { return NodeRegular }

// DirectoryOperations is the operation table for directories. Lookup,
// link, unlink, rmdir and rename are generic and live on the
// superblock; only the create-style mutations come from the driver.
type DirectoryOperations struct {
	Dir DirDriver
}

// Kind implements Operations.
func (DirectoryOperations) Kind() NodeType { return NodeDirectory }

// SymlinkOperations is the operation table for symbolic links. The
// target text lives in the node's page store; Readlink reads it back.
type SymlinkOperations struct{}

// Kind implements Operations.
func (SymlinkOperations) Kind() NodeType { return NodeSymlink }

// SpecialOperations is the operation table for device, FIFO and socket
// nodes. The framework owns their initialization entirely.
type SpecialOperations struct {
	Type NodeType
}

// Kind implements Operations.
func (o SpecialOperations) Kind() NodeType { return o.Type }

// PageIO is the framework's FileIO over a node's page store.
type PageIO struct{}

// ReadRange implements FileIO.
func (PageIO) ReadRange(n *Node, off int64, p []byte) (int, error) {
	if n.data == nil {
		return 0, NewInvalidArgumentError("node has no byte-range storage")
	}
	return n.data.ReadAt(p, off)
}

// WriteRange implements FileIO.
func (PageIO) WriteRange(n *Node, off int64, p []byte) (int, error) {
	if n.data == nil {
		return 0, NewInvalidArgumentError("node has no byte-range storage")
	}
	written, err := n.data.WriteAt(p, off)
	if err != nil {
		return written, err
	}
	if size := n.data.Size(); size > int64(n.Size) {
		n.Size = uint64(size)
	}
	return written, nil
}

// MarkDirty implements FileIO.
func (PageIO) MarkDirty(n *Node, off, length int64) {
	if n.data != nil {
		n.data.MarkDirty(off, length)
	}
}

// WriteSymlink writes the target path into the node's storage:
// the target text plus a single NUL terminator, so the stored length is
// the input length plus one. Only after this succeeds should the caller
// bind the node into the namespace.
func WriteSymlink(n *Node, target string) error {
	if n.data == nil {
		return NewNoSpaceError(target)
	}
	buf := make([]byte, 0, len(target)+1)
	buf = append(buf, target...)
	buf = append(buf, 0)
	if _, err := n.data.WriteAt(buf, 0); err != nil {
		return NewNoSpaceError(target)
	}
	n.Size = uint64(len(buf))
	return nil
}

// Readlink reads the symlink target back out of the node's storage,
// without the terminator.
func Readlink(n *Node) (string, error) {
	if n.Type() != NodeSymlink {
		return "", NewInvalidArgumentError("not a symlink")
	}
	if n.data == nil || n.Size == 0 {
		return "", NewInvalidArgumentError("symlink has no target")
	}
	buf := make([]byte, n.Size)
	read, err := n.data.ReadAt(buf, 0)
	if err != nil {
		return "", err
	}
	buf = buf[:read]
	if len(buf) > 0 && buf[len(buf)-1] == 0 {
		buf = buf[:len(buf)-1]
	}
	return string(buf), nil
}
