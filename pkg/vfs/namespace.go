package vfs

import (
	"sort"
	"time"
)

// Generic namespace operations. Name uniqueness, per-directory
// serialization and lookup structure maintenance all live here; drivers
// only ever see create-style calls with a reserved entry.

// dirDriverOf extracts the driver's create operations from a directory
// node, or fails when the given entry is not a usable directory.
func dirDriverOf(d *Dentry) (*Node, DirDriver, error) {
	n := d.Node()
	if n == nil {
		return nil, nil, NewNotFoundError(d.Path())
	}
	if !n.IsDir() {
		return nil, nil, NewNotDirectoryError(d.Path())
	}
	ops, ok := n.Ops().(DirectoryOperations)
	if !ok || ops.Dir == nil {
		return nil, nil, NewNotDirectoryError(d.Path())
	}
	return n, ops.Dir, nil
}

// createEntry is the shared shape of the four create-style operations:
// reserve the name under the parent's lock, run the driver op, drop the
// reservation on failure.
func createEntry(parent *Dentry, name string, op func(dir *Node, entry *Dentry) error) (*Dentry, error) {
	if name == "" || name == "." || name == ".." {
		return nil, NewInvalidArgumentError("invalid entry name")
	}

	dir, _, err := dirDriverOf(parent)
	if err != nil {
		return nil, err
	}

	parent.mu.Lock()
	defer parent.mu.Unlock()

	if _, exists := parent.children[name]; exists {
		return nil, NewExistsError(parent.Path() + "/" + name)
	}

	entry := parent.newChild(name)
	if err := op(dir, entry); err != nil {
		parent.dropChild(name)
		return nil, err
	}
	return entry, nil
}

// Mknod creates a node of the type carried in mode under parent.
func (sb *Superblock) Mknod(parent *Dentry, name string, mode uint32, dev uint64) (*Dentry, error) {
	_, driver, err := dirDriverOf(parent)
	if err != nil {
		return nil, err
	}
	return createEntry(parent, name, func(dir *Node, entry *Dentry) error {
		return driver.Mknod(dir, entry, mode, dev)
	})
}

// Create creates a regular file under parent.
func (sb *Superblock) Create(parent *Dentry, name string, mode uint32) (*Dentry, error) {
	_, driver, err := dirDriverOf(parent)
	if err != nil {
		return nil, err
	}
	return createEntry(parent, name, func(dir *Node, entry *Dentry) error {
		return driver.Create(dir, entry, mode)
	})
}

// Mkdir creates a directory under parent.
func (sb *Superblock) Mkdir(parent *Dentry, name string, mode uint32) (*Dentry, error) {
	_, driver, err := dirDriverOf(parent)
	if err != nil {
		return nil, err
	}
	return createEntry(parent, name, func(dir *Node, entry *Dentry) error {
		return driver.Mkdir(dir, entry, mode)
	})
}

// Symlink creates a symbolic link to target under parent.
func (sb *Superblock) Symlink(parent *Dentry, name, target string) (*Dentry, error) {
	_, driver, err := dirDriverOf(parent)
	if err != nil {
		return nil, err
	}
	return createEntry(parent, name, func(dir *Node, entry *Dentry) error {
		return driver.Symlink(dir, entry, target)
	})
}

// Lookup resolves name within parent. "." resolves to parent itself
// and ".." to its parent (or itself at a root).
func (sb *Superblock) Lookup(parent *Dentry, name string) (*Dentry, error) {
	if _, _, err := dirDriverOf(parent); err != nil {
		return nil, err
	}

	switch name {
	case ".":
		return parent, nil
	case "..":
		if parent.parent == nil {
			return parent, nil
		}
		return parent.parent, nil
	}

	parent.mu.Lock()
	defer parent.mu.Unlock()

	child, ok := parent.children[name]
	if !ok || child.node == nil {
		return nil, NewNotFoundError(parent.Path() + "/" + name)
	}
	return child, nil
}

// Link creates a hard link: a new name under parent bound to target's
// node. Directories cannot be hard linked.
func (sb *Superblock) Link(parent *Dentry, name string, target *Dentry) (*Dentry, error) {
	if _, _, err := dirDriverOf(parent); err != nil {
		return nil, err
	}

	n := target.Node()
	if n == nil {
		return nil, NewNotFoundError(target.Path())
	}
	if n.IsDir() {
		return nil, NewIsDirectoryError(target.Path())
	}

	parent.mu.Lock()
	defer parent.mu.Unlock()

	if _, exists := parent.children[name]; exists {
		return nil, NewExistsError(parent.Path() + "/" + name)
	}

	now := time.Now()
	entry := parent.newChild(name)
	n.Grab()
	n.IncNlink()
	n.Ctime = now
	Instantiate(entry, n)
	entry.Pin()

	dir := parent.node
	dir.Mtime = now
	dir.Ctime = now
	return entry, nil
}

// Unlink removes a non-directory entry from parent. The node is
// destroyed when its last binding and reference go away.
func (sb *Superblock) Unlink(parent *Dentry, name string) error {
	if _, _, err := dirDriverOf(parent); err != nil {
		return err
	}

	parent.mu.Lock()
	defer parent.mu.Unlock()

	child, ok := parent.children[name]
	if !ok || child.node == nil {
		return NewNotFoundError(parent.Path() + "/" + name)
	}
	n := child.node
	if n.IsDir() {
		return NewIsDirectoryError(child.Path())
	}

	now := time.Now()
	n.Ctime = now
	n.DropNlink()

	parent.dropChild(name)
	child.Unpin()
	child.node = nil
	n.Put()

	dir := parent.node
	dir.Mtime = now
	dir.Ctime = now
	return nil
}

// Rmdir removes an empty directory entry from parent.
func (sb *Superblock) Rmdir(parent *Dentry, name string) error {
	if _, _, err := dirDriverOf(parent); err != nil {
		return err
	}

	parent.mu.Lock()
	defer parent.mu.Unlock()

	child, ok := parent.children[name]
	if !ok || child.node == nil {
		return NewNotFoundError(parent.Path() + "/" + name)
	}
	n := child.node
	if !n.IsDir() {
		return NewNotDirectoryError(child.Path())
	}

	child.mu.Lock()
	empty := len(child.children) == 0
	child.mu.Unlock()
	if !empty {
		return NewNotEmptyError(child.Path())
	}

	now := time.Now()

	// The directory loses its "." self-link and the name binding; the
	// parent loses the child's ".." back-reference.
	n.DropNlink()
	n.DropNlink()
	parent.node.DropNlink()

	parent.dropChild(name)
	child.Unpin()
	child.node = nil
	n.Put()

	dir := parent.node
	dir.Mtime = now
	dir.Ctime = now
	return nil
}

// Rename moves an entry, replacing an empty target if one exists.
// Cross-mount renames are rejected.
func (sb *Superblock) Rename(oldParent *Dentry, oldName string, newParent *Dentry, newName string) error {
	if oldParent.sb != newParent.sb {
		return NewInvalidArgumentError("cannot rename across mounts")
	}
	if _, _, err := dirDriverOf(oldParent); err != nil {
		return err
	}
	if _, _, err := dirDriverOf(newParent); err != nil {
		return err
	}
	if newName == "" || newName == "." || newName == ".." {
		return NewInvalidArgumentError("invalid entry name")
	}

	// Locking in creation order keeps two-directory renames
	// deadlock-free.
	lockPair(oldParent, newParent)
	defer unlockPair(oldParent, newParent)

	child, ok := oldParent.children[oldName]
	if !ok || child.node == nil {
		return NewNotFoundError(oldParent.Path() + "/" + oldName)
	}
	moved := child.node

	if existing, ok := newParent.children[newName]; ok && existing.node != nil {
		victim := existing.node
		if victim.IsDir() {
			existing.mu.Lock()
			empty := len(existing.children) == 0
			existing.mu.Unlock()
			if !empty {
				return NewNotEmptyError(existing.Path())
			}
			victim.DropNlink()
			victim.DropNlink()
			newParent.node.DropNlink()
		} else {
			victim.DropNlink()
		}
		newParent.dropChild(newName)
		existing.Unpin()
		existing.node = nil
		victim.Put()
	}

	oldParent.dropChild(oldName)
	child.name = newName
	child.parent = newParent
	newParent.children[newName] = child

	// A moved directory re-points its ".." back-reference.
	if moved.IsDir() && oldParent != newParent {
		oldParent.node.DropNlink()
		newParent.node.IncNlink()
	}

	now := time.Now()
	moved.Ctime = now
	oldParent.node.Mtime = now
	oldParent.node.Ctime = now
	newParent.node.Mtime = now
	newParent.node.Ctime = now
	return nil
}

// DirEntry is one name in a directory listing.
type DirEntry struct {
	Name string
	Ino  uint64
	Type NodeType
}

// ReadDir lists the entries of a directory in name order. "." and ".."
// are not included.
func (sb *Superblock) ReadDir(parent *Dentry) ([]DirEntry, error) {
	n, _, err := dirDriverOf(parent)
	if err != nil {
		return nil, err
	}

	parent.mu.Lock()
	entries := make([]DirEntry, 0, len(parent.children))
	for name, child := range parent.children {
		if child.node == nil {
			continue
		}
		entries = append(entries, DirEntry{
			Name: name,
			Ino:  child.node.Ino,
			Type: child.node.Type(),
		})
	}
	parent.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	n.Atime = time.Now()
	return entries, nil
}

func lockPair(a, b *Dentry) {
	if a == b {
		a.mu.Lock()
		return
	}
	if a.id < b.id {
		a.mu.Lock()
		b.mu.Lock()
	} else {
		b.mu.Lock()
		a.mu.Lock()
	}
}

func unlockPair(a, b *Dentry) {
	if a == b {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	b.mu.Unlock()
}
