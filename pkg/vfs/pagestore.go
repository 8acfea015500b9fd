package vfs

import (
	"io"
	"sync"

	"github.com/marmos91/ramfs/pkg/bufpool"
)

// StorageClass is an opaque placement hint attached to a page store.
// Its semantics are environment-specific; the framework only carries it
// so allocation strategies can tag the memory they hand out (accounting,
// swap-exemption, tiering) without threading hints through every call.
type StorageClass string

// StorageClassNone is the default, unhinted storage class.
const StorageClassNone StorageClass = ""

// PageStore is page-granular in-memory byte storage backing regular
// file content and symlink targets. There is no secondary copy of this
// data anywhere, so stores flagged unevictable must never be discarded
// under memory pressure while the node lives.
type PageStore struct {
	mu          sync.RWMutex
	pageSize    int
	pages       map[int64][]byte
	dirty       map[int64]struct{}
	size        int64
	unevictable bool
	class       StorageClass
}

// NewPageStore creates an empty page store with the given page size.
func NewPageStore(pageSize int) *PageStore {
	if pageSize <= 0 {
		pageSize = 4096
	}
	return &PageStore{
		pageSize: pageSize,
		pages:    make(map[int64][]byte),
		dirty:    make(map[int64]struct{}),
	}
}

// PageSize returns the store's page size.
func (ps *PageStore) PageSize() int {
	return ps.pageSize
}

// SetUnevictable marks the store's memory as exempt from
// memory-pressure eviction.
func (ps *PageStore) SetUnevictable(v bool) {
	ps.mu.Lock()
	ps.unevictable = v
	ps.mu.Unlock()
}

// Unevictable reports whether the store is exempt from eviction.
func (ps *PageStore) Unevictable() bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.unevictable
}

// SetStorageClass tags the store with a placement hint.
func (ps *PageStore) SetStorageClass(c StorageClass) {
	ps.mu.Lock()
	ps.class = c
	ps.mu.Unlock()
}

// StorageClass returns the store's placement hint.
func (ps *PageStore) StorageClass() StorageClass {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.class
}

// Size returns the current content size in bytes.
func (ps *PageStore) Size() int64 {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.size
}

// PageCount returns the number of populated pages. Holes are not counted.
func (ps *PageStore) PageCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.pages)
}

// ReadAt reads up to len(p) bytes starting at off. Holes read as
// zeroes. Returns io.EOF when off is at or past the content size, and
// a short count with io.EOF when the read crosses it.
func (ps *PageStore) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, NewInvalidArgumentError("negative offset")
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if off >= ps.size {
		return 0, io.EOF
	}

	want := int64(len(p))
	if off+want > ps.size {
		want = ps.size - off
	}

	var read int64
	for read < want {
		pageIdx := (off + read) / int64(ps.pageSize)
		pageOff := (off + read) % int64(ps.pageSize)

		chunk := want - read
		if remain := int64(ps.pageSize) - pageOff; chunk > remain {
			chunk = remain
		}

		if page, ok := ps.pages[pageIdx]; ok {
			copy(p[read:read+chunk], page[pageOff:pageOff+chunk])
		} else {
			// Hole: zero-fill
			for i := read; i < read+chunk; i++ {
				p[i] = 0
			}
		}
		read += chunk
	}

	if int64(len(p)) > want {
		return int(read), io.EOF
	}
	return int(read), nil
}

// WriteAt writes len(p) bytes starting at off, allocating pages on
// demand and extending the content size when the write goes past it.
func (ps *PageStore) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, NewInvalidArgumentError("negative offset")
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	var written int64
	total := int64(len(p))
	for written < total {
		pageIdx := (off + written) / int64(ps.pageSize)
		pageOff := (off + written) % int64(ps.pageSize)

		chunk := total - written
		if remain := int64(ps.pageSize) - pageOff; chunk > remain {
			chunk = remain
		}

		page, ok := ps.pages[pageIdx]
		if !ok {
			page = bufpool.Get(ps.pageSize)
			ps.pages[pageIdx] = page
		}
		copy(page[pageOff:pageOff+chunk], p[written:written+chunk])
		ps.dirty[pageIdx] = struct{}{}
		written += chunk
	}

	if end := off + total; end > ps.size {
		ps.size = end
	}
	return int(written), nil
}

// MarkDirty marks the pages covering [off, off+length) dirty.
func (ps *PageStore) MarkDirty(off, length int64) {
	if off < 0 || length <= 0 {
		return
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	first := off / int64(ps.pageSize)
	last := (off + length - 1) / int64(ps.pageSize)
	for idx := first; idx <= last; idx++ {
		if _, ok := ps.pages[idx]; ok {
			ps.dirty[idx] = struct{}{}
		}
	}
}

// DirtyPages returns the number of dirty pages.
func (ps *PageStore) DirtyPages() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.dirty)
}

// Truncate discards content past size, releasing whole pages beyond
// it. Truncate(0) empties the store but keeps the store itself usable;
// the page index survives so pooled slots can be recycled without
// re-initialization.
func (ps *PageStore) Truncate(size int64) {
	if size < 0 {
		size = 0
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if size == 0 {
		for idx, page := range ps.pages {
			bufpool.Put(page)
			delete(ps.pages, idx)
		}
		clear(ps.dirty)
		ps.size = 0
		return
	}

	lastPage := (size - 1) / int64(ps.pageSize)
	for idx, page := range ps.pages {
		if idx > lastPage {
			bufpool.Put(page)
			delete(ps.pages, idx)
			delete(ps.dirty, idx)
		}
	}
	// Zero the tail of the final page so extending reads see zeroes.
	if page, ok := ps.pages[lastPage]; ok {
		tail := size % int64(ps.pageSize)
		if tail != 0 {
			for i := tail; i < int64(ps.pageSize); i++ {
				page[i] = 0
			}
		}
	}
	ps.size = size
}
