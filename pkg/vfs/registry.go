package vfs

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/ramfs/internal/logger"
)

// FilesystemType is one registered filesystem flavor. Mount builds a
// fully wired superblock from an option string; KillSuper runs the
// driver's pre-teardown hook before the framework releases the tree.
type FilesystemType struct {
	Name string

	// Mount parses options and returns a superblock with a bound root.
	Mount func(options string) (*Superblock, error)

	// KillSuper releases driver-private mount state. Optional.
	KillSuper func(sb *Superblock)
}

// Mount is one live mounted instance of a filesystem type.
type Mount struct {
	ID        uuid.UUID
	Type      string
	Options   string
	Super     *Superblock
	MountedAt time.Time
}

// RegistryMetrics receives mount lifecycle events. A nil value
// disables reporting.
type RegistryMetrics interface {
	// ObserveMount records one successful mount of the given type.
	ObserveMount(fstype string)

	// ObserveUnmount records one unmount of the given type.
	ObserveUnmount(fstype string)

	// SetMounts records the current number of live mounts.
	SetMounts(n int)
}

// Registry tracks registered filesystem types and live mounts.
// All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	types  map[string]*FilesystemType
	mounts map[uuid.UUID]*Mount

	metrics RegistryMetrics
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:  make(map[string]*FilesystemType),
		mounts: make(map[uuid.UUID]*Mount),
	}
}

// SetMetrics installs a mount lifecycle metrics sink. Call before any
// mounts are created.
func (r *Registry) SetMetrics(m RegistryMetrics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = m
}

// RegisterFilesystem adds a filesystem type. Registering a duplicate
// name or a type without a mount function is an error.
func (r *Registry) RegisterFilesystem(fst *FilesystemType) error {
	if fst == nil || fst.Name == "" {
		return fmt.Errorf("filesystem type must have a name")
	}
	if fst.Mount == nil {
		return fmt.Errorf("filesystem type %q has no mount function", fst.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[fst.Name]; exists {
		return fmt.Errorf("filesystem type %q already registered", fst.Name)
	}
	r.types[fst.Name] = fst

	logger.Debug("registered filesystem type", logger.FSType(fst.Name))
	return nil
}

// UnregisterFilesystem removes a filesystem type. Types with live
// mounts cannot be removed.
func (r *Registry) UnregisterFilesystem(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; !exists {
		return fmt.Errorf("filesystem type %q not registered", name)
	}
	for _, m := range r.mounts {
		if m.Type == name {
			return fmt.Errorf("filesystem type %q has live mounts", name)
		}
	}
	delete(r.types, name)
	return nil
}

// GetFilesystem looks up a filesystem type by name.
func (r *Registry) GetFilesystem(name string) (*FilesystemType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fst, ok := r.types[name]
	return fst, ok
}

// ListFilesystems returns registered type names in sorted order.
func (r *Registry) ListFilesystems() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mount instantiates a filesystem of the named type and tracks it.
func (r *Registry) Mount(fstype, options string) (*Mount, error) {
	fst, ok := r.GetFilesystem(fstype)
	if !ok {
		return nil, fmt.Errorf("unknown filesystem type %q", fstype)
	}

	start := time.Now()
	sb, err := fst.Mount(options)
	if err != nil {
		return nil, fmt.Errorf("mounting %s: %w", fstype, err)
	}

	m := &Mount{
		ID:        uuid.New(),
		Type:      fstype,
		Options:   options,
		Super:     sb,
		MountedAt: time.Now(),
	}

	r.mu.Lock()
	r.mounts[m.ID] = m
	live := len(r.mounts)
	sink := r.metrics
	r.mu.Unlock()

	if sink != nil {
		sink.ObserveMount(fstype)
		sink.SetMounts(live)
	}

	logger.Info("mounted filesystem",
		logger.FSType(fstype),
		logger.MountID(m.ID.String()),
		logger.DurationMs(logger.Duration(start)))
	return m, nil
}

// Unmount tears down a live mount: the driver's KillSuper hook first,
// then the framework releases the whole tree and the allocator.
func (r *Registry) Unmount(id uuid.UUID) error {
	r.mu.Lock()
	m, ok := r.mounts[id]
	if ok {
		delete(r.mounts, id)
	}
	live := len(r.mounts)
	sink := r.metrics
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("mount %s not found", id)
	}

	if sink != nil {
		sink.ObserveUnmount(m.Type)
		sink.SetMounts(live)
	}

	if fst, ok := r.GetFilesystem(m.Type); ok && fst.KillSuper != nil {
		fst.KillSuper(m.Super)
	}
	m.Super.Shutdown()

	logger.Info("unmounted filesystem",
		logger.FSType(m.Type),
		logger.MountID(id.String()))
	return nil
}

// GetMount looks up a live mount by ID.
func (r *Registry) GetMount(id uuid.UUID) (*Mount, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mounts[id]
	return m, ok
}

// ListMounts returns live mounts ordered by mount time.
func (r *Registry) ListMounts() []*Mount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mounts := make([]*Mount, 0, len(r.mounts))
	for _, m := range r.mounts {
		mounts = append(mounts, m)
	}
	sort.Slice(mounts, func(i, j int) bool {
		return mounts[i].MountedAt.Before(mounts[j].MountedAt)
	})
	return mounts
}

// CountMounts returns the number of live mounts.
func (r *Registry) CountMounts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mounts)
}

// UnmountAll tears down every live mount. Used on shutdown.
func (r *Registry) UnmountAll() {
	for _, m := range r.ListMounts() {
		if err := r.Unmount(m.ID); err != nil {
			logger.Warn("unmount failed",
				logger.MountID(m.ID.String()),
				logger.Err(err))
		}
	}
}

// DefaultRegistry is the process-wide registry used by the package
// level helpers below.
var DefaultRegistry = NewRegistry()

// RegisterFilesystem registers a type with the default registry.
func RegisterFilesystem(fst *FilesystemType) error {
	return DefaultRegistry.RegisterFilesystem(fst)
}

// UnregisterFilesystem removes a type from the default registry.
func UnregisterFilesystem(name string) error {
	return DefaultRegistry.UnregisterFilesystem(name)
}

// MountFilesystem mounts through the default registry.
func MountFilesystem(fstype, options string) (*Mount, error) {
	return DefaultRegistry.Mount(fstype, options)
}

// UnmountFilesystem unmounts through the default registry.
func UnmountFilesystem(id uuid.UUID) error {
	return DefaultRegistry.Unmount(id)
}
