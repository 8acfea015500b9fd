package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so logs stay
// greppable and aggregatable.
const (
	// Filesystem identity
	KeyFSType  = "fs_type"  // Registered filesystem type name: ramfs, rampool
	KeyMountID = "mount_id" // Mount instance identifier
	KeyMagic   = "magic"    // Superblock magic value

	// Namespace operations
	KeyOp         = "op"          // Operation name: mknod, mkdir, create, symlink, ...
	KeyName       = "name"        // Entry name within the parent directory
	KeyPath       = "path"        // Full path when known
	KeyIno        = "ino"         // Node identifier
	KeyType       = "type"        // Node type: regular, directory, symlink, special
	KeyMode       = "mode"        // Permission bits (octal)
	KeyLinkTarget = "link_target" // Symbolic link target
	KeyLinkCount  = "link_count"  // Hard link count
	KeySize       = "size"        // Node size in bytes

	// Allocation
	KeyAllocator = "allocator" // Allocation strategy: heap, pool
	KeyReused    = "reused"    // Whether a pool slot was recycled
	KeyCapacity  = "capacity"  // Pool capacity in slots

	// Mount options
	KeyOption = "option" // Raw mount option token

	// Operation metadata
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Error code name

	// Admin surface
	KeyPort      = "port"       // HTTP port
	KeyRequestID = "request_id" // HTTP request ID
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// FSType returns a slog.Attr for the filesystem type name
func FSType(name string) slog.Attr {
	return slog.String(KeyFSType, name)
}

// MountID returns a slog.Attr for a mount instance identifier
func MountID(id string) slog.Attr {
	return slog.String(KeyMountID, id)
}

// Op returns a slog.Attr for the operation name
func Op(name string) slog.Attr {
	return slog.String(KeyOp, name)
}

// Name returns a slog.Attr for an entry name
func Name(name string) slog.Attr {
	return slog.String(KeyName, name)
}

// Path returns a slog.Attr for a path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Ino returns a slog.Attr for a node identifier
func Ino(ino uint64) slog.Attr {
	return slog.Uint64(KeyIno, ino)
}

// TypeStr returns a slog.Attr for a node type name
func TypeStr(t string) slog.Attr {
	return slog.String(KeyType, t)
}

// Mode returns a slog.Attr for permission bits
func Mode(m uint32) slog.Attr {
	return slog.Any(KeyMode, m)
}

// LinkTarget returns a slog.Attr for a symlink target
func LinkTarget(target string) slog.Attr {
	return slog.String(KeyLinkTarget, target)
}

// LinkCount returns a slog.Attr for a hard link count
func LinkCount(count uint32) slog.Attr {
	return slog.Any(KeyLinkCount, count)
}

// Size returns a slog.Attr for a node size
func Size(s uint64) slog.Attr {
	return slog.Uint64(KeySize, s)
}

// Allocator returns a slog.Attr for the allocation strategy name
func Allocator(name string) slog.Attr {
	return slog.String(KeyAllocator, name)
}

// Option returns a slog.Attr for a raw mount option token
func Option(opt string) slog.Attr {
	return slog.String(KeyOption, opt)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
