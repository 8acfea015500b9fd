// Package vfs provides the generic filesystem framework that in-memory
// filesystem drivers plug into: the node and directory-entry model, the
// superblock, generic namespace operations (lookup, link, unlink, rmdir,
// rename), page-granular byte storage, and the filesystem type registry.
//
// Drivers supply a node allocator and the four create-style directory
// operations; everything else is implemented here once.
package vfs

import (
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrNoSpace indicates no space is available. For purely in-memory
	// filesystems this is the user-visible face of allocation failure,
	// since memory is the only capacity limit.
	ErrNoSpace ErrorCode = iota + 1

	// ErrNoMemory indicates an allocation or binding could not be satisfied.
	ErrNoMemory

	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument

	// ErrExists indicates the name is already bound in the directory.
	ErrExists

	// ErrNotFound indicates the requested entry does not exist.
	ErrNotFound

	// ErrNotDirectory indicates the operation requires a directory.
	ErrNotDirectory

	// ErrIsDirectory indicates the operation is not valid on a directory.
	ErrIsDirectory

	// ErrNotEmpty indicates the directory is not empty.
	ErrNotEmpty
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrNoSpace:
		return "NoSpace"
	case ErrNoMemory:
		return "NoMemory"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrExists:
		return "Exists"
	case ErrNotFound:
		return "NotFound"
	case ErrNotDirectory:
		return "NotDirectory"
	case ErrIsDirectory:
		return "IsDirectory"
	case ErrNotEmpty:
		return "NotEmpty"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// Errno returns the POSIX errno the code maps to on the admin surface.
func (e ErrorCode) Errno() int {
	switch e {
	case ErrNoSpace:
		return 28 // ENOSPC
	case ErrNoMemory:
		return 12 // ENOMEM
	case ErrInvalidArgument:
		return 22 // EINVAL
	case ErrExists:
		return 17 // EEXIST
	case ErrNotFound:
		return 2 // ENOENT
	case ErrNotDirectory:
		return 20 // ENOTDIR
	case ErrIsDirectory:
		return 21 // EISDIR
	case ErrNotEmpty:
		return 39 // ENOTEMPTY
	default:
		return 5 // EIO
	}
}

// FSError represents a filesystem error with an error code.
type FSError struct {
	Code    ErrorCode
	Message string
	Path    string
}

// Error implements the error interface.
func (e *FSError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path: %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ============================================================================
// Factory Functions
// ============================================================================

// NewNoSpaceError creates a NoSpace error.
func NewNoSpaceError(path string) *FSError {
	return &FSError{
		Code:    ErrNoSpace,
		Message: "no space left on filesystem",
		Path:    path,
	}
}

// NewNoMemoryError creates a NoMemory error.
func NewNoMemoryError(message string) *FSError {
	return &FSError{
		Code:    ErrNoMemory,
		Message: message,
	}
}

// NewInvalidArgumentError creates an InvalidArgument error.
func NewInvalidArgumentError(message string) *FSError {
	return &FSError{
		Code:    ErrInvalidArgument,
		Message: message,
	}
}

// NewExistsError creates an Exists error.
func NewExistsError(path string) *FSError {
	return &FSError{
		Code:    ErrExists,
		Message: "entry already exists",
		Path:    path,
	}
}

// NewNotFoundError creates a NotFound error.
func NewNotFoundError(path string) *FSError {
	return &FSError{
		Code:    ErrNotFound,
		Message: "no such entry",
		Path:    path,
	}
}

// NewNotDirectoryError creates a NotDirectory error.
func NewNotDirectoryError(path string) *FSError {
	return &FSError{
		Code:    ErrNotDirectory,
		Message: "not a directory",
		Path:    path,
	}
}

// NewIsDirectoryError creates an IsDirectory error.
func NewIsDirectoryError(path string) *FSError {
	return &FSError{
		Code:    ErrIsDirectory,
		Message: "is a directory",
		Path:    path,
	}
}

// NewNotEmptyError creates a NotEmpty error.
func NewNotEmptyError(path string) *FSError {
	return &FSError{
		Code:    ErrNotEmpty,
		Message: "directory not empty",
		Path:    path,
	}
}

// ============================================================================
// Error Type Checking Helpers
// ============================================================================

// CodeOf returns the error code carried by err, or 0 for foreign errors.
func CodeOf(err error) ErrorCode {
	if fsErr, ok := err.(*FSError); ok {
		return fsErr.Code
	}
	return 0
}

// IsNoSpace returns true if the error is a NoSpace error.
func IsNoSpace(err error) bool {
	return CodeOf(err) == ErrNoSpace
}

// IsNotFound returns true if the error is a NotFound error.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrNotFound
}

// IsInvalidArgument returns true if the error is an InvalidArgument error.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == ErrInvalidArgument
}

// IsExists returns true if the error is an Exists error.
func IsExists(err error) bool {
	return CodeOf(err) == ErrExists
}

// ErrnoOf returns the negative errno value for err, for callers that
// speak in POSIX return codes. Foreign errors map to -EIO.
func ErrnoOf(err error) int {
	if err == nil {
		return 0
	}
	if fsErr, ok := err.(*FSError); ok {
		return -fsErr.Code.Errno()
	}
	return -5
}
