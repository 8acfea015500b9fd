package vfs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	t.Run("WithPath", func(t *testing.T) {
		err := NewNotFoundError("/tmp/x")
		assert.Equal(t, "NotFound: no such entry (path: /tmp/x)", err.Error())
	})

	t.Run("WithoutPath", func(t *testing.T) {
		err := NewInvalidArgumentError("bad mode")
		assert.Equal(t, "InvalidArgument: bad mode", err.Error())
	})
}

func TestErrorCodeChecks(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  ErrorCode
		check func(error) bool
	}{
		{"NoSpace", NewNoSpaceError("/f"), ErrNoSpace, IsNoSpace},
		{"NotFound", NewNotFoundError("/f"), ErrNotFound, IsNotFound},
		{"InvalidArgument", NewInvalidArgumentError("x"), ErrInvalidArgument, IsInvalidArgument},
		{"Exists", NewExistsError("/f"), ErrExists, IsExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, CodeOf(tt.err))
			assert.True(t, tt.check(tt.err))
		})
	}

	t.Run("ForeignError", func(t *testing.T) {
		err := errors.New("plain")
		assert.Equal(t, ErrorCode(0), CodeOf(err))
		assert.False(t, IsNotFound(err))
	})
}

func TestErrnoMapping(t *testing.T) {
	assert.Equal(t, 28, ErrNoSpace.Errno())
	assert.Equal(t, 12, ErrNoMemory.Errno())
	assert.Equal(t, 22, ErrInvalidArgument.Errno())
	assert.Equal(t, 17, ErrExists.Errno())
	assert.Equal(t, 2, ErrNotFound.Errno())
	assert.Equal(t, 20, ErrNotDirectory.Errno())
	assert.Equal(t, 21, ErrIsDirectory.Errno())
	assert.Equal(t, 39, ErrNotEmpty.Errno())

	t.Run("ErrnoOf", func(t *testing.T) {
		assert.Equal(t, 0, ErrnoOf(nil))
		assert.Equal(t, -28, ErrnoOf(NewNoSpaceError("/f")))
		assert.Equal(t, -5, ErrnoOf(errors.New("plain")))
	})
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "NoSpace", ErrNoSpace.String())
	assert.Equal(t, "NotEmpty", ErrNotEmpty.String())
	assert.Contains(t, ErrorCode(99).String(), "Unknown")
}
