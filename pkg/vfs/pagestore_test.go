package vfs

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageStoreReadWrite(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		ps := NewPageStore(64)

		wrote, err := ps.WriteAt([]byte("hello"), 0)
		require.NoError(t, err)
		assert.Equal(t, 5, wrote)
		assert.Equal(t, int64(5), ps.Size())

		buf := make([]byte, 5)
		read, err := ps.ReadAt(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, 5, read)
		assert.Equal(t, "hello", string(buf))
	})

	t.Run("WriteSpansPages", func(t *testing.T) {
		ps := NewPageStore(4)

		data := []byte("0123456789")
		_, err := ps.WriteAt(data, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, ps.PageCount())

		buf := make([]byte, 10)
		_, err = ps.ReadAt(buf, 2)
		require.NoError(t, err)
		assert.Equal(t, data, buf)
	})

	t.Run("HolesReadAsZero", func(t *testing.T) {
		ps := NewPageStore(64)

		_, err := ps.WriteAt([]byte{1}, 200)
		require.NoError(t, err)
		assert.Equal(t, int64(201), ps.Size())
		assert.Equal(t, 1, ps.PageCount())

		buf := []byte{0xFF, 0xFF, 0xFF}
		read, err := ps.ReadAt(buf, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, read)
		assert.Equal(t, []byte{0, 0, 0}, buf)
	})

	t.Run("ReadAtEndIsEOF", func(t *testing.T) {
		ps := NewPageStore(64)
		_, err := ps.WriteAt([]byte("abc"), 0)
		require.NoError(t, err)

		_, err = ps.ReadAt(make([]byte, 1), 3)
		assert.Equal(t, io.EOF, err)
	})

	t.Run("ShortReadAcrossEnd", func(t *testing.T) {
		ps := NewPageStore(64)
		_, err := ps.WriteAt([]byte("abc"), 0)
		require.NoError(t, err)

		buf := make([]byte, 10)
		read, err := ps.ReadAt(buf, 1)
		assert.Equal(t, io.EOF, err)
		assert.Equal(t, 2, read)
		assert.Equal(t, "bc", string(buf[:read]))
	})

	t.Run("NegativeOffsetsRejected", func(t *testing.T) {
		ps := NewPageStore(64)

		_, err := ps.ReadAt(make([]byte, 1), -1)
		assert.True(t, IsInvalidArgument(err))
		_, err = ps.WriteAt([]byte{1}, -1)
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("ReadEmptyStore", func(t *testing.T) {
		ps := NewPageStore(64)
		_, err := ps.ReadAt(make([]byte, 1), 0)
		assert.Equal(t, io.EOF, err)
	})
}

func TestPageStoreTruncate(t *testing.T) {
	t.Run("ShrinkDropsPages", func(t *testing.T) {
		ps := NewPageStore(4)
		_, err := ps.WriteAt(make([]byte, 16), 0)
		require.NoError(t, err)
		require.Equal(t, 4, ps.PageCount())

		ps.Truncate(6)
		assert.Equal(t, int64(6), ps.Size())
		assert.Equal(t, 2, ps.PageCount())
	})

	t.Run("TailZeroedAfterShrink", func(t *testing.T) {
		ps := NewPageStore(8)
		_, err := ps.WriteAt([]byte("12345678"), 0)
		require.NoError(t, err)

		ps.Truncate(4)

		// Rewriting past the cut must not resurrect old bytes.
		_, err = ps.WriteAt([]byte{0}, 7)
		require.NoError(t, err)

		buf := make([]byte, 8)
		_, err = ps.ReadAt(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, []byte{'1', '2', '3', '4', 0, 0, 0, 0}, buf)
	})

	t.Run("TruncateToZeroKeepsStoreUsable", func(t *testing.T) {
		ps := NewPageStore(4)
		_, err := ps.WriteAt([]byte("data"), 0)
		require.NoError(t, err)

		ps.Truncate(0)
		assert.Equal(t, int64(0), ps.Size())
		assert.Equal(t, 0, ps.PageCount())

		_, err = ps.ReadAt(make([]byte, 1), 0)
		assert.Equal(t, io.EOF, err)

		_, err = ps.WriteAt([]byte("new"), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), ps.Size())
	})

	t.Run("NegativeClampsToZero", func(t *testing.T) {
		ps := NewPageStore(4)
		_, err := ps.WriteAt([]byte("x"), 0)
		require.NoError(t, err)

		ps.Truncate(-5)
		assert.Equal(t, int64(0), ps.Size())
	})
}

func TestPageStoreDirtyTracking(t *testing.T) {
	ps := NewPageStore(4)

	_, err := ps.WriteAt(make([]byte, 12), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, ps.DirtyPages())

	ps.Truncate(0)
	assert.Zero(t, ps.DirtyPages())

	_, err = ps.WriteAt([]byte{1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, ps.DirtyPages())

	// MarkDirty only touches populated pages.
	ps.MarkDirty(100, 8)
	assert.Equal(t, 1, ps.DirtyPages())
}

func TestPageStoreFlags(t *testing.T) {
	ps := NewPageStore(0)
	assert.Equal(t, 4096, ps.PageSize())

	assert.False(t, ps.Unevictable())
	ps.SetUnevictable(true)
	assert.True(t, ps.Unevictable())

	assert.Equal(t, StorageClassNone, ps.StorageClass())
	ps.SetStorageClass("pooled")
	assert.Equal(t, StorageClass("pooled"), ps.StorageClass())
}
