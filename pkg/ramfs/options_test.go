package ramfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ramfs/pkg/vfs"
)

func TestParseOptions(t *testing.T) {
	t.Run("empty string yields defaults", func(t *testing.T) {
		opts, err := parseOptions("")
		require.NoError(t, err)
		assert.Equal(t, DefaultRootMode, opts.mode)
	})

	t.Run("mode is parsed as octal", func(t *testing.T) {
		opts, err := parseOptions("mode=0700")
		require.NoError(t, err)
		assert.Equal(t, uint32(0o700), opts.mode)

		opts, err = parseOptions("mode=1777")
		require.NoError(t, err)
		assert.Equal(t, uint32(0o1777), opts.mode)
	})

	t.Run("mode is masked to permission bits", func(t *testing.T) {
		opts, err := parseOptions("mode=170755")
		require.NoError(t, err)
		assert.Equal(t, uint32(0o755), opts.mode&0o777)
	})

	t.Run("malformed mode fails the mount", func(t *testing.T) {
		_, err := parseOptions("mode=xyz")
		require.Error(t, err)
		assert.True(t, vfs.IsInvalidArgument(err))

		_, err = parseOptions("mode=")
		require.Error(t, err)
		assert.True(t, vfs.IsInvalidArgument(err))
	})

	t.Run("unknown options are ignored", func(t *testing.T) {
		opts, err := parseOptions("uid=0,gid=0,noatime")
		require.NoError(t, err)
		assert.Equal(t, DefaultRootMode, opts.mode)
	})

	t.Run("known and unknown options mix", func(t *testing.T) {
		opts, err := parseOptions("foo=bar,mode=0700,baz")
		require.NoError(t, err)
		assert.Equal(t, uint32(0o700), opts.mode)
	})

	t.Run("empty tokens are skipped", func(t *testing.T) {
		opts, err := parseOptions(",,mode=0700,")
		require.NoError(t, err)
		assert.Equal(t, uint32(0o700), opts.mode)
	})
}
