package vfs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFSType registers a filesystem type backed by testDriver. Each
// mount gets its own superblock and root.
func testFSType(name string, killed *int) *FilesystemType {
	return &FilesystemType{
		Name: name,
		Mount: func(options string) (*Superblock, error) {
			if options == "fail" {
				return nil, NewInvalidArgumentError("bad options")
			}
			sb := NewSuperblock(HeapAllocator{})
			sb.BlockSize = 512
			driver := testDriver{sb: sb}
			rootNode, err := driver.newNode(nil, ModeDirectory|0o755, 0)
			if err != nil {
				return nil, err
			}
			root, err := MakeRoot(sb, rootNode)
			if err != nil {
				return nil, err
			}
			sb.SetRoot(root)
			return sb, nil
		},
		KillSuper: func(sb *Superblock) {
			if killed != nil {
				*killed++
			}
		},
	}
}

type recordingRegistryMetrics struct {
	mounts   map[string]int
	unmounts map[string]int
	live     int
}

func newRecordingRegistryMetrics() *recordingRegistryMetrics {
	return &recordingRegistryMetrics{
		mounts:   make(map[string]int),
		unmounts: make(map[string]int),
	}
}

func (m *recordingRegistryMetrics) ObserveMount(fstype string)   { m.mounts[fstype]++ }
func (m *recordingRegistryMetrics) ObserveUnmount(fstype string) { m.unmounts[fstype]++ }
func (m *recordingRegistryMetrics) SetMounts(n int)              { m.live = n }

func TestRegisterFilesystemType(t *testing.T) {
	r := NewRegistry()

	t.Run("Register", func(t *testing.T) {
		require.NoError(t, r.RegisterFilesystem(testFSType("alpha", nil)))

		fst, ok := r.GetFilesystem("alpha")
		require.True(t, ok)
		assert.Equal(t, "alpha", fst.Name)
	})

	t.Run("DuplicateRejected", func(t *testing.T) {
		err := r.RegisterFilesystem(testFSType("alpha", nil))
		assert.ErrorContains(t, err, "already registered")
	})

	t.Run("UnnamedRejected", func(t *testing.T) {
		assert.Error(t, r.RegisterFilesystem(&FilesystemType{}))
		assert.Error(t, r.RegisterFilesystem(nil))
	})

	t.Run("MountFunctionRequired", func(t *testing.T) {
		err := r.RegisterFilesystem(&FilesystemType{Name: "nofunc"})
		assert.ErrorContains(t, err, "no mount function")
	})

	t.Run("ListIsSorted", func(t *testing.T) {
		require.NoError(t, r.RegisterFilesystem(testFSType("zeta", nil)))
		require.NoError(t, r.RegisterFilesystem(testFSType("beta", nil)))
		assert.Equal(t, []string{"alpha", "beta", "zeta"}, r.ListFilesystems())
	})

	t.Run("Unregister", func(t *testing.T) {
		require.NoError(t, r.UnregisterFilesystem("zeta"))
		_, ok := r.GetFilesystem("zeta")
		assert.False(t, ok)
	})

	t.Run("UnregisterUnknown", func(t *testing.T) {
		assert.ErrorContains(t, r.UnregisterFilesystem("ghost"), "not registered")
	})
}

func TestMountLifecycle(t *testing.T) {
	r := NewRegistry()
	var killed int
	require.NoError(t, r.RegisterFilesystem(testFSType("alpha", &killed)))

	t.Run("Mount", func(t *testing.T) {
		m, err := r.Mount("alpha", "mode=0700")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, m.ID)
		assert.Equal(t, "alpha", m.Type)
		assert.Equal(t, "mode=0700", m.Options)
		assert.NotNil(t, m.Super.Root())
		assert.Equal(t, 1, r.CountMounts())

		got, ok := r.GetMount(m.ID)
		require.True(t, ok)
		assert.Same(t, m, got)
	})

	t.Run("UnknownTypeRejected", func(t *testing.T) {
		_, err := r.Mount("ghost", "")
		assert.ErrorContains(t, err, "unknown filesystem type")
	})

	t.Run("MountErrorPropagates", func(t *testing.T) {
		_, err := r.Mount("alpha", "fail")
		require.Error(t, err)
		assert.ErrorContains(t, err, "mounting alpha")
	})

	t.Run("TypeWithLiveMountsCannotUnregister", func(t *testing.T) {
		assert.ErrorContains(t, r.UnregisterFilesystem("alpha"), "live mounts")
	})

	t.Run("Unmount", func(t *testing.T) {
		mounts := r.ListMounts()
		require.Len(t, mounts, 1)
		sb := mounts[0].Super

		require.NoError(t, r.Unmount(mounts[0].ID))
		assert.Equal(t, 1, killed)
		assert.Nil(t, sb.Root())
		assert.Zero(t, r.CountMounts())
	})

	t.Run("UnmountUnknown", func(t *testing.T) {
		assert.ErrorContains(t, r.Unmount(uuid.New()), "not found")
	})
}

func TestUnmountAll(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterFilesystem(testFSType("alpha", nil)))

	for n := 0; n < 3; n++ {
		_, err := r.Mount("alpha", "")
		require.NoError(t, err)
	}
	require.Equal(t, 3, r.CountMounts())

	r.UnmountAll()
	assert.Zero(t, r.CountMounts())
}

func TestRegistryMetrics(t *testing.T) {
	r := NewRegistry()
	sink := newRecordingRegistryMetrics()
	r.SetMetrics(sink)
	require.NoError(t, r.RegisterFilesystem(testFSType("alpha", nil)))

	m1, err := r.Mount("alpha", "")
	require.NoError(t, err)
	m2, err := r.Mount("alpha", "")
	require.NoError(t, err)

	assert.Equal(t, 2, sink.mounts["alpha"])
	assert.Equal(t, 2, sink.live)

	require.NoError(t, r.Unmount(m1.ID))
	assert.Equal(t, 1, sink.unmounts["alpha"])
	assert.Equal(t, 1, sink.live)

	require.NoError(t, r.Unmount(m2.ID))
	assert.Equal(t, 0, sink.live)
}

func TestSuperblockStatfs(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterFilesystem(testFSType("alpha", nil)))

	m, err := r.Mount("alpha", "")
	require.NoError(t, err)
	defer func() { require.NoError(t, r.Unmount(m.ID)) }()

	stat := m.Super.Statfs()
	assert.Equal(t, 512, stat.BlockSize)
	assert.Equal(t, int64(1), stat.Nodes)
}
