package server

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/config"
	"github.com/brettbedarf/memfs/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fuseAvailable skips tests that need a real mount when /dev/fuse or the
// fusermount helper is absent
func fuseAvailable(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("skipping: /dev/fuse not available")
	}
	if _, err := exec.LookPath("fusermount"); err != nil {
		t.Skip("skipping: fusermount not available")
	}
}

func newSeeded(t *testing.T) *MemFS {
	t.Helper()
	m := New(nil)
	_, err := m.AddFileNode(&memfs.FileCreateRequest{
		NodeRequest: memfs.NodeRequest{Path: "/dir/hello.txt", Type: memfs.FileNodeType},
		Content:     []byte("hello from memory"),
	})
	require.NoError(t, err)
	_, err = m.AddDirNode(&memfs.DirCreateRequest{
		NodeRequest: memfs.NodeRequest{Path: "/dir/sub", Type: memfs.DirNodeType},
	})
	require.NoError(t, err)
	return m
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	m := New(nil)
	assert.NotEmpty(t, m.ID())
	assert.Equal(t, config.DefaultScheme, m.Scheme())
	assert.NoError(t, m.Unmount(), "unmounting before Serve is a no-op")
}

func TestMemFS_Locked(t *testing.T) {
	t.Parallel()

	m := newSeeded(t)
	err := m.Locked(func(fs *filesystem.FileSystem) error {
		return fs.WriteFile(fs.MustParse("/dir/other"), []byte("x"))
	})
	require.NoError(t, err)
	assert.True(t, m.Exists(m.MustParse("/dir/other")))
}

func TestMemFS_Mount(t *testing.T) {
	fuseAvailable(t)

	m := newSeeded(t)
	mnt := filepath.Join(t.TempDir(), "mnt")
	require.NoError(t, os.MkdirAll(mnt, 0o755))

	require.NoError(t, <-m.ServeAsync(mnt))
	t.Cleanup(func() {
		assert.NoError(t, m.Unmount())
	})

	entries, err := os.ReadDir(filepath.Join(mnt, "dir"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "hello.txt", entries[0].Name())
	assert.True(t, entries[1].IsDir())

	data, err := os.ReadFile(filepath.Join(mnt, "dir", "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello from memory", string(data))

	err = os.WriteFile(filepath.Join(mnt, "dir", "hello.txt"), []byte("nope"), 0o644)
	assert.Error(t, err, "the export is read-only")

	_, err = os.Stat(filepath.Join(mnt, "missing"))
	assert.True(t, os.IsNotExist(err))
}
