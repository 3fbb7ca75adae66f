package filesystem

import (
	"slices"
	"testing"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/config"
	"github.com/brettbedarf/memfs/vpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) *FileSystem {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.ID = "test"
	return NewFS(cfg)
}

func listNames(t *testing.T, fs *FileSystem, text string) []string {
	t.Helper()
	seq, err := fs.ListDirectory(fs.MustParse(text))
	require.NoError(t, err)
	names := []string{}
	for p := range seq {
		names = append(names, p.FileName().String())
	}
	return names
}

func writeString(t *testing.T, fs *FileSystem, text, content string) {
	t.Helper()
	require.NoError(t, fs.WriteFile(fs.MustParse(text), []byte(content)))
}

func readString(t *testing.T, fs *FileSystem, text string) string {
	t.Helper()
	data, err := fs.ReadFile(fs.MustParse(text))
	require.NoError(t, err)
	return string(data)
}

func TestNewFS(t *testing.T) {
	t.Parallel()

	fs := NewFS(nil)
	assert.NotEmpty(t, fs.ID(), "a random id is assigned")
	assert.Equal(t, config.DefaultScheme, fs.Scheme())
	assert.True(t, fs.RootNode().IsRoot())
	assert.True(t, fs.Exists(fs.Root()))

	other := NewFS(nil)
	assert.NotEqual(t, fs.ID(), other.ID())

	named := newTestFS(t)
	assert.Equal(t, "test", named.ID())
	assert.Equal(t, "memory:/test/a/b", named.URI(named.MustParse("/a/b")))
}

func TestFileSystem_ForeignPath(t *testing.T) {
	t.Parallel()

	fs := newTestFS(t)
	foreign := vpath.New("elsewhere", true, "a")

	_, err := fs.CreateEntry(foreign, false, true)
	assert.ErrorIs(t, err, memfs.ErrInvalidArgument)
	_, err = fs.NewChannel(foreign, OpenRead)
	assert.ErrorIs(t, err, memfs.ErrInvalidArgument)
	_, err = fs.ListDirectory(foreign)
	assert.ErrorIs(t, err, memfs.ErrInvalidArgument)
	assert.ErrorIs(t, fs.Delete(nil), memfs.ErrInvalidArgument)
	assert.False(t, fs.Exists(foreign))
}

func TestFileSystem_CreateEntry(t *testing.T) {
	t.Parallel()

	t.Run("MissingParent", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)

		_, err := fs.CreateEntry(fs.MustParse("/a/b/c"), false, false)
		assert.ErrorIs(t, err, memfs.ErrDoesNotExist)
		assert.False(t, fs.Exists(fs.MustParse("/a")), "nothing created on failure")
	})

	t.Run("CreateParents", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)

		node, err := fs.CreateEntry(fs.MustParse("/a/b/c"), false, true)
		require.NoError(t, err)
		assert.False(t, node.IsDir())

		info, err := fs.Stat(fs.MustParse("/a/b"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, "/a/b", info.Path())
		assert.Equal(t, "b", info.Name())
	})

	t.Run("NonDirectoryAncestor", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		writeString(t, fs, "/f", "x")

		_, err := fs.CreateEntry(fs.MustParse("/f/g"), true, false)
		assert.ErrorIs(t, err, memfs.ErrConflict)
		_, err = fs.CreateEntry(fs.MustParse("/f/g/h"), true, true)
		assert.ErrorIs(t, err, memfs.ErrConflict)
	})

	t.Run("Existing", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		require.NoError(t, fs.CreateDirectory(fs.MustParse("/d")))

		assert.ErrorIs(t, fs.CreateDirectory(fs.MustParse("/d")), memfs.ErrConflict)
		assert.ErrorIs(t, fs.CreateFile(fs.MustParse("/d")), memfs.ErrConflict)
		assert.ErrorIs(t, fs.CreateDirectory(fs.Root()), memfs.ErrConflict)
	})

	t.Run("RelativeResolvesAgainstRoot", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)

		require.NoError(t, fs.CreateDirectory(fs.MustParse("rel")))
		assert.True(t, fs.Exists(fs.MustParse("/rel")))
		require.NoError(t, fs.CreateFile(fs.MustParse("/rel/./x/../y")))
		assert.True(t, fs.Exists(fs.MustParse("/rel/y")))
	})
}

func TestFileSystem_CreateDirectories(t *testing.T) {
	t.Parallel()

	fs := newTestFS(t)
	require.NoError(t, fs.CreateDirectories(fs.MustParse("/a/b/c")))
	require.NoError(t, fs.CreateDirectories(fs.MustParse("/a/b/c")), "existing directories are fine")
	require.NoError(t, fs.CreateDirectories(fs.Root()))
	assert.True(t, fs.Exists(fs.MustParse("/a/b/c")))

	writeString(t, fs, "/a/file", "")
	assert.ErrorIs(t, fs.CreateDirectories(fs.MustParse("/a/file/d")), memfs.ErrConflict)
}

func TestFileSystem_ListDirectory(t *testing.T) {
	t.Parallel()

	fs := newTestFS(t)
	require.NoError(t, fs.CreateDirectory(fs.MustParse("/d")))
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, fs.CreateFile(fs.MustParse("/d/"+name)))
	}

	assert.Equal(t, []string{"a", "b", "c"}, listNames(t, fs, "/d"))

	require.NoError(t, fs.Delete(fs.MustParse("/d/b")))
	assert.Equal(t, []string{"a", "c"}, listNames(t, fs, "/d"))

	seq, err := fs.ListDirectory(fs.MustParse("/d"))
	require.NoError(t, err)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.Len(t, first, 2)
	assert.Equal(t, "/d/a", first[0].String())
	assert.Equal(t, len(first), len(second), "the sequence can be ranged again")

	assert.Equal(t, []string{"a", "c"}, listNames(t, fs, "/d/a/../../d"), "listing through an unnormalized path")

	_, err = fs.ListDirectory(fs.MustParse("/missing"))
	assert.ErrorIs(t, err, memfs.ErrDoesNotExist)
	_, err = fs.ListDirectory(fs.MustParse("/d/a"))
	assert.ErrorIs(t, err, memfs.ErrInvalidRequest)
}

func TestFileSystem_Delete(t *testing.T) {
	t.Parallel()

	fs := newTestFS(t)
	require.NoError(t, fs.CreateDirectories(fs.MustParse("/d/e")))

	assert.ErrorIs(t, fs.Delete(fs.MustParse("/d")), memfs.ErrConflict, "directory not empty")
	assert.ErrorIs(t, fs.Delete(fs.Root()), memfs.ErrInvalidRequest)
	assert.ErrorIs(t, fs.Delete(fs.MustParse("/nope")), memfs.ErrDoesNotExist)

	require.NoError(t, fs.Delete(fs.MustParse("/d/e")))
	require.NoError(t, fs.Delete(fs.MustParse("/d")))
	assert.False(t, fs.Exists(fs.MustParse("/d")))

	deleted, err := fs.DeleteIfExists(fs.MustParse("/d"))
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, fs.CreateFile(fs.MustParse("/f")))
	deleted, err = fs.DeleteIfExists(fs.MustParse("/f"))
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestFileSystem_Copy(t *testing.T) {
	t.Parallel()

	t.Run("FileToNewPath", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		writeString(t, fs, "/src", "payload")

		require.NoError(t, fs.Copy(fs.MustParse("/src"), fs.MustParse("/x/y/dst"), false))
		assert.Equal(t, "payload", readString(t, fs, "/x/y/dst"), "missing parents are created")

		writeString(t, fs, "/x/y/dst", "changed")
		assert.Equal(t, "payload", readString(t, fs, "/src"), "copies do not share content")
	})

	t.Run("DirectoryIsShallow", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		require.NoError(t, fs.CreateDirectories(fs.MustParse("/d/inner")))

		require.NoError(t, fs.Copy(fs.MustParse("/d"), fs.MustParse("/e"), false))
		assert.Empty(t, listNames(t, fs, "/e"))
		assert.Equal(t, []string{"inner"}, listNames(t, fs, "/d"))
	})

	t.Run("ExistingTarget", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		writeString(t, fs, "/a", "new")
		writeString(t, fs, "/b", "old content")
		require.NoError(t, fs.CreateDirectory(fs.MustParse("/d")))

		assert.ErrorIs(t, fs.Copy(fs.MustParse("/a"), fs.MustParse("/b"), false), memfs.ErrConflict)
		assert.ErrorIs(t, fs.Copy(fs.MustParse("/a"), fs.MustParse("/d"), true), memfs.ErrConflict, "kinds differ")

		require.NoError(t, fs.Copy(fs.MustParse("/a"), fs.MustParse("/b"), true))
		assert.Equal(t, "new", readString(t, fs, "/b"))
	})

	t.Run("ReplacedContentVisibleToOpenChannel", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		writeString(t, fs, "/a", "fresh")
		writeString(t, fs, "/b", "stale")

		ch, err := fs.NewChannel(fs.MustParse("/b"), OpenRead)
		require.NoError(t, err)
		defer ch.Close()

		require.NoError(t, fs.Copy(fs.MustParse("/a"), fs.MustParse("/b"), true))
		buf := make([]byte, 5)
		n, err := ch.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(buf[:n]))
	})

	t.Run("OntoDirectory", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		require.NoError(t, fs.CreateDirectory(fs.MustParse("/src")))
		require.NoError(t, fs.CreateDirectories(fs.MustParse("/full/x")))
		require.NoError(t, fs.CreateDirectory(fs.MustParse("/empty")))

		assert.ErrorIs(t, fs.Copy(fs.MustParse("/src"), fs.MustParse("/full"), true), memfs.ErrConflict)
		assert.NoError(t, fs.Copy(fs.MustParse("/src"), fs.MustParse("/empty"), true))
	})

	t.Run("SelfAndMissing", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		writeString(t, fs, "/a", "same")

		require.NoError(t, fs.Copy(fs.MustParse("/a"), fs.MustParse("/./a"), false))
		assert.Equal(t, "same", readString(t, fs, "/a"))
		assert.ErrorIs(t, fs.Copy(fs.MustParse("/nope"), fs.MustParse("/b"), false), memfs.ErrDoesNotExist)
	})
}

func TestFileSystem_Move(t *testing.T) {
	t.Parallel()

	t.Run("Rename", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		writeString(t, fs, "/a", "data")
		require.NoError(t, fs.CreateFile(fs.MustParse("/b")))

		require.NoError(t, fs.Move(fs.MustParse("/a"), fs.MustParse("/z"), false))
		assert.Equal(t, []string{"z", "b"}, listNames(t, fs, "/"), "renaming keeps list position")
		assert.Equal(t, "data", readString(t, fs, "/z"))
	})

	t.Run("ToItself", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		require.NoError(t, fs.CreateFile(fs.MustParse("/a")))
		require.NoError(t, fs.CreateFile(fs.MustParse("/b")))

		require.NoError(t, fs.Move(fs.MustParse("/a"), fs.MustParse("/a"), false))
		assert.Equal(t, []string{"a", "b"}, listNames(t, fs, "/"))
	})

	t.Run("IntoNewParent", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		require.NoError(t, fs.CreateDirectories(fs.MustParse("/d/sub")))
		writeString(t, fs, "/d/sub/f", "deep")

		require.NoError(t, fs.Move(fs.MustParse("/d"), fs.MustParse("/x/y/moved"), false))
		assert.False(t, fs.Exists(fs.MustParse("/d")))
		assert.Equal(t, "deep", readString(t, fs, "/x/y/moved/sub/f"), "subtree moves with the directory")
	})

	t.Run("IntoOwnSubtree", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		require.NoError(t, fs.CreateDirectories(fs.MustParse("/x/child")))

		assert.ErrorIs(t, fs.Move(fs.MustParse("/x"), fs.MustParse("/x/child/x"), false), memfs.ErrInvalidArgument)
		assert.ErrorIs(t, fs.Move(fs.MustParse("/x"), fs.MustParse("/x/child"), true), memfs.ErrInvalidArgument)
		assert.Equal(t, []string{"child"}, listNames(t, fs, "/x"))
	})

	t.Run("Root", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		assert.ErrorIs(t, fs.Move(fs.Root(), fs.MustParse("/r"), false), memfs.ErrInvalidRequest)
	})

	t.Run("FileOverFile", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		writeString(t, fs, "/a", "winner")
		writeString(t, fs, "/b", "loser")

		assert.ErrorIs(t, fs.Move(fs.MustParse("/a"), fs.MustParse("/b"), false), memfs.ErrConflict)
		require.NoError(t, fs.Move(fs.MustParse("/a"), fs.MustParse("/b"), true))
		assert.Equal(t, "winner", readString(t, fs, "/b"))
		assert.False(t, fs.Exists(fs.MustParse("/a")))
	})

	t.Run("KindMismatch", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		require.NoError(t, fs.CreateFile(fs.MustParse("/f")))
		require.NoError(t, fs.CreateDirectory(fs.MustParse("/d")))

		assert.ErrorIs(t, fs.Move(fs.MustParse("/f"), fs.MustParse("/d"), true), memfs.ErrConflict)
		assert.ErrorIs(t, fs.Move(fs.MustParse("/d"), fs.MustParse("/f"), true), memfs.ErrConflict)
	})

	t.Run("MergeDirectories", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		require.NoError(t, fs.CreateDirectory(fs.MustParse("/src")))
		require.NoError(t, fs.CreateDirectory(fs.MustParse("/dst")))
		writeString(t, fs, "/src/a", "1")
		writeString(t, fs, "/src/b", "2")
		writeString(t, fs, "/dst/c", "3")

		require.NoError(t, fs.Move(fs.MustParse("/src"), fs.MustParse("/dst"), true))
		assert.False(t, fs.Exists(fs.MustParse("/src")))
		assert.Equal(t, []string{"c", "a", "b"}, listNames(t, fs, "/dst"))
	})

	t.Run("MergeCollision", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		require.NoError(t, fs.CreateDirectory(fs.MustParse("/src")))
		require.NoError(t, fs.CreateDirectory(fs.MustParse("/dst")))
		writeString(t, fs, "/src/a", "1")
		writeString(t, fs, "/src/b", "2")
		writeString(t, fs, "/dst/b", "3")

		assert.ErrorIs(t, fs.Move(fs.MustParse("/src"), fs.MustParse("/dst"), true), memfs.ErrConflict)
		assert.Equal(t, []string{"a", "b"}, listNames(t, fs, "/src"), "nothing moved")
		assert.Equal(t, []string{"b"}, listNames(t, fs, "/dst"))
	})

	t.Run("Missing", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		assert.ErrorIs(t, fs.Move(fs.MustParse("/nope"), fs.MustParse("/b"), false), memfs.ErrDoesNotExist)
	})
}

func TestFileSystem_NewChannel(t *testing.T) {
	t.Parallel()

	t.Run("RoundTrip", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		writeString(t, fs, "/f", "hello")
		assert.Equal(t, "hello", readString(t, fs, "/f"))

		info, err := fs.Stat(fs.MustParse("/f"))
		require.NoError(t, err)
		assert.Equal(t, int64(5), info.Size())
		assert.True(t, info.IsRegular())
	})

	t.Run("WriteEmptiesFile", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		writeString(t, fs, "/f", "a long first version")
		writeString(t, fs, "/f", "short")
		assert.Equal(t, "short", readString(t, fs, "/f"))
	})

	t.Run("Append", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		writeString(t, fs, "/f", "abc")

		ch, err := fs.NewChannel(fs.MustParse("/f"), OpenAppend)
		require.NoError(t, err)
		pos, err := ch.Position()
		require.NoError(t, err)
		size, err := ch.Size()
		require.NoError(t, err)
		assert.Equal(t, size, pos)
		assert.Equal(t, ModeWrite, ch.Mode(), "append implies write")

		_, err = ch.Write([]byte("def"))
		require.NoError(t, err)
		require.NoError(t, ch.Close())
		assert.Equal(t, "abcdef", readString(t, fs, "/f"))
	})

	t.Run("AppendTruncate", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		writeString(t, fs, "/f", "abc")

		ch, err := fs.NewChannel(fs.MustParse("/f"), OpenAppend|OpenTruncate)
		require.NoError(t, err)
		pos, _ := ch.Position()
		assert.Equal(t, int64(0), pos)
		require.NoError(t, ch.Close())
	})

	t.Run("Create", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)

		_, err := fs.NewChannel(fs.MustParse("/f"), OpenWrite)
		assert.ErrorIs(t, err, memfs.ErrDoesNotExist)

		ch, err := fs.NewChannel(fs.MustParse("/f"), OpenWrite|OpenCreate)
		require.NoError(t, err)
		require.NoError(t, ch.Close())
		assert.True(t, fs.Exists(fs.MustParse("/f")))

		_, err = fs.NewChannel(fs.MustParse("/f"), OpenWrite|OpenCreateNew)
		assert.ErrorIs(t, err, memfs.ErrConflict)

		_, err = fs.NewChannel(fs.MustParse("/missing/f"), OpenWrite|OpenCreate)
		assert.ErrorIs(t, err, memfs.ErrDoesNotExist, "parents are not created")
	})

	t.Run("Rejections", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)
		require.NoError(t, fs.CreateDirectory(fs.MustParse("/d")))
		require.NoError(t, fs.CreateFile(fs.MustParse("/f")))

		_, err := fs.NewChannel(fs.MustParse("/d"), OpenRead)
		assert.ErrorIs(t, err, memfs.ErrInvalidRequest)
		_, err = fs.NewChannel(fs.MustParse("/d"), OpenWrite)
		assert.ErrorIs(t, err, memfs.ErrInvalidRequest)
		_, err = fs.NewChannel(fs.MustParse("/nope"), OpenRead)
		assert.ErrorIs(t, err, memfs.ErrDoesNotExist)
		_, err = fs.NewChannel(fs.MustParse("/f"), OpenRead|OpenWrite)
		assert.ErrorIs(t, err, memfs.ErrInvalidArgument)
	})

	t.Run("ErrorCarriesPath", func(t *testing.T) {
		t.Parallel()
		fs := newTestFS(t)

		_, err := fs.NewChannel(fs.MustParse("/nope"), OpenRead)
		var pathErr *memfs.PathError
		require.ErrorAs(t, err, &pathErr)
		assert.Equal(t, "open", pathErr.Op)
		assert.Equal(t, "/nope", pathErr.Path)
	})
}

func TestFileSystem_FileStore(t *testing.T) {
	t.Parallel()

	cfg := config.NewDefaultConfig()
	cfg.Capacity = 10
	fs := NewFS(cfg)
	store := fs.FileStore()

	assert.Equal(t, fs.ID(), store.Name())
	assert.Equal(t, "memory", store.Type())
	assert.Equal(t, int64(10), store.TotalSpace())
	assert.Equal(t, int64(config.DefaultBlockSize), store.BlockSize())
	assert.Equal(t, int64(0), store.UsedSpace())

	writeString(t, fs, "/a", "1234")
	require.NoError(t, fs.CreateDirectory(fs.MustParse("/d")))
	writeString(t, fs, "/d/b", "567")
	assert.Equal(t, int64(7), store.UsedSpace())
	assert.Equal(t, int64(3), store.UsableSpace())

	writeString(t, fs, "/d/c", "overflowing")
	assert.Equal(t, int64(0), store.UsableSpace(), "usable space never goes negative")
}

func TestFileSystem_Seed(t *testing.T) {
	t.Parallel()

	fs := newTestFS(t)

	info, err := fs.AddDirNode(&memfs.DirCreateRequest{
		NodeRequest: memfs.NodeRequest{Path: "/a/b", Type: memfs.DirNodeType},
	})
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "/a/b", info.Path())

	_, err = fs.AddDirNode(&memfs.DirCreateRequest{
		NodeRequest: memfs.NodeRequest{Path: "a/b", Type: memfs.DirNodeType},
	})
	assert.NoError(t, err, "existing directory is accepted")

	info, err = fs.AddFileNode(&memfs.FileCreateRequest{
		NodeRequest: memfs.NodeRequest{Path: "/x/y/file.txt", Type: memfs.FileNodeType},
		Content:     []byte("seeded"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), info.Size())
	assert.Equal(t, "file.txt", info.Name())
	assert.Equal(t, "seeded", readString(t, fs, "/x/y/file.txt"))

	_, err = fs.AddFileNode(&memfs.FileCreateRequest{
		NodeRequest: memfs.NodeRequest{Path: "/x/y/file.txt", Type: memfs.FileNodeType},
	})
	assert.ErrorIs(t, err, memfs.ErrConflict)

	_, err = fs.AddDirNode(&memfs.DirCreateRequest{
		NodeRequest: memfs.NodeRequest{Path: "/", Type: memfs.DirNodeType},
	})
	assert.ErrorIs(t, err, memfs.ErrInvalidArgument)

	_, err = fs.AddFileNode(&memfs.FileCreateRequest{
		NodeRequest: memfs.NodeRequest{Path: "/bad*", Type: memfs.FileNodeType},
	})
	assert.ErrorIs(t, err, memfs.ErrInvalidPath)
}
