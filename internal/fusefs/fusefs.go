// Package fusefs exposes a [filesystem.FileSystem] as a read-only FUSE tree
package fusefs

import (
	"context"
	"errors"
	"io"
	"sync"
	"syscall"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/filesystem"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/brettbedarf/memfs/vpath"
	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

const (
	dirMode  = 0o555
	fileMode = 0o444
)

// tree is shared by every node of one mount. The FileSystem does no locking of
// its own and the kernel issues requests concurrently, so every access goes
// through mu.
type tree struct {
	mu        *sync.Mutex
	fs        *filesystem.FileSystem
	blockSize uint32
}

// Node is one entry of the exported tree, addressed by its absolute path
type Node struct {
	gofuse.Inode
	tree *tree
	path *vpath.Path
}

var (
	_ gofuse.InodeEmbedder = (*Node)(nil)
	_ gofuse.NodeLookuper  = (*Node)(nil)
	_ gofuse.NodeReaddirer = (*Node)(nil)
	_ gofuse.NodeGetattrer = (*Node)(nil)
	_ gofuse.NodeOpener    = (*Node)(nil)
	_ gofuse.NodeReader    = (*Node)(nil)
)

// NewRoot returns the root node for fs. Callers that keep using fs while it is
// mounted must hold mu around those calls.
func NewRoot(fs *filesystem.FileSystem, mu *sync.Mutex) *Node {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	blockSize := uint32(fs.Config().BlockSize)
	return &Node{
		tree: &tree{mu: mu, fs: fs, blockSize: blockSize},
		path: fs.Root(),
	}
}

func (n *Node) child(name string) *Node {
	return &Node{tree: n.tree, path: n.path.Child(name)}
}

func (n *Node) stat() (*filesystem.EntryInfo, syscall.Errno) {
	n.tree.mu.Lock()
	info, err := n.tree.fs.Stat(n.path)
	n.tree.mu.Unlock()
	if err != nil {
		return nil, toErrno(err)
	}
	return info, 0
}

func (n *Node) fillAttr(info *filesystem.EntryInfo, out *fuse.Attr) {
	if info.IsDir() {
		out.Mode = syscall.S_IFDIR | dirMode
	} else {
		out.Mode = syscall.S_IFREG | fileMode
		out.Size = uint64(info.Size())
		out.Blocks = (out.Size + 511) / 512
	}
	out.Blksize = n.tree.blockSize
}

func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	child := n.child(name)
	info, errno := child.stat()
	if errno != 0 {
		return nil, errno
	}
	n.fillAttr(info, &out.Attr)

	mode := uint32(syscall.S_IFREG)
	if info.IsDir() {
		mode = syscall.S_IFDIR
	}
	return n.NewInode(ctx, child, gofuse.StableAttr{Mode: mode}), 0
}

// Readdir snapshots the children in insertion order
func (n *Node) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()

	paths, err := n.tree.fs.ListDirectory(n.path)
	if err != nil {
		return nil, toErrno(err)
	}
	var entries []fuse.DirEntry
	for p := range paths {
		info, err := n.tree.fs.Stat(p)
		if err != nil {
			continue
		}
		mode := uint32(syscall.S_IFREG)
		if info.IsDir() {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: info.Name(), Mode: mode})
	}
	return gofuse.NewListDirStream(entries), 0
}

func (n *Node) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	info, errno := n.stat()
	if errno != 0 {
		return errno
	}
	n.fillAttr(info, &out.Attr)
	return 0
}

// Open accepts read-only opens of files
func (n *Node) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_APPEND|syscall.O_TRUNC) != 0 {
		return nil, 0, syscall.EROFS
	}
	info, errno := n.stat()
	if errno != 0 {
		return nil, 0, errno
	}
	if info.IsDir() {
		return nil, 0, syscall.EISDIR
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

// Read copies up to len(dest) bytes starting at off through a read channel
func (n *Node) Read(ctx context.Context, f gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	logger := util.GetLogger("Fuse.Read")

	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()

	ch, err := n.tree.fs.NewChannel(n.path, filesystem.OpenRead)
	if err != nil {
		return nil, toErrno(err)
	}
	defer ch.Close()

	size, err := ch.Size()
	if err != nil {
		return nil, toErrno(err)
	}
	if off >= size || len(dest) == 0 {
		return fuse.ReadResultData(nil), 0
	}
	if err := ch.SetPosition(off); err != nil {
		return nil, toErrno(err)
	}

	read := 0
	for read < len(dest) {
		k, err := ch.Read(dest[read:])
		read += k
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error().Err(err).Str("path", n.path.String()).Int64("offset", off).Msg("Read failed")
			return nil, syscall.EIO
		}
	}
	logger.Trace().Str("path", n.path.String()).Int64("offset", off).Int("bytes", read).Msg("Read")
	return fuse.ReadResultData(dest[:read]), 0
}

// toErrno maps store error kinds onto errno values
func toErrno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, memfs.ErrDoesNotExist):
		return syscall.ENOENT
	case errors.Is(err, memfs.ErrConflict):
		return syscall.EEXIST
	case errors.Is(err, memfs.ErrInvalidName), errors.Is(err, memfs.ErrInvalidPath),
		errors.Is(err, memfs.ErrInvalidArgument), errors.Is(err, memfs.ErrInvalidRequest):
		return syscall.EINVAL
	case errors.Is(err, memfs.ErrNonWritable):
		return syscall.EROFS
	case errors.Is(err, memfs.ErrNonReadable), errors.Is(err, memfs.ErrClosedChannel):
		return syscall.EBADF
	default:
		return syscall.EIO
	}
}
