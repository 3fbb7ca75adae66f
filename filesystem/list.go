package filesystem

import (
	"errors"
	"fmt"
	"iter"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/vpath"
)

// ListDirectory returns a lazy sequence of the paths of the directory's children
// in insertion order. Every range over the sequence walks the live child list
// again; nothing is snapshotted, so mutating the directory while ranging gives
// undefined results.
func (fs *FileSystem) ListDirectory(p *vpath.Path) (iter.Seq[*vpath.Path], error) {
	const op = "list"
	abs, err := fs.canonical(op, p)
	if err != nil {
		return nil, err
	}
	node, ok := fs.findEntry(abs)
	if !ok {
		return nil, memfs.NewPathError(op, abs.String(), memfs.ErrDoesNotExist)
	}
	if !node.IsDir() {
		return nil, memfs.NewPathError(op, abs.String(), fmt.Errorf("%w: not a directory", memfs.ErrInvalidRequest))
	}

	return func(yield func(*vpath.Path) bool) {
		for child := range node.Children() {
			if !yield(p.Child(child.Name())) {
				return
			}
		}
	}, nil
}

// EntryInfo is a point-in-time description of one entry
type EntryInfo struct {
	name  string
	path  string
	isDir bool
	size  int64
}

var _ memfs.NodeInfo = (*EntryInfo)(nil)

func newEntryInfo(fsID string, n *Node) *EntryInfo {
	return &EntryInfo{name: n.Name(), path: n.Path(fsID).String(), isDir: n.IsDir(), size: n.Size()}
}

func (i *EntryInfo) Name() string { return i.name }
func (i *EntryInfo) Path() string { return i.path }
func (i *EntryInfo) IsDir() bool  { return i.isDir }
func (i *EntryInfo) Size() int64  { return i.size }

// IsRegular reports whether the entry is a file
func (i *EntryInfo) IsRegular() bool { return !i.isDir }

// Stat describes the entry at p
func (fs *FileSystem) Stat(p *vpath.Path) (*EntryInfo, error) {
	const op = "stat"
	abs, err := fs.canonical(op, p)
	if err != nil {
		return nil, err
	}
	node, ok := fs.findEntry(abs)
	if !ok {
		return nil, memfs.NewPathError(op, abs.String(), memfs.ErrDoesNotExist)
	}
	return newEntryInfo(fs.id, node), nil
}

func isKind(err, kind error) bool {
	return errors.Is(err, kind)
}
