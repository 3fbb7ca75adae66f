package filesystem

import (
	"fmt"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/config"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/brettbedarf/memfs/vpath"
	"github.com/google/uuid"
)

// FileSystem resolves paths against one entry tree and implements the composite
// operations (create, copy, move, list, open) on top of [Node].
//
// A FileSystem performs no locking. Callers that share one across goroutines must
// serialize every call externally.
type FileSystem struct {
	cfg   *config.Config
	id    string
	root  *Node // created once, never deleted, renamed or moved
	store *FileStore
}

// NewFS creates an empty filesystem. A cfg without ID gets a random one.
func NewFS(cfg *config.Config) *FileSystem {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	fs := &FileSystem{cfg: cfg, id: id, root: newRoot()}
	fs.store = newFileStore(fs)

	logger := util.GetLogger("NewFS")
	logger.Debug().Str("id", id).Msg("Created in-memory filesystem")
	return fs
}

// ID returns the opaque id used to address this filesystem
func (fs *FileSystem) ID() string {
	return fs.id
}

// Scheme returns the URI scheme of this filesystem's paths
func (fs *FileSystem) Scheme() string {
	return fs.cfg.Scheme
}

// Config returns the configuration the filesystem was created with
func (fs *FileSystem) Config() *config.Config {
	return fs.cfg
}

// Root returns the path "/"
func (fs *FileSystem) Root() *vpath.Path {
	return vpath.Root(fs.id)
}

// Parse parses text into a path bound to this filesystem
func (fs *FileSystem) Parse(text string) (*vpath.Path, error) {
	return vpath.Parse(fs.id, text)
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func (fs *FileSystem) MustParse(text string) *vpath.Path {
	p, err := fs.Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// URI renders p as "scheme:/id/path"
func (fs *FileSystem) URI(p *vpath.Path) string {
	return p.URI(fs.cfg.Scheme)
}

// FileStore returns the capacity report of this filesystem
func (fs *FileSystem) FileStore() *FileStore {
	return fs.store
}

// RootNode exposes the root entry for in-module adapters
func (fs *FileSystem) RootNode() *Node {
	return fs.root
}

// canonical checks ownership of p and returns its absolute normalized form.
// Relative paths resolve against the root.
func (fs *FileSystem) canonical(op string, p *vpath.Path) (*vpath.Path, error) {
	if p == nil {
		return nil, memfs.NewPathError(op, "", fmt.Errorf("%w: nil path", memfs.ErrInvalidArgument))
	}
	if p.FS() != fs.id {
		return nil, memfs.NewPathError(op, p.String(),
			fmt.Errorf("%w: path belongs to filesystem %q", memfs.ErrInvalidArgument, p.FS()))
	}
	return p.ToAbsolute().Normalize(), nil
}

// FindEntry walks p from the root and returns its node. The walk stops at the first
// missing segment.
func (fs *FileSystem) FindEntry(p *vpath.Path) (*Node, bool) {
	abs, err := fs.canonical("find", p)
	if err != nil {
		return nil, false
	}
	return fs.findEntry(abs)
}

// findEntry expects a canonical path
func (fs *FileSystem) findEntry(p *vpath.Path) (*Node, bool) {
	if p.IsRoot() {
		return fs.root, true
	}
	cur := fs.root
	for _, name := range p.Segments() {
		child, ok := cur.GetChild(name)
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// Exists reports whether p resolves to an entry
func (fs *FileSystem) Exists(p *vpath.Path) bool {
	_, ok := fs.FindEntry(p)
	return ok
}
