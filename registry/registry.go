// Package registry tracks the live in-memory filesystems of a process by id
package registry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/config"
	"github.com/brettbedarf/memfs/filesystem"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/brettbedarf/memfs/vpath"
	"github.com/puzpuzpuz/xsync/v4"
)

// Default is the process-wide registry
var Default = New()

// Registry maps filesystem ids to instances. It is safe for concurrent use;
// the filesystems it hands out are not.
type Registry struct {
	instances *xsync.Map[string, *filesystem.FileSystem]
}

func New() *Registry {
	return &Registry{instances: xsync.NewMap[string, *filesystem.FileSystem]()}
}

// Open creates a filesystem from cfg and registers it. An invalid cfg fails with
// [memfs.ErrInvalidArgument] and an id already in use with [memfs.ErrConflict].
func (r *Registry) Open(cfg *config.Config) (*filesystem.FileSystem, error) {
	logger := util.GetLogger("Registry")

	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		logger.Debug().Err(err).Str("id", cfg.ID).Msg("Rejected invalid config")
		return nil, fmt.Errorf("%w: %w", memfs.ErrInvalidArgument, err)
	}
	fs := filesystem.NewFS(cfg)
	if _, loaded := r.instances.LoadOrStore(fs.ID(), fs); loaded {
		return nil, fmt.Errorf("%w: filesystem %q already open", memfs.ErrConflict, fs.ID())
	}
	logger.Debug().Str("id", fs.ID()).Msg("Registered filesystem")
	return fs, nil
}

// Get returns the open filesystem with the given id
func (r *Registry) Get(id string) (*filesystem.FileSystem, error) {
	fs, ok := r.instances.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: filesystem %q", memfs.ErrDoesNotExist, id)
	}
	return fs, nil
}

// Close unregisters the filesystem. Its tree is released once no caller holds it.
func (r *Registry) Close(id string) error {
	if _, ok := r.instances.LoadAndDelete(id); !ok {
		return fmt.Errorf("%w: filesystem %q", memfs.ErrDoesNotExist, id)
	}
	logger := util.GetLogger("Registry")
	logger.Debug().Str("id", id).Msg("Unregistered filesystem")
	return nil
}

// IDs lists the registered ids in sorted order
func (r *Registry) IDs() []string {
	ids := make([]string, 0, r.instances.Size())
	r.instances.Range(func(id string, _ *filesystem.FileSystem) bool {
		ids = append(ids, id)
		return true
	})
	slices.Sort(ids)
	return ids
}

// Resolve parses a "scheme:/id/path" URI into its filesystem and absolute path
func (r *Registry) Resolve(uri string) (*filesystem.FileSystem, *vpath.Path, error) {
	scheme, rest, ok := strings.Cut(uri, ":")
	if !ok || scheme == "" || !strings.HasPrefix(rest, vpath.Separator) {
		return nil, nil, fmt.Errorf("%w: malformed uri %q", memfs.ErrInvalidArgument, uri)
	}
	id, path, _ := strings.Cut(strings.TrimPrefix(rest, vpath.Separator), vpath.Separator)
	if id == "" {
		return nil, nil, fmt.Errorf("%w: uri %q has no filesystem id", memfs.ErrInvalidArgument, uri)
	}

	fs, err := r.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if fs.Scheme() != scheme {
		return nil, nil, fmt.Errorf("%w: filesystem %q uses scheme %q, not %q",
			memfs.ErrInvalidArgument, id, fs.Scheme(), scheme)
	}
	p, err := fs.Parse(vpath.Separator + path)
	if err != nil {
		return nil, nil, err
	}
	return fs, p, nil
}
