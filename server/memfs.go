package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/brettbedarf/memfs/config"
	"github.com/brettbedarf/memfs/filesystem"
	"github.com/brettbedarf/memfs/internal/fusefs"
	"github.com/brettbedarf/memfs/internal/util"
	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// MemFS couples an in-memory filesystem with its read-only FUSE export
type MemFS struct {
	*filesystem.FileSystem
	cfg    *config.Config
	mu     sync.Mutex
	server *fuse.Server
}

// New creates a MemFS instance given your config.
func New(cfg *config.Config) *MemFS {
	return Wrap(filesystem.NewFS(cfg))
}

// Wrap prepares an existing filesystem, e.g. one opened through the registry, for
// mounting
func Wrap(fs *filesystem.FileSystem) *MemFS {
	return &MemFS{FileSystem: fs, cfg: fs.Config()}
}

// Locked runs f while holding the lock the FUSE handlers use. Use it for any
// access to the filesystem once it is mounted.
func (m *MemFS) Locked(f func(fs *filesystem.FileSystem) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return f(m.FileSystem)
}

// Serve mounts the filesystem at mountPoint and returns once the mount is ready.
// Requests are served in the background until Unmount.
func (m *MemFS) Serve(mountPoint string) error {
	logger := util.GetLogger("Server")
	if m.server != nil {
		return fmt.Errorf("already mounted")
	}

	opts := m.cfg.MountOptions
	root := fusefs.NewRoot(m.FileSystem, &m.mu)
	timeout := time.Second
	srv, err := gofuse.Mount(mountPoint, root, &gofuse.Options{
		EntryTimeout: &timeout,
		AttrTimeout:  &timeout,
		MountOptions: fuse.MountOptions{
			Name:   opts.Name,
			FsName: opts.FsName,
			Debug:  opts.Debug || m.cfg.LogLvl == util.TraceLevel,
			Logger: util.NewLogLogger("FuseServer", util.TraceLevel),
		},
	})
	if err != nil {
		return fmt.Errorf("mounting at %s: %w", mountPoint, err)
	}
	m.server = srv
	logger.Info().Str("mountpoint", mountPoint).Str("id", m.ID()).Msg("Filesystem mounted")
	return nil
}

func (m *MemFS) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- m.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Wait blocks until the filesystem is unmounted
func (m *MemFS) Wait() {
	if m.server != nil {
		m.server.Wait()
	}
}

// Unmount cleanly unmounts the filesystem.
func (m *MemFS) Unmount() error {
	if m.server == nil {
		return nil
	}
	err := m.server.Unmount()
	if err == nil {
		m.server = nil
	}
	return err
}
