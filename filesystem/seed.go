package filesystem

import (
	"fmt"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/brettbedarf/memfs/vpath"
)

var _ memfs.FileSystemOperator = (*FileSystem)(nil)

// AddDirNode creates the directory at req.Path and any missing ancestors.
// It is equivalent to `mkdir -p` and does not fail if the directory exists.
func (fs *FileSystem) AddDirNode(req *memfs.DirCreateRequest) (memfs.NodeInfo, error) {
	logger := util.GetLogger("AddDirNode")

	p, err := fs.requestPath(req.Path)
	if err != nil {
		logger.Error().Err(err).Str("path", req.Path).Msg("Invalid directory request path")
		return nil, err
	}
	node, err := fs.mkdirAll("mkdirs", p)
	if err != nil {
		logger.Error().Err(err).Str("path", req.Path).Msg("Failed to create directory")
		return nil, err
	}
	return newEntryInfo(fs.id, node), nil
}

// AddFileNode creates a new file holding req.Content, adding any missing
// directories in the path. It fails if an entry already exists at the path.
func (fs *FileSystem) AddFileNode(req *memfs.FileCreateRequest) (memfs.NodeInfo, error) {
	logger := util.GetLogger("AddFileNode")

	p, err := fs.requestPath(req.Path)
	if err != nil {
		logger.Error().Err(err).Str("path", req.Path).Msg("Invalid file request path")
		return nil, err
	}
	node, err := fs.CreateEntry(p, false, true)
	if err != nil {
		logger.Error().Err(err).Str("path", req.Path).Msg("Failed to create file")
		return nil, err
	}
	node.Data().WriteAt(req.Content, 0)
	logger.Debug().Str("path", req.Path).Int("size", len(req.Content)).Msg("Added new file node")
	return newEntryInfo(fs.id, node), nil
}

// requestPath parses a request path; relative request paths are taken from the root
func (fs *FileSystem) requestPath(text string) (*vpath.Path, error) {
	p, err := fs.Parse(text)
	if err != nil {
		return nil, err
	}
	if p.IsRoot() {
		return nil, memfs.NewPathError("add", text, fmt.Errorf("%w: root cannot be created", memfs.ErrInvalidArgument))
	}
	return p.ToAbsolute().Normalize(), nil
}
