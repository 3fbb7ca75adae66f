package filesystem

import (
	"fmt"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/brettbedarf/memfs/vpath"
)

// CreateEntry creates a directory or empty file at p. When createMissingParents
// is set, absent ancestors are created as directories first; otherwise a missing
// parent fails with [memfs.ErrDoesNotExist]. An existing ancestor that is not a
// directory fails with [memfs.ErrConflict].
func (fs *FileSystem) CreateEntry(p *vpath.Path, isDir, createMissingParents bool) (*Node, error) {
	const op = "create"
	logger := util.GetLogger("FS.CreateEntry")

	abs, err := fs.canonical(op, p)
	if err != nil {
		return nil, err
	}
	if abs.IsRoot() {
		return nil, memfs.NewPathError(op, abs.String(), fmt.Errorf("%w: root already exists", memfs.ErrConflict))
	}

	parent, err := fs.resolveParent(op, abs, createMissingParents)
	if err != nil {
		return nil, err
	}

	var node *Node
	if isDir {
		node, err = parent.NewDir(abs.LastName())
	} else {
		node, err = parent.NewFile(abs.LastName(), fs.cfg.InitialFileCapacity)
	}
	if err != nil {
		logger.Debug().Err(err).Str("path", abs.String()).Msg("Create rejected")
		return nil, memfs.NewPathError(op, abs.String(), err)
	}
	logger.Debug().Str("path", abs.String()).Bool("dir", isDir).Msg("Created entry")
	return node, nil
}

// CreateDirectory creates a single directory whose parent must exist
func (fs *FileSystem) CreateDirectory(p *vpath.Path) error {
	_, err := fs.CreateEntry(p, true, false)
	return err
}

// CreateFile creates an empty file whose parent must exist
func (fs *FileSystem) CreateFile(p *vpath.Path) error {
	_, err := fs.CreateEntry(p, false, false)
	return err
}

// CreateDirectories is the equivalent of `mkdir -p`: it creates every missing
// directory along p and succeeds if p already is a directory.
func (fs *FileSystem) CreateDirectories(p *vpath.Path) error {
	const op = "mkdirs"
	abs, err := fs.canonical(op, p)
	if err != nil {
		return err
	}
	_, err = fs.mkdirAll(op, abs)
	return err
}

// resolveParent returns the directory that should contain abs, creating it when
// create is set. abs must not be the root.
func (fs *FileSystem) resolveParent(op string, abs *vpath.Path, create bool) (*Node, error) {
	parentPath := abs.Parent()
	if node, ok := fs.findEntry(parentPath); ok {
		if !node.IsDir() {
			return nil, memfs.NewPathError(op, abs.String(),
				fmt.Errorf("%w: parent %s is not a directory", memfs.ErrConflict, parentPath))
		}
		return node, nil
	}
	if !create {
		return nil, memfs.NewPathError(op, abs.String(),
			fmt.Errorf("%w: parent directory %s", memfs.ErrDoesNotExist, parentPath))
	}
	return fs.mkdirAll(op, parentPath)
}

// mkdirAll walks abs from the root creating missing directories. Existing entries
// along the way must be directories. Everything after the first missing segment is
// new, so a conflict is always detected before anything is created.
func (fs *FileSystem) mkdirAll(op string, abs *vpath.Path) (*Node, error) {
	logger := util.GetLogger("FS.mkdirAll")

	cur := fs.root
	created := 0
	for _, name := range abs.Segments() {
		if child, ok := cur.GetChild(name); ok {
			if !child.IsDir() {
				return nil, memfs.NewPathError(op, abs.String(),
					fmt.Errorf("%w: %s is not a directory", memfs.ErrConflict, child.Path(fs.id)))
			}
			cur = child
			continue
		}
		child, err := cur.NewDir(name)
		if err != nil {
			return nil, memfs.NewPathError(op, abs.String(), err)
		}
		created++
		cur = child
	}
	if created > 0 {
		logger.Debug().Str("path", abs.String()).Msg(fmt.Sprintf("Created %d new dir(s)", created))
	}
	return cur, nil
}

// Delete removes the entry at p. Directories must be empty and the root cannot be
// deleted.
func (fs *FileSystem) Delete(p *vpath.Path) error {
	const op = "delete"
	logger := util.GetLogger("FS.Delete")

	abs, err := fs.canonical(op, p)
	if err != nil {
		return err
	}
	node, ok := fs.findEntry(abs)
	if !ok {
		return memfs.NewPathError(op, abs.String(), memfs.ErrDoesNotExist)
	}
	if node.IsDir() && node.HasChildren() {
		return memfs.NewPathError(op, abs.String(), fmt.Errorf("%w: directory not empty", memfs.ErrConflict))
	}
	if err := node.Delete(); err != nil {
		return memfs.NewPathError(op, abs.String(), err)
	}
	logger.Debug().Str("path", abs.String()).Msg("Deleted entry")
	return nil
}

// DeleteIfExists is Delete that reports false instead of failing on a missing entry
func (fs *FileSystem) DeleteIfExists(p *vpath.Path) (bool, error) {
	err := fs.Delete(p)
	if err == nil {
		return true, nil
	}
	if isKind(err, memfs.ErrDoesNotExist) {
		return false, nil
	}
	return false, err
}

// Copy makes a shallow copy of the entry at src at dst: file content is
// duplicated, directory children are not. Missing parents of dst are created.
//
// When dst exists it must be the same kind as src and overwrite must be set.
// An existing file then has its content replaced in place, so channels already
// open on it see the new content. An existing directory must be empty and is
// left as is.
func (fs *FileSystem) Copy(src, dst *vpath.Path, overwrite bool) error {
	const op = "copy"
	logger := util.GetLogger("FS.Copy")

	srcAbs, err := fs.canonical(op, src)
	if err != nil {
		return err
	}
	dstAbs, err := fs.canonical(op, dst)
	if err != nil {
		return err
	}
	srcNode, ok := fs.findEntry(srcAbs)
	if !ok {
		return memfs.NewPathError(op, srcAbs.String(), memfs.ErrDoesNotExist)
	}

	if dstNode, ok := fs.findEntry(dstAbs); ok {
		if err := checkReplace(srcNode, dstNode, overwrite); err != nil {
			return memfs.NewPathError(op, dstAbs.String(), err)
		}
		if dstNode == srcNode {
			return nil
		}
		if dstNode.IsDir() {
			if dstNode.HasChildren() {
				return memfs.NewPathError(op, dstAbs.String(),
					fmt.Errorf("%w: directory not empty", memfs.ErrConflict))
			}
			return nil
		}
		dstNode.Data().replace(srcNode.Data())
		logger.Debug().Str("src", srcAbs.String()).Str("dst", dstAbs.String()).Msg("Replaced file content")
		return nil
	}

	parent, err := fs.resolveParent(op, dstAbs, true)
	if err != nil {
		return err
	}
	if _, err := srcNode.CopyTo(parent, dstAbs.LastName()); err != nil {
		return memfs.NewPathError(op, dstAbs.String(), err)
	}
	logger.Debug().Str("src", srcAbs.String()).Str("dst", dstAbs.String()).Msg("Copied entry")
	return nil
}

// Move relocates the entry at src to dst, creating missing parents of dst.
//
// When dst exists, overwrite must be set and both entries must be the same kind.
// A file replaces the target file. A directory is merged: its children are
// relinked under the target one at a time and the emptied source is deleted. The
// merge is refused up front if any child name already exists in the target, so it
// never stops halfway.
func (fs *FileSystem) Move(src, dst *vpath.Path, overwrite bool) error {
	const op = "move"
	logger := util.GetLogger("FS.Move")

	srcAbs, err := fs.canonical(op, src)
	if err != nil {
		return err
	}
	dstAbs, err := fs.canonical(op, dst)
	if err != nil {
		return err
	}
	srcNode, ok := fs.findEntry(srcAbs)
	if !ok {
		return memfs.NewPathError(op, srcAbs.String(), memfs.ErrDoesNotExist)
	}
	if srcNode.IsRoot() {
		return memfs.NewPathError(op, srcAbs.String(), fmt.Errorf("%w: cannot move the root", memfs.ErrInvalidRequest))
	}

	if dstNode, ok := fs.findEntry(dstAbs); ok {
		if err := checkReplace(srcNode, dstNode, overwrite); err != nil {
			return memfs.NewPathError(op, dstAbs.String(), err)
		}
		if dstNode == srcNode {
			return nil
		}
		if srcNode.IsDir() {
			err = fs.mergeDir(srcNode, dstNode)
		} else {
			parent, name := dstNode.Parent(), dstNode.Name()
			if err = dstNode.Delete(); err == nil {
				err = srcNode.moveAs(parent, name)
			}
		}
		if err != nil {
			return memfs.NewPathError(op, dstAbs.String(), err)
		}
		logger.Debug().Str("src", srcAbs.String()).Str("dst", dstAbs.String()).Msg("Moved over existing entry")
		return nil
	}

	if srcNode.IsDir() && dstAbs.StartsWith(srcAbs) {
		return memfs.NewPathError(op, dstAbs.String(),
			fmt.Errorf("%w: cannot move %s into itself", memfs.ErrInvalidArgument, srcAbs))
	}
	parent, err := fs.resolveParent(op, dstAbs, true)
	if err != nil {
		return err
	}
	if err := srcNode.moveAs(parent, dstAbs.LastName()); err != nil {
		return memfs.NewPathError(op, dstAbs.String(), err)
	}
	logger.Debug().Str("src", srcAbs.String()).Str("dst", dstAbs.String()).Msg("Moved entry")
	return nil
}

// checkReplace validates replacing dst by src
func checkReplace(src, dst *Node, overwrite bool) error {
	if src == dst {
		return nil
	}
	if src.IsDir() != dst.IsDir() {
		return fmt.Errorf("%w: source and target differ in kind", memfs.ErrConflict)
	}
	if !overwrite {
		return fmt.Errorf("%w: target exists", memfs.ErrConflict)
	}
	return nil
}

// mergeDir moves every child of src under dst, then deletes src
func (fs *FileSystem) mergeDir(src, dst *Node) error {
	if src.IsAncestorOf(dst) {
		return fmt.Errorf("%w: cannot merge a directory into its own descendant", memfs.ErrInvalidArgument)
	}
	for child := range src.Children() {
		if _, ok := dst.GetChild(child.Name()); ok {
			return fmt.Errorf("%w: %q exists in both directories", memfs.ErrConflict, child.Name())
		}
	}
	for child := range src.Children() {
		if err := child.MoveTo(dst); err != nil {
			return err
		}
	}
	return src.Delete()
}
