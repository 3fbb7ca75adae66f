package filesystem

import (
	"errors"
	"fmt"
	"io"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/brettbedarf/memfs/vpath"
)

// OpenFlag selects how [FileSystem.NewChannel] opens a file. Flags combine with |.
type OpenFlag uint

const (
	OpenRead OpenFlag = 1 << iota
	OpenWrite
	// OpenAppend positions a write channel at the end of the content and implies OpenWrite
	OpenAppend
	// OpenCreate creates the file if it is absent
	OpenCreate
	// OpenCreateNew creates the file and fails if it already exists
	OpenCreateNew
	// OpenTruncate empties an existing file before opening it for writing
	OpenTruncate
)

// openOptions is the decoded form of an OpenFlag set
type openOptions struct {
	mode      ChannelMode
	append    bool
	create    bool
	createNew bool
	truncate  bool
}

func decodeOpenFlags(flags OpenFlag) (openOptions, error) {
	read := flags&OpenRead != 0
	write := flags&(OpenWrite|OpenAppend) != 0
	if read && write {
		return openOptions{}, fmt.Errorf("%w: cannot open for both reading and writing", memfs.ErrInvalidArgument)
	}
	if !write {
		return openOptions{mode: ModeRead}, nil
	}
	return openOptions{
		mode:      ModeWrite,
		append:    flags&OpenAppend != 0,
		create:    flags&(OpenCreate|OpenCreateNew) != 0,
		createNew: flags&OpenCreateNew != 0,
		truncate:  flags&OpenTruncate != 0,
	}, nil
}

// NewChannel opens the file at p. Without OpenWrite or OpenAppend the channel reads
// from position 0. A write channel starts at the end of the content when appending;
// otherwise the file is emptied and the channel starts at 0.
func (fs *FileSystem) NewChannel(p *vpath.Path, flags OpenFlag) (*Channel, error) {
	const op = "open"
	logger := util.GetLogger("FS.NewChannel")

	abs, err := fs.canonical(op, p)
	if err != nil {
		return nil, err
	}
	opts, err := decodeOpenFlags(flags)
	if err != nil {
		return nil, memfs.NewPathError(op, abs.String(), err)
	}

	node, exists := fs.findEntry(abs)
	if opts.mode == ModeRead {
		if !exists {
			return nil, memfs.NewPathError(op, abs.String(), memfs.ErrDoesNotExist)
		}
		if node.IsDir() {
			return nil, memfs.NewPathError(op, abs.String(), fmt.Errorf("%w: is a directory", memfs.ErrInvalidRequest))
		}
		logger.Trace().Str("path", abs.String()).Msg("Opened read channel")
		return newChannel(node.Data(), abs, ModeRead, 0), nil
	}

	switch {
	case !exists && !opts.create:
		return nil, memfs.NewPathError(op, abs.String(), memfs.ErrDoesNotExist)
	case !exists:
		if node, err = fs.CreateEntry(abs, false, false); err != nil {
			return nil, err
		}
	case opts.createNew:
		return nil, memfs.NewPathError(op, abs.String(), fmt.Errorf("%w: file already exists", memfs.ErrConflict))
	case node.IsDir():
		return nil, memfs.NewPathError(op, abs.String(), fmt.Errorf("%w: is a directory", memfs.ErrInvalidRequest))
	}

	store := node.Data()
	if opts.truncate {
		store.Truncate(0)
	}
	var position int64
	if opts.append {
		position = store.Size()
	} else {
		store.Truncate(0)
	}
	logger.Trace().Str("path", abs.String()).Bool("append", opts.append).Msg("Opened write channel")
	return newChannel(store, abs, ModeWrite, position), nil
}

// ReadFile returns the whole content of the file at p
func (fs *FileSystem) ReadFile(p *vpath.Path) ([]byte, error) {
	ch, err := fs.NewChannel(p, OpenRead)
	if err != nil {
		return nil, err
	}
	defer ch.Close()
	return io.ReadAll(ch)
}

// WriteFile replaces the content of the file at p with data, creating the file if
// needed. Missing parents are not created.
func (fs *FileSystem) WriteFile(p *vpath.Path, data []byte) error {
	ch, err := fs.NewChannel(p, OpenWrite|OpenCreate)
	if err != nil {
		return err
	}
	_, err = ch.Write(data)
	return errors.Join(err, ch.Close())
}
