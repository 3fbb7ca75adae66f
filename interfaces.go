// Package memfs contains the core domain types shared by the in-memory filesystem
// packages: error kinds, node creation requests and read-only entry views.
package memfs

import "io"

// NodeInfo provides read-only access to entry information for external consumers.
// Callers never see internal tree nodes directly.
type NodeInfo interface {
	// Name returns the entry's name (last path component); empty for the root
	Name() string

	// Path returns the absolute path string of the entry
	Path() string

	IsDir() bool

	// Size returns the content length in bytes; always 0 for directories
	Size() int64
}

// ByteChannel is the byte-content access surface of a file.
type ByteChannel interface {
	io.ReadWriteCloser

	Position() (int64, error)
	SetPosition(n int64) error
	Size() (int64, error)
	Truncate(n int64) error
	IsOpen() bool
}

// FileSystemOperator defines the seeding operations external loaders need
type FileSystemOperator interface {
	AddFileNode(req *FileCreateRequest) (NodeInfo, error)
	AddDirNode(req *DirCreateRequest) (NodeInfo, error)
}
