package memfs

import "errors"

// Error kinds. Every failure returned by the filesystem wraps exactly one of these,
// so callers can branch with errors.Is.
var (
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidPath     = errors.New("invalid path")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrDoesNotExist    = errors.New("does not exist")
	ErrConflict        = errors.New("conflict")
	ErrClosedChannel   = errors.New("channel is closed")
	ErrNonReadable     = errors.New("channel not open for reading")
	ErrNonWritable     = errors.New("channel not open for writing")
)

// PathError records a failed operation and the path it was applied to.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }

// NewPathError is a small convenience so call sites stay on one line.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}
