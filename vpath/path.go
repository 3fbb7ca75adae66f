// Package vpath implements the immutable path value used to address entries of an
// in-memory filesystem.
//
// A Path is an ordered list of name segments plus an absolute flag, bound to the id
// of the filesystem instance that created it. Paths are purely lexical: nothing in
// this package consults the entry tree.
package vpath

import (
	"fmt"
	"strings"
	"sync"

	"github.com/brettbedarf/memfs"
)

// Separator between path segments
const Separator = "/"

const (
	currentDir = "."
	parentDir  = ".."
)

// Path is an immutable filesystem path. The zero value is not usable; construct
// paths with [Parse], [Root] or [New].
type Path struct {
	fsID     string
	absolute bool
	segments []string

	strOnce sync.Once
	str     string
}

// Parse converts text into a Path owned by the filesystem fsID.
// Repeated and trailing separators are ignored, so "/a//b/" equals "/a/b".
func Parse(fsID, text string) (*Path, error) {
	if text == "" {
		return nil, memfs.NewPathError("parse", text, fmt.Errorf("%w: empty path", memfs.ErrInvalidPath))
	}
	if strings.ContainsAny(text, "*?") {
		return nil, memfs.NewPathError("parse", text, fmt.Errorf("%w: illegal character", memfs.ErrInvalidPath))
	}

	absolute := strings.HasPrefix(text, Separator)
	segments := splitSegments(text)
	if absolute && len(segments) > 0 && segments[0] == parentDir {
		return nil, memfs.NewPathError("parse", text,
			fmt.Errorf("%w: cannot ascend above the root", memfs.ErrInvalidArgument))
	}
	return newPath(fsID, absolute, segments), nil
}

// Root returns the absolute root path "/" of fsID
func Root(fsID string) *Path {
	return newPath(fsID, true, nil)
}

// New builds a path directly from already valid segments
func New(fsID string, absolute bool, segments ...string) *Path {
	return newPath(fsID, absolute, append([]string(nil), segments...))
}

// newPath takes ownership of segments
func newPath(fsID string, absolute bool, segments []string) *Path {
	return &Path{fsID: fsID, absolute: absolute, segments: segments}
}

func splitSegments(text string) []string {
	parts := strings.Split(text, Separator)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// FS returns the id of the filesystem that owns this path
func (p *Path) FS() string {
	return p.fsID
}

func (p *Path) IsAbsolute() bool {
	return p.absolute
}

// IsRoot reports whether p is the absolute path with no segments
func (p *Path) IsRoot() bool {
	return p.absolute && len(p.segments) == 0
}

// NameCount returns the number of segments
func (p *Path) NameCount() int {
	return len(p.segments)
}

// Name returns segment i as a single-segment relative path
func (p *Path) Name(i int) (*Path, error) {
	if i < 0 || i >= len(p.segments) {
		return nil, memfs.NewPathError("name", p.String(),
			fmt.Errorf("%w: index %d out of range", memfs.ErrInvalidArgument, i))
	}
	return newPath(p.fsID, false, []string{p.segments[i]}), nil
}

// Segments returns a copy of the name segments
func (p *Path) Segments() []string {
	segments := make([]string, len(p.segments))
	copy(segments, p.segments)
	return segments
}

// Parent returns the path without its last segment, or nil when there is none.
// The parent of a single-segment absolute path is the root; a single-segment
// relative path has no parent.
func (p *Path) Parent() *Path {
	switch len(p.segments) {
	case 0:
		return nil
	case 1:
		if p.absolute {
			return Root(p.fsID)
		}
		return nil
	default:
		return newPath(p.fsID, p.absolute, p.segments[:len(p.segments)-1:len(p.segments)-1])
	}
}

// FileName returns the last segment as a relative path, or nil for the root
func (p *Path) FileName() *Path {
	if len(p.segments) == 0 {
		return nil
	}
	return newPath(p.fsID, false, []string{p.segments[len(p.segments)-1]})
}

// LastName returns the last segment, or "" for the root
func (p *Path) LastName() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// RootPath returns "/" for absolute paths and nil for relative ones
func (p *Path) RootPath() *Path {
	if !p.absolute {
		return nil
	}
	return Root(p.fsID)
}

// Subpath returns the relative path formed by segments [begin, end)
func (p *Path) Subpath(begin, end int) (*Path, error) {
	if begin < 0 || end > len(p.segments) || begin >= end {
		return nil, memfs.NewPathError("subpath", p.String(),
			fmt.Errorf("%w: range [%d, %d)", memfs.ErrInvalidArgument, begin, end))
	}
	return New(p.fsID, false, p.segments[begin:end]...), nil
}

// Child returns p with name appended
func (p *Path) Child(name string) *Path {
	segments := make([]string, len(p.segments), len(p.segments)+1)
	copy(segments, p.segments)
	return newPath(p.fsID, p.absolute, append(segments, name))
}

// ToAbsolute resolves a relative path against the root; absolute paths are returned as is
func (p *Path) ToAbsolute() *Path {
	if p.absolute {
		return p
	}
	return newPath(p.fsID, true, p.Segments())
}

// Normalize removes "." segments and folds "name/.." pairs without consulting the
// tree. A ".." that has nothing to cancel is kept, except directly under the root
// of an absolute path where it is dropped.
//
// Absolute paths never keep "." or "..": "/." and "/a/../.." both become "/",
// matching how the root is its own parent. A relative path keeps a lone "." only
// when nothing else remains, so "./.." becomes "..".
func (p *Path) Normalize() *Path {
	acc := make([]string, 0, len(p.segments))
	loneDot := func() bool { return len(acc) == 1 && acc[0] == currentDir }

	for _, seg := range p.segments {
		switch seg {
		case currentDir:
			if len(acc) == 0 && !p.absolute {
				acc = append(acc, currentDir)
			}
		case parentDir:
			if loneDot() {
				acc = acc[:0]
			}
			switch {
			case len(acc) == 0 && p.absolute:
				// "/.." is "/"
			case len(acc) == 0 || acc[len(acc)-1] == parentDir:
				acc = append(acc, parentDir)
			default:
				acc = acc[:len(acc)-1]
			}
		default:
			if loneDot() {
				acc = acc[:0]
			}
			acc = append(acc, seg)
		}
	}
	return newPath(p.fsID, p.absolute, acc)
}

// Resolve joins other onto p. An absolute other is returned unchanged.
func (p *Path) Resolve(other *Path) *Path {
	if other.absolute {
		return other
	}
	segments := make([]string, 0, len(p.segments)+len(other.segments))
	segments = append(segments, p.segments...)
	segments = append(segments, other.segments...)
	return newPath(p.fsID, p.absolute, segments)
}

// ResolveString parses text with p's filesystem and resolves it against p
func (p *Path) ResolveString(text string) (*Path, error) {
	other, err := Parse(p.fsID, text)
	if err != nil {
		return nil, err
	}
	return p.Resolve(other), nil
}

// ResolveSibling resolves other against p's parent. Paths with fewer than two
// segments return other as given.
func (p *Path) ResolveSibling(other *Path) *Path {
	if other.absolute || len(p.segments) < 2 {
		return other
	}
	parent := newPath(p.fsID, p.absolute, p.segments[:len(p.segments)-1:len(p.segments)-1])
	return parent.Resolve(other)
}

// Relativize returns the relative path that leads from p to other.
// Equal paths give "."; when exactly one of the two is absolute, other is returned
// unchanged.
func (p *Path) Relativize(other *Path) *Path {
	if p.Equal(other) {
		return newPath(p.fsID, false, []string{currentDir})
	}
	if p.absolute != other.absolute {
		return other
	}

	i := 0
	for i < len(p.segments) && i < len(other.segments) && p.segments[i] == other.segments[i] {
		i++
	}

	ups := len(p.segments) - i
	segments := make([]string, 0, ups+len(other.segments)-i)
	for range ups {
		segments = append(segments, parentDir)
	}
	segments = append(segments, other.segments[i:]...)
	return newPath(p.fsID, false, segments)
}

// StartsWith reports whether other is a leading run of p's segments with the same
// absoluteness.
func (p *Path) StartsWith(other *Path) bool {
	if p.fsID != other.fsID || p.absolute != other.absolute || len(other.segments) > len(p.segments) {
		return false
	}
	for i, seg := range other.segments {
		if p.segments[i] != seg {
			return false
		}
	}
	return true
}

// EndsWith reports whether other is a trailing run of p's segments. An absolute
// other only matches the whole of p.
func (p *Path) EndsWith(other *Path) bool {
	if p.fsID != other.fsID || len(other.segments) > len(p.segments) {
		return false
	}
	offset := len(p.segments) - len(other.segments)
	if other.absolute && (offset != 0 || !p.absolute) {
		return false
	}
	for i, seg := range other.segments {
		if p.segments[offset+i] != seg {
			return false
		}
	}
	return true
}

// Compare orders absolute before relative paths, then segment by segment, with a
// strict prefix sorting first. Paths of different filesystems are ordered by
// filesystem id.
func (p *Path) Compare(other *Path) int {
	if c := strings.Compare(p.fsID, other.fsID); c != 0 {
		return c
	}
	if p.absolute != other.absolute {
		if p.absolute {
			return -1
		}
		return 1
	}
	n := min(len(p.segments), len(other.segments))
	for i := range n {
		if c := strings.Compare(p.segments[i], other.segments[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(p.segments) < len(other.segments):
		return -1
	case len(p.segments) > len(other.segments):
		return 1
	}
	return 0
}

// Equal reports structural equality, including the owning filesystem
func (p *Path) Equal(other *Path) bool {
	if other == nil {
		return false
	}
	if p == other {
		return true
	}
	if p.fsID != other.fsID || p.absolute != other.absolute || len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// String renders the path with "/" separators. Computed once.
func (p *Path) String() string {
	p.strOnce.Do(func() {
		joined := strings.Join(p.segments, Separator)
		if p.absolute {
			joined = Separator + joined
		}
		p.str = joined
	})
	return p.str
}

// URI renders the path as "scheme:/fsID/path" using its absolute form
func (p *Path) URI(scheme string) string {
	abs := p.ToAbsolute().String()
	if abs == Separator {
		abs = ""
	}
	return scheme + ":/" + p.fsID + abs
}
