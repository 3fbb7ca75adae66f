package filesystem

import (
	"fmt"
	"iter"
	"strings"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/vpath"
)

// Node is one directory or file entry of the tree.
//
// A directory owns its children through an intrusive doubly linked sibling list
// (firstChild, next, prev); parent is a back reference. Files carry a ByteStore
// and never have children. Children are kept in insertion order and looked up by
// linear scan, so very large directories are slow by construction.
//
// Nodes are not safe for concurrent mutation.
type Node struct {
	name   string // empty only for the root
	isDir  bool
	data   *ByteStore // nil for directories
	parent *Node      // nil for the root and for deleted nodes

	firstChild *Node
	next       *Node
	prev       *Node
}

// newRoot returns a parentless, nameless directory
func newRoot() *Node {
	return &Node{isDir: true}
}

// ValidateName checks an entry name: non-empty, no "/" or "*", and not "." or "..".
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", memfs.ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: reserved name %q", memfs.ErrInvalidName, name)
	case strings.ContainsAny(name, "/*"):
		return fmt.Errorf("%w: illegal character in %q", memfs.ErrInvalidName, name)
	}
	return nil
}

// Name returns the node's name; empty for the root
func (n *Node) Name() string {
	return n.name
}

func (n *Node) IsDir() bool {
	return n.isDir
}

// IsRoot reports whether n is the root of its tree. A deleted node also has no
// parent but keeps its name, so it is not a root.
func (n *Node) IsRoot() bool {
	return n.parent == nil && n.name == ""
}

// Parent returns the containing directory, or nil for the root and detached nodes
func (n *Node) Parent() *Node {
	return n.parent
}

// Data returns the file content store; nil for directories
func (n *Node) Data() *ByteStore {
	return n.data
}

// Size returns the content length of a file; 0 for directories
func (n *Node) Size() int64 {
	if n.data == nil {
		return 0
	}
	return n.data.Size()
}

// IsAncestorOf reports whether n is a strict ancestor of other
func (n *Node) IsAncestorOf(other *Node) bool {
	for cur := other.parent; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// NewDir creates a directory named name at the tail of n's children
func (n *Node) NewDir(name string) (*Node, error) {
	return n.newChild(name, true, nil)
}

// NewFile creates an empty file named name at the tail of n's children.
// capacity bytes are preallocated for its content.
func (n *Node) NewFile(name string, capacity int) (*Node, error) {
	return n.newChild(name, false, NewByteStore(capacity))
}

func (n *Node) newChild(name string, isDir bool, data *ByteStore) (*Node, error) {
	if err := n.checkInsert(name); err != nil {
		return nil, err
	}
	child := &Node{name: name, isDir: isDir, data: data}
	n.appendChild(child)
	return child, nil
}

// checkInsert validates that an entry called name may be linked under n
func (n *Node) checkInsert(name string) error {
	if !n.isDir {
		return fmt.Errorf("%w: %q is not a directory", memfs.ErrInvalidRequest, n.name)
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, ok := n.GetChild(name); ok {
		return fmt.Errorf("%w: entry %q already exists", memfs.ErrConflict, name)
	}
	return nil
}

// appendChild links child at the tail of n's sibling list. No validation.
func (n *Node) appendChild(child *Node) {
	child.parent = n
	child.next = nil
	if n.firstChild == nil {
		child.prev = nil
		n.firstChild = child
		return
	}
	tail := n.firstChild
	for tail.next != nil {
		tail = tail.next
	}
	tail.next = child
	child.prev = tail
}

// unlink detaches n from its parent's sibling list. No validation.
func (n *Node) unlink() {
	if n.parent == nil {
		return
	}
	if n.prev == nil {
		n.parent.firstChild = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	n.parent, n.next, n.prev = nil, nil, nil
}

// GetChild returns the direct child called name
func (n *Node) GetChild(name string) (*Node, bool) {
	for child := n.firstChild; child != nil; child = child.next {
		if child.name == name {
			return child, true
		}
	}
	return nil, false
}

// HasChildren reports whether n has at least one child
func (n *Node) HasChildren() bool {
	return n.firstChild != nil
}

// Children iterates the live sibling chain in insertion order. Each range over the
// returned sequence starts again from the current first child; mutating the
// directory while iterating gives undefined results.
func (n *Node) Children() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for child := n.firstChild; child != nil; {
			next := child.next
			if !yield(child) {
				return
			}
			child = next
		}
	}
}

// Delete unlinks n from its parent. The root cannot be deleted.
// A deleted node must only be reused through a fresh link.
func (n *Node) Delete() error {
	if n.IsRoot() {
		return fmt.Errorf("%w: cannot delete the root", memfs.ErrInvalidRequest)
	}
	n.unlink()
	return nil
}

// Rename changes n's name in place, keeping its position among its siblings.
func (n *Node) Rename(name string) error {
	if n.IsRoot() {
		return fmt.Errorf("%w: cannot rename the root", memfs.ErrInvalidRequest)
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	if name == n.name {
		return nil
	}
	if n.parent != nil {
		if _, ok := n.parent.GetChild(name); ok {
			return fmt.Errorf("%w: entry %q already exists", memfs.ErrConflict, name)
		}
	}
	n.name = name
	return nil
}

// MoveTo relinks n at the tail of newParent's children. Moving to the current
// parent is a no-op that keeps n's position.
func (n *Node) MoveTo(newParent *Node) error {
	return n.moveAs(newParent, n.name)
}

// moveAs relinks n under newParent with name, validating everything before the
// tree is touched. The ancestor walk is the only guard against cycles.
func (n *Node) moveAs(newParent *Node, name string) error {
	if n.IsRoot() {
		return fmt.Errorf("%w: cannot move the root", memfs.ErrInvalidRequest)
	}
	if !newParent.isDir {
		return fmt.Errorf("%w: target %q is not a directory", memfs.ErrInvalidArgument, newParent.name)
	}
	if newParent == n || n.IsAncestorOf(newParent) {
		return fmt.Errorf("%w: cannot move %q into itself", memfs.ErrInvalidArgument, n.name)
	}
	if newParent == n.parent {
		return n.Rename(name)
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, ok := newParent.GetChild(name); ok {
		return fmt.Errorf("%w: entry %q already exists", memfs.ErrConflict, name)
	}

	n.unlink()
	n.name = name
	newParent.appendChild(n)
	return nil
}

// CopyTo creates a shallow copy of n called name under targetParent. File content
// is deep copied; directory children are not copied.
func (n *Node) CopyTo(targetParent *Node, name string) (*Node, error) {
	if n.isDir {
		return targetParent.newChild(name, true, nil)
	}
	return targetParent.newChild(name, false, n.data.Copy())
}

// Path builds the absolute path of n for the filesystem fsID
func (n *Node) Path(fsID string) *vpath.Path {
	var names []string
	for cur := n; cur != nil && !cur.IsRoot(); cur = cur.parent {
		names = append(names, cur.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return vpath.New(fsID, true, names...)
}
