package filesystem

import (
	"fmt"
	"io"
	"strings"
)

// WriteTree prints the tree under the root, one entry per line, children
// indented below their directory in list order. Directories end with "/" and
// files show their size.
func (fs *FileSystem) WriteTree(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n", fs.URI(fs.Root())); err != nil {
		return err
	}
	return writeSubtree(w, fs.root, 1)
}

func writeSubtree(w io.Writer, n *Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	for child := range n.Children() {
		var err error
		if child.IsDir() {
			_, err = fmt.Fprintf(w, "%s%s/\n", indent, child.Name())
		} else {
			_, err = fmt.Fprintf(w, "%s%s (%d bytes)\n", indent, child.Name(), child.Size())
		}
		if err != nil {
			return err
		}
		if child.IsDir() {
			if err := writeSubtree(w, child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
