package filesystem

import (
	"fmt"
	"io"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/vpath"
)

// ChannelMode is fixed when the channel is opened
type ChannelMode int

const (
	ModeRead ChannelMode = iota
	ModeWrite
)

func (m ChannelMode) String() string {
	if m == ModeWrite {
		return "write"
	}
	return "read"
}

// Channel is a seekable read-only or write-only cursor over one file's ByteStore.
// Channels are only handed out by [FileSystem.NewChannel].
//
// A Channel is not safe for concurrent use, and several channels over the same
// file see each other's writes without any isolation.
type Channel struct {
	store    *ByteStore
	path     *vpath.Path
	mode     ChannelMode
	position int64
	open     bool
}

var _ memfs.ByteChannel = (*Channel)(nil)

func newChannel(store *ByteStore, path *vpath.Path, mode ChannelMode, position int64) *Channel {
	return &Channel{store: store, path: path, mode: mode, position: position, open: true}
}

func (c *Channel) fail(op string, err error) error {
	return memfs.NewPathError(op, c.path.String(), err)
}

func (c *Channel) checkOpen(op string) error {
	if !c.open {
		return c.fail(op, memfs.ErrClosedChannel)
	}
	return nil
}

// Mode reports whether the channel was opened for reading or writing
func (c *Channel) Mode() ChannelMode {
	return c.mode
}

func (c *Channel) IsOpen() bool {
	return c.open
}

// Read transfers up to len(p) bytes from the current position and advances it.
// Once the position reaches the end of the content, Read returns 0, io.EOF.
func (c *Channel) Read(p []byte) (int, error) {
	if err := c.checkOpen("read"); err != nil {
		return 0, err
	}
	if c.mode != ModeRead {
		return 0, c.fail("read", memfs.ErrNonReadable)
	}
	if len(p) == 0 {
		return 0, nil
	}
	n := c.store.ReadAt(p, c.position)
	if n == 0 {
		return 0, io.EOF
	}
	c.position += int64(n)
	return n, nil
}

// Write stores p at the current position, growing the file as needed, and
// advances the position.
func (c *Channel) Write(p []byte) (int, error) {
	if err := c.checkOpen("write"); err != nil {
		return 0, err
	}
	if c.mode != ModeWrite {
		return 0, c.fail("write", memfs.ErrNonWritable)
	}
	n := c.store.WriteAt(p, c.position)
	c.position += int64(n)
	return n, nil
}

func (c *Channel) Position() (int64, error) {
	if err := c.checkOpen("position"); err != nil {
		return 0, err
	}
	return c.position, nil
}

// SetPosition moves the cursor to n, which must address an existing byte:
// seeking to exactly the end of the content is rejected.
func (c *Channel) SetPosition(n int64) error {
	if err := c.checkOpen("position"); err != nil {
		return err
	}
	if n < 0 || n >= c.store.Size() {
		return c.fail("position",
			fmt.Errorf("%w: position %d outside [0, %d)", memfs.ErrInvalidArgument, n, c.store.Size()))
	}
	c.position = n
	return nil
}

// Size returns the current content length of the underlying file
func (c *Channel) Size() (int64, error) {
	if err := c.checkOpen("size"); err != nil {
		return 0, err
	}
	return c.store.Size(), nil
}

// Truncate shrinks the file to n bytes when n is smaller than its size. It never
// grows the file. A position past n is pulled back to n either way, so another
// channel emptying the file first does not leave this one past the end.
func (c *Channel) Truncate(n int64) error {
	if err := c.checkOpen("truncate"); err != nil {
		return err
	}
	if c.mode != ModeWrite {
		return c.fail("truncate", memfs.ErrNonWritable)
	}
	if n < 0 {
		return c.fail("truncate", fmt.Errorf("%w: negative size %d", memfs.ErrInvalidArgument, n))
	}
	if n < c.store.Size() {
		c.store.Truncate(n)
	}
	if c.position > n {
		c.position = n
	}
	return nil
}

// Close releases the channel. Closing twice fails with [memfs.ErrClosedChannel].
func (c *Channel) Close() error {
	if err := c.checkOpen("close"); err != nil {
		return err
	}
	c.open = false
	return nil
}
