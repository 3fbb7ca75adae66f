package filesystem

// FileStore reports the capacity of a filesystem. The numbers are informational:
// no write ever fails because the filesystem is "full".
type FileStore struct {
	fs *FileSystem
}

func newFileStore(fs *FileSystem) *FileStore {
	return &FileStore{fs: fs}
}

// Name returns the filesystem id
func (s *FileStore) Name() string {
	return s.fs.id
}

// Type returns the kind of storage
func (s *FileStore) Type() string {
	return "memory"
}

func (s *FileStore) TotalSpace() int64 {
	return s.fs.cfg.Capacity
}

// UsedSpace sums the content size of every file in the tree
func (s *FileStore) UsedSpace() int64 {
	return subtreeSize(s.fs.root)
}

// UsableSpace is TotalSpace minus UsedSpace, never below zero
func (s *FileStore) UsableSpace() int64 {
	return max(s.TotalSpace()-s.UsedSpace(), 0)
}

func (s *FileStore) BlockSize() int64 {
	return s.fs.cfg.BlockSize
}

func subtreeSize(n *Node) int64 {
	size := n.Size()
	for child := range n.Children() {
		size += subtreeSize(child)
	}
	return size
}
