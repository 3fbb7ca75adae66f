package filesystem

// ByteStore is the growable content buffer owned by exactly one file Node.
// Channels borrow it for their lifetime.
type ByteStore struct {
	buf []byte
}

// NewByteStore returns an empty store with capacity bytes preallocated
func NewByteStore(capacity int) *ByteStore {
	return &ByteStore{buf: make([]byte, 0, max(capacity, 0))}
}

// Size returns the content length in bytes
func (s *ByteStore) Size() int64 {
	return int64(len(s.buf))
}

// Truncate shrinks the content to n bytes. It never grows the store.
func (s *ByteStore) Truncate(n int64) {
	if n < 0 {
		n = 0
	}
	if n < int64(len(s.buf)) {
		clear(s.buf[n:])
		s.buf = s.buf[:n]
	}
}

// Copy returns an independent deep copy
func (s *ByteStore) Copy() *ByteStore {
	buf := make([]byte, len(s.buf))
	copy(buf, s.buf)
	return &ByteStore{buf: buf}
}

// ReadAt copies content starting at off into p and returns the count copied.
// Offsets at or past the end copy nothing.
func (s *ByteStore) ReadAt(p []byte, off int64) int {
	if off < 0 || off >= int64(len(s.buf)) {
		return 0
	}
	return copy(p, s.buf[off:])
}

// WriteAt writes p at off, growing the store as needed. A gap between the
// current end and off is zero filled.
func (s *ByteStore) WriteAt(p []byte, off int64) int {
	end := off + int64(len(p))
	if end > int64(len(s.buf)) {
		s.grow(int(end))
	}
	return copy(s.buf[off:end], p)
}

func (s *ByteStore) grow(size int) {
	if size <= cap(s.buf) {
		s.buf = s.buf[:size]
		return
	}
	buf := make([]byte, size, max(size, 2*cap(s.buf)))
	copy(buf, s.buf)
	s.buf = buf
}

// replace overwrites the content with a copy of src's, keeping this store's identity
func (s *ByteStore) replace(src *ByteStore) {
	if s == src {
		return
	}
	s.Truncate(0)
	s.WriteAt(src.buf, 0)
}
