package memfs

// NodeRequest has common fields embedded in concrete request types
type NodeRequest struct {
	Path string
	Type NodeCreateRequestType
}

// NodeCreateRequestType valid types are FileNodeType "file", DirNodeType "dir"
type NodeCreateRequestType string

const (
	FileNodeType NodeCreateRequestType = "file"
	DirNodeType  NodeCreateRequestType = "dir"
)

// FileCreateRequest asks for a file at Path holding Content.
// Missing parent directories are created.
type FileCreateRequest struct {
	NodeRequest
	Content []byte
}

type DirCreateRequest struct {
	NodeRequest
}
