package requests

import (
	"github.com/brettbedarf/memfs"
)

// NodeRequestDTO is the manifest representation of [memfs.NodeRequest]
type NodeRequestDTO struct {
	Path string                      `json:"path" yaml:"path"`
	Type memfs.NodeCreateRequestType `json:"type" yaml:"type"`
}

// FileRequestDTO is the manifest representation of [memfs.FileCreateRequest]
type FileRequestDTO struct {
	NodeRequestDTO `yaml:",inline"`
	// Content is the initial file content, interpreted according to Encoding
	Content *string `json:"content,omitempty" yaml:"content,omitempty"`
	// Encoding is "text" (default) or "base64"
	Encoding *ContentEncoding `json:"encoding,omitempty" yaml:"encoding,omitempty"`
}

type DirRequestDTO struct {
	NodeRequestDTO `yaml:",inline"`
}

// ContentEncoding names how a file's manifest content is encoded
type ContentEncoding string

const (
	TextEncoding   ContentEncoding = "text"
	Base64Encoding ContentEncoding = "base64"
)
