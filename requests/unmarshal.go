package requests

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/internal/util"
)

// Manifest is a decoded seed file, split by request kind in file order
type Manifest struct {
	Dirs  []*memfs.DirCreateRequest
	Files []*memfs.FileCreateRequest
}

// GetNodeType extracts the node type from JSON without full unmarshaling
func GetNodeType(data []byte) (memfs.NodeCreateRequestType, error) {
	var meta struct {
		Type memfs.NodeCreateRequestType `json:"type"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", err
	}
	return meta.Type, nil
}

// UnmarshalFileRequest decodes one JSON file request
func UnmarshalFileRequest(data []byte) (*memfs.FileCreateRequest, error) {
	var dto FileRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return convertFileDTO(dto)
}

// UnmarshalDirRequest decodes one JSON directory request
func UnmarshalDirRequest(data []byte) (*memfs.DirCreateRequest, error) {
	var dto DirRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return convertDirDTO(dto)
}

// ParseJSONManifest decodes a JSON array of node requests
func ParseJSONManifest(data []byte) (*Manifest, error) {
	logger := util.GetLogger("Manifest")

	var rawNodes []json.RawMessage
	if err := json.Unmarshal(data, &rawNodes); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	m := &Manifest{}
	for i, rawNode := range rawNodes {
		nodeType, err := GetNodeType(rawNode)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		switch nodeType {
		case memfs.FileNodeType:
			req, err := UnmarshalFileRequest(rawNode)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			m.Files = append(m.Files, req)
		case memfs.DirNodeType:
			req, err := UnmarshalDirRequest(rawNode)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			m.Dirs = append(m.Dirs, req)
		default:
			return nil, fmt.Errorf("node %d: %w: unknown node type %q", i, memfs.ErrInvalidArgument, nodeType)
		}
	}
	logger.Debug().Int("files", len(m.Files)).Int("directories", len(m.Dirs)).Msg("Parsed JSON manifest")
	return m, nil
}

// ParseYAMLManifest decodes a YAML sequence of node requests
func ParseYAMLManifest(data []byte) (*Manifest, error) {
	logger := util.GetLogger("Manifest")

	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	m := &Manifest{}
	for i := range nodes {
		var meta NodeRequestDTO
		if err := nodes[i].Decode(&meta); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		switch meta.Type {
		case memfs.FileNodeType:
			var dto FileRequestDTO
			if err := nodes[i].Decode(&dto); err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			req, err := convertFileDTO(dto)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			m.Files = append(m.Files, req)
		case memfs.DirNodeType:
			req, err := convertDirDTO(DirRequestDTO{NodeRequestDTO: meta})
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			m.Dirs = append(m.Dirs, req)
		default:
			return nil, fmt.Errorf("node %d: %w: unknown node type %q", i, memfs.ErrInvalidArgument, meta.Type)
		}
	}
	logger.Debug().Int("files", len(m.Files)).Int("directories", len(m.Dirs)).Msg("Parsed YAML manifest")
	return m, nil
}

// LoadManifestFile reads a manifest, picking the format from the file extension
func LoadManifestFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return ParseYAMLManifest(data)
	case ".json":
		return ParseJSONManifest(data)
	default:
		return nil, fmt.Errorf("unsupported manifest file format: %s (supported: .json, .yaml, .yml)", ext)
	}
}

func convertNodeDTO(dto NodeRequestDTO) (memfs.NodeRequest, error) {
	if dto.Path == "" {
		return memfs.NodeRequest{}, fmt.Errorf("%w: missing path", memfs.ErrInvalidArgument)
	}
	return memfs.NodeRequest{Path: dto.Path, Type: dto.Type}, nil
}

func convertDirDTO(dto DirRequestDTO) (*memfs.DirCreateRequest, error) {
	node, err := convertNodeDTO(dto.NodeRequestDTO)
	if err != nil {
		return nil, err
	}
	return &memfs.DirCreateRequest{NodeRequest: node}, nil
}

func convertFileDTO(dto FileRequestDTO) (*memfs.FileCreateRequest, error) {
	node, err := convertNodeDTO(dto.NodeRequestDTO)
	if err != nil {
		return nil, err
	}
	content, err := decodeContent(util.Deref(dto.Content, ""), util.Deref(dto.Encoding, TextEncoding))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dto.Path, err)
	}
	return &memfs.FileCreateRequest{NodeRequest: node, Content: content}, nil
}

func decodeContent(content string, enc ContentEncoding) ([]byte, error) {
	switch enc {
	case TextEncoding, "":
		return []byte(content), nil
	case Base64Encoding:
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("%w: bad base64 content: %v", memfs.ErrInvalidArgument, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unknown encoding %q", memfs.ErrInvalidArgument, enc)
	}
}

// Apply adds every directory and then every file to op. Failed requests are
// logged and skipped; the counts report what was added.
func (m *Manifest) Apply(op memfs.FileSystemOperator) (dirs, files int) {
	logger := util.GetLogger("Manifest")

	for _, req := range m.Dirs {
		if _, err := op.AddDirNode(req); err != nil {
			logger.Warn().Err(err).Str("path", req.Path).Msg("Failed to add directory request")
			continue
		}
		dirs++
	}
	for _, req := range m.Files {
		if _, err := op.AddFileNode(req); err != nil {
			logger.Warn().Err(err).Str("path", req.Path).Msg("Failed to add file request")
			continue
		}
		files++
	}
	return dirs, files
}
