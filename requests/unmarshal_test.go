package requests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonManifest = `[
	{"type": "dir", "path": "/docs"},
	{"type": "file", "path": "/docs/readme.txt", "content": "hello"},
	{"type": "file", "path": "/bin/blob", "content": "AAEC/w==", "encoding": "base64"},
	{"type": "file", "path": "/empty"}
]`

const yamlManifest = `
- type: dir
  path: /docs
- type: file
  path: /docs/readme.txt
  content: hello
- type: file
  path: /bin/blob
  content: AAEC/w==
  encoding: base64
- type: file
  path: /empty
`

func assertManifest(t *testing.T, m *Manifest) {
	t.Helper()
	require.Len(t, m.Dirs, 1)
	require.Len(t, m.Files, 3)

	assert.Equal(t, "/docs", m.Dirs[0].Path)
	assert.Equal(t, memfs.DirNodeType, m.Dirs[0].Type)

	assert.Equal(t, "/docs/readme.txt", m.Files[0].Path)
	assert.Equal(t, memfs.FileNodeType, m.Files[0].Type)
	assert.Equal(t, []byte("hello"), m.Files[0].Content)
	assert.Equal(t, []byte{0x00, 0x01, 0x02, 0xff}, m.Files[1].Content)
	assert.Empty(t, m.Files[2].Content)
}

func TestParseJSONManifest(t *testing.T) {
	t.Parallel()

	m, err := ParseJSONManifest([]byte(jsonManifest))
	require.NoError(t, err)
	assertManifest(t, m)
}

func TestParseYAMLManifest(t *testing.T) {
	t.Parallel()

	m, err := ParseYAMLManifest([]byte(yamlManifest))
	require.NoError(t, err)
	assertManifest(t, m)
}

func TestParseManifest_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		json    string
		wantErr error
	}{
		{"UnknownType", `[{"type": "link", "path": "/a"}]`, memfs.ErrInvalidArgument},
		{"MissingPath", `[{"type": "dir"}]`, memfs.ErrInvalidArgument},
		{"BadBase64", `[{"type": "file", "path": "/a", "content": "!!", "encoding": "base64"}]`, memfs.ErrInvalidArgument},
		{"UnknownEncoding", `[{"type": "file", "path": "/a", "content": "x", "encoding": "rot13"}]`, memfs.ErrInvalidArgument},
		{"NotAnArray", `{"type": "dir", "path": "/a"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSONManifest([]byte(tt.json))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	_, err := ParseYAMLManifest([]byte("- type: socket\n  path: /a\n"))
	assert.ErrorIs(t, err, memfs.ErrInvalidArgument)
}

func TestGetNodeType(t *testing.T) {
	t.Parallel()

	nodeType, err := GetNodeType([]byte(`{"type": "file", "path": "/a"}`))
	require.NoError(t, err)
	assert.Equal(t, memfs.FileNodeType, nodeType)

	_, err = GetNodeType([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadManifestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"nodes.json": jsonManifest,
		"nodes.yaml": yamlManifest,
		"nodes.yml":  yamlManifest,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		m, err := LoadManifestFile(path)
		require.NoError(t, err, name)
		assertManifest(t, m)
	}

	txt := filepath.Join(dir, "nodes.txt")
	require.NoError(t, os.WriteFile(txt, []byte(jsonManifest), 0o644))
	_, err := LoadManifestFile(txt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported manifest file format")

	_, err = LoadManifestFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
