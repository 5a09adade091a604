package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

const tomlConfig = `
[rope]
encoding = "UTF-8"
chunkSize = "4KiB"
maxDepth = 32

[hash]
algorithm = "xxhash"
seed = 7
`

const yamlConfig = `
rope:
  encoding: UTF-8
  chunkSize: 4KiB
  maxDepth: 32
hash:
  algorithm: xxhash
  seed: 7
`

func TestFileLoaders(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/ropecore.toml", tomlConfig)
	memfs.AddFile("/ropecore.yaml", yamlConfig)

	for _, path := range []string{"/ropecore.toml", "/ropecore.yaml"} {
		t.Run(path, func(t *testing.T) {
			l, err := ForPath(memfs, path)
			if err != nil {
				t.Fatalf("ForPath failed: %v", err)
			}
			config, err := l.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			if val, ok := GetPath(config, "rope.encoding"); !ok || val != "UTF-8" {
				t.Errorf("rope.encoding = %v, want UTF-8", val)
			}
			if val, ok := GetPath(config, "rope.chunkSize"); !ok || val != "4KiB" {
				t.Errorf("rope.chunkSize = %v, want 4KiB", val)
			}
			if val, ok := GetPath(config, "rope.maxDepth"); !ok || val != int64(32) {
				t.Errorf("rope.maxDepth = %v (%T), want 32", val, val)
			}
			if val, ok := GetPath(config, "hash.seed"); !ok || val != int64(7) {
				t.Errorf("hash.seed = %v (%T), want 7", val, val)
			}
		})
	}
}

func TestFileLoaderMissingFile(t *testing.T) {
	l := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml")
	config, err := l.Load()
	if err != nil || config != nil {
		t.Errorf("missing file should give nil, nil; got %v, %v", config, err)
	}
}

func TestForPathUnsupported(t *testing.T) {
	if _, err := ForPath(NewMemFS(), "/config.ini"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestTOMLParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[rope]\nchunkSize = \n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
	if perr.Path != "/bad.toml" || perr.Line == 0 {
		t.Errorf("ParseError = %+v, want path /bad.toml with a line", perr)
	}
	if perr.Unwrap() == nil {
		t.Error("ParseError should wrap the decoder error")
	}
}

func TestYAMLParseErrors(t *testing.T) {
	tests := []struct {
		name, input string
	}{
		{"syntax", "rope: [unclosed"},
		{"not a mapping", "- a\n- b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYAMLLoader("").LoadFromReader(strings.NewReader(tt.input))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestYAMLEmptyDocument(t *testing.T) {
	config, err := NewYAMLLoader("").LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(config) != 0 {
		t.Errorf("config = %v, want empty", config)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"rope": map[string]any{"chunkSize": int64(256), "maxDepth": int64(48)},
		"hash": map[string]any{"algorithm": "murmur3"},
	}
	src := map[string]any{
		"rope":    map[string]any{"maxDepth": int64(16)},
		"logging": map[string]any{"level": "debug"},
	}

	merged := DeepMerge(Clone(dst), src)

	if val, _ := GetPath(merged, "rope.chunkSize"); val != int64(256) {
		t.Errorf("rope.chunkSize = %v, want 256", val)
	}
	if val, _ := GetPath(merged, "rope.maxDepth"); val != int64(16) {
		t.Errorf("rope.maxDepth = %v, want 16", val)
	}
	if val, _ := GetPath(merged, "logging.level"); val != "debug" {
		t.Errorf("logging.level = %v, want debug", val)
	}
	if val, _ := GetPath(dst, "rope.maxDepth"); val != int64(48) {
		t.Error("Clone should protect the original from merges")
	}

	// Merged-in maps must not alias src.
	SetPath(merged, "logging.level", "warn")
	if val, _ := GetPath(src, "logging.level"); val != "debug" {
		t.Error("DeepMerge should copy maps from src")
	}
}

func TestGetPathMissing(t *testing.T) {
	data := map[string]any{"rope": map[string]any{"maxDepth": int64(1)}}
	for _, path := range []string{"hash.seed", "rope.maxDepth.x", "rope.chunkSize"} {
		if _, ok := GetPath(data, path); ok {
			t.Errorf("GetPath(%q) should not be found", path)
		}
	}
}
