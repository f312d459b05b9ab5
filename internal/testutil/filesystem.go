package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ssb-go/internal/ssb"
)

// MockFile represents a file or directory in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
	Unreadable  bool // listing the directory fails
}

// MockFilesystemManager is an in-memory filesystem for testing. Paths are
// absolute and slash-separated; parent directories are created implicitly.
type MockFilesystemManager struct {
	files map[string]*MockFile
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string]*MockFile),
	}
}

// AddFile adds a file, and any missing parent directories, to the mock
// filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	path = filepath.Clean(path)
	m.AddDirectory(filepath.Dir(path))
	m.files[path] = &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     time.Now(),
	}
}

// AddDirectory adds a directory and its missing parents.
func (m *MockFilesystemManager) AddDirectory(path string) {
	path = filepath.Clean(path)
	for {
		if _, ok := m.files[path]; ok {
			return
		}
		m.files[path] = &MockFile{
			Permissions: 0755,
			ModTime:     time.Now(),
			IsDirectory: true,
		}
		parent := filepath.Dir(path)
		if parent == path {
			return
		}
		path = parent
	}
}

// SetUnreadable makes listing the directory at path fail.
func (m *MockFilesystemManager) SetUnreadable(path string) {
	path = filepath.Clean(path)
	m.AddDirectory(path)
	m.files[path].Unreadable = true
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*ssb.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("stat path: %w", fs.ErrNotExist)
	}
	return m.path(absPath, file), nil
}

func (m *MockFilesystemManager) Open(path *ssb.Path) (io.ReadCloser, error) {
	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path.String(), fs.ErrNotExist)
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path.String())
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

// WalkDirs mirrors the OS implementation: a directory is yielded before it
// is listed, and a listing failure below root is a *ssb.TraversalError.
func (m *MockFilesystemManager) WalkDirs(root *ssb.Path) iter.Seq2[*ssb.Path, error] {
	return func(yield func(*ssb.Path, error) bool) {
		rootPath := root.String()
		if _, ok := m.files[rootPath]; !ok {
			yield(nil, fmt.Errorf("resolving walk root: %w", fs.ErrNotExist))
			return
		}
		m.walk(rootPath, rootPath, yield)
	}
}

func (m *MockFilesystemManager) walk(rootPath, dir string, yield func(*ssb.Path, error) bool) bool {
	file := m.files[dir]
	if !yield(m.path(dir, file), nil) {
		return false
	}
	if file.Unreadable {
		err := fmt.Errorf("open %s: %w", dir, fs.ErrPermission)
		if dir == rootPath {
			yield(nil, fmt.Errorf("walking directory: %w", err))
			return false
		}
		return yield(nil, &ssb.TraversalError{Path: dir, Err: err})
	}
	for _, child := range m.children(dir) {
		if !m.files[child].IsDirectory {
			continue
		}
		if !m.walk(rootPath, child, yield) {
			return false
		}
	}
	return true
}

func (m *MockFilesystemManager) Glob(dir *ssb.Path, pattern string) ([]*ssb.Path, error) {
	file, ok := m.files[dir.String()]
	if !ok || !file.IsDirectory {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}
	if file.Unreadable {
		return nil, &ssb.TraversalError{Path: dir.String(), Err: fmt.Errorf("open %s: %w", dir.String(), fs.ErrPermission)}
	}

	var paths []*ssb.Path
	for _, child := range m.children(dir.String()) {
		f := m.files[child]
		if f.IsDirectory {
			continue
		}
		ok, err := filepath.Match(pattern, filepath.Base(child))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if ok {
			paths = append(paths, m.path(child, f))
		}
	}
	return paths, nil
}

// children returns the direct children of dir in lexical order.
func (m *MockFilesystemManager) children(dir string) []string {
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	var out []string
	for p := range m.files {
		if p == dir || !strings.HasPrefix(p, prefix) {
			continue
		}
		if strings.ContainsRune(p[len(prefix):], filepath.Separator) {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m *MockFilesystemManager) path(absPath string, file *MockFile) *ssb.Path {
	mode := file.Permissions
	if file.IsDirectory {
		mode |= fs.ModeDir
	}
	info := &mockFileInfo{
		name:    filepath.Base(absPath),
		size:    int64(len(file.Content)),
		mode:    mode,
		modTime: file.ModTime,
		isDir:   file.IsDirectory,
	}
	return ssb.NewPath(absPath, file.IsDirectory, info)
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// Compile-time check
var _ ssb.FilesystemManager = (*MockFilesystemManager)(nil)
