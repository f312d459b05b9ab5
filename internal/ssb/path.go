package ssb

import (
	"io/fs"
	"path/filepath"
)

// Path is a resolved filesystem location together with the stat info
// captured when it was discovered. Paths are produced by a
// FilesystemManager, either from Resolve or while walking a tree.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path from its components.
// This is primarily for use by FilesystemManager implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{
		absPath: absPath,
		isDir:   isDir,
		info:    info,
	}
}

func (p *Path) String() string {
	return p.absPath
}

// Name returns the last element of the path.
func (p *Path) Name() string {
	return filepath.Base(p.absPath)
}

// ParentName returns the last element of the parent directory,
// or "" when the path has no parent.
func (p *Path) ParentName() string {
	parent := filepath.Dir(p.absPath)
	if parent == p.absPath {
		return ""
	}
	name := filepath.Base(parent)
	if name == string(filepath.Separator) || name == "." {
		return ""
	}
	return name
}

func (p *Path) IsDir() bool {
	return p.isDir
}

// Info returns the file info captured when the path was discovered.
func (p *Path) Info() fs.FileInfo {
	return p.info
}
