package schema

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SourceKind enumerates where schema files are read from.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
)

// Source identifies the origin of a schema file.
type Source interface {
	Kind() SourceKind
	Location() string
	read() ([]byte, error)
}

type fileSource struct {
	path string
}

func (s fileSource) Kind() SourceKind  { return SourceKindFile }
func (s fileSource) Location() string { return s.path }

func (s fileSource) read() ([]byte, error) {
	return os.ReadFile(s.path)
}

// SourceFromFile points at a path on disk.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	fsys fs.FS
	name string
}

func (s fsSource) Kind() SourceKind  { return SourceKindFS }
func (s fsSource) Location() string { return s.name }

func (s fsSource) read() ([]byte, error) {
	if s.fsys == nil {
		return nil, fmt.Errorf("schema: nil fs for %q", s.name)
	}
	return fs.ReadFile(s.fsys, s.name)
}

// SourceFromFS points at name inside fsys, typically an embed.FS.
func SourceFromFS(fsys fs.FS, name string) Source {
	return fsSource{fsys: fsys, name: name}
}
