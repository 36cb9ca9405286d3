package schema

import "path/filepath"

// Source identifies where a schema document originated so load errors and
// logs can name it without leaking loader details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindFS     SourceKind = "fs"
	SourceKindBytes  SourceKind = "bytes"
	SourceKindLegacy SourceKind = "legacy"
)

type namedSource struct {
	kind     SourceKind
	location string
}

func (s namedSource) Kind() SourceKind { return s.kind }

func (s namedSource) Location() string { return s.location }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return namedSource{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return namedSource{kind: SourceKindFS, location: name}
}

// SourceFromBytes labels an in-memory document.
func SourceFromBytes(label string) Source {
	if label == "" {
		label = "inline"
	}
	return namedSource{kind: SourceKindBytes, location: label}
}

func sourceLocation(src Source) string {
	if src == nil {
		return "inline"
	}
	return src.Location()
}
