package model

import (
	"os"
	"path/filepath"
	"time"
)

type Kind int

const (
	KindOther Kind = iota
	KindFile
	KindDir
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return "other"
	}
}

// Entry is a metadata snapshot of one filesystem object. It is fetched fresh
// for every decision and never shared between goroutines for mutation.
type Entry struct {
	Path    string
	Kind    Kind
	Size    int64
	ModTime time.Time
}

func EntryFromInfo(path string, info os.FileInfo) Entry {
	kind := KindOther
	switch {
	case info.Mode().IsRegular():
		kind = KindFile
	case info.IsDir():
		kind = KindDir
	}

	return Entry{
		Path:    path,
		Kind:    kind,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

func (e Entry) IsRegular() bool {
	return e.Kind == KindFile
}

func (e Entry) Name() string {
	return filepath.Base(e.Path)
}
