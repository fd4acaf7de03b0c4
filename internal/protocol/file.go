package protocol

import (
	"net/url"
	"strings"
)

// FileRef identifies a produced file by the last two segments of its slash-separated path.
type FileRef struct {
	Path   string // path as announced by the server
	Name   string // final segment, shown to the user
	Subdir string // second-to-last segment, empty when the path has a single segment
}

// ParseFileRef splits a slash-separated path into its display name and subdir.
func ParseFileRef(p string) FileRef {
	segments := strings.Split(p, "/")
	ref := FileRef{Path: p, Name: segments[len(segments)-1]}
	if len(segments) >= 2 {
		ref.Subdir = segments[len(segments)-2]
	}
	return ref
}

// IsZero reports whether no file is referenced.
func (f FileRef) IsZero() bool {
	return f.Name == "" && f.Subdir == "" && f.Path == ""
}

// DownloadPath joins prefix, subdir and name into the download endpoint path.
//
// An empty subdir still contributes its (empty) segment so the server sees the same shape.
func (f FileRef) DownloadPath(prefix string) string {
	return strings.TrimRight(prefix, "/") + "/" + url.PathEscape(f.Subdir) + "/" + url.PathEscape(f.Name)
}
