package filesystem

import (
	"io"
	"time"
)

// RelativePath is a slash separated path beneath the root. It has no
// leading slash and no ".." segments. The empty path is the root itself.
type RelativePath string

// String returns the path as a plain string
func (p RelativePath) String() string {
	return string(p)
}

// IsRoot reports whether the path addresses the root directory
func (p RelativePath) IsRoot() bool {
	return p == ""
}

// NodeDescriptor describes one filesystem entry
type NodeDescriptor struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	IsDirectory bool      `json:"isDirectory"`
	Size        int64     `json:"size"`
	Modified    time.Time `json:"modified"`
}

// ListEntry is one listing item. Error is set when the entry could be
// enumerated but not inspected; the descriptor then carries zero values.
type ListEntry struct {
	NodeDescriptor
	Error string `json:"error,omitempty"`
}

// Failed reports whether the entry could not be inspected
func (e ListEntry) Failed() bool {
	return e.Error != ""
}

// FileContent is an open file ready to be streamed to a client
type FileContent struct {
	io.ReadCloser
	Name      string
	Size      int64
	MediaType string
	Modified  time.Time
}

// Metadata is a descriptor enriched with content classification
type Metadata struct {
	NodeDescriptor
	MediaType    string `json:"mimeType,omitempty"`
	DetectedType string `json:"detectedType,omitempty"`
	Charset      string `json:"charset,omitempty"`
}
