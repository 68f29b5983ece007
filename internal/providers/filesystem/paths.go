package filesystem

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// TraversalPolicy decides what happens to a path that resolves outside
// the root.
type TraversalPolicy string

const (
	// PolicyBasename keeps only the final segment of an escaping path, so
	// "../../etc/passwd" addresses "passwd" at the root level.
	PolicyBasename TraversalPolicy = "basename"
	// PolicyReject refuses escaping paths with KindBadRequest.
	PolicyReject TraversalPolicy = "reject"
)

// ParsePolicy validates a policy name
func ParsePolicy(name string) (TraversalPolicy, error) {
	switch p := TraversalPolicy(strings.ToLower(strings.TrimSpace(name))); p {
	case PolicyBasename, PolicyReject:
		return p, nil
	case "":
		return PolicyBasename, nil
	default:
		return "", fmt.Errorf("unknown traversal policy %q", name)
	}
}

// Sanitizer resolves untrusted path strings against a fixed root. It does
// no I/O and does not follow symlinks.
type Sanitizer struct {
	root string // slash separated, cleaned, absolute
}

// NewSanitizer creates a sanitizer for an absolute root directory
func NewSanitizer(root string) (*Sanitizer, error) {
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("root %q is not absolute", root)
	}
	return &Sanitizer{root: filepath.ToSlash(filepath.Clean(root))}, nil
}

// Sanitize returns a RelativePath that is always contained in the root.
// Paths escaping the root fall back to their basename.
func (s *Sanitizer) Sanitize(raw string) RelativePath {
	rel, _ := s.Resolve(raw)
	return rel
}

// Resolve is Sanitize that also reports whether the raw path stayed inside
// the root. When contained is false the returned path is the basename
// fallback.
func (s *Sanitizer) Resolve(raw string) (rel RelativePath, contained bool) {
	candidate := s.candidate(raw)
	if r, ok := s.within(candidate); ok {
		return r, true
	}
	base := path.Base(candidate)
	if base == "/" || base == "." {
		return "", false
	}
	return RelativePath(base), false
}

// candidate lexically resolves raw against the root, as an absolute
// slash separated path
func (s *Sanitizer) candidate(raw string) string {
	p := strings.ReplaceAll(raw, "\\", "/")
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(s.root, p)
}

// within compares by path segment so that "/srv/data-evil" is not inside
// "/srv/data"
func (s *Sanitizer) within(candidate string) (RelativePath, bool) {
	if candidate == s.root {
		return "", true
	}
	prefix := s.root
	if prefix != "/" {
		prefix += "/"
	}
	if !strings.HasPrefix(candidate, prefix) {
		return "", false
	}
	return RelativePath(strings.TrimPrefix(candidate, prefix)), true
}

// Root returns the root directory in OS form
func (s *Sanitizer) Root() string {
	return filepath.FromSlash(s.root)
}

// Abs joins a sanitized path to the root
func (s *Sanitizer) Abs(rel RelativePath) string {
	return filepath.Join(s.Root(), filepath.FromSlash(string(rel)))
}

// parentOf returns the parent of a non-root path
func parentOf(rel RelativePath) RelativePath {
	dir := path.Dir(string(rel))
	if dir == "." || dir == "/" {
		return ""
	}
	return RelativePath(dir)
}

// baseName returns the final segment of rel, or "." for the root
func baseName(rel RelativePath) string {
	if rel.IsRoot() {
		return "."
	}
	return path.Base(string(rel))
}

// join appends a child name to a relative path
func join(rel RelativePath, name string) RelativePath {
	if rel.IsRoot() {
		return RelativePath(name)
	}
	return RelativePath(string(rel) + "/" + name)
}
