package filesystem

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSanitizer(t *testing.T) *Sanitizer {
	t.Helper()
	s, err := NewSanitizer("/srv/data")
	require.NoError(t, err)
	return s
}

func TestNewSanitizerRequiresAbsoluteRoot(t *testing.T) {
	_, err := NewSanitizer("data")
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	s := newTestSanitizer(t)

	tests := []struct {
		name      string
		raw       string
		want      RelativePath
		contained bool
	}{
		{"empty is root", "", "", true},
		{"dot is root", ".", "", true},
		{"simple file", "notes.txt", "notes.txt", true},
		{"nested file", "a/b/c.txt", "a/b/c.txt", true},
		{"redundant segments", "a/./b//c.txt", "a/b/c.txt", true},
		{"internal parent", "a/../b.txt", "b.txt", true},
		{"trailing slash", "a/b/", "a/b", true},
		{"escape to sibling", "../secret.txt", "secret.txt", false},
		{"deep escape", "../../../etc/passwd", "passwd", false},
		{"absolute outside", "/etc/passwd", "passwd", false},
		{"absolute inside", "/srv/data/a/b.txt", "a/b.txt", true},
		{"prefix lookalike", "../data-evil/x", "x", false},
		{"re-entering root", "../data/x.txt", "x.txt", true},
		{"backslash traversal", `..\..\etc\passwd`, "passwd", false},
		{"escape to filesystem root", "../../..", "", false},
		{"bare parent", "..", "srv", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, contained := s.Resolve(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.contained, contained)
			assert.Equal(t, tt.want, s.Sanitize(tt.raw))
		})
	}
}

func TestSanitizeNeverEscapes(t *testing.T) {
	s := newTestSanitizer(t)
	inputs := []string{
		"..", "../..", "/", "/..", "a/../../..", "....//....//etc",
		"a/b/../../../../x", `..\/..\/x`, "./../.././", "/srv/data/../data2/y",
		"%2e%2e/%2e%2e/etc", "a/\x00/../..", strings.Repeat("../", 64) + "z",
	}

	for _, raw := range inputs {
		rel := s.Sanitize(raw)
		abs := s.Abs(rel)
		inside, err := filepath.Rel(s.Root(), abs)
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(inside, ".."), "raw %q escaped to %s", raw, abs)
		assert.False(t, strings.HasPrefix(rel.String(), "/"), "raw %q produced absolute %q", raw, rel)
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	s := newTestSanitizer(t)
	inputs := []string{
		"", "a", "a/b/c", "../x", "/etc/passwd", "a/../../b", "../../..", "..", "x/./y/",
	}

	for _, raw := range inputs {
		once := s.Sanitize(raw)
		assert.Equal(t, once, s.Sanitize(once.String()), "raw %q", raw)
	}
}

func TestSanitizeWithFilesystemRoot(t *testing.T) {
	s, err := NewSanitizer("/")
	require.NoError(t, err)

	rel, contained := s.Resolve("../etc/passwd")
	assert.True(t, contained)
	assert.Equal(t, RelativePath("etc/passwd"), rel)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyBasename, p)

	p, err = ParsePolicy(" Reject ")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	_, err = ParsePolicy("allow")
	assert.Error(t, err)
}

func TestRelativePathHelpers(t *testing.T) {
	assert.Equal(t, RelativePath(""), parentOf("a"))
	assert.Equal(t, RelativePath("a/b"), parentOf("a/b/c"))
	assert.Equal(t, "c", baseName("a/b/c"))
	assert.Equal(t, ".", baseName(""))
	assert.Equal(t, RelativePath("x"), join("", "x"))
	assert.Equal(t, RelativePath("a/x"), join("a", "x"))
}
