package filesystem

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// DefaultSearchLimit caps the number of matches returned by Search
const DefaultSearchLimit = 1000

// SearchResult holds the matches of a glob search, sorted by path
type SearchResult struct {
	Base      string           `json:"base"`
	Pattern   string           `json:"pattern"`
	Matches   []NodeDescriptor `json:"matches"`
	Truncated bool             `json:"truncated"`
}

// Search walks the tree under base and returns nodes whose path relative
// to base matches a doublestar pattern such as "**/*.txt". Symlinks are
// not followed.
func (s *Store) Search(ctx context.Context, base RelativePath, pattern string, limit int) (result *SearchResult, err error) {
	start := time.Now()
	defer func() { s.observe("search", base, start, err) }()

	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return nil, newError(KindBadRequest, CodeBadRequest, "invalid search pattern", RelativePath(pattern))
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if _, err := s.requireDirectory(base); err != nil {
		return nil, err
	}

	root := s.abs(base)
	var (
		mu      sync.Mutex
		matches []NodeDescriptor
	)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil || p == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}

		relToBase, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		relToBase = filepath.ToSlash(relToBase)
		if ok, _ := doublestar.Match(pattern, relToBase); !ok {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		desc := describe(join(base, relToBase), info)
		mu.Lock()
		matches = append(matches, desc)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, classify("search", base, err)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Path < matches[j].Path })
	result = &SearchResult{Base: base.String(), Pattern: pattern, Matches: matches}
	if len(matches) > limit {
		result.Matches = matches[:limit]
		result.Truncated = true
	}
	if result.Matches == nil {
		result.Matches = []NodeDescriptor{}
	}
	return result, nil
}
