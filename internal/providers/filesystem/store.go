package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxUploadBytes bounds a single write when Config leaves it unset
const DefaultMaxUploadBytes int64 = 50 << 20

// Recorder receives per-operation measurements
type Recorder interface {
	RecordFSOperation(op, outcome string, duration time.Duration)
	RecordFSBytes(direction string, n int64)
}

// Config configures a Store
type Config struct {
	Root            string
	MaxUploadBytes  int64
	Policy          TraversalPolicy
	ListConcurrency int
	Logger          *zap.Logger
	Recorder        Recorder
}

// Store performs filesystem operations confined to one root directory.
// It holds no per-request state; concurrent calls on the same path race
// exactly as the underlying filesystem does.
type Store struct {
	sanitizer   *Sanitizer
	maxUpload   int64
	policy      TraversalPolicy
	concurrency int
	logger      *zap.Logger
	recorder    Recorder
}

// NewStore creates the root directory if needed and returns a Store on it
func NewStore(cfg Config) (*Store, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", cfg.Root, err)
	}

	info, err := os.Stat(root)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(root, 0o755); mkErr != nil {
			return nil, fmt.Errorf("create root %s: %w", root, mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	case !info.IsDir():
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	sanitizer, err := NewSanitizer(root)
	if err != nil {
		return nil, err
	}

	policy := cfg.Policy
	if policy == "" {
		policy = PolicyBasename
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	concurrency := cfg.ListConcurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		sanitizer:   sanitizer,
		maxUpload:   maxUpload,
		policy:      policy,
		concurrency: concurrency,
		logger:      logger,
		recorder:    cfg.Recorder,
	}, nil
}

// Root returns the absolute root directory
func (s *Store) Root() string {
	return s.sanitizer.Root()
}

// MaxUploadBytes returns the configured payload bound
func (s *Store) MaxUploadBytes() int64 {
	return s.maxUpload
}

// Resolve resolves a raw client path under the configured policy
func (s *Store) Resolve(raw string) (RelativePath, error) {
	rel, contained := s.sanitizer.Resolve(raw)
	if contained {
		return rel, nil
	}
	if s.policy == PolicyReject {
		return "", newError(KindBadRequest, CodeBadRequest, "path escapes the root directory", RelativePath(raw))
	}
	s.logger.Warn("Path escaped root, using basename",
		zap.String("raw", raw),
		zap.String("resolved", rel.String()),
	)
	return rel, nil
}

// abs returns the OS path for rel
func (s *Store) abs(rel RelativePath) string {
	return s.sanitizer.Abs(rel)
}

// nodeType is the result of an exists/type check
type nodeType int

const (
	nodeMissing nodeType = iota
	nodeFile
	nodeDirectory
)

// inspect stats rel and classifies it. Errors other than not-exist are
// returned classified.
func (s *Store) inspect(rel RelativePath) (nodeType, fs.FileInfo, error) {
	info, err := os.Stat(s.abs(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nodeMissing, nil, nil
		}
		return nodeMissing, nil, classify("stat", rel, err)
	}
	if info.IsDir() {
		return nodeDirectory, info, nil
	}
	return nodeFile, info, nil
}

// requireFile ensures rel exists and is not a directory
func (s *Store) requireFile(rel RelativePath) (fs.FileInfo, error) {
	kind, info, err := s.inspect(rel)
	if err != nil {
		return nil, err
	}
	switch kind {
	case nodeMissing:
		return nil, newError(KindNotFound, CodeNotFound, "file not found", rel)
	case nodeDirectory:
		return nil, newError(KindBadType, CodeNotAFile, "path is a directory, use the directories endpoint instead", rel)
	}
	return info, nil
}

// requireDirectory ensures rel exists and is a directory
func (s *Store) requireDirectory(rel RelativePath) (fs.FileInfo, error) {
	kind, info, err := s.inspect(rel)
	if err != nil {
		return nil, err
	}
	switch kind {
	case nodeMissing:
		return nil, newError(KindNotFound, CodeNotFound, "directory not found", rel)
	case nodeFile:
		return nil, newError(KindBadType, CodeNotADirectory, "path is a file, use the files endpoint instead", rel)
	}
	return info, nil
}

// requireParent ensures the parent of rel exists and is a directory
func (s *Store) requireParent(rel RelativePath) error {
	parent := parentOf(rel)
	kind, _, err := s.inspect(parent)
	if err != nil {
		return err
	}
	switch kind {
	case nodeMissing:
		return newError(KindParentNotFound, CodeParentNotFound, "parent directory not found", parent)
	case nodeFile:
		return newError(KindBadType, CodeParentNotDirectory, "parent path is not a directory", parent)
	}
	return nil
}

// requireAddressable rejects the root for operations on a child path
func requireAddressable(rel RelativePath) error {
	if rel.IsRoot() {
		return newError(KindBadRequest, CodeBadRequest, "the root directory is not addressable here", rel)
	}
	return nil
}

// requireWritable rejects targets a client may not create: the root and
// names in the upload temp namespace, which listings hide
func requireWritable(rel RelativePath) error {
	if err := requireAddressable(rel); err != nil {
		return err
	}
	if strings.HasPrefix(baseName(rel), tempPrefix) {
		return newError(KindBadRequest, CodeBadRequest, "names starting with "+tempPrefix+" are reserved", rel)
	}
	return nil
}

// observe records the outcome of an operation and logs internal failures
func (s *Store) observe(op string, rel RelativePath, start time.Time, err error) {
	outcome := "ok"
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		outcome = "cancelled"
	} else if err != nil {
		kind := KindOf(err)
		outcome = kind.String()
		if kind == KindInternal {
			s.logger.Error("Filesystem operation failed",
				zap.String("op", op),
				zap.String("path", rel.String()),
				zap.Error(err),
			)
		}
	}
	if s.recorder != nil {
		s.recorder.RecordFSOperation(op, outcome, time.Since(start))
	}
}

func (s *Store) countBytes(direction string, n int64) {
	if s.recorder != nil && n > 0 {
		s.recorder.RecordFSBytes(direction, n)
	}
}

// contextReader stops a copy once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
