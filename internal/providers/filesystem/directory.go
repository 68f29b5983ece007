package filesystem

import (
	"context"
	"io/fs"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// statFailedMessage marks a listing entry whose metadata could not be read
const statFailedMessage = "Failed to read file stats"

// List enumerates the immediate children of a directory. A child that
// cannot be inspected is still listed, flagged with an item error.
func (s *Store) List(ctx context.Context, rel RelativePath) (entries []ListEntry, err error) {
	start := time.Now()
	defer func() { s.observe("list", rel, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.requireDirectory(rel); err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(s.abs(rel))
	if err != nil {
		return nil, classify("list", rel, err)
	}

	names := make([]string, 0, len(dirents))
	for _, d := range dirents {
		if strings.HasPrefix(d.Name(), tempPrefix) {
			continue
		}
		names = append(names, d.Name())
	}

	entries = make([]ListEntry, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = s.listEntry(join(rel, name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// listEntry stats one child, following symlinks
func (s *Store) listEntry(child RelativePath) ListEntry {
	info, err := os.Stat(s.abs(child))
	if err != nil {
		s.logger.Sugar().Warnw("Failed to stat listing entry", "path", child.String(), "error", err)
		return ListEntry{
			NodeDescriptor: NodeDescriptor{Name: baseName(child), Path: child.String()},
			Error:          statFailedMessage,
		}
	}
	return ListEntry{NodeDescriptor: describe(child, info)}
}

// CreateDirectory creates a single directory. Missing parents are not
// created and an existing node of either type is an error.
func (s *Store) CreateDirectory(ctx context.Context, rel RelativePath) (err error) {
	start := time.Now()
	defer func() { s.observe("create_directory", rel, start, err) }()

	if err := requireWritable(rel); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.requireParent(rel); err != nil {
		return err
	}
	if err := os.Mkdir(s.abs(rel), 0o755); err != nil {
		if IsKind(classify("mkdir", rel, err), KindAlreadyExists) {
			return newError(KindAlreadyExists, CodeAlreadyExists, "directory already exists", rel)
		}
		return classify("mkdir", rel, err)
	}
	return nil
}

// DeleteDirectory removes a directory only when it is empty
func (s *Store) DeleteDirectory(ctx context.Context, rel RelativePath) (err error) {
	start := time.Now()
	defer func() { s.observe("delete_directory", rel, start, err) }()

	if err := requireAddressable(rel); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.requireDirectory(rel); err != nil {
		return err
	}

	// rmdir never falls back to unlinking, unlike os.Remove
	full := s.abs(rel)
	if err := syscall.Rmdir(full); err != nil {
		pathErr := &fs.PathError{Op: "rmdir", Path: full, Err: err}
		if IsKind(classify("rmdir", rel, pathErr), KindNotEmpty) {
			return newError(KindNotEmpty, CodeNotEmpty, "directory is not empty", rel)
		}
		return classify("rmdir", rel, pathErr)
	}
	return nil
}
