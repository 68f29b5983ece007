package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const tempPrefix = ".fsgate-upload-"

// Open opens a file for streaming. The caller must close the result.
func (s *Store) Open(ctx context.Context, rel RelativePath) (content *FileContent, err error) {
	start := time.Now()
	defer func() { s.observe("read", rel, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.requireFile(rel); err != nil {
		return nil, err
	}

	f, err := os.Open(s.abs(rel))
	if err != nil {
		return nil, classify("open", rel, err)
	}
	// The node may have changed between the check and the open
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, classify("stat", rel, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, newError(KindBadType, CodeNotAFile, "path is a directory, use the directories endpoint instead", rel)
	}

	return &FileContent{
		ReadCloser: &countingReadCloser{ReadCloser: f, done: func(n int64) { s.countBytes("out", n) }},
		Name:       info.Name(),
		Size:       info.Size(),
		MediaType:  MediaTypeOf(string(rel)),
		Modified:   info.ModTime(),
	}, nil
}

// CreateFile writes src to rel, replacing an existing file. The parent must
// already exist. size is the declared payload length, or -1 when unknown.
func (s *Store) CreateFile(ctx context.Context, rel RelativePath, src io.Reader, size int64) (err error) {
	start := time.Now()
	defer func() { s.observe("create_file", rel, start, err) }()

	if err := requireWritable(rel); err != nil {
		return err
	}
	if err := s.requireParent(rel); err != nil {
		return err
	}
	kind, info, err := s.inspect(rel)
	if err != nil {
		return err
	}
	if kind == nodeDirectory {
		return newError(KindBadType, CodeNotAFile, "path is a directory", rel)
	}
	if err := s.checkSize(rel, size); err != nil {
		return err
	}
	return s.replace(ctx, rel, src, info)
}

// UpdateFile overwrites the whole content of an existing file
func (s *Store) UpdateFile(ctx context.Context, rel RelativePath, src io.Reader, size int64) (err error) {
	start := time.Now()
	defer func() { s.observe("update_file", rel, start, err) }()

	if err := requireWritable(rel); err != nil {
		return err
	}
	info, err := s.requireFile(rel)
	if err != nil {
		return err
	}
	if err := s.checkSize(rel, size); err != nil {
		return err
	}
	return s.replace(ctx, rel, src, info)
}

// DeleteFile removes a single file
func (s *Store) DeleteFile(ctx context.Context, rel RelativePath) (err error) {
	start := time.Now()
	defer func() { s.observe("delete_file", rel, start, err) }()

	if err := requireAddressable(rel); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.requireFile(rel); err != nil {
		return err
	}
	if err := os.Remove(s.abs(rel)); err != nil {
		return classify("delete", rel, err)
	}
	return nil
}

func (s *Store) checkSize(rel RelativePath, size int64) error {
	if size > s.maxUpload {
		return tooLarge(rel, s.maxUpload)
	}
	return nil
}

func tooLarge(rel RelativePath, limit int64) *Error {
	e := newError(KindPayloadTooLarge, CodePayloadTooLarge, "payload exceeds the upload limit", rel)
	e.Err = errors.New("limit is " + formatBytes(limit))
	return e
}

// replace streams src into a temporary sibling of rel and renames it into
// place. A failed or cancelled write leaves the previous content intact.
// existing is the current file, if any, whose permissions carry over.
func (s *Store) replace(ctx context.Context, rel RelativePath, src io.Reader, existing fs.FileInfo) error {
	target := s.abs(rel)
	tmpPath := filepath.Join(filepath.Dir(target), tempPrefix+uuid.NewString())

	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return classify("create", rel, err)
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	limited := io.LimitReader(contextReader{ctx: ctx, r: src}, s.maxUpload+1)
	n, err := io.Copy(tmp, limited)
	if err != nil {
		cleanup()
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return tooLarge(rel, s.maxUpload)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classify("write", rel, err)
	}
	if n > s.maxUpload {
		cleanup()
		return tooLarge(rel, s.maxUpload)
	}
	if existing != nil {
		if err := tmp.Chmod(existing.Mode().Perm()); err != nil {
			cleanup()
			return classify("chmod", rel, err)
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return classify("write", rel, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return classify("write", rel, err)
	}

	s.countBytes("in", n)
	return nil
}

// countingReadCloser reports the bytes read once closed
type countingReadCloser struct {
	io.ReadCloser
	n    int64
	done func(int64)
}

func (c *countingReadCloser) Read(p []byte) (int, error) {
	n, err := c.ReadCloser.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReadCloser) Close() error {
	err := c.ReadCloser.Close()
	if c.done != nil {
		c.done(c.n)
		c.done = nil
	}
	return err
}
