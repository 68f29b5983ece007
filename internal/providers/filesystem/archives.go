package filesystem

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ArchiveFormat selects the compression of a directory archive
type ArchiveFormat string

const (
	ArchiveTarGzip ArchiveFormat = "tar.gz"
	ArchiveTarZstd ArchiveFormat = "tar.zst"
)

// ParseArchiveFormat validates a format name, defaulting to tar.gz
func ParseArchiveFormat(name string) (ArchiveFormat, error) {
	switch f := ArchiveFormat(strings.ToLower(name)); f {
	case "", ArchiveTarGzip, "tgz":
		return ArchiveTarGzip, nil
	case ArchiveTarZstd, "tzst":
		return ArchiveTarZstd, nil
	default:
		return "", newError(KindBadRequest, CodeBadRequest, fmt.Sprintf("unsupported archive format %q", name), "")
	}
}

// ContentType returns the media type of the compressed stream
func (f ArchiveFormat) ContentType() string {
	if f == ArchiveTarZstd {
		return "application/zstd"
	}
	return "application/gzip"
}

// ArchiveName returns the download file name for a directory
func (s *Store) ArchiveName(rel RelativePath, format ArchiveFormat) string {
	name := baseName(rel)
	if rel.IsRoot() {
		name = filepath.Base(s.Root())
	}
	return name + "." + string(format)
}

// CheckArchivable validates that rel can be archived before any output is
// written
func (s *Store) CheckArchivable(rel RelativePath) error {
	_, err := s.requireDirectory(rel)
	return err
}

// WriteArchive streams a compressed tar of the directory tree at rel into
// w. Only regular files and directories are included.
func (s *Store) WriteArchive(ctx context.Context, rel RelativePath, format ArchiveFormat, w io.Writer) (err error) {
	start := time.Now()
	defer func() { s.observe("archive", rel, start, err) }()

	if _, err := s.requireDirectory(rel); err != nil {
		return err
	}

	var compressor io.WriteCloser
	switch format {
	case ArchiveTarZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return classify("archive", rel, err)
		}
		compressor = enc
	default:
		compressor = gzip.NewWriter(w)
	}

	tw := tar.NewWriter(compressor)
	prefix := strings.TrimSuffix(s.ArchiveName(rel, format), "."+string(format))
	root := s.abs(rel)

	var (
		mu      sync.Mutex
		written int64
	)
	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return nil
		}
		if !d.Type().IsRegular() && !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}

		relPath, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		n, err := addToArchive(tw, path.Join(prefix, filepath.ToSlash(relPath)), p, info)
		written += n
		return err
	})

	closeErr := tw.Close()
	if err := compressor.Close(); closeErr == nil {
		closeErr = err
	}
	s.countBytes("out", written)

	if walkErr != nil {
		return classify("archive", rel, walkErr)
	}
	if closeErr != nil {
		return classify("archive", rel, closeErr)
	}
	return nil
}

func addToArchive(tw *tar.Writer, name, full string, info os.FileInfo) (int64, error) {
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return 0, err
	}
	header.Name = name
	if info.IsDir() {
		header.Name += "/"
		return 0, tw.WriteHeader(header)
	}

	f, err := os.Open(full)
	if err != nil {
		// Vanished since the walk saw it
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	if err := tw.WriteHeader(header); err != nil {
		return 0, err
	}
	// Copy at most the size recorded in the header; a growing file would
	// otherwise corrupt the stream
	return io.CopyN(tw, f, header.Size)
}
