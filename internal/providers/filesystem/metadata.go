package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

// DefaultMediaType is served for extensions missing from the table
const DefaultMediaType = "application/octet-stream"

// mediaTypes is the fixed extension table used for file reads
var mediaTypes = map[string]string{
	".txt":  "text/plain",
	".html": "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

// charsetSampleSize bounds how much of a text file feeds charset detection
const charsetSampleSize = 4096

// MediaTypeOf classifies a path by its extension
func MediaTypeOf(name string) string {
	if mt, ok := mediaTypes[strings.ToLower(path.Ext(name))]; ok {
		return mt
	}
	return DefaultMediaType
}

// Stat describes a single node of either type
func (s *Store) Stat(ctx context.Context, rel RelativePath) (desc NodeDescriptor, err error) {
	start := time.Now()
	defer func() { s.observe("stat", rel, start, err) }()

	if err := ctx.Err(); err != nil {
		return NodeDescriptor{}, err
	}
	kind, info, err := s.inspect(rel)
	if err != nil {
		return NodeDescriptor{}, err
	}
	if kind == nodeMissing {
		return NodeDescriptor{}, newError(KindNotFound, CodeNotFound, "path not found", rel)
	}
	return describe(rel, info), nil
}

// Metadata describes a node and, for files, classifies its content by
// extension, by sniffing and by charset
func (s *Store) Metadata(ctx context.Context, rel RelativePath) (*Metadata, error) {
	desc, err := s.Stat(ctx, rel)
	if err != nil {
		return nil, err
	}
	meta := &Metadata{NodeDescriptor: desc}
	if desc.IsDirectory {
		return meta, nil
	}

	meta.MediaType = MediaTypeOf(string(rel))
	full := s.abs(rel)

	mtype, err := mimetype.DetectFile(full)
	if err != nil {
		return nil, classify("detect", rel, err)
	}
	meta.DetectedType = mtype.String()

	if strings.HasPrefix(mtype.String(), "text/") && desc.Size > 0 {
		charset, err := detectCharset(full)
		if err != nil {
			return nil, classify("detect", rel, err)
		}
		meta.Charset = charset
	}
	return meta, nil
}

func detectCharset(full string) (string, error) {
	f, err := os.Open(full)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sample := make([]byte, charsetSampleSize)
	n, err := io.ReadFull(f, sample)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	result, err := chardet.NewTextDetector().DetectBest(sample[:n])
	if err != nil {
		// No confident guess is not a failure
		return "", nil
	}
	return result.Charset, nil
}

func describe(rel RelativePath, info os.FileInfo) NodeDescriptor {
	return NodeDescriptor{
		Name:        baseName(rel),
		Path:        rel.String(),
		IsDirectory: info.IsDir(),
		Size:        info.Size(),
		Modified:    info.ModTime().UTC(),
	}
}

// formatBytes converts bytes to human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
