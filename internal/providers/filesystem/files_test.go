package filesystem

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedOp struct {
	op      string
	outcome string
}

type fakeRecorder struct {
	mu    sync.Mutex
	ops   []recordedOp
	bytes map[string]int64
}

func (f *fakeRecorder) RecordFSOperation(op, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, recordedOp{op: op, outcome: outcome})
}

func (f *fakeRecorder) RecordFSBytes(direction string, n int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bytes == nil {
		f.bytes = make(map[string]int64)
	}
	f.bytes[direction] += n
}

func newTestStore(t *testing.T, opts ...func(*Config)) *Store {
	t.Helper()
	cfg := Config{Root: t.TempDir()}
	for _, opt := range opts {
		opt(&cfg)
	}
	store, err := NewStore(cfg)
	require.NoError(t, err)
	return store
}

func writeFixture(t *testing.T, store *Store, rel, content string) {
	t.Helper()
	full := filepath.Join(store.Root(), filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func readAll(t *testing.T, store *Store, rel RelativePath) []byte {
	t.Helper()
	content, err := store.Open(context.Background(), rel)
	require.NoError(t, err)
	defer content.Close()
	data, err := io.ReadAll(content)
	require.NoError(t, err)
	return data
}

func TestNewStoreCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "data")
	store, err := NewStore(Config{Root: root})
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, root, store.Root())
	assert.Equal(t, DefaultMaxUploadBytes, store.MaxUploadBytes())
}

func TestNewStoreRejectsFileRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewStore(Config{Root: file})
	assert.Error(t, err)
}

func TestCreateAndReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payload := []byte{0x00, 0xff, 0x10, 'h', 'i', 0x00, 0x7f}
	require.NoError(t, store.CreateFile(ctx, "blob.bin", bytes.NewReader(payload), int64(len(payload))))

	content, err := store.Open(ctx, "blob.bin")
	require.NoError(t, err)
	defer content.Close()

	assert.Equal(t, int64(len(payload)), content.Size)
	assert.Equal(t, DefaultMediaType, content.MediaType)
	data, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestCreateFileOverwritesExisting(t *testing.T) {
	store := newTestStore(t)
	writeFixture(t, store, "notes.txt", "old content")

	require.NoError(t, store.CreateFile(context.Background(), "notes.txt", strings.NewReader("new"), 3))
	assert.Equal(t, "new", string(readAll(t, store, "notes.txt")))
}

func TestCreateFileFailures(t *testing.T) {
	store := newTestStore(t)
	writeFixture(t, store, "plain.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(store.Root(), "dir"), 0o755))

	tests := []struct {
		name string
		rel  RelativePath
		kind Kind
		code string
	}{
		{"missing parent", "nope/file.txt", KindParentNotFound, CodeParentNotFound},
		{"parent is a file", "plain.txt/file.txt", KindBadType, CodeParentNotDirectory},
		{"target is a directory", "dir", KindBadType, CodeNotAFile},
		{"root", "", KindBadRequest, CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.CreateFile(context.Background(), tt.rel, strings.NewReader("data"), 4)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))

			var fsErr *Error
			require.ErrorAs(t, err, &fsErr)
			assert.Equal(t, tt.code, fsErr.Code)
		})
	}
}

func TestCreateFileRejectsOversizedPayload(t *testing.T) {
	store := newTestStore(t, func(c *Config) { c.MaxUploadBytes = 8 })
	ctx := context.Background()

	t.Run("declared size", func(t *testing.T) {
		err := store.CreateFile(ctx, "big.txt", strings.NewReader("0123456789"), 10)
		assert.True(t, IsKind(err, KindPayloadTooLarge))
		_, statErr := os.Stat(filepath.Join(store.Root(), "big.txt"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("undeclared size", func(t *testing.T) {
		err := store.CreateFile(ctx, "big.txt", strings.NewReader("0123456789"), -1)
		assert.True(t, IsKind(err, KindPayloadTooLarge))
		_, statErr := os.Stat(filepath.Join(store.Root(), "big.txt"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("exactly at limit", func(t *testing.T) {
		require.NoError(t, store.CreateFile(ctx, "fits.txt", strings.NewReader("01234567"), -1))
		assert.Equal(t, "01234567", string(readAll(t, store, "fits.txt")))
	})

	dirents, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	for _, d := range dirents {
		assert.False(t, strings.HasPrefix(d.Name(), tempPrefix), "temp file left behind: %s", d.Name())
	}
}

func TestCreateFileCancelledKeepsPreviousContent(t *testing.T) {
	store := newTestStore(t)
	writeFixture(t, store, "keep.txt", "original")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.CreateFile(ctx, "keep.txt", strings.NewReader("replacement"), -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "original", string(readAll(t, store, "keep.txt")))
}

func TestUpdateFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	writeFixture(t, store, "notes.txt", "hi")
	require.NoError(t, os.Mkdir(filepath.Join(store.Root(), "dir"), 0o755))

	require.NoError(t, store.UpdateFile(ctx, "notes.txt", strings.NewReader("bye"), 3))
	assert.Equal(t, "bye", string(readAll(t, store, "notes.txt")))

	err := store.UpdateFile(ctx, "missing.txt", strings.NewReader("x"), 1)
	assert.True(t, IsKind(err, KindNotFound))
	_, statErr := os.Stat(filepath.Join(store.Root(), "missing.txt"))
	assert.True(t, os.IsNotExist(statErr), "update must not create files")

	err = store.UpdateFile(ctx, "dir", strings.NewReader("x"), 1)
	assert.True(t, IsKind(err, KindBadType))
}

func TestOpenFailures(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.Mkdir(filepath.Join(store.Root(), "dir"), 0o755))

	_, err := store.Open(context.Background(), "missing.txt")
	assert.True(t, IsKind(err, KindNotFound))

	_, err = store.Open(context.Background(), "dir")
	assert.True(t, IsKind(err, KindBadType))
}

func TestOpenMediaTypes(t *testing.T) {
	store := newTestStore(t)
	tests := map[string]string{
		"notes.txt":   "text/plain",
		"page.HTML":   "text/html",
		"photo.jpeg":  "image/jpeg",
		"data.json":   "application/json",
		"archive.zip": DefaultMediaType,
		"no_ext":      DefaultMediaType,
	}

	for name, want := range tests {
		writeFixture(t, store, name, "x")
		content, err := store.Open(context.Background(), RelativePath(name))
		require.NoError(t, err)
		assert.Equal(t, want, content.MediaType, name)
		content.Close()
	}
}

func TestOverwriteKeepsPermissions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	full := filepath.Join(store.Root(), "secret.txt")
	require.NoError(t, os.WriteFile(full, []byte("private"), 0o600))
	require.NoError(t, os.Chmod(full, 0o600))

	tests := []struct {
		name  string
		write func() error
	}{
		{"update", func() error { return store.UpdateFile(ctx, "secret.txt", strings.NewReader("v2"), 2) }},
		{"create over existing", func() error { return store.CreateFile(ctx, "secret.txt", strings.NewReader("v3"), 2) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.write())
			info, err := os.Stat(full)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		})
	}
	assert.Equal(t, "v3", string(readAll(t, store, "secret.txt")))
}

func TestReservedUploadNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, os.Mkdir(filepath.Join(store.Root(), "d"), 0o755))

	err := store.CreateFile(ctx, RelativePath("d/"+tempPrefix+"notes"), strings.NewReader("x"), 1)
	assert.True(t, IsKind(err, KindBadRequest))
	err = store.CreateDirectory(ctx, RelativePath(tempPrefix+"dir"))
	assert.True(t, IsKind(err, KindBadRequest))

	entries, err := store.List(ctx, "d")
	require.NoError(t, err)
	assert.Empty(t, entries)
	require.NoError(t, store.DeleteDirectory(ctx, "d"))

	// Only a leading prefix is reserved
	require.NoError(t, store.CreateFile(ctx, RelativePath("notes"+tempPrefix), strings.NewReader("x"), 1))
}

func TestDeleteFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	writeFixture(t, store, "a/b.txt", "x")

	err := store.DeleteFile(ctx, "a")
	assert.True(t, IsKind(err, KindBadType))

	require.NoError(t, store.DeleteFile(ctx, "a/b.txt"))
	_, err = os.Stat(filepath.Join(store.Root(), "a", "b.txt"))
	assert.True(t, os.IsNotExist(err))

	err = store.DeleteFile(ctx, "a/b.txt")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestOperationsAreRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	store := newTestStore(t, func(c *Config) { c.Recorder = rec })
	ctx := context.Background()

	require.NoError(t, store.CreateFile(ctx, "f.txt", strings.NewReader("hello"), 5))
	assert.Equal(t, "hello", string(readAll(t, store, "f.txt")))
	_, err := store.Open(ctx, "missing")
	require.Error(t, err)

	assert.Contains(t, rec.ops, recordedOp{op: "create_file", outcome: "ok"})
	assert.Contains(t, rec.ops, recordedOp{op: "read", outcome: "ok"})
	assert.Contains(t, rec.ops, recordedOp{op: "read", outcome: "not_found"})
	assert.Equal(t, int64(5), rec.bytes["in"])
	assert.Equal(t, int64(5), rec.bytes["out"])
}

func TestDecodeDataURI(t *testing.T) {
	data, err := DecodeDataURI(DataURIPrefix + "AAEC/w==")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x02, 0xff}, data)

	data, err = DecodeDataURI(DataURIPrefix + "aGk")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)

	_, err = DecodeDataURI("data:text/plain;base64,aGk=")
	assert.True(t, IsKind(err, KindBadRequest))

	_, err = DecodeDataURI(DataURIPrefix + "not base64!!")
	assert.True(t, IsKind(err, KindBadRequest))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("op", "x", nil))

	_, err := os.Stat(filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, KindNotFound, KindOf(classify("stat", "missing", err)))

	err = classify("op", "x", io.ErrUnexpectedEOF)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	already := newError(KindNotEmpty, CodeNotEmpty, "not empty", "x")
	assert.Same(t, already, classify("op", "x", already))
}
