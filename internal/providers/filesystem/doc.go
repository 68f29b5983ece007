// Package filesystem implements the sandboxed file and directory operations
// served by fsgate.
//
// This package is organized into specialized modules:
//   - paths: Sanitization of untrusted path strings against the root
//   - files: File operations (open, create, update, delete)
//   - directory: Directory operations (list, create, delete)
//   - metadata: Stat, media types and content sniffing
//   - search: Glob search over the tree
//   - archives: Streaming tar archives of a directory (gzip, zstd)
//
// All operations:
//   - Take a RelativePath produced by Store.Resolve, never a raw client string
//   - Stay beneath the configured root directory
//   - Classify every OS failure into a Kind before returning
//   - Create and remove directories non-recursively
//
// Example Usage:
//
//	store, err := filesystem.NewStore(filesystem.Config{Root: "data"})
//	rel, err := store.Resolve(strings.TrimPrefix(c.Param("path"), "/"))
//	entries, err := store.List(ctx, rel)
package filesystem
