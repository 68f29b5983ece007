package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Kind classifies an operation failure
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindParentNotFound
	KindBadType
	KindAlreadyExists
	KindNotEmpty
	KindBadRequest
	KindPayloadTooLarge
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindParentNotFound:
		return "parent_not_found"
	case KindBadType:
		return "bad_type"
	case KindAlreadyExists:
		return "already_exists"
	case KindNotEmpty:
		return "not_empty"
	case KindBadRequest:
		return "bad_request"
	case KindPayloadTooLarge:
		return "payload_too_large"
	default:
		return "internal"
	}
}

// Error codes reported to clients
const (
	CodeNotFound           = "NOT_FOUND"
	CodeParentNotFound     = "PARENT_NOT_FOUND"
	CodeParentNotDirectory = "PARENT_NOT_DIRECTORY"
	CodeNotAFile           = "NOT_A_FILE"
	CodeNotADirectory      = "NOT_A_DIRECTORY"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeNotEmpty           = "NOT_EMPTY"
	CodeBadRequest         = "BAD_REQUEST"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeInternal           = "INTERNAL"
)

// Error is the structured failure returned by every operation
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Path    RelativePath
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Message, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Path)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, code, message string, path RelativePath) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Path: path}
}

// KindOf returns the kind of err, KindInternal for unstructured errors
func KindOf(err error) Kind {
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return fsErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// classify maps an OS error onto the taxonomy. op names the failed action
// for the message. Unrecognized errors become KindInternal with the raw
// error attached.
func classify(op string, path RelativePath, err error) error {
	if err == nil {
		return nil
	}
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return err
	}

	e := &Error{Path: path, Err: err}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		e.Kind, e.Code, e.Message = KindNotFound, CodeNotFound, "not found"
	// ENOTEMPTY also matches fs.ErrExist, so it is checked first
	case errors.Is(err, syscall.ENOTEMPTY):
		e.Kind, e.Code, e.Message = KindNotEmpty, CodeNotEmpty, "directory is not empty"
	case errors.Is(err, fs.ErrExist):
		e.Kind, e.Code, e.Message = KindAlreadyExists, CodeAlreadyExists, "already exists"
	case errors.Is(err, syscall.ENOTDIR):
		e.Kind, e.Code, e.Message = KindBadType, CodeNotADirectory, "not a directory"
	case errors.Is(err, syscall.EISDIR):
		e.Kind, e.Code, e.Message = KindBadType, CodeNotAFile, "is a directory"
	case errors.Is(err, syscall.ENAMETOOLONG), errors.Is(err, syscall.EINVAL):
		e.Kind, e.Code, e.Message = KindBadRequest, CodeBadRequest, "invalid path"
	default:
		e.Kind, e.Code, e.Message = KindInternal, CodeInternal, op+" failed"
	}
	return e
}
