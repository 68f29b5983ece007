package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

// Entry is one item of a directory listing.
type Entry struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	IsDirectory bool      `json:"isDirectory"`
	Size        int64     `json:"size"`
	Modified    time.Time `json:"modified"`
	// Error is set when the server could list the entry but not inspect it
	Error string `json:"error,omitempty"`
}

// Metadata describes a node with its sniffed content classification.
type Metadata struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	IsDirectory  bool      `json:"isDirectory"`
	Size         int64     `json:"size"`
	Modified     time.Time `json:"modified"`
	MediaType    string    `json:"mimeType,omitempty"`
	DetectedType string    `json:"detectedType,omitempty"`
	Charset      string    `json:"charset,omitempty"`
}

// SearchResult holds the matches of a glob search.
type SearchResult struct {
	Base      string  `json:"base"`
	Pattern   string  `json:"pattern"`
	Matches   []Entry `json:"matches"`
	Truncated bool    `json:"truncated"`
}

// Health is the server health document.
type Health struct {
	Status string `json:"status"`
	Root   string `json:"root"`
	Auth   struct {
		Configured bool `json:"configured"`
	} `json:"auth"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("fsgate: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("fsgate: %d: %s", e.Status, e.Message)
}

func decodeAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{Status: status}
	var body errorBody
	if err := sonic.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
		return apiErr
	}
	apiErr.Message = http.StatusText(status)
	return apiErr
}

// CodeOf returns the machine readable code of an API error, or "".
func CodeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the server.
func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
