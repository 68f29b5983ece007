// Package id generates request identifiers.
//
// Identifiers are ULIDs: lexicographically sortable by creation time, so
// access log lines and X-Request-ID values order the same way. Generated
// IDs carry a "req_" prefix to tell them apart from IDs supplied by
// clients.
package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestID identifies an API request
type RequestID string

// RequestPrefix marks server-generated request IDs
const RequestPrefix = "req"

// maxClientIDLength bounds client-supplied request IDs
const maxClientIDLength = 128

// Generator generates ULIDs
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator with monotonic cryptographic entropy
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with custom entropy source.
// Useful for testing with deterministic entropy.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// NewRequestID generates a prefixed request ID
func (g *Generator) NewRequestID() RequestID {
	return RequestID(RequestPrefix + "_" + g.Generate().String())
}

// NewRequestID generates a request ID from the default generator
func NewRequestID() RequestID {
	return Default().NewRequestID()
}

func (id RequestID) String() string { return string(id) }

// AcceptClientID reports whether a client-supplied request ID may be
// echoed back: printable ASCII without spaces, bounded in length.
func AcceptClientID(raw string) bool {
	if raw == "" || len(raw) > maxClientIDLength {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] <= ' ' || raw[i] > '~' {
			return false
		}
	}
	return true
}
