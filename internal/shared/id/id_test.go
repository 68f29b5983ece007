package id

import (
	"strings"
	"sync"
	"testing"
)

func TestNewRequestID(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.NewRequestID()
	id2 := gen.NewRequestID()

	if id1 == id2 {
		t.Error("Generated IDs should be unique")
	}
	if !strings.HasPrefix(id1.String(), RequestPrefix+"_") {
		t.Errorf("ID should start with '%s_', got: %s", RequestPrefix, id1)
	}
	if len(id1.String()) != len(RequestPrefix)+1+26 {
		t.Errorf("ULID part should be 26 characters, got: %s", id1)
	}
}

func TestAcceptClientID(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"abc-123", true},
		{"req_01HZZZZZZZZZZZZZZZZZZZZZZZ", true},
		{"", false},
		{"has space", false},
		{"line\nbreak", false},
		{"ünïcode", false},
		{strings.Repeat("x", maxClientIDLength), true},
		{strings.Repeat("x", maxClientIDLength+1), false},
	}

	for _, tt := range tests {
		if got := AcceptClientID(tt.raw); got != tt.want {
			t.Errorf("AcceptClientID(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 50
	const idsPerGoroutine = 100

	var wg sync.WaitGroup
	idChan := make(chan RequestID, goroutines*idsPerGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < idsPerGoroutine; j++ {
				idChan <- gen.NewRequestID()
			}
		}()
	}

	wg.Wait()
	close(idChan)

	seen := make(map[RequestID]bool)
	for id := range idChan {
		if seen[id] {
			t.Errorf("Duplicate ID found in concurrent generation: %s", id)
		}
		seen[id] = true
	}
	if len(seen) != goroutines*idsPerGoroutine {
		t.Errorf("Expected %d unique IDs, got %d", goroutines*idsPerGoroutine, len(seen))
	}
}

func TestLexicographicSorting(t *testing.T) {
	gen := NewGenerator()

	// Monotonic entropy keeps IDs ordered even within one millisecond
	ids := make([]RequestID, 50)
	for i := range ids {
		ids[i] = gen.NewRequestID()
	}

	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Errorf("IDs should be lexicographically sorted: %s should be > %s", ids[i], ids[i-1])
		}
	}
}

func TestDefaultGenerator(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() should return the same instance")
	}
}

func BenchmarkNewRequestID(b *testing.B) {
	gen := NewGenerator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gen.NewRequestID()
	}
}
