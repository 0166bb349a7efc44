package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator yields deterministic sequential identifiers so tests can assert
// on exact IDs instead of matching UUIDs.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   uint64
}

// NewIDGenerator constructs a generator whose identifiers carry the given
// prefix. An empty prefix becomes "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence, starting at prefix-1.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}

// NextFunc adapts the generator to the func() string shape services expect. A
// nil generator yields empty identifiers.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Reset rewinds the sequence so the next identifier is prefix-1 again.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	g.next = 0
	g.mu.Unlock()
}
