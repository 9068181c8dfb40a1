package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates "<prefix>-0", "<prefix>-1", ... without end.
//
// Unlike engine.FixedGenerator it never runs out, so scenarios may reload
// any number of times and still produce byte-identical traces.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequentialIDs creates a generator. An empty prefix means "gen".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "gen"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate implements engine.IDGenerator.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s-%d", g.prefix, g.next)
	g.next++
	return id
}
