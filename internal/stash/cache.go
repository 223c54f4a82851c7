package stash

import (
	"strings"
	"sync"

	graphql "github.com/hasura/go-graphql-client"
)

// TagCache provides thread-safe cached tag lookups by name. Stash treats tag
// names case-insensitively, so keys are folded to lower case.
type TagCache struct {
	tags map[string]graphql.ID
	mu   sync.RWMutex
}

// NewTagCache creates a new tag cache
func NewTagCache() *TagCache {
	return &TagCache{
		tags: make(map[string]graphql.ID),
	}
}

// Get retrieves a cached tag ID by name
func (tc *TagCache) Get(name string) (graphql.ID, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	id, ok := tc.tags[strings.ToLower(name)]
	return id, ok
}

// Set stores a tag ID in the cache
func (tc *TagCache) Set(name string, id graphql.ID) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.tags[strings.ToLower(name)] = id
}

// Len returns the number of cached tags
func (tc *TagCache) Len() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.tags)
}
