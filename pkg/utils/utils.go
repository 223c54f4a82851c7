package utils

import (
	graphql "github.com/hasura/go-graphql-client"
)

// ============================================================================
// Pure Utility Functions
// ============================================================================
//
// This file contains only domain-agnostic utility functions that can be
// used across any part of the application.
// ============================================================================

// DeduplicateIDs removes duplicate IDs from a slice, keeping first occurrences in order
func DeduplicateIDs(ids []graphql.ID) []graphql.ID {
	seen := make(map[graphql.ID]bool)
	result := []graphql.ID{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}

// ExcludeIDs returns ids without any member of drop, preserving order
func ExcludeIDs(ids []graphql.ID, drop []graphql.ID) []graphql.ID {
	skip := make(map[graphql.ID]bool, len(drop))
	for _, id := range drop {
		skip[id] = true
	}
	result := []graphql.ID{}
	for _, id := range ids {
		if !skip[id] {
			result = append(result, id)
		}
	}
	return result
}
