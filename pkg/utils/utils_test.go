package utils_test

import (
	"testing"

	graphql "github.com/hasura/go-graphql-client"
	"github.com/stretchr/testify/assert"

	"github.com/smegmarip/stash-emotion-plugin/pkg/utils"
)

func TestDeduplicateIDs(t *testing.T) {
	tests := []struct {
		name     string
		input    []graphql.ID
		expected []graphql.ID
	}{
		{"no duplicates", []graphql.ID{"1", "2", "3"}, []graphql.ID{"1", "2", "3"}},
		{"keeps first occurrence order", []graphql.ID{"3", "1", "3", "2", "1"}, []graphql.ID{"3", "1", "2"}},
		{"empty", nil, []graphql.ID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, utils.DeduplicateIDs(tt.input))
		})
	}
}

func TestExcludeIDs(t *testing.T) {
	tests := []struct {
		name     string
		ids      []graphql.ID
		drop     []graphql.ID
		expected []graphql.ID
	}{
		{"drops members", []graphql.ID{"1", "2", "3", "4"}, []graphql.ID{"2", "4"}, []graphql.ID{"1", "3"}},
		{"nothing to drop", []graphql.ID{"1", "2"}, nil, []graphql.ID{"1", "2"}},
		{"drops everything", []graphql.ID{"1", "1"}, []graphql.ID{"1"}, []graphql.ID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, utils.ExcludeIDs(tt.ids, tt.drop))
		})
	}
}
