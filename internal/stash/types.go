package stash

import (
	graphql "github.com/hasura/go-graphql-client"
	"github.com/stashapp/stash/pkg/models"
)

// ImagePaths represents the paths for an image
type ImagePaths struct {
	Image string `graphql:"image"`
}

// ImageFile represents a file associated with an image
type ImageFile struct {
	Path string `graphql:"path"`
}

// Image represents a Stash image
type Image struct {
	ID    graphql.ID  `graphql:"id"`
	Title string      `graphql:"title"`
	Paths ImagePaths  `graphql:"paths"`
	Files []ImageFile `graphql:"files"`
	Tags  []Tag       `graphql:"tags"`
}

// TagIDs returns the IDs of the image's tags
func (i Image) TagIDs() []graphql.ID {
	ids := make([]graphql.ID, len(i.Tags))
	for n, tag := range i.Tags {
		ids[n] = tag.ID
	}
	return ids
}

// Tag represents a Stash tag
type Tag struct {
	ID   graphql.ID `graphql:"id"`
	Name string     `graphql:"name"`
}

// ============================================================================
// Re-exported types from github.com/stashapp/stash/pkg/models
// ============================================================================

// Criterion Input Types
type (
	StringCriterionInput            = models.StringCriterionInput
	HierarchicalMultiCriterionInput = models.HierarchicalMultiCriterionInput
)

// Filter Types
type (
	ImageFilterType = models.ImageFilterType
	TagFilterType   = models.TagFilterType
	FindFilterType  = models.FindFilterType
)

// Input Types
type (
	ImageUpdateInput = models.ImageUpdateInput
)

const (
	CriterionModifierIncludes     = models.CriterionModifierIncludes
	CriterionModifierExcludes     = models.CriterionModifierExcludes
	CriterionModifierEquals       = models.CriterionModifierEquals
	CriterionModifierMatchesRegex = models.CriterionModifierMatchesRegex
)

// TagCreateInput represents input for creating a tag
type TagCreateInput struct {
	Name        string `graphql:"name" json:"name"`
	Description string `graphql:"description" json:"description,omitempty"`
}

// ImageUpdate represents the result of updating an image
type ImageUpdate struct {
	ID graphql.ID `graphql:"id"`
}
