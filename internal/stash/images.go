package stash

import (
	"context"
	"fmt"

	graphql "github.com/hasura/go-graphql-client"
	"github.com/stashapp/stash/pkg/plugin/common/log"

	"github.com/smegmarip/stash-emotion-plugin/pkg/utils"
)

// ============================================================================
// Image Data Operations (Repository Layer)
// ============================================================================

// FindImages finds images with optional filtering
func FindImages(client *graphql.Client, filter *ImageFilterType, page int, perPage int) ([]Image, int, error) {
	var query struct {
		FindImages struct {
			Count  int
			Images []Image
		} `graphql:"findImages(filter: $filter, image_filter: $image_filter)"`
	}

	if filter == nil {
		filter = &ImageFilterType{}
	}
	sort := "id"
	variables := map[string]interface{}{
		"filter": &FindFilterType{
			Page:    &page,
			PerPage: &perPage,
			Sort:    &sort,
		},
		"image_filter": filter,
	}

	err := client.Query(context.Background(), &query, variables)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query images: %w", err)
	}

	log.Debugf("Found %d images (page %d, per_page %d)", len(query.FindImages.Images), page, perPage)
	return query.FindImages.Images, query.FindImages.Count, nil
}

// TagFilter matches images that carry (or, with exclude, lack) any of tagIDs
func TagFilter(tagIDs []graphql.ID, exclude bool) *ImageFilterType {
	value := make([]string, len(tagIDs))
	for i, id := range tagIDs {
		value[i] = string(id)
	}

	criterion := &HierarchicalMultiCriterionInput{
		Value:    value,
		Modifier: CriterionModifierIncludes,
	}
	if exclude {
		criterion.Modifier = CriterionModifierExcludes
	}
	return &ImageFilterType{Tags: criterion}
}

// GetImage retrieves a single image by ID
func GetImage(client *graphql.Client, imageID graphql.ID) (*Image, error) {
	var query struct {
		FindImage *Image `graphql:"findImage(id: $id)"`
	}

	variables := map[string]interface{}{
		"id": imageID,
	}

	err := client.Query(context.Background(), &query, variables)
	if err != nil {
		return nil, fmt.Errorf("failed to query image: %w", err)
	}
	if query.FindImage == nil {
		return nil, fmt.Errorf("image %s not found", imageID)
	}

	return query.FindImage, nil
}

// UpdateImageTags replaces the tag list of an image
func UpdateImageTags(client *graphql.Client, imageID graphql.ID, tagIDs []graphql.ID) error {
	var mutation struct {
		ImageUpdate ImageUpdate `graphql:"imageUpdate(input: $input)"`
	}

	ids := make([]string, len(tagIDs))
	for i, id := range tagIDs {
		ids[i] = string(id)
	}

	variables := map[string]interface{}{
		"input": ImageUpdateInput{
			ID:     string(imageID),
			TagIds: ids,
		},
	}

	err := client.Mutate(context.Background(), &mutation, variables)
	if err != nil {
		return fmt.Errorf("failed to update image: %w", err)
	}

	log.Debugf("Updated image %s", imageID)
	return nil
}

// AddTagsToImage merges tagIDs into the image's existing tags. Images that
// already carry every tag are left untouched.
func AddTagsToImage(client *graphql.Client, image *Image, tagIDs ...graphql.ID) error {
	existing := image.TagIDs()
	merged := utils.DeduplicateIDs(append(existing, tagIDs...))
	if len(merged) == len(existing) {
		log.Tracef("Image %s already has tags %v", image.ID, tagIDs)
		return nil
	}

	if err := UpdateImageTags(client, image.ID, merged); err != nil {
		return fmt.Errorf("failed to add tags to image: %w", err)
	}

	log.Tracef("Added tags %v to image %s", tagIDs, image.ID)
	return nil
}

// RemoveTagsFromImage drops any of tagIDs from the image's tags
func RemoveTagsFromImage(client *graphql.Client, image *Image, tagIDs ...graphql.ID) error {
	remaining := utils.ExcludeIDs(image.TagIDs(), tagIDs)
	if len(remaining) == len(image.Tags) {
		return nil
	}

	if err := UpdateImageTags(client, image.ID, remaining); err != nil {
		return fmt.Errorf("failed to remove tags from image: %w", err)
	}

	log.Tracef("Removed tags %v from image %s", tagIDs, image.ID)
	return nil
}
