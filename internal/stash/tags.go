package stash

import (
	"context"
	"fmt"
	"regexp"

	graphql "github.com/hasura/go-graphql-client"
	"github.com/stashapp/stash/pkg/plugin/common/log"
)

// findTags queries tags matching a name criterion
func findTags(client *graphql.Client, criterion *StringCriterionInput) ([]Tag, error) {
	var query struct {
		FindTags struct {
			Count int
			Tags  []Tag
		} `graphql:"findTags(tag_filter: $filter, filter: $page)"`
	}

	perPage := -1
	variables := map[string]interface{}{
		"filter": &TagFilterType{Name: criterion},
		"page":   &FindFilterType{PerPage: &perPage},
	}

	if err := client.Query(context.Background(), &query, variables); err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	return query.FindTags.Tags, nil
}

// FindTag looks up a tag by exact name without creating it. The second
// return value is false when no such tag exists.
func FindTag(client *graphql.Client, cache *TagCache, tagName string) (graphql.ID, bool, error) {
	// Check cache first
	if id, ok := cache.Get(tagName); ok {
		log.Tracef("Tag '%s' found in cache: %s", tagName, id)
		return id, true, nil
	}

	tags, err := findTags(client, &StringCriterionInput{
		Value:    tagName,
		Modifier: CriterionModifierEquals,
	})
	if err != nil {
		return "", false, err
	}
	if len(tags) == 0 {
		return "", false, nil
	}

	tagID := tags[0].ID
	cache.Set(tagName, tagID)
	log.Debugf("Found existing tag '%s': %s", tagName, tagID)
	return tagID, true, nil
}

// findOrCreateTag finds a tag by name or creates it if it doesn't exist
func findOrCreateTag(client *graphql.Client, cache *TagCache, tagName string) (graphql.ID, error) {
	tagID, found, err := FindTag(client, cache, tagName)
	if err != nil {
		return "", err
	}
	if found {
		return tagID, nil
	}

	var mutation struct {
		TagCreate Tag `graphql:"tagCreate(input: $input)"`
	}

	variables := map[string]interface{}{
		"input": TagCreateInput{
			Name:        tagName,
			Description: "Created by the emotion classifier plugin",
		},
	}

	if err := client.Mutate(context.Background(), &mutation, variables); err != nil {
		return "", fmt.Errorf("failed to create tag: %w", err)
	}

	tagID = mutation.TagCreate.ID
	cache.Set(tagName, tagID)
	log.Infof("Created tag '%s': %s", tagName, tagID)
	return tagID, nil
}

// GetOrCreateTag gets or creates a tag by name (convenience wrapper)
func GetOrCreateTag(client *graphql.Client, cache *TagCache, tagName string, defaultName string) (graphql.ID, error) {
	if tagName == "" {
		tagName = defaultName
	}
	return findOrCreateTag(client, cache, tagName)
}

// FindTagsByPrefix returns every tag whose name starts with prefix
func FindTagsByPrefix(client *graphql.Client, prefix string) ([]Tag, error) {
	if prefix == "" {
		return nil, fmt.Errorf("tag prefix is required")
	}
	tags, err := findTags(client, &StringCriterionInput{
		Value:    "^" + regexp.QuoteMeta(prefix),
		Modifier: CriterionModifierMatchesRegex,
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("Found %d tag(s) with prefix '%s'", len(tags), prefix)
	return tags, nil
}
