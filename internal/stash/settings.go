package stash

import (
	"context"
	"encoding/json"
	"fmt"

	graphql "github.com/hasura/go-graphql-client"
)

// GetPluginSettings fetches the settings saved for a plugin in Stash's
// configuration. A plugin that was never configured yields an empty map.
func GetPluginSettings(client *graphql.Client, pluginID string) (map[string]interface{}, error) {
	const query = `query PluginSettings($include: [ID!]) {
		configuration {
			plugins(include: $include)
		}
	}`

	variables := map[string]interface{}{
		"include": []string{pluginID},
	}

	data, err := client.ExecRaw(context.Background(), query, variables)
	if err != nil {
		return nil, fmt.Errorf("failed to query plugin configuration: %w", err)
	}

	var response struct {
		Configuration struct {
			Plugins map[string]map[string]interface{} `json:"plugins"`
		} `json:"configuration"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse plugin configuration: %w", err)
	}

	settings := response.Configuration.Plugins[pluginID]
	if settings == nil {
		settings = make(map[string]interface{})
	}
	return settings, nil
}
