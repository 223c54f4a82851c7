package rpc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
	"github.com/smegmarip/stash-emotion-plugin/internal/vision"
)

// parseIntArg reads an integer task argument. Stash sends numbers as float64.
func parseIntArg(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if val, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return val
		}
	}
	return 0
}

// parseIDArg reads an ID task argument given as a number or string
func parseIDArg(args map[string]interface{}, key string) string {
	switch v := args[key].(type) {
	case float64:
		return fmt.Sprintf("%.0f", v)
	case int:
		return strconv.Itoa(v)
	case string:
		return strings.TrimSpace(v)
	}
	return ""
}

// parseBlendshapesArg reads blendshape scores given either as an object of
// name to score, or as JSON text holding such an object or a list of
// {category_name, score} entries
func parseBlendshapesArg(args map[string]interface{}, key string) (emotion.Blendshapes, error) {
	switch v := args[key].(type) {
	case map[string]interface{}:
		b := make(emotion.Blendshapes, len(v))
		for name, raw := range v {
			score, ok := toFloat(raw)
			if !ok {
				return nil, fmt.Errorf("blendshape %q has non-numeric score %v", name, raw)
			}
			b[name] = score
		}
		return b, nil

	case string:
		text := strings.TrimSpace(v)
		if strings.HasPrefix(text, "[") {
			var categories []vision.Category
			if err := json.Unmarshal([]byte(text), &categories); err != nil {
				return nil, fmt.Errorf("failed to parse blendshapes: %w", err)
			}
			return vision.Face{Categories: categories}.Blendshapes(), nil
		}
		var b emotion.Blendshapes
		if err := json.Unmarshal([]byte(text), &b); err != nil {
			return nil, fmt.Errorf("failed to parse blendshapes: %w", err)
		}
		return b, nil

	case nil:
		return nil, fmt.Errorf("%s argument is required", key)
	}
	return nil, fmt.Errorf("unsupported %s argument type %T", key, args[key])
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
