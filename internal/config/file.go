package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadFile loads the configuration used outside Stash. Values come from the
// defaults, then the YAML file at path (optional when missing and path came
// from the environment), then EMOTION_* environment variables.
func LoadFile(path string) (*PluginConfig, error) {
	config := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("EMOTION_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	overrides := []error{
		envOverride(&config.VisionServiceURL, "EMOTION_VISION_URL"),
		envOverride(&config.RuleSetPath, "EMOTION_RULES"),
		envOverride(&config.PolicyName, "EMOTION_POLICY"),
		envOverride(&config.DefuzzMethod, "EMOTION_METHOD"),
		envOverrideFloat(&config.Resolution, "EMOTION_RESOLUTION"),
		envOverride(&config.TagPrefix, "EMOTION_TAG_PREFIX"),
		envOverride(&config.ScannedTagName, "EMOTION_SCANNED_TAG"),
		envOverride(&config.UndeterminedTagName, "EMOTION_UNDETERMINED_TAG"),
		envOverrideInt(&config.MaxBatchSize, "EMOTION_MAX_BATCH_SIZE"),
		envOverrideInt(&config.CooldownSeconds, "EMOTION_COOLDOWN_SECONDS"),
		envOverride(&config.DBPath, "EMOTION_DB"),
	}
	if err := errors.Join(overrides...); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func envOverride(field *string, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
	return nil
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
