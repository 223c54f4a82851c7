package config

// PluginConfig holds plugin settings from Stash or a YAML file
type PluginConfig struct {
	VisionServiceURL    string  `yaml:"vision_service_url"`
	RuleSetPath         string  `yaml:"rule_set_path"`
	PolicyName          string  `yaml:"policy"`
	DefuzzMethod        string  `yaml:"defuzz_method"`
	Resolution          float64 `yaml:"resolution"`
	TagPrefix           string  `yaml:"tag_prefix"`
	ScannedTagName      string  `yaml:"scanned_tag_name"`
	UndeterminedTagName string  `yaml:"undetermined_tag_name"`
	MaxBatchSize        int     `yaml:"max_batch_size"`
	CooldownSeconds     int     `yaml:"cooldown_seconds"`
	DBPath              string  `yaml:"db_path"`
}

// Default returns the built-in settings
func Default() *PluginConfig {
	return &PluginConfig{
		PolicyName:          "balanced",
		DefuzzMethod:        "centroid",
		Resolution:          0.1,
		TagPrefix:           "Emotion: ",
		ScannedTagName:      "Emotion Scanned",
		UndeterminedTagName: "Emotion: Undetermined",
		MaxBatchSize:        20,
		CooldownSeconds:     10,
	}
}
