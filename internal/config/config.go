package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/stashapp/stash/pkg/plugin/common"
	"github.com/stashapp/stash/pkg/plugin/common/log"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
	"github.com/smegmarip/stash-emotion-plugin/internal/fuzzy"
)

// Load builds the plugin configuration from the plugin settings stored in
// Stash, then lets task arguments override individual values
func Load(input common.PluginInput, settings map[string]interface{}) (*PluginConfig, error) {
	config := Default()

	apply(config, settings)
	if input.Args != nil {
		apply(config, input.Args.ToMap())
	}

	// Resolve Vision Service URL with auto-detection (optional service)
	if config.VisionServiceURL != "" {
		config.VisionServiceURL = resolveServiceURL(config.VisionServiceURL, "stash-auto-vision", "5000")
		log.Infof("Vision Service configured at: %s", config.VisionServiceURL)
	} else {
		log.Info("Vision Service not configured (image classification disabled)")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// apply overrides config values with any non-empty settings
func apply(config *PluginConfig, settings map[string]interface{}) {
	if len(settings) == 0 {
		return
	}
	if val := getStringSetting(settings, "visionServiceUrl"); val != "" {
		config.VisionServiceURL = val
	}
	if val := getStringSetting(settings, "ruleSetPath"); val != "" {
		config.RuleSetPath = val
	}
	if val := getStringSetting(settings, "policy"); val != "" {
		config.PolicyName = val
	}
	if val := getStringSetting(settings, "defuzzMethod"); val != "" {
		config.DefuzzMethod = val
	}
	if val := getFloatSetting(settings, "resolution"); val > 0 {
		config.Resolution = val
	}
	if val := getStringSetting(settings, "tagPrefix"); val != "" {
		config.TagPrefix = val
	}
	if val := getStringSetting(settings, "scannedTagName"); val != "" {
		config.ScannedTagName = val
	}
	if val := getStringSetting(settings, "undeterminedTagName"); val != "" {
		config.UndeterminedTagName = val
	}
	if val := getIntSetting(settings, "maxBatchSize"); val > 0 {
		config.MaxBatchSize = val
	}
	// Zero is meaningful here: it disables the cooldown
	if _, ok := settings["cooldownSeconds"]; ok {
		config.CooldownSeconds = getIntSetting(settings, "cooldownSeconds")
	}
	if val := getStringSetting(settings, "dbPath"); val != "" {
		config.DBPath = val
	}
}

// Validate rejects settings the classifier cannot run with
func (c *PluginConfig) Validate() error {
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("invalid max_batch_size %d: must be >= 1", c.MaxBatchSize)
	}
	if c.CooldownSeconds < 0 {
		return fmt.Errorf("invalid cooldown_seconds %d: must be >= 0", c.CooldownSeconds)
	}
	if c.Resolution <= 0 || c.Resolution > 0.5 {
		return fmt.Errorf("invalid resolution %g: must be in (0, 0.5]", c.Resolution)
	}
	if _, err := fuzzy.ParseMethod(c.DefuzzMethod); err != nil {
		return fmt.Errorf("invalid defuzz_method: %w", err)
	}
	switch strings.ToLower(c.PolicyName) {
	case "strict", "balanced", "permissive", "":
	default:
		return fmt.Errorf("invalid policy %q: must be strict, balanced or permissive", c.PolicyName)
	}
	if c.ScannedTagName == "" {
		return fmt.Errorf("scanned tag name is required")
	}
	return nil
}

// BuildClassifier loads the configured rule set (or the built-in one) and
// wraps it in a classifier
func (c *PluginConfig) BuildClassifier() (*emotion.Classifier, error) {
	method, err := fuzzy.ParseMethod(c.DefuzzMethod)
	if err != nil {
		return nil, err
	}

	var system *fuzzy.System
	if c.RuleSetPath != "" {
		system, err = fuzzy.LoadRuleSet(c.RuleSetPath)
	} else {
		system, err = emotion.DefaultSystem()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build rule base: %w", err)
	}
	if c.RuleSetPath != "" {
		log.Infof("Loaded rule set from %s", c.RuleSetPath)
	}

	return emotion.NewClassifier(system, emotion.WithMethod(method), emotion.WithResolution(c.Resolution))
}

// TagName returns the Stash tag name for an emotion label
func (c *PluginConfig) TagName(label string) string {
	if label == emotion.Undetermined && c.UndeterminedTagName != "" {
		return c.UndeterminedTagName
	}
	if label == "" {
		return c.TagPrefix
	}
	return c.TagPrefix + strings.ToUpper(label[:1]) + label[1:]
}

// getStringSetting retrieves a string setting from plugin config
func getStringSetting(config map[string]interface{}, key string) string {
	if val, ok := config[key]; ok {
		if str, ok := val.(string); ok {
			return strings.TrimSpace(str)
		}
	}
	return ""
}

// getIntSetting retrieves an integer setting from plugin config
func getIntSetting(config map[string]interface{}, key string) int {
	if val, ok := config[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		case string:
			if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return parsed
			}
		}
	}
	return 0
}

// getFloatSetting retrieves a float setting from plugin config
func getFloatSetting(config map[string]interface{}, key string) float64 {
	if val, ok := config[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return parsed
			}
		}
	}
	return 0.0
}

// resolveServiceURL resolves the service URL with proper DNS lookup.
// Handles IP addresses, hostnames, container names, and localhost.
//
// Parameters:
//   - configuredURL: The URL from configuration (may be empty)
//   - defaultContainerName: Default container name for auto-detection
//   - defaultPort: Default port number
//
// Returns: Resolved URL
func resolveServiceURL(configuredURL string, defaultContainerName string, defaultPort string) string {
	const defaultScheme = "http"
	var hardcodedFallback = fmt.Sprintf("%s://%s:%s", defaultScheme, defaultContainerName, defaultPort)

	// If no URL configured, use fallback
	if configuredURL == "" {
		log.Infof("No service URL configured, using default: %s", hardcodedFallback)
		return hardcodedFallback
	}

	// Bare host[:port] values parse as paths; give them a scheme first
	if !strings.Contains(configuredURL, "://") {
		configuredURL = defaultScheme + "://" + configuredURL
	}

	parsedURL, err := url.Parse(configuredURL)
	if err != nil || parsedURL.Hostname() == "" {
		log.Warnf("Failed to parse service URL '%s': %v, using fallback", configuredURL, err)
		return hardcodedFallback
	}

	hostname := parsedURL.Hostname()
	port := parsedURL.Port()
	scheme := parsedURL.Scheme

	if port == "" {
		port = defaultPort
	}

	// Case 1: localhost - use as-is
	if hostname == "localhost" || hostname == "127.0.0.1" {
		resolvedURL := fmt.Sprintf("%s://%s:%s", scheme, hostname, port)
		log.Infof("Using localhost service URL: %s", resolvedURL)
		return resolvedURL
	}

	// Case 2: Already an IP address - use as-is
	if ip := net.ParseIP(hostname); ip != nil {
		resolvedURL := fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(hostname, port))
		log.Infof("Using IP-based service URL: %s", resolvedURL)
		return resolvedURL
	}

	// Case 3: Hostname or container name - resolve via DNS
	log.Infof("Resolving hostname via DNS: %s", hostname)
	addrs, err := net.LookupIP(hostname)
	if err != nil || len(addrs) == 0 {
		// Return original host even if DNS fails - it might still work
		log.Warnf("DNS lookup failed for '%s': %v, using hostname as-is", hostname, err)
		return fmt.Sprintf("%s://%s:%s", scheme, hostname, port)
	}

	resolvedURL := fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(addrs[0].String(), port))
	log.Infof("Resolved '%s' to %s", hostname, resolvedURL)
	return resolvedURL
}
