package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/stashapp/stash/pkg/plugin/common"
	"github.com/stashapp/stash/pkg/plugin/common/log"

	"github.com/smegmarip/stash-emotion-plugin/internal/config"
	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
	"github.com/smegmarip/stash-emotion-plugin/internal/stash"
	"github.com/smegmarip/stash-emotion-plugin/internal/store"
)

// Run handles RPC task execution
func (s *Service) Run(input common.PluginInput, output *common.PluginOutput) error {
	// Initialize GraphQL client and tag cache
	s.serverConnection = input.ServerConnection
	s.graphqlClient = stash.Client(input.ServerConnection)
	s.tagCache = stash.NewTagCache()

	// Saved plugin settings are optional; task arguments still apply without them
	settings, err := stash.GetPluginSettings(s.graphqlClient, PluginID)
	if err != nil {
		log.Warnf("Failed to load plugin settings, using defaults: %v", err)
		settings = nil
	}

	cfg, err := config.Load(input, settings)
	if err != nil {
		return s.errorOutput(output, fmt.Errorf("failed to load config: %w", err))
	}
	s.config = cfg

	s.classifier, err = cfg.BuildClassifier()
	if err != nil {
		return s.errorOutput(output, fmt.Errorf("failed to build classifier: %w", err))
	}
	s.filter = emotion.NewEmotionFilterByName(cfg.PolicyName)

	if cfg.DBPath != "" {
		history, err := store.Open(cfg.DBPath)
		if err != nil {
			return s.errorOutput(output, fmt.Errorf("failed to open history: %w", err))
		}
		s.history = history
		defer func() {
			history.Close()
			s.history = nil
		}()
	}

	mode := input.Args.String("mode")
	argsMap := input.Args.ToMap()
	limit := parseIntArg(argsMap, "limit")

	log.Infof("Emotion classifier plugin started - mode: %s", mode)
	log.Debugf("Configuration: Policy=%s, Method=%s, BatchSize=%d, Cooldown=%ds, Limit=%d",
		cfg.PolicyName, cfg.DefuzzMethod, cfg.MaxBatchSize, cfg.CooldownSeconds, limit)

	var result interface{}
	outputStr := "Unknown mode"

	switch mode {
	case "classifyImages":
		if err = s.requireDetector(); err == nil {
			err = s.classifyImages(false, limit)
		}
		outputStr = "Image emotion classification completed"

	case "classifyNewImages":
		if err = s.requireDetector(); err == nil {
			err = s.classifyImages(true, limit)
		}
		outputStr = "New image emotion classification completed"

	case "classifyImage":
		imageID := parseIDArg(argsMap, "imageId")
		log.Infof("Classifying image: %s", imageID)
		var response *ClassifyImageResponse
		if err = s.requireDetector(); err == nil {
			response, err = s.classifyImage(imageID)
		}
		if err == nil {
			result = response
			if res, _err := json.Marshal(response); _err == nil {
				log.Infof("classifyImage=%s", string(res))
			}
		}

	case "classifyBlendshapes":
		var b emotion.Blendshapes
		b, err = parseBlendshapesArg(argsMap, "blendshapes")
		if err == nil {
			result, err = s.classifyBlendshapes(b)
		}

	case "resetEmotionTags":
		log.Infof("Resetting emotion tags (limit=%d)", limit)
		err = s.resetEmotionTags(limit)
		outputStr = "Emotion tags reset"

	default:
		err = fmt.Errorf("unknown mode: %s", mode)
	}

	if err != nil {
		return s.errorOutput(output, err)
	}

	if result != nil {
		*output = common.PluginOutput{
			Output: result,
		}
		return nil
	}

	*output = common.PluginOutput{
		Output: &outputStr,
	}

	return nil
}
