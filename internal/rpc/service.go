package rpc

import (
	"fmt"
	"time"

	"github.com/stashapp/stash/pkg/plugin/common"
	"github.com/stashapp/stash/pkg/plugin/common/log"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
	"github.com/smegmarip/stash-emotion-plugin/internal/vision"
)

// NewService creates a new RPC service instance
func NewService() *Service {
	return &Service{}
}

// Stop handles graceful shutdown of the plugin
func (s *Service) Stop(input struct{}, output *bool) error {
	log.Info("Stopping emotion classifier plugin...")
	s.stopping = true
	*output = true
	return nil
}

// applyCooldown applies the configured cooldown period
func (s *Service) applyCooldown() {
	if s.config.CooldownSeconds > 0 {
		log.Infof("Cooling down for %d seconds to prevent hardware stress...", s.config.CooldownSeconds)
		time.Sleep(time.Duration(s.config.CooldownSeconds) * time.Second)
	}
}

// requireDetector connects to the vision service, failing when it is not
// configured or not healthy
func (s *Service) requireDetector() error {
	if s.detector == nil {
		if s.config.VisionServiceURL == "" {
			return fmt.Errorf("vision service URL is not configured")
		}
		s.detector = vision.NewVisionServiceClient(s.config.VisionServiceURL)
	}
	if err := s.detector.HealthCheck(); err != nil {
		return fmt.Errorf("vision service unavailable: %w", err)
	}
	return nil
}

// evaluate applies the tagging policy to a classification
func (s *Service) evaluate(result emotion.Result) FaceEmotion {
	decision := s.filter.ShouldTag(result)
	face := FaceEmotion{
		Label:       result.Label,
		Confidence:  result.Confidence,
		Membership:  result.LabelMembership,
		Memberships: result.Memberships,
		Accepted:    decision.Accepted,
		Reason:      decision.Reason,
	}
	if decision.Accepted {
		face.Tag = s.config.TagName(result.Label)
	}
	return face
}

// record saves a classification to the history store when one is open
func (s *Service) record(source string, result emotion.Result) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Save(source, result); err != nil {
		log.Warnf("Failed to record classification for %s: %v", source, err)
	}
}

// errorOutput creates an error output for RPC response
func (s *Service) errorOutput(output *common.PluginOutput, err error) error {
	errStr := err.Error()
	*output = common.PluginOutput{
		Error: &errStr,
	}
	return nil
}
