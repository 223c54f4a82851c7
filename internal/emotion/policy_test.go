package emotion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
)

func ranked(label string, memberships ...float64) emotion.Result {
	result := emotion.Result{Label: label}
	names := append([]string{label}, "runner_up", "third")
	for i, m := range memberships {
		result.Ranking = append(result.Ranking, emotion.LabelMembership{Label: names[i], Membership: m})
	}
	if len(memberships) > 0 {
		result.LabelMembership = memberships[0]
	}
	return result
}

func TestNewEmotionFilterByName(t *testing.T) {
	tests := []struct {
		name     string
		expected emotion.TaggingPolicy
	}{
		{"strict", emotion.PolicyStrict},
		{"STRICT", emotion.PolicyStrict},
		{"balanced", emotion.PolicyBalanced},
		{"", emotion.PolicyBalanced},
		{"permissive", emotion.PolicyPermissive},
		{"reckless", emotion.PolicyBalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, emotion.NewEmotionFilterByName(tt.name).GetPolicy())
		})
	}
}

func TestEmotionFilter_ShouldTag(t *testing.T) {
	tests := []struct {
		name           string
		policy         emotion.TaggingPolicy
		result         emotion.Result
		expectAccepted bool
		expectReason   string
	}{
		{
			name:           "Clear winner",
			policy:         emotion.PolicyBalanced,
			result:         ranked(emotion.Happiness, 0.8333, 0.6667),
			expectAccepted: true,
			expectReason:   "membership_0.833_meets_minimum_0.500",
		},
		{
			name:           "Below boundary zone",
			policy:         emotion.PolicyBalanced,
			result:         ranked(emotion.Sadness, 0.3, 0.1),
			expectAccepted: false,
			expectReason:   "membership_0.300_below_minimum_0.500",
		},
		{
			name:           "Boundary zone with a clear lead",
			policy:         emotion.PolicyBalanced,
			result:         ranked(emotion.Anger, 0.5, 0.2),
			expectAccepted: true,
			expectReason:   "fuzzy_upgraded_margin_0.300",
		},
		{
			name:           "Boundary zone with a close runner-up",
			policy:         emotion.PolicyBalanced,
			result:         ranked(emotion.Fear, 0.5, 0.4),
			expectAccepted: false,
			expectReason:   "fuzzy_degraded_margin_0.100_below_0.150",
		},
		{
			name:           "Strict rejects moderate membership",
			policy:         emotion.PolicyStrict,
			result:         ranked(emotion.Happiness, 0.6, 0.1),
			expectAccepted: false,
			expectReason:   "membership_0.600_below_minimum_0.700",
		},
		{
			name:           "Hard cutoff",
			policy:         emotion.TaggingPolicy{MinLabelMembership: 0.5},
			result:         ranked(emotion.Disgust, 0.5, 0.49),
			expectAccepted: true,
			expectReason:   "membership_0.500_meets_minimum_0.500",
		},
		{
			name:           "Hard cutoff rejects",
			policy:         emotion.TaggingPolicy{MinLabelMembership: 0.5},
			result:         ranked(emotion.Disgust, 0.49, 0.1),
			expectAccepted: false,
			expectReason:   "membership_0.490_below_minimum_0.500",
		},
		{
			name:           "Single label uses its own membership as margin",
			policy:         emotion.PolicyBalanced,
			result:         ranked(emotion.Surprise, 0.52),
			expectAccepted: true,
			expectReason:   "fuzzy_upgraded_margin_0.520",
		},
		{
			name:           "Undetermined is skipped",
			policy:         emotion.PolicyBalanced,
			result:         emotion.Result{Label: emotion.Undetermined},
			expectAccepted: false,
			expectReason:   "no_rule_fired",
		},
		{
			name:           "Permissive tags undetermined",
			policy:         emotion.PolicyPermissive,
			result:         emotion.Result{Label: emotion.Undetermined},
			expectAccepted: true,
			expectReason:   "no_rule_fired_tagged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := emotion.NewEmotionFilter(tt.policy).ShouldTag(tt.result)
			assert.Equal(t, tt.expectAccepted, decision.Accepted)
			assert.Equal(t, tt.expectReason, decision.Reason)
			assert.Equal(t, tt.result.Label, decision.Label)
		})
	}
}

func TestEmotionFilter_SetPolicy(t *testing.T) {
	filter := emotion.NewEmotionFilter(emotion.PolicyStrict)
	result := ranked(emotion.Happiness, 0.6, 0.1)

	assert.False(t, filter.ShouldTag(result).Accepted)

	filter.SetPolicy(emotion.PolicyPermissive)
	assert.Equal(t, emotion.PolicyPermissive, filter.GetPolicy())
	assert.True(t, filter.ShouldTag(result).Accepted)
}

func TestEmotionFilter_ClassifiedNeutralFace(t *testing.T) {
	c := newClassifier(t)
	result, err := c.Classify(emotion.Scores{})
	assert.NoError(t, err)

	assert.True(t, emotion.NewEmotionFilter(emotion.PolicyBalanced).ShouldTag(result).Accepted)
	assert.True(t, emotion.NewEmotionFilter(emotion.PolicyStrict).ShouldTag(result).Accepted)
}
