package emotion_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
	"github.com/smegmarip/stash-emotion-plugin/internal/fuzzy"
)

func TestDefaultSystem(t *testing.T) {
	system, err := emotion.DefaultSystem()
	require.NoError(t, err)

	var names []string
	for _, v := range system.Inputs() {
		names = append(names, v.Name())
		assert.Len(t, v.Terms(), 3, "variable %s", v.Name())
	}
	assert.Equal(t, []string{
		emotion.MouthCurvature,
		emotion.EyeOpenness,
		emotion.EyebrowPosition,
		emotion.JawPosition,
		emotion.NoseSneer,
	}, names)

	var labels []string
	for _, term := range system.Output().Terms() {
		labels = append(labels, term.Name)
	}
	assert.Equal(t, emotion.Labels, labels, "output terms follow label declaration order")

	assert.Len(t, system.Rules(), 21)
}

func TestDefaultRules_NeutralFallback(t *testing.T) {
	rules := emotion.DefaultRules()
	require.Len(t, rules, 21)

	assert.Equal(t,
		"IF (mouth_curvature[neutral] AND eyebrow_position[neutral]) THEN emotion[happiness]",
		rules[3].String())
	assert.Equal(t,
		"IF (mouth_curvature[neutral] AND eye_openness[normal] AND eyebrow_position[neutral]) THEN emotion[happiness]",
		rules[20].String())
	assert.Equal(t,
		"IF (mouth_curvature[frown] AND (eyebrow_position[lowered] OR eyebrow_position[neutral]) AND eye_openness[narrow]) THEN emotion[anger]",
		rules[10].String())
}

func TestDefaultSystem_MatchesRuleSetFile(t *testing.T) {
	loaded, err := fuzzy.LoadRuleSet("testdata/emotion_rules.yaml")
	require.NoError(t, err)

	builtin := emotion.MustDefaultSystem()
	if diff := cmp.Diff(builtin.Spec(), loaded.Spec()); diff != "" {
		t.Errorf("testdata rule set differs from the built-in rule base (-builtin +file):\n%s", diff)
	}
}
