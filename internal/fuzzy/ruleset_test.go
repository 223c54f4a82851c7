package fuzzy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smegmarip/stash-emotion-plugin/internal/fuzzy"
)

const levelYAML = `
inputs:
  - name: level
    universe: [0, 1]
    terms:
      - {name: low, points: [0, 0, 0.5]}
      - {name: high, points: [0.5, 1, 1]}
output:
  name: size
  universe: [0, 1]
  terms:
    - {name: small, points: [0, 0.25, 0.5]}
    - {name: big, points: [0.5, 0.75, 1]}
rules:
  - if: {is: level.low}
    then: size.small
  - if:
      and:
        - {is: level.high}
        - not: {is: level.low}
    then: size.big
`

func TestParseRuleSet(t *testing.T) {
	system, err := fuzzy.ParseRuleSet([]byte(levelYAML))
	require.NoError(t, err)

	require.Len(t, system.Inputs(), 1)
	assert.Equal(t, "size", system.Output().Name())

	rules := system.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "IF level[low] THEN size[small]", rules[0].String())
	assert.Equal(t, "IF (level[high] AND NOT level[low]) THEN size[big]", rules[1].String())

	out, err := system.Infer(map[string]float64{"level": 0.25}, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out.Activations["small"], 1e-12)
}

func TestParseRuleSet_RoundTrip(t *testing.T) {
	system, err := fuzzy.ParseRuleSet([]byte(levelYAML))
	require.NoError(t, err)

	rebuilt, err := system.Spec().Build()
	require.NoError(t, err)

	if diff := cmp.Diff(system.Spec(), rebuilt.Spec()); diff != "" {
		t.Errorf("rule set changed after rebuild (-want +got):\n%s", diff)
	}
}

func TestParseRuleSet_Invalid(t *testing.T) {
	const header = `
inputs:
  - name: level
    universe: [0, 1]
    terms:
      - {name: low, points: [0, 0, 0.5]}
output:
  name: size
  universe: [0, 1]
  terms:
    - {name: small, points: [0, 0.25, 0.5]}
`

	tests := []struct {
		name string
		yaml string
	}{
		{"Malformed YAML", "inputs: [unterminated"},
		{"Undefined term", header + "rules:\n  - if: {is: level.medium}\n    then: size.small\n"},
		{"Bad reference", header + "rules:\n  - if: {is: level}\n    then: size.small\n"},
		{"Bad consequent", header + "rules:\n  - if: {is: level.low}\n    then: small\n"},
		{"Two operators", header + "rules:\n  - if: {is: level.low, not: {is: level.low}}\n    then: size.small\n"},
		{"No operator", header + "rules:\n  - if: {}\n    then: size.small\n"},
		{"No rules", header},
		{
			"Wrong point count",
			"inputs:\n  - name: level\n    universe: [0, 1]\n    terms:\n      - {name: low, points: [0, 0.5]}\n",
		},
		{
			"Bad universe",
			"inputs:\n  - name: level\n    universe: [1]\n",
		},
		{
			"Unordered points",
			"inputs:\n  - name: level\n    universe: [0, 1]\n    terms:\n      - {name: low, points: [0.5, 0, 1]}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, err := fuzzy.ParseRuleSet([]byte(tt.yaml))
			assert.Nil(t, system)
			assert.ErrorIs(t, err, fuzzy.ErrConfiguration)
		})
	}
}

func TestLoadRuleSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(levelYAML), 0o644))

	system, err := fuzzy.LoadRuleSet(path)
	require.NoError(t, err)
	assert.Len(t, system.Rules(), 2)

	_, err = fuzzy.LoadRuleSet(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
