package fuzzy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smegmarip/stash-emotion-plugin/internal/fuzzy"
)

// degrees is a fixed Memberships keyed by "variable.term"
type degrees map[string]float64

func (d degrees) Degree(variable, term string) float64 {
	return d[variable+"."+term]
}

func TestExpr_Eval(t *testing.T) {
	m := degrees{
		"mouth.smile":  0.8,
		"mouth.frown":  0.1,
		"eye.narrow":   0.4,
		"brow.lowered": 0.6,
		"brow.neutral": 0.3,
		"sneer.none":   0.0,
		"sneer.strong": 1.0,
	}

	tests := []struct {
		name     string
		expr     fuzzy.Expr
		expected float64
	}{
		{"Leaf", fuzzy.Is("mouth", "smile"), 0.8},
		{"Unknown leaf", fuzzy.Is("mouth", "pout"), 0},
		{"AND is minimum", fuzzy.And(fuzzy.Is("mouth", "smile"), fuzzy.Is("eye", "narrow")), 0.4},
		{"OR is maximum", fuzzy.Or(fuzzy.Is("brow", "lowered"), fuzzy.Is("brow", "neutral")), 0.6},
		{"NOT is complement", fuzzy.Not(fuzzy.Is("mouth", "smile")), 0.2},
		{"NOT of zero", fuzzy.Not(fuzzy.Is("sneer", "none")), 1.0},
		{
			"Nested",
			fuzzy.And(
				fuzzy.Is("mouth", "frown"),
				fuzzy.Or(fuzzy.Is("brow", "lowered"), fuzzy.Is("brow", "neutral")),
				fuzzy.Is("eye", "narrow"),
			),
			0.1,
		},
		{
			"NOT inside AND",
			fuzzy.And(fuzzy.Is("sneer", "strong"), fuzzy.Not(fuzzy.Is("eye", "narrow"))),
			0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.expr.Eval(m), 1e-12)
		})
	}
}

func TestExpr_String(t *testing.T) {
	e := fuzzy.And(
		fuzzy.Is("mouth_curvature", "frown"),
		fuzzy.Or(fuzzy.Is("eyebrow_position", "lowered"), fuzzy.Is("eyebrow_position", "neutral")),
		fuzzy.Not(fuzzy.Is("eye_openness", "wide")),
	)

	assert.Equal(t,
		"(mouth_curvature[frown] AND (eyebrow_position[lowered] OR eyebrow_position[neutral]) AND NOT eye_openness[wide])",
		e.String())

	r := fuzzy.NewRule(fuzzy.Is("mouth_curvature", "smile"), "emotion", "happiness")
	assert.Equal(t, "IF mouth_curvature[smile] THEN emotion[happiness]", r.String())
}

func TestExpr_Leaves(t *testing.T) {
	e := fuzzy.And(fuzzy.Is("a", "x"), fuzzy.Or(fuzzy.Is("b", "y"), fuzzy.Not(fuzzy.Is("c", "z"))))

	leaves := e.Leaves()
	assert.Len(t, leaves, 3)
	assert.Equal(t, "a", leaves[0].Variable)
	assert.Equal(t, "z", leaves[2].Term)
}
