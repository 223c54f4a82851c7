package fuzzy

import (
	"fmt"
	"math"
)

// AggregatedOutput is the transient result of one inference: the output
// universe samples, the max-aggregated curve over them, the activation of each
// output term and the firing strength of each rule.
type AggregatedOutput struct {
	Universe    []float64
	Curve       []float64
	Activations map[string]float64
	Strengths   []float64
}

// Fired reports whether the sampled curve has any area, the condition
// Defuzzify needs. A rule can have a non-zero strength yet leave no area when
// its output term falls between samples.
func (o *AggregatedOutput) Fired() bool {
	return o.Area() > 0
}

// Area returns the sum of the curve heights
func (o *AggregatedOutput) Area() float64 {
	total := 0.0
	for _, h := range o.Curve {
		total += h
	}
	return total
}

// fuzzified holds the membership of every input term for one crisp input vector
type fuzzified map[string]map[string]float64

// Degree implements Memberships
func (f fuzzified) Degree(variable, term string) float64 {
	return f[variable][term]
}

// Infer runs Mamdani inference for one crisp input vector. Values outside a
// variable's universe are clamped to the nearest bound. The aggregated curve is
// sampled over the output universe at the given step.
func (s *System) Infer(inputs map[string]float64, step float64) (*AggregatedOutput, error) {
	memberships := make(fuzzified, len(s.inputs))
	for _, v := range s.inputs {
		x, ok := inputs[v.name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, v.name)
		}
		if math.IsNaN(x) {
			return nil, fmt.Errorf("%w: %s is NaN", ErrInvalidInput, v.name)
		}
		memberships[v.name] = v.Fuzzify(v.Clamp(x))
	}

	strengths := make([]float64, len(s.rules))
	activations := make(map[string]float64, len(s.output.terms))
	for _, t := range s.output.terms {
		activations[t.Name] = 0
	}
	for i, r := range s.rules {
		strengths[i] = r.Strength(memberships)
		activations[r.Term] = math.Max(activations[r.Term], strengths[i])
	}

	universe := s.output.Samples(step)
	curve := make([]float64, len(universe))
	for i, x := range universe {
		for _, t := range s.output.terms {
			clipped := math.Min(activations[t.Name], t.Func.Degree(x))
			curve[i] = math.Max(curve[i], clipped)
		}
	}

	return &AggregatedOutput{
		Universe:    universe,
		Curve:       curve,
		Activations: activations,
		Strengths:   strengths,
	}, nil
}
