package fuzzy

import (
	"fmt"
	"strings"
)

// Method selects how an aggregated curve is reduced to one crisp value
type Method string

const (
	MethodCentroid      Method = "centroid"        // center of area (default)
	MethodBisector      Method = "bisector"        // sample splitting the area in half
	MethodMeanOfMaximum Method = "mean-of-maximum" // mean of the samples at maximum height
)

// ParseMethod resolves a method name, defaulting to centroid
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "centroid", "cog":
		return MethodCentroid, nil
	case "bisector":
		return MethodBisector, nil
	case "mom", "mean-of-maximum", "mean_of_maximum":
		return MethodMeanOfMaximum, nil
	default:
		return "", fmt.Errorf("%w: unknown defuzzification method %q", ErrConfiguration, name)
	}
}

// Defuzzify reduces the aggregated curve to a crisp value. An all-zero curve
// returns ErrNoRuleFired rather than dividing by zero.
func Defuzzify(out *AggregatedOutput, method Method) (float64, error) {
	if out == nil || len(out.Universe) != len(out.Curve) {
		return 0, fmt.Errorf("%w: malformed aggregated output", ErrInvalidInput)
	}

	area := out.Area()
	if area <= 0 {
		return 0, ErrNoRuleFired
	}

	switch method {
	case MethodCentroid, "":
		return centroid(out.Universe, out.Curve, area), nil
	case MethodBisector:
		return bisector(out.Universe, out.Curve, area), nil
	case MethodMeanOfMaximum:
		return meanOfMaximum(out.Universe, out.Curve), nil
	default:
		return 0, fmt.Errorf("%w: unknown defuzzification method %q", ErrConfiguration, method)
	}
}

// centroid computes sum(x_i * h_i) / sum(h_i)
func centroid(xs, hs []float64, area float64) float64 {
	weighted := 0.0
	for i, x := range xs {
		weighted += x * hs[i]
	}
	return weighted / area
}

func bisector(xs, hs []float64, area float64) float64 {
	half := area / 2
	cumulative := 0.0
	for i, x := range xs {
		cumulative += hs[i]
		if cumulative >= half {
			return x
		}
	}
	return xs[len(xs)-1]
}

func meanOfMaximum(xs, hs []float64) float64 {
	peak := 0.0
	for _, h := range hs {
		if h > peak {
			peak = h
		}
	}

	sum, count := 0.0, 0
	for i, x := range xs {
		if hs[i] == peak {
			sum += x
			count++
		}
	}
	return sum / float64(count)
}
