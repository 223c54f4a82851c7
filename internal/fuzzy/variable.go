package fuzzy

import (
	"fmt"
	"math"
)

// Term is a named fuzzy set of a variable
type Term struct {
	Name string
	Func MembershipFunc
}

// Variable is a linguistic variable over the universe [min, max]
type Variable struct {
	name  string
	min   float64
	max   float64
	terms []Term
	index map[string]int
}

// NewVariable creates a variable with an empty term set
func NewVariable(name string, min, max float64) (*Variable, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: variable name is required", ErrConfiguration)
	}
	if math.IsNaN(min) || math.IsNaN(max) || min >= max {
		return nil, fmt.Errorf("%w: variable %q has empty universe [%v, %v]", ErrConfiguration, name, min, max)
	}
	return &Variable{
		name:  name,
		min:   min,
		max:   max,
		index: make(map[string]int),
	}, nil
}

// AddTerm declares a term. Names are unique and the term's support must lie
// within the universe.
func (v *Variable) AddTerm(name string, mf MembershipFunc) error {
	if name == "" {
		return fmt.Errorf("%w: variable %q has a term without a name", ErrConfiguration, v.name)
	}
	if mf == nil {
		return fmt.Errorf("%w: term %s.%s has no membership function", ErrConfiguration, v.name, name)
	}
	if _, exists := v.index[name]; exists {
		return fmt.Errorf("%w: duplicate term %s.%s", ErrConfiguration, v.name, name)
	}
	lo, hi := mf.Support()
	if lo < v.min || hi > v.max {
		return fmt.Errorf("%w: term %s.%s support [%v, %v] exceeds universe [%v, %v]",
			ErrConfiguration, v.name, name, lo, hi, v.min, v.max)
	}

	v.index[name] = len(v.terms)
	v.terms = append(v.terms, Term{Name: name, Func: mf})
	return nil
}

// Name returns the variable name
func (v *Variable) Name() string {
	return v.name
}

// Universe returns the universe bounds
func (v *Variable) Universe() (float64, float64) {
	return v.min, v.max
}

// Terms returns the terms in declaration order
func (v *Variable) Terms() []Term {
	terms := make([]Term, len(v.terms))
	copy(terms, v.terms)
	return terms
}

// HasTerm reports whether the variable declares the term
func (v *Variable) HasTerm(name string) bool {
	_, ok := v.index[name]
	return ok
}

// Term looks up a term by name
func (v *Variable) Term(name string) (Term, error) {
	i, ok := v.index[name]
	if !ok {
		return Term{}, fmt.Errorf("%w: %s.%s", ErrUnknownTerm, v.name, name)
	}
	return v.terms[i], nil
}

// Membership returns the degree of x in the named term
func (v *Variable) Membership(term string, x float64) (float64, error) {
	t, err := v.Term(term)
	if err != nil {
		return 0, err
	}
	return t.Func.Degree(x), nil
}

// Fuzzify returns the degree of x in every term
func (v *Variable) Fuzzify(x float64) map[string]float64 {
	degrees := make(map[string]float64, len(v.terms))
	for _, t := range v.terms {
		degrees[t.Name] = t.Func.Degree(x)
	}
	return degrees
}

// Clamp limits x to the universe
func (v *Variable) Clamp(x float64) float64 {
	return math.Max(v.min, math.Min(v.max, x))
}

// Samples discretizes the universe at the given step, always including both bounds
func (v *Variable) Samples(step float64) []float64 {
	if step <= 0 || math.IsNaN(step) {
		step = DefaultResolution
	}
	// A step that does not divide the range leaves a shorter last interval
	n := int(math.Ceil((v.max-v.min)/step-1e-9)) + 1
	if n < 2 {
		n = 2
	}

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = v.min + float64(i)*step
	}
	samples[n-1] = v.max
	return samples
}
