package fuzzy

import "fmt"

// DefaultResolution is the sampling step of the output universe
const DefaultResolution = 0.1

// System is a validated, read-only Mamdani rule base: input variables, one
// output variable and the rules linking them. It is safe to share between
// goroutines once constructed.
type System struct {
	inputs []*Variable
	byName map[string]*Variable
	output *Variable
	rules  []Rule
}

// NewSystem validates the configuration and builds a System. Every error wraps
// ErrConfiguration so callers can fail fast at startup.
func NewSystem(inputs []*Variable, output *Variable, rules []Rule) (*System, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one input variable is required", ErrConfiguration)
	}
	if output == nil {
		return nil, fmt.Errorf("%w: output variable is required", ErrConfiguration)
	}
	if len(output.terms) == 0 {
		return nil, fmt.Errorf("%w: output variable %q has no terms", ErrConfiguration, output.name)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: at least one rule is required", ErrConfiguration)
	}

	byName := make(map[string]*Variable, len(inputs))
	for _, v := range inputs {
		if v == nil {
			return nil, fmt.Errorf("%w: nil input variable", ErrConfiguration)
		}
		if _, exists := byName[v.name]; exists {
			return nil, fmt.Errorf("%w: duplicate input variable %q", ErrConfiguration, v.name)
		}
		if len(v.terms) == 0 {
			return nil, fmt.Errorf("%w: input variable %q has no terms", ErrConfiguration, v.name)
		}
		byName[v.name] = v
	}
	if _, exists := byName[output.name]; exists {
		return nil, fmt.Errorf("%w: output variable %q shadows an input", ErrConfiguration, output.name)
	}

	for i, r := range rules {
		if err := r.Antecedent.validate(byName); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		if r.Variable != output.name {
			return nil, fmt.Errorf("rule %d: %w: consequent variable %q is not the output %q",
				i+1, ErrConfiguration, r.Variable, output.name)
		}
		if !output.HasTerm(r.Term) {
			return nil, fmt.Errorf("rule %d: %w: undefined output term %s.%s",
				i+1, ErrConfiguration, r.Variable, r.Term)
		}
	}

	return &System{
		inputs: append([]*Variable(nil), inputs...),
		byName: byName,
		output: output,
		rules:  append([]Rule(nil), rules...),
	}, nil
}

// Inputs returns the input variables in declaration order
func (s *System) Inputs() []*Variable {
	return append([]*Variable(nil), s.inputs...)
}

// Input looks up an input variable by name
func (s *System) Input(name string) (*Variable, bool) {
	v, ok := s.byName[name]
	return v, ok
}

// Output returns the output variable
func (s *System) Output() *Variable {
	return s.output
}

// Rules returns a copy of the rule list
func (s *System) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}
