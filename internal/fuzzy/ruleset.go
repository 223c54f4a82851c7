package fuzzy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSetFile is the YAML form of a System
//
//	inputs:
//	  - name: mouth_curvature
//	    universe: [-1, 1]
//	    terms:
//	      - {name: frown, points: [-1, -0.5, 0]}
//	output: {name: emotion, universe: [0, 1], terms: [...]}
//	rules:
//	  - if: {and: [{is: mouth_curvature.smile}, {is: eye_openness.narrow}]}
//	    then: emotion.happiness
type RuleSetFile struct {
	Inputs []VariableSpec `yaml:"inputs"`
	Output VariableSpec   `yaml:"output"`
	Rules  []RuleSpec     `yaml:"rules"`
}

// VariableSpec declares a variable and its ordered terms
type VariableSpec struct {
	Name     string     `yaml:"name"`
	Universe []float64  `yaml:"universe"`
	Terms    []TermSpec `yaml:"terms"`
}

// TermSpec declares a triangular term
type TermSpec struct {
	Name   string    `yaml:"name"`
	Points []float64 `yaml:"points"`
}

// RuleSpec declares one rule
type RuleSpec struct {
	If   ExprSpec `yaml:"if"`
	Then string   `yaml:"then"`
}

// ExprSpec is one node of an antecedent; exactly one field is set
type ExprSpec struct {
	Is  string     `yaml:"is,omitempty"`
	And []ExprSpec `yaml:"and,omitempty"`
	Or  []ExprSpec `yaml:"or,omitempty"`
	Not *ExprSpec  `yaml:"not,omitempty"`
}

// LoadRuleSet reads and builds a System from a YAML file
func LoadRuleSet(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set: %w", err)
	}
	system, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("rule set %s: %w", path, err)
	}
	return system, nil
}

// ParseRuleSet builds a validated System from YAML
func ParseRuleSet(data []byte) (*System, error) {
	var file RuleSetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", ErrConfiguration, err)
	}
	return file.Build()
}

// Build converts the file form into a System
func (f RuleSetFile) Build() (*System, error) {
	inputs := make([]*Variable, 0, len(f.Inputs))
	for _, spec := range f.Inputs {
		v, err := spec.build()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, v)
	}

	output, err := f.Output.build()
	if err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(f.Rules))
	for i, spec := range f.Rules {
		antecedent, err := spec.If.build()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		variable, term, err := splitRef(spec.Then)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules = append(rules, NewRule(antecedent, variable, term))
	}

	return NewSystem(inputs, output, rules)
}

// Spec converts a System back into its file form
func (s *System) Spec() RuleSetFile {
	file := RuleSetFile{Output: variableSpec(s.output)}
	for _, v := range s.inputs {
		file.Inputs = append(file.Inputs, variableSpec(v))
	}
	for _, r := range s.rules {
		file.Rules = append(file.Rules, RuleSpec{
			If:   exprSpec(r.Antecedent),
			Then: r.Variable + "." + r.Term,
		})
	}
	return file
}

func (spec VariableSpec) build() (*Variable, error) {
	if len(spec.Universe) != 2 {
		return nil, fmt.Errorf("%w: variable %q universe must be [min, max]", ErrConfiguration, spec.Name)
	}
	v, err := NewVariable(spec.Name, spec.Universe[0], spec.Universe[1])
	if err != nil {
		return nil, err
	}
	for _, t := range spec.Terms {
		if len(t.Points) != 3 {
			return nil, fmt.Errorf("%w: term %s.%s needs 3 points, got %d",
				ErrConfiguration, spec.Name, t.Name, len(t.Points))
		}
		mf, err := NewTriangular(t.Points[0], t.Points[1], t.Points[2])
		if err != nil {
			return nil, fmt.Errorf("term %s.%s: %w", spec.Name, t.Name, err)
		}
		if err := v.AddTerm(t.Name, mf); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (spec ExprSpec) build() (Expr, error) {
	set := 0
	if spec.Is != "" {
		set++
	}
	if spec.And != nil {
		set++
	}
	if spec.Or != nil {
		set++
	}
	if spec.Not != nil {
		set++
	}
	if set != 1 {
		return Expr{}, fmt.Errorf("%w: expression must set exactly one of is/and/or/not", ErrConfiguration)
	}

	switch {
	case spec.Is != "":
		variable, term, err := splitRef(spec.Is)
		if err != nil {
			return Expr{}, err
		}
		return Is(variable, term), nil
	case spec.Not != nil:
		operand, err := spec.Not.build()
		if err != nil {
			return Expr{}, err
		}
		return Not(operand), nil
	case spec.And != nil:
		operands, err := buildAll(spec.And)
		if err != nil {
			return Expr{}, err
		}
		return And(operands...), nil
	default:
		operands, err := buildAll(spec.Or)
		if err != nil {
			return Expr{}, err
		}
		return Or(operands...), nil
	}
}

func buildAll(specs []ExprSpec) ([]Expr, error) {
	operands := make([]Expr, 0, len(specs))
	for _, s := range specs {
		e, err := s.build()
		if err != nil {
			return nil, err
		}
		operands = append(operands, e)
	}
	return operands, nil
}

// splitRef parses "variable.term"
func splitRef(ref string) (string, string, error) {
	variable, term, ok := strings.Cut(strings.TrimSpace(ref), ".")
	if !ok || variable == "" || term == "" {
		return "", "", fmt.Errorf("%w: reference %q must be variable.term", ErrConfiguration, ref)
	}
	return variable, term, nil
}

func variableSpec(v *Variable) VariableSpec {
	spec := VariableSpec{Name: v.name, Universe: []float64{v.min, v.max}}
	for _, t := range v.terms {
		term := TermSpec{Name: t.Name}
		if tri, ok := t.Func.(Triangular); ok {
			term.Points = []float64{tri.A, tri.B, tri.C}
		}
		spec.Terms = append(spec.Terms, term)
	}
	return spec
}

func exprSpec(e Expr) ExprSpec {
	switch e.Op {
	case OpIs:
		return ExprSpec{Is: e.Variable + "." + e.Term}
	case OpNot:
		inner := exprSpec(e.Operands[0])
		return ExprSpec{Not: &inner}
	case OpAnd:
		return ExprSpec{And: exprSpecs(e.Operands)}
	default:
		return ExprSpec{Or: exprSpecs(e.Operands)}
	}
}

func exprSpecs(exprs []Expr) []ExprSpec {
	specs := make([]ExprSpec, len(exprs))
	for i, e := range exprs {
		specs[i] = exprSpec(e)
	}
	return specs
}
