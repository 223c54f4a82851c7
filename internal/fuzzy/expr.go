package fuzzy

import (
	"fmt"
	"math"
	"strings"
)

// Op identifies the node type of an antecedent expression
type Op int

const (
	OpIs  Op = iota // leaf: variable is term
	OpAnd           // minimum of operands
	OpOr            // maximum of operands
	OpNot           // complement of the single operand
)

// String converts Op to its keyword
func (o Op) String() string {
	switch o {
	case OpIs:
		return "is"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpNot:
		return "not"
	default:
		return "n/a"
	}
}

// Expr is a node of an antecedent expression tree. Leaves carry Variable and
// Term; inner nodes carry Operands.
type Expr struct {
	Op       Op
	Variable string
	Term     string
	Operands []Expr
}

// Memberships resolves the degree of a (variable, term) pair for the current input
type Memberships interface {
	Degree(variable, term string) float64
}

// Is builds a leaf querying the membership of variable in term
func Is(variable, term string) Expr {
	return Expr{Op: OpIs, Variable: variable, Term: term}
}

// And builds a conjunction (minimum)
func And(operands ...Expr) Expr {
	return Expr{Op: OpAnd, Operands: operands}
}

// Or builds a disjunction (maximum)
func Or(operands ...Expr) Expr {
	return Expr{Op: OpOr, Operands: operands}
}

// Not builds a complement (1 - x)
func Not(operand Expr) Expr {
	return Expr{Op: OpNot, Operands: []Expr{operand}}
}

// Eval computes the truth degree of the expression
func (e Expr) Eval(m Memberships) float64 {
	switch e.Op {
	case OpIs:
		return m.Degree(e.Variable, e.Term)
	case OpAnd:
		result := 1.0
		for _, operand := range e.Operands {
			result = math.Min(result, operand.Eval(m))
		}
		return result
	case OpOr:
		result := 0.0
		for _, operand := range e.Operands {
			result = math.Max(result, operand.Eval(m))
		}
		return result
	case OpNot:
		return 1 - e.Operands[0].Eval(m)
	default:
		return 0
	}
}

// Leaves returns every (variable, term) leaf in evaluation order
func (e Expr) Leaves() []Expr {
	if e.Op == OpIs {
		return []Expr{e}
	}
	var leaves []Expr
	for _, operand := range e.Operands {
		leaves = append(leaves, operand.Leaves()...)
	}
	return leaves
}

// validate checks the tree shape and that every leaf names a declared input term
func (e Expr) validate(inputs map[string]*Variable) error {
	switch e.Op {
	case OpIs:
		v, ok := inputs[e.Variable]
		if !ok {
			return fmt.Errorf("%w: undefined input variable %q", ErrConfiguration, e.Variable)
		}
		if !v.HasTerm(e.Term) {
			return fmt.Errorf("%w: undefined term %s.%s", ErrConfiguration, e.Variable, e.Term)
		}
		return nil
	case OpAnd, OpOr:
		if len(e.Operands) == 0 {
			return fmt.Errorf("%w: %s without operands", ErrConfiguration, e.Op)
		}
	case OpNot:
		if len(e.Operands) != 1 {
			return fmt.Errorf("%w: not requires exactly one operand, got %d", ErrConfiguration, len(e.Operands))
		}
	default:
		return fmt.Errorf("%w: unknown operator %d", ErrConfiguration, int(e.Op))
	}

	for _, operand := range e.Operands {
		if err := operand.validate(inputs); err != nil {
			return err
		}
	}
	return nil
}

// String renders the expression, e.g. "(mouth_curvature[smile] AND eye_openness[narrow])"
func (e Expr) String() string {
	switch e.Op {
	case OpIs:
		return fmt.Sprintf("%s[%s]", e.Variable, e.Term)
	case OpNot:
		if len(e.Operands) == 1 {
			return "NOT " + e.Operands[0].String()
		}
		return "NOT ()"
	case OpAnd, OpOr:
		parts := make([]string, len(e.Operands))
		for i, operand := range e.Operands {
			parts[i] = operand.String()
		}
		return "(" + strings.Join(parts, " "+strings.ToUpper(e.Op.String())+" ") + ")"
	default:
		return "?"
	}
}
