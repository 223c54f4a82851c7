package fuzzy

import "fmt"

// Rule maps an antecedent expression to one term of the output variable
type Rule struct {
	Antecedent Expr
	Variable   string
	Term       string
}

// NewRule creates a rule "IF antecedent THEN variable is term"
func NewRule(antecedent Expr, variable, term string) Rule {
	return Rule{Antecedent: antecedent, Variable: variable, Term: term}
}

// Strength evaluates the antecedent against the current memberships
func (r Rule) Strength(m Memberships) float64 {
	return r.Antecedent.Eval(m)
}

// String renders the rule
func (r Rule) String() string {
	return fmt.Sprintf("IF %s THEN %s[%s]", r.Antecedent, r.Variable, r.Term)
}
