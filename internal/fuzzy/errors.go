package fuzzy

import "errors"

var (
	// ErrConfiguration reports a malformed variable, term or rule at construction time
	ErrConfiguration = errors.New("invalid fuzzy configuration")

	// ErrUnknownTerm reports a lookup of a term the variable does not declare
	ErrUnknownTerm = errors.New("unknown term")

	// ErrMissingInput reports an input variable without a crisp value
	ErrMissingInput = errors.New("missing input value")

	// ErrInvalidInput reports a crisp value that cannot be clamped (NaN)
	ErrInvalidInput = errors.New("invalid input value")

	// ErrNoRuleFired reports an aggregated output with zero area
	ErrNoRuleFired = errors.New("no rule fired")
)
