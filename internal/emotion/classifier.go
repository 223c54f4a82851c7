package emotion

import (
	"errors"
	"fmt"
	"sort"

	"github.com/stashapp/stash/pkg/plugin/common/log"

	"github.com/smegmarip/stash-emotion-plugin/internal/fuzzy"
)

// LabelMembership pairs a label with the membership of the crisp output in it
type LabelMembership struct {
	Label      string  `json:"label"`
	Membership float64 `json:"membership"`
}

// Result is the outcome of classifying one face
type Result struct {
	Confidence      float64            `json:"confidence"`       // crisp defuzzified output in [0, 1]
	Label           string             `json:"label"`            // best label or "undetermined"
	LabelMembership float64            `json:"label_membership"` // membership of Confidence in Label
	Memberships     map[string]float64 `json:"memberships"`
	Ranking         []LabelMembership  `json:"ranking"` // labels by membership, ties in declaration order
	Activations     map[string]float64 `json:"activations"`
	Scores          Scores             `json:"scores"`
}

// Undetermined reports whether no rule fired for this input
func (r Result) Undetermined() bool {
	return r.Label == Undetermined
}

// Margin returns how far the best label leads the runner-up
func (r Result) Margin() float64 {
	if len(r.Ranking) < 2 {
		return r.LabelMembership
	}
	return r.Ranking[0].Membership - r.Ranking[1].Membership
}

// Classifier runs the fuzzy system over facial-action scores. It holds no
// per-call state and is safe for concurrent use.
type Classifier struct {
	system     *fuzzy.System
	resolution float64
	method     fuzzy.Method
}

// Option configures a Classifier
type Option func(*Classifier)

// WithResolution sets the sampling step of the output universe
func WithResolution(step float64) Option {
	return func(c *Classifier) {
		if step > 0 {
			c.resolution = step
		}
	}
}

// WithMethod sets the defuzzification method
func WithMethod(method fuzzy.Method) Option {
	return func(c *Classifier) {
		if method != "" {
			c.method = method
		}
	}
}

// NewClassifier creates a classifier over the given system. The system must
// declare exactly the five facial-action input variables; its output terms are
// the candidate labels.
func NewClassifier(system *fuzzy.System, opts ...Option) (*Classifier, error) {
	if system == nil {
		return nil, fmt.Errorf("%w: system is required", fuzzy.ErrConfiguration)
	}
	required := []string{MouthCurvature, EyeOpenness, EyebrowPosition, JawPosition, NoseSneer}
	for _, name := range required {
		if _, ok := system.Input(name); !ok {
			return nil, fmt.Errorf("%w: system lacks input variable %q", fuzzy.ErrConfiguration, name)
		}
	}
	if n := len(system.Inputs()); n != len(required) {
		return nil, fmt.Errorf("%w: system declares %d input variables, want %d", fuzzy.ErrConfiguration, n, len(required))
	}

	c := &Classifier{
		system:     system,
		resolution: fuzzy.DefaultResolution,
		method:     fuzzy.MethodCentroid,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewDefaultClassifier creates a classifier over DefaultSystem
func NewDefaultClassifier(opts ...Option) (*Classifier, error) {
	system, err := DefaultSystem()
	if err != nil {
		return nil, err
	}
	return NewClassifier(system, opts...)
}

// System returns the underlying rule base
func (c *Classifier) System() *fuzzy.System {
	return c.system
}

// ClassifyBlendshapes derives facial-action scores and classifies them
func (c *Classifier) ClassifyBlendshapes(b Blendshapes) (Result, error) {
	return c.Classify(DeriveScores(b))
}

// Classify infers, defuzzifies and picks the label whose own membership
// function is highest at the crisp output. When no rule fires the result is
// labelled Undetermined with zero confidence.
func (c *Classifier) Classify(scores Scores) (Result, error) {
	out, err := c.system.Infer(scores.Inputs(), c.resolution)
	if err != nil {
		return Result{}, fmt.Errorf("failed to infer emotion: %w", err)
	}

	terms := c.system.Output().Terms()
	result := Result{
		Memberships: make(map[string]float64, len(terms)),
		Ranking:     make([]LabelMembership, 0, len(terms)),
		Activations: out.Activations,
		Scores:      scores,
	}

	crisp, err := fuzzy.Defuzzify(out, c.method)
	if errors.Is(err, fuzzy.ErrNoRuleFired) {
		log.Tracef("No emotion rule fired for scores %+v", scores)
		for _, t := range terms {
			result.Memberships[t.Name] = 0
			result.Ranking = append(result.Ranking, LabelMembership{Label: t.Name})
		}
		result.Label = Undetermined
		return result, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to defuzzify emotion: %w", err)
	}

	result.Confidence = crisp
	for _, t := range terms {
		m := t.Func.Degree(crisp)
		result.Memberships[t.Name] = m
		result.Ranking = append(result.Ranking, LabelMembership{Label: t.Name, Membership: m})
	}
	sort.SliceStable(result.Ranking, func(i, j int) bool {
		return result.Ranking[i].Membership > result.Ranking[j].Membership
	})

	result.Label = result.Ranking[0].Label
	result.LabelMembership = result.Ranking[0].Membership
	log.Tracef("Classified %+v as %s (confidence=%.3f, membership=%.3f)",
		scores, result.Label, result.Confidence, result.LabelMembership)
	return result, nil
}
