package emotion

import (
	"fmt"

	"github.com/smegmarip/stash-emotion-plugin/internal/fuzzy"
)

// Fuzzy variable names
const (
	MouthCurvature  = "mouth_curvature"
	EyeOpenness     = "eye_openness"
	EyebrowPosition = "eyebrow_position"
	JawPosition     = "jaw_position"
	NoseSneer       = "nose_sneer"
	Emotion         = "emotion"
)

// Emotion labels in declaration order; ties between labels resolve to the earlier one
const (
	Happiness    = "happiness"
	Sadness      = "sadness"
	Surprise     = "surprise"
	Anger        = "anger"
	Fear         = "fear"
	Disgust      = "disgust"
	Undetermined = "undetermined"
)

// Labels lists the emotion labels in declaration order
var Labels = []string{Happiness, Sadness, Surprise, Anger, Fear, Disgust}

type termDef struct {
	name    string
	a, b, c float64
}

type variableDef struct {
	name     string
	min, max float64
	terms    []termDef
}

var inputDefs = []variableDef{
	{MouthCurvature, -1, 1, []termDef{
		{"frown", -1, -0.5, 0},
		{"neutral", -0.2, 0, 0.2},
		{"smile", 0, 0.5, 1},
	}},
	{EyeOpenness, 0, 1, []termDef{
		{"narrow", 0, 0.2, 0.5},
		{"normal", 0.4, 0.6, 0.8},
		{"wide", 0.7, 1, 1},
	}},
	{EyebrowPosition, -1, 1, []termDef{
		{"lowered", -1, -0.5, 0},
		{"neutral", -0.2, 0, 0.2},
		{"raised", 0, 0.5, 1},
	}},
	{JawPosition, 0, 1, []termDef{
		{"closed", 0, 0.2, 0.5},
		{"slightly_open", 0.3, 0.5, 0.7},
		{"wide_open", 0.6, 1, 1},
	}},
	{NoseSneer, 0, 1, []termDef{
		{"none", 0, 0.2, 0.4},
		{"moderate", 0.3, 0.5, 0.7},
		{"strong", 0.6, 1, 1},
	}},
}

var outputDef = variableDef{Emotion, 0, 1, []termDef{
	{Happiness, 0.7, 0.9, 1},
	{Sadness, 0.1, 0.3, 0.5},
	{Surprise, 0.6, 0.8, 1},
	{Anger, 0.4, 0.6, 0.8},
	{Fear, 0.5, 0.7, 0.9},
	{Disgust, 0.2, 0.4, 0.6},
}}

var (
	frown        = fuzzy.Is(MouthCurvature, "frown")
	mouthNeutral = fuzzy.Is(MouthCurvature, "neutral")
	smile        = fuzzy.Is(MouthCurvature, "smile")

	narrow = fuzzy.Is(EyeOpenness, "narrow")
	normal = fuzzy.Is(EyeOpenness, "normal")
	wide   = fuzzy.Is(EyeOpenness, "wide")

	lowered     = fuzzy.Is(EyebrowPosition, "lowered")
	browNeutral = fuzzy.Is(EyebrowPosition, "neutral")
	raised      = fuzzy.Is(EyebrowPosition, "raised")

	closed       = fuzzy.Is(JawPosition, "closed")
	slightlyOpen = fuzzy.Is(JawPosition, "slightly_open")
	wideOpen     = fuzzy.Is(JawPosition, "wide_open")

	moderateSneer = fuzzy.Is(NoseSneer, "moderate")
	strongSneer   = fuzzy.Is(NoseSneer, "strong")
)

// DefaultRules returns the 21 expression rules. Rules 4 and 21 map a neutral
// face to happiness.
func DefaultRules() []fuzzy.Rule {
	then := func(label string, antecedent fuzzy.Expr) fuzzy.Rule {
		return fuzzy.NewRule(antecedent, Emotion, label)
	}

	return []fuzzy.Rule{
		// happiness
		then(Happiness, fuzzy.And(smile, normal, browNeutral)),
		then(Happiness, fuzzy.And(smile, wide, raised)),
		then(Happiness, fuzzy.And(smile, narrow)),
		then(Happiness, fuzzy.And(mouthNeutral, browNeutral)),

		// sadness
		then(Sadness, fuzzy.And(frown, lowered, narrow)),
		then(Sadness, fuzzy.And(frown, narrow, closed)),
		then(Sadness, fuzzy.And(mouthNeutral, lowered, narrow)),

		// surprise
		then(Surprise, fuzzy.And(wide, wideOpen, raised)),
		then(Surprise, fuzzy.And(wide, slightlyOpen, browNeutral)),
		then(Surprise, fuzzy.And(mouthNeutral, wide, raised)),

		// anger
		then(Anger, fuzzy.And(frown, fuzzy.Or(lowered, browNeutral), narrow)),
		then(Anger, fuzzy.And(lowered, narrow, strongSneer)),
		then(Anger, fuzzy.And(frown, lowered, moderateSneer)),
		then(Anger, fuzzy.And(narrow, lowered, closed)),

		// fear
		then(Fear, fuzzy.And(wide, raised, slightlyOpen)),
		then(Fear, fuzzy.And(wide, mouthNeutral, raised)),
		then(Fear, fuzzy.And(wide, wideOpen, moderateSneer)),

		// disgust
		then(Disgust, fuzzy.And(moderateSneer, frown, closed)),
		then(Disgust, fuzzy.And(strongSneer, mouthNeutral, slightlyOpen)),
		then(Disgust, fuzzy.And(lowered, strongSneer, narrow)),

		// neutral expression
		then(Happiness, fuzzy.And(mouthNeutral, normal, browNeutral)),
	}
}

// DefaultSystem builds the five-input emotion rule base
func DefaultSystem() (*fuzzy.System, error) {
	inputs := make([]*fuzzy.Variable, 0, len(inputDefs))
	for _, def := range inputDefs {
		v, err := def.build()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, v)
	}

	output, err := outputDef.build()
	if err != nil {
		return nil, err
	}

	return fuzzy.NewSystem(inputs, output, DefaultRules())
}

// MustDefaultSystem is DefaultSystem for program initialization
func MustDefaultSystem() *fuzzy.System {
	system, err := DefaultSystem()
	if err != nil {
		panic(fmt.Sprintf("emotion: default rule base is invalid: %v", err))
	}
	return system
}

func (def variableDef) build() (*fuzzy.Variable, error) {
	v, err := fuzzy.NewVariable(def.name, def.min, def.max)
	if err != nil {
		return nil, err
	}
	for _, t := range def.terms {
		mf, err := fuzzy.NewTriangular(t.a, t.b, t.c)
		if err != nil {
			return nil, fmt.Errorf("term %s.%s: %w", def.name, t.name, err)
		}
		if err := v.AddTerm(t.name, mf); err != nil {
			return nil, err
		}
	}
	return v, nil
}
