package emotion

import "math"

// Blendshape category names emitted by the face landmark model
const (
	MouthSmileLeft  = "mouthSmileLeft"
	MouthSmileRight = "mouthSmileRight"
	MouthFrownLeft  = "mouthFrownLeft"
	MouthFrownRight = "mouthFrownRight"
	EyeWideLeft     = "eyeWideLeft"
	EyeWideRight    = "eyeWideRight"
	BrowInnerUp     = "browInnerUp"
	BrowDownLeft    = "browDownLeft"
	BrowDownRight   = "browDownRight"
	JawOpen         = "jawOpen"
	NoseSneerLeft   = "noseSneerLeft"
	NoseSneerRight  = "noseSneerRight"
)

// RawScoreCeiling caps every raw blendshape score; derived scores are divided
// by it so they reoccupy a bounded range.
const RawScoreCeiling = 0.7

// Blendshapes maps blendshape category names to scores, typically in [0, 1]
type Blendshapes map[string]float64

// Score returns the clamped score for name. Missing names score 0.
func (b Blendshapes) Score(name string) float64 {
	v, ok := b[name]
	if !ok || math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(v, RawScoreCeiling))
}

// Scores holds the five facial-action scores fed to the fuzzy system
type Scores struct {
	MouthCurvature  float64 `json:"mouth_curvature"`  // [-1, 1], frown to smile
	EyeOpenness     float64 `json:"eye_openness"`     // [0, 1]
	EyebrowPosition float64 `json:"eyebrow_position"` // [-1, 1], lowered to raised
	JawPosition     float64 `json:"jaw_position"`     // [0, 1]
	NoseSneer       float64 `json:"nose_sneer"`       // [0, 1]
}

// DeriveScores combines raw blendshapes into facial-action scores
func DeriveScores(b Blendshapes) Scores {
	return Scores{
		MouthCurvature: normalize(
			(b.Score(MouthSmileLeft) + b.Score(MouthSmileRight) -
				b.Score(MouthFrownLeft) - b.Score(MouthFrownRight)) / 2,
		),
		EyeOpenness: normalize(
			(b.Score(EyeWideLeft) + b.Score(EyeWideRight)) / 2,
		),
		EyebrowPosition: normalize(
			b.Score(BrowInnerUp) - (b.Score(BrowDownLeft)+b.Score(BrowDownRight))/2,
		),
		JawPosition: normalize(b.Score(JawOpen)),
		NoseSneer: normalize(
			(b.Score(NoseSneerLeft) + b.Score(NoseSneerRight)) / 2,
		),
	}
}

// Inputs keys the scores by fuzzy variable name
func (s Scores) Inputs() map[string]float64 {
	return map[string]float64{
		MouthCurvature:  s.MouthCurvature,
		EyeOpenness:     s.EyeOpenness,
		EyebrowPosition: s.EyebrowPosition,
		JawPosition:     s.JawPosition,
		NoseSneer:       s.NoseSneer,
	}
}

func normalize(score float64) float64 {
	return score / RawScoreCeiling
}
