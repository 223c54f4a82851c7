package rpc

import (
	"github.com/stretchr/testify/mock"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
	"github.com/smegmarip/stash-emotion-plugin/internal/vision"
)

// mockDetector is a mock implementation of the vision service client
type mockDetector struct {
	mock.Mock
}

// DetectBlendshapes mocks blendshape detection
func (m *mockDetector) DetectBlendshapes(source, sourceID string) (*vision.BlendshapesResults, error) {
	args := m.Called(source, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vision.BlendshapesResults), args.Error(1)
}

// HealthCheck mocks the service health check
func (m *mockDetector) HealthCheck() error {
	args := m.Called()
	return args.Error(0)
}

// faces builds detection results with one face per blendshape set
func faces(sourceID string, sets ...emotion.Blendshapes) *vision.BlendshapesResults {
	results := &vision.BlendshapesResults{SourceID: sourceID, Faces: []vision.Face{}}
	for i, set := range sets {
		face := vision.Face{
			FaceIndex:  i,
			BBox:       vision.BoundingBox{XMin: 10 * i, YMin: 0, XMax: 10*i + 10, YMax: 10},
			Confidence: 0.99,
		}
		for name, score := range set {
			face.Categories = append(face.Categories, vision.Category{CategoryName: name, Score: score})
		}
		results.Faces = append(results.Faces, face)
	}
	return results
}

var (
	neutralFace = emotion.Blendshapes{}

	angryFace = emotion.Blendshapes{
		emotion.MouthFrownLeft:  0.35,
		emotion.MouthFrownRight: 0.35,
		emotion.BrowDownLeft:    0.35,
		emotion.BrowDownRight:   0.35,
		emotion.NoseSneerLeft:   0.35,
		emotion.NoseSneerRight:  0.35,
		emotion.EyeWideLeft:     0.42,
		emotion.EyeWideRight:    0.42,
		emotion.JawOpen:         0.4,
	}
)
