package rpc

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stashapp/stash/pkg/plugin/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
	"github.com/smegmarip/stash-emotion-plugin/internal/stash/stashtest"
	"github.com/smegmarip/stash-emotion-plugin/internal/store"
)

func run(t *testing.T, s *Service, srv *stashtest.Server, args map[string]interface{}) common.PluginOutput {
	t.Helper()
	var output common.PluginOutput
	input := common.PluginInput{
		ServerConnection: srv.Connection(t),
		Args:             make(common.ArgsMap, len(args)),
	}
	for key, value := range args {
		input.Args[key] = value
	}
	require.NoError(t, s.Run(input, &output))
	return output
}

func outputError(output common.PluginOutput) string {
	if output.Error == nil {
		return ""
	}
	return *output.Error
}

func newTestServer(t *testing.T) *stashtest.Server {
	t.Helper()
	srv := stashtest.NewServer(t)
	srv.SetPluginSettings(PluginID, map[string]interface{}{
		"cooldownSeconds": 0,
	})
	return srv
}

func TestRun_ClassifyBlendshapes(t *testing.T) {
	srv := newTestServer(t)

	output := run(t, NewService(), srv, map[string]interface{}{
		"mode":        "classifyBlendshapes",
		"blendshapes": map[string]interface{}{},
	})

	require.Empty(t, outputError(output))
	face, ok := output.Output.(*FaceEmotion)
	require.True(t, ok, "output should be a face classification, got %T", output.Output)
	assert.Equal(t, emotion.Happiness, face.Label)
	assert.InDelta(t, 13.0/15.0, face.Confidence, 1e-9)
	assert.True(t, face.Accepted)
	assert.Equal(t, "Emotion: Happiness", face.Tag)
	assert.Equal(t, 0, srv.Updates(), "inline classification never touches images")
}

func TestRun_ClassifyBlendshapes_CategoryList(t *testing.T) {
	srv := newTestServer(t)

	output := run(t, NewService(), srv, map[string]interface{}{
		"mode": "classifyBlendshapes",
		"blendshapes": `[
			{"category_name": "mouthFrownLeft", "score": 0.35},
			{"category_name": "mouthFrownRight", "score": 0.35},
			{"category_name": "browDownLeft", "score": 0.35},
			{"category_name": "browDownRight", "score": 0.35},
			{"category_name": "noseSneerLeft", "score": 0.35},
			{"category_name": "noseSneerRight", "score": 0.35},
			{"category_name": "eyeWideLeft", "score": 0.42},
			{"category_name": "eyeWideRight", "score": 0.42},
			{"category_name": "jawOpen", "score": 0.4}
		]`,
	})

	require.Empty(t, outputError(output))
	face := output.Output.(*FaceEmotion)
	assert.Equal(t, emotion.Anger, face.Label)
	assert.InDelta(t, 1.0, face.Membership, 1e-9)
	assert.Equal(t, "Emotion: Anger", face.Tag)
}

func TestRun_ClassifyBlendshapes_PolicyFromSettings(t *testing.T) {
	srv := stashtest.NewServer(t)
	srv.SetPluginSettings(PluginID, map[string]interface{}{"policy": "permissive"})

	output := run(t, NewService(), srv, map[string]interface{}{
		"mode":        "classifyBlendshapes",
		"blendshapes": map[string]interface{}{"mouthSmileLeft": 0.9, "mouthSmileRight": 0.9},
	})

	face := output.Output.(*FaceEmotion)
	assert.Equal(t, emotion.Undetermined, face.Label)
	assert.Equal(t, 0.0, face.Confidence)
	assert.True(t, face.Accepted, "permissive policy tags undetermined faces")
	assert.Equal(t, "Emotion: Undetermined", face.Tag)

	output = run(t, NewService(), srv, map[string]interface{}{
		"mode":        "classifyBlendshapes",
		"policy":      "balanced",
		"blendshapes": map[string]interface{}{"mouthSmileLeft": 0.9, "mouthSmileRight": 0.9},
	})
	face = output.Output.(*FaceEmotion)
	assert.False(t, face.Accepted, "task arguments override the saved policy")
	assert.Equal(t, "no_rule_fired", face.Reason)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"unknown mode", map[string]interface{}{"mode": "paint"}, "unknown mode: paint"},
		{"missing blendshapes", map[string]interface{}{"mode": "classifyBlendshapes"}, "blendshapes argument is required"},
		{"bad blendshape score", map[string]interface{}{"mode": "classifyBlendshapes", "blendshapes": map[string]interface{}{"jawOpen": true}}, "non-numeric"},
		{"invalid config", map[string]interface{}{"mode": "classifyBlendshapes", "policy": "reckless"}, "failed to load config"},
		{"vision not configured", map[string]interface{}{"mode": "classifyImages"}, "vision service URL is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			output := run(t, NewService(), srv, tt.args)
			assert.Contains(t, outputError(output), tt.want)
			assert.Nil(t, output.Output)
		})
	}
}

func TestRun_ClassifyImage(t *testing.T) {
	srv := newTestServer(t)
	outdoor := srv.AddTag("Outdoor")
	srv.AddImage("1", "/images/1.jpg", outdoor)

	detector := new(mockDetector)
	detector.On("HealthCheck").Return(nil)
	detector.On("DetectBlendshapes", "/images/1.jpg", "1").Return(faces("1", neutralFace, angryFace), nil).Once()

	dbPath := filepath.Join(t.TempDir(), "emotion.db")
	output := run(t, &Service{detector: detector}, srv, map[string]interface{}{
		"mode":    "classifyImage",
		"imageId": float64(1),
		"dbPath":  dbPath,
	})

	require.Empty(t, outputError(output))
	response, ok := output.Output.(*ClassifyImageResponse)
	require.True(t, ok)
	assert.Equal(t, "1", response.ImageID)
	require.Len(t, response.Faces, 2)
	assert.Equal(t, emotion.Happiness, response.Faces[0].Label)
	assert.Equal(t, emotion.Anger, response.Faces[1].Label)
	assert.Equal(t, 10, response.Faces[1].BoundingBox.XMin)

	assert.Equal(t, []string{"Emotion Scanned", "Emotion: Anger", "Emotion: Happiness", "Outdoor"}, srv.ImageTags("1"))
	detector.AssertExpectations(t)

	history, err := store.Open(dbPath)
	require.NoError(t, err)
	defer history.Close()
	counts, err := history.CountByLabel()
	require.NoError(t, err)
	assert.Equal(t, []store.LabelCount{{Label: emotion.Anger, Count: 1}, {Label: emotion.Happiness, Count: 1}}, counts)
}

func TestRun_ClassifyImage_NotFound(t *testing.T) {
	srv := newTestServer(t)
	detector := new(mockDetector)
	detector.On("HealthCheck").Return(nil)

	output := run(t, &Service{detector: detector}, srv, map[string]interface{}{
		"mode":    "classifyImage",
		"imageId": "404",
	})

	assert.Contains(t, outputError(output), "failed to get image")
	detector.AssertNotCalled(t, "DetectBlendshapes", mock.Anything, mock.Anything)
}

func TestRun_VisionUnhealthy(t *testing.T) {
	srv := newTestServer(t)
	detector := new(mockDetector)
	detector.On("HealthCheck").Return(errors.New("connection refused"))

	output := run(t, &Service{detector: detector}, srv, map[string]interface{}{"mode": "classifyNewImages"})

	assert.Contains(t, outputError(output), "vision service unavailable")
}

func TestRun_ClassifyNewImages(t *testing.T) {
	srv := newTestServer(t)
	srv.SetPluginSettings(PluginID, map[string]interface{}{
		"cooldownSeconds": 0,
		"maxBatchSize":    2,
	})
	scanned := srv.AddTag("Emotion Scanned")
	for _, id := range []string{"1", "3", "4", "5"} {
		srv.AddImage(id, "/images/"+id+".jpg")
	}
	srv.AddImage("2", "/images/2.jpg", scanned)

	detector := new(mockDetector)
	detector.On("HealthCheck").Return(nil)
	detector.On("DetectBlendshapes", "/images/1.jpg", "1").Return(faces("1", neutralFace), nil).Once()
	detector.On("DetectBlendshapes", "/images/3.jpg", "3").Return(nil, errors.New("decode failed")).Once()
	detector.On("DetectBlendshapes", "/images/4.jpg", "4").Return(faces("4", angryFace), nil).Once()
	detector.On("DetectBlendshapes", "/images/5.jpg", "5").Return(faces("5"), nil).Once()

	output := run(t, &Service{detector: detector}, srv, map[string]interface{}{"mode": "classifyNewImages"})

	require.Empty(t, outputError(output))
	detector.AssertExpectations(t)
	detector.AssertNotCalled(t, "DetectBlendshapes", "/images/2.jpg", "2")

	assert.Equal(t, []string{"Emotion Scanned", "Emotion: Happiness"}, srv.ImageTags("1"))
	assert.Equal(t, []string{"Emotion Scanned"}, srv.ImageTags("2"))
	assert.Empty(t, srv.ImageTags("3"), "failed images are left for the next run")
	assert.Equal(t, []string{"Emotion Scanned", "Emotion: Anger"}, srv.ImageTags("4"))
	assert.Equal(t, []string{"Emotion Scanned"}, srv.ImageTags("5"), "faceless images are still marked scanned")
}

func TestRun_ClassifyImages_Limit(t *testing.T) {
	srv := newTestServer(t)
	for _, id := range []string{"1", "2", "3"} {
		srv.AddImage(id, "/images/"+id+".jpg")
	}

	detector := new(mockDetector)
	detector.On("HealthCheck").Return(nil)
	detector.On("DetectBlendshapes", mock.Anything, mock.Anything).Return(faces("x", neutralFace), nil)

	output := run(t, &Service{detector: detector}, srv, map[string]interface{}{
		"mode":  "classifyImages",
		"limit": float64(2),
	})

	require.Empty(t, outputError(output))
	detector.AssertNumberOfCalls(t, "DetectBlendshapes", 2)
	assert.NotEmpty(t, srv.ImageTags("1"))
	assert.NotEmpty(t, srv.ImageTags("2"))
	assert.Empty(t, srv.ImageTags("3"))
}

func TestRun_ResetEmotionTags(t *testing.T) {
	srv := newTestServer(t)
	outdoor := srv.AddTag("Outdoor")
	happy := srv.AddTag("Emotion: Happiness")
	scanned := srv.AddTag("Emotion Scanned")
	srv.AddImage("1", "/images/1.jpg", happy, scanned, outdoor)
	srv.AddImage("2", "/images/2.jpg", outdoor)
	srv.AddImage("3", "/images/3.jpg", scanned)

	output := run(t, NewService(), srv, map[string]interface{}{"mode": "resetEmotionTags"})

	require.Empty(t, outputError(output))
	assert.Equal(t, []string{"Outdoor"}, srv.ImageTags("1"))
	assert.Equal(t, []string{"Outdoor"}, srv.ImageTags("2"))
	assert.Empty(t, srv.ImageTags("3"))
	assert.Equal(t, 2, srv.Updates())
	_, created := srv.TagID("Emotion: Undetermined")
	assert.False(t, created, "reset does not create tags it removes")
}

func TestRun_ResetEmotionTags_NeverScanned(t *testing.T) {
	srv := stashtest.NewServer(t)
	srv.SetPluginSettings(PluginID, map[string]interface{}{
		"cooldownSeconds":     0,
		"undeterminedTagName": "No Emotion",
	})
	outdoor := srv.AddTag("Outdoor")
	srv.AddImage("1", "/images/1.jpg", outdoor)

	output := run(t, NewService(), srv, map[string]interface{}{"mode": "resetEmotionTags"})

	require.Empty(t, outputError(output))
	assert.Equal(t, []string{"Outdoor"}, srv.ImageTags("1"))
	assert.Equal(t, 0, srv.Updates())
	for _, name := range []string{"Emotion Scanned", "No Emotion"} {
		_, created := srv.TagID(name)
		assert.False(t, created, "reset created tag %q", name)
	}
}

func TestRun_ResetEmotionTags_CustomUndeterminedTag(t *testing.T) {
	srv := stashtest.NewServer(t)
	srv.SetPluginSettings(PluginID, map[string]interface{}{
		"cooldownSeconds":     0,
		"undeterminedTagName": "No Emotion",
	})
	outdoor := srv.AddTag("Outdoor")
	none := srv.AddTag("No Emotion")
	srv.AddImage("1", "/images/1.jpg", none, outdoor)
	srv.AddImage("2", "/images/2.jpg", outdoor)

	output := run(t, NewService(), srv, map[string]interface{}{"mode": "resetEmotionTags"})

	require.Empty(t, outputError(output))
	assert.Equal(t, []string{"Outdoor"}, srv.ImageTags("1"))
	assert.Equal(t, []string{"Outdoor"}, srv.ImageTags("2"))
	assert.Equal(t, 1, srv.Updates())
	_, created := srv.TagID("Emotion Scanned")
	assert.False(t, created)
}

func TestStop(t *testing.T) {
	s := NewService()
	var stopped bool
	require.NoError(t, s.Stop(struct{}{}, &stopped))
	assert.True(t, stopped)

	_, err := s.classifyImage("1")
	assert.EqualError(t, err, "operation cancelled")
}
