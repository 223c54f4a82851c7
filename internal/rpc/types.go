package rpc

import (
	graphql "github.com/hasura/go-graphql-client"
	"github.com/stashapp/stash/pkg/plugin/common"

	"github.com/smegmarip/stash-emotion-plugin/internal/config"
	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
	"github.com/smegmarip/stash-emotion-plugin/internal/stash"
	"github.com/smegmarip/stash-emotion-plugin/internal/store"
	"github.com/smegmarip/stash-emotion-plugin/internal/vision"
)

// PluginID is the plugin's ID in Stash, used to look up its saved settings
const PluginID = "emotion-classifier"

// BlendshapeDetector finds faces in an image and scores their blendshapes
type BlendshapeDetector interface {
	DetectBlendshapes(source, sourceID string) (*vision.BlendshapesResults, error)
	HealthCheck() error
}

// Service is the main RPC service struct
type Service struct {
	stopping         bool
	serverConnection common.StashServerConnection
	graphqlClient    *graphql.Client
	config           *config.PluginConfig
	tagCache         *stash.TagCache
	classifier       *emotion.Classifier
	filter           *emotion.EmotionFilter
	detector         BlendshapeDetector
	history          *store.Store
}

// FaceEmotion is the classification of one face
type FaceEmotion struct {
	FaceIndex   int                 `json:"face_index"`
	BoundingBox *vision.BoundingBox `json:"bounding_box,omitempty"`
	Label       string              `json:"label"`
	Confidence  float64             `json:"confidence"`
	Membership  float64             `json:"membership"`
	Memberships map[string]float64  `json:"memberships"`
	Accepted    bool                `json:"accepted"`
	Reason      string              `json:"reason"`
	Tag         string              `json:"tag,omitempty"`
}

// ClassifyImageResponse is the output of the classifyImage task
type ClassifyImageResponse struct {
	ImageID string        `json:"image_id"`
	Faces   []FaceEmotion `json:"faces"`
}
