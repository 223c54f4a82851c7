package vision

import (
	"time"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// AnalyzeRequest represents job submission parameters (matching Vision API schema)
type AnalyzeRequest struct {
	Source         string  `json:"source"`
	SourceID       string  `json:"source_id"`
	JobID          string  `json:"job_id,omitempty"`
	ProcessingMode string  `json:"processing_mode,omitempty"` // sequential or parallel
	Modules        Modules `json:"modules"`
}

// Modules configures which analysis modules to enable
type Modules struct {
	Blendshapes BlendshapesModule `json:"blendshapes"`
}

// BlendshapesModule configuration
type BlendshapesModule struct {
	Enabled    bool                  `json:"enabled"`
	Parameters BlendshapesParameters `json:"parameters,omitempty"`
}

// BlendshapesParameters configures the face landmarker
type BlendshapesParameters struct {
	MaxFaces          int     `json:"max_faces,omitempty"`           // default: 5
	MinFaceConfidence float64 `json:"min_face_confidence,omitempty"` // default: 0.5
	CacheDuration     int     `json:"cache_duration,omitempty"`      // default: 3600
}

// JobResponse represents job submission response
type JobResponse struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// JobStatus represents job status and progress
type JobStatus struct {
	JobID       string                 `json:"job_id"`
	Status      string                 `json:"status"`
	Progress    float64                `json:"progress"`
	Stage       string                 `json:"stage,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Summary     map[string]interface{} `json:"result_summary,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	StartedAt   *time.Time             `json:"started_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	FailedAt    *time.Time             `json:"failed_at,omitempty"`
}

// AnalyzeResults represents the full analysis results from Vision API
type AnalyzeResults struct {
	JobID       string              `json:"job_id"`
	SourceID    string              `json:"source_id"`
	Status      string              `json:"status"`
	Blendshapes *BlendshapesResults `json:"blendshapes,omitempty"`
	Metadata    interface{}         `json:"metadata,omitempty"`
}

// BlendshapesResults holds every face found in the source
type BlendshapesResults struct {
	SourceID string         `json:"source_id"`
	Faces    []Face         `json:"faces"`
	Metadata ResultMetadata `json:"metadata"`
}

// Face is one detected face with its blendshape categories
type Face struct {
	FaceIndex  int         `json:"face_index"`
	BBox       BoundingBox `json:"bbox"`
	Confidence float64     `json:"confidence"`
	Categories []Category  `json:"blendshapes"`
}

// Category is one named blendshape score
type Category struct {
	Index        int     `json:"index"`
	Score        float64 `json:"score"`
	CategoryName string  `json:"category_name"`
	DisplayName  string  `json:"display_name,omitempty"`
}

// BoundingBox represents face coordinates
type BoundingBox struct {
	XMin int `json:"x_min"`
	YMin int `json:"y_min"`
	XMax int `json:"x_max"`
	YMax int `json:"y_max"`
}

// ResultMetadata provides processing statistics
type ResultMetadata struct {
	Source                string  `json:"source"`
	ImageWidth            int     `json:"image_width"`
	ImageHeight           int     `json:"image_height"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	Model                 string  `json:"model"`
}

// Blendshapes converts the category list to a name→score map. When a name
// repeats, the first occurrence wins.
func (f Face) Blendshapes() emotion.Blendshapes {
	shapes := make(emotion.Blendshapes, len(f.Categories))
	for _, c := range f.Categories {
		if _, seen := shapes[c.CategoryName]; seen {
			continue
		}
		shapes[c.CategoryName] = c.Score
	}
	return shapes
}

// Area returns the bounding box area in pixels
func (b BoundingBox) Area() int {
	w, h := b.XMax-b.XMin, b.YMax-b.YMin
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}
