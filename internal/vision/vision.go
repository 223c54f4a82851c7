package vision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stashapp/stash/pkg/plugin/common/log"
)

// ============================================================================
// Vision Service Client - Face Blendshape Extraction
// ============================================================================
//
// This client talks to the stash-auto-vision service, which runs a face
// landmark model over an image and reports the 52 ARKit-style blendshape
// scores for every face it finds.
//
// API Flow:
// 1. Submit job with image source → receive job_id
// 2. Poll job status until completed/failed
// 3. Retrieve results with per-face blendshape categories
//
// ============================================================================

// VisionServiceClient handles communication with Vision Service
type VisionServiceClient struct {
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
	JobTimeout   time.Duration
}

// NewVisionServiceClient creates a new client
func NewVisionServiceClient(baseURL string) *VisionServiceClient {
	return &VisionServiceClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		PollInterval: 2 * time.Second,
		JobTimeout:   10 * time.Minute,
	}
}

// ============================================================================
// API Methods
// ============================================================================

// SubmitJob submits a blendshape job to the Vision Service
func (c *VisionServiceClient) SubmitJob(req AnalyzeRequest) (*JobResponse, error) {
	url := fmt.Sprintf("%s/vision/analyze", c.BaseURL)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	log.Debugf("Submitting Vision Service job: source_id=%s, source=%s", req.SourceID, req.Source)

	resp, err := c.HTTPClient.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to submit job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var jobResp JobResponse
	if err := json.NewDecoder(resp.Body).Decode(&jobResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	log.Debugf("Vision Service job submitted: job_id=%s", jobResp.JobID)
	return &jobResp, nil
}

// GetJobStatus polls job status and progress
func (c *VisionServiceClient) GetJobStatus(jobID string) (*JobStatus, error) {
	url := fmt.Sprintf("%s/vision/jobs/%s/status", c.BaseURL, jobID)

	resp, err := c.HTTPClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var status JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}

	return &status, nil
}

// GetResults retrieves job results (only available when status=completed)
func (c *VisionServiceClient) GetResults(jobID string) (*AnalyzeResults, error) {
	url := fmt.Sprintf("%s/vision/jobs/%s/results", c.BaseURL, jobID)

	resp, err := c.HTTPClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil, fmt.Errorf("job not completed yet")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var results AnalyzeResults
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}

	return &results, nil
}

// WaitForCompletion polls until the job completes, fails or JobTimeout passes
func (c *VisionServiceClient) WaitForCompletion(jobID string, progressCallback func(float64)) (*AnalyzeResults, error) {
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	timeout := time.After(c.JobTimeout)

	log.Debugf("Waiting for Vision Service job %s to complete", jobID)

	for {
		select {
		case <-ticker.C:
			status, err := c.GetJobStatus(jobID)
			if err != nil {
				return nil, err
			}

			if progressCallback != nil {
				progressCallback(status.Progress)
			}

			if status.Stage != "" {
				log.Tracef("Job %s: status=%s, stage=%s, progress=%.1f%%, message=%s",
					jobID, status.Status, status.Stage, status.Progress*100, status.Message)
			} else {
				log.Tracef("Job %s: status=%s, progress=%.1f%%",
					jobID, status.Status, status.Progress*100)
			}

			// Check terminal status
			switch status.Status {
			case "completed":
				log.Debugf("Vision Service job %s completed", jobID)
				return c.GetResults(jobID)

			case "failed":
				return nil, fmt.Errorf("job failed: %s", status.Error)
			}

		case <-timeout:
			return nil, fmt.Errorf("job timeout after %s", c.JobTimeout)
		}
	}
}

// DetectBlendshapes runs a blendshape job for one image and waits for its faces
func (c *VisionServiceClient) DetectBlendshapes(source, sourceID string) (*BlendshapesResults, error) {
	job, err := c.SubmitJob(BuildAnalyzeRequest(source, sourceID))
	if err != nil {
		return nil, err
	}

	results, err := c.WaitForCompletion(job.JobID, nil)
	if err != nil {
		return nil, err
	}

	if results.Blendshapes == nil {
		return nil, fmt.Errorf("job %s returned no blendshape results", job.JobID)
	}
	log.Debugf("Vision Service found %d face(s) in %s", len(results.Blendshapes.Faces), sourceID)
	return results.Blendshapes, nil
}

// HealthCheck checks if Vision Service is available and healthy
func (c *VisionServiceClient) HealthCheck() error {
	url := fmt.Sprintf("%s/health", c.BaseURL)

	resp, err := c.HTTPClient.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service unhealthy: status %d", resp.StatusCode)
	}

	var health map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}

	log.Debugf("Vision Service health: %+v", health)
	return nil
}

// ============================================================================
// Helper Methods
// ============================================================================

// BuildAnalyzeRequest creates a standard blendshape request
func BuildAnalyzeRequest(source, sourceID string) AnalyzeRequest {
	return AnalyzeRequest{
		Source:         source,
		SourceID:       sourceID,
		ProcessingMode: "sequential", // Sequential processing to avoid GPU memory contention
		Modules: Modules{
			Blendshapes: BlendshapesModule{
				Enabled: true,
				Parameters: BlendshapesParameters{
					MaxFaces:          5,
					MinFaceConfidence: 0.5,
					CacheDuration:     3600,
				},
			},
		},
	}
}

// IsVisionServiceAvailable checks if Vision Service is configured and reachable
func IsVisionServiceAvailable(baseURL string) bool {
	if baseURL == "" {
		return false
	}

	client := NewVisionServiceClient(baseURL)
	err := client.HealthCheck()
	if err != nil {
		log.Warnf("Vision Service not available at %s: %v", baseURL, err)
		return false
	}

	log.Infof("Vision Service available at %s", baseURL)
	return true
}
