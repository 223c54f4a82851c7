package rpc

import (
	"fmt"
	"strings"

	graphql "github.com/hasura/go-graphql-client"
	"github.com/stashapp/stash/pkg/plugin/common/log"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
	"github.com/smegmarip/stash-emotion-plugin/internal/stash"
)

// ============================================================================
// Image Business Logic (Service Layer)
// ============================================================================

const defaultScannedTag = "Emotion Scanned"

// classifyImage classifies the faces of a single image and tags it
func (s *Service) classifyImage(imageID string) (*ClassifyImageResponse, error) {
	if s.stopping {
		return nil, fmt.Errorf("operation cancelled")
	}
	if imageID == "" {
		return nil, fmt.Errorf("imageId argument is required")
	}

	log.Infof("Fetching image: %s", imageID)
	image, err := stash.GetImage(s.graphqlClient, graphql.ID(imageID))
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return s.classifyAndTag(image)
}

// classifyAndTag classifies every face the vision service finds in the image,
// then adds the accepted emotion tags and the scanned tag
func (s *Service) classifyAndTag(image *stash.Image) (*ClassifyImageResponse, error) {
	if len(image.Files) == 0 {
		return nil, fmt.Errorf("image %s has no files", image.ID)
	}
	imagePath := image.Files[0].Path
	log.Debugf("Image path: %s", imagePath)

	detected, err := s.detector.DetectBlendshapes(imagePath, string(image.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to detect blendshapes: %w", err)
	}

	response := &ClassifyImageResponse{
		ImageID: string(image.ID),
		Faces:   []FaceEmotion{},
	}
	if len(detected.Faces) == 0 {
		log.Infof("No faces detected in image %s", image.ID)
	}

	var tagIDs []graphql.ID
	for _, face := range detected.Faces {
		result, err := s.classifier.ClassifyBlendshapes(face.Blendshapes())
		if err != nil {
			log.Warnf("Failed to classify face %d in image %s: %v", face.FaceIndex, image.ID, err)
			continue
		}
		s.record(imagePath, result)

		faceEmotion := s.evaluate(result)
		faceEmotion.FaceIndex = face.FaceIndex
		bbox := face.BBox
		faceEmotion.BoundingBox = &bbox
		response.Faces = append(response.Faces, faceEmotion)

		log.Debugf("Face %d: %s (confidence=%.3f, membership=%.3f, %s)",
			face.FaceIndex, result.Label, result.Confidence, result.LabelMembership, faceEmotion.Reason)
		if !faceEmotion.Accepted {
			continue
		}

		tagID, err := stash.GetOrCreateTag(s.graphqlClient, s.tagCache, faceEmotion.Tag, "")
		if err != nil {
			return nil, fmt.Errorf("failed to get emotion tag: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}

	scannedTagID, err := stash.GetOrCreateTag(s.graphqlClient, s.tagCache, s.config.ScannedTagName, defaultScannedTag)
	if err != nil {
		return nil, fmt.Errorf("failed to get scanned tag: %w", err)
	}
	tagIDs = append(tagIDs, scannedTagID)

	if err := stash.AddTagsToImage(s.graphqlClient, image, tagIDs...); err != nil {
		return nil, err
	}

	log.Infof("Classified image %s: %d face(s), %d emotion tag(s)", image.ID, len(response.Faces), len(tagIDs)-1)
	return response, nil
}

// classifyImages performs batch classification of images. With newOnly,
// images already carrying the scanned tag are skipped.
func (s *Service) classifyImages(newOnly bool, limit int) error {
	if s.stopping {
		return fmt.Errorf("operation cancelled")
	}

	mode := "all images"
	if newOnly {
		mode = "unscanned images only"
	}
	log.Infof("Starting batch emotion classification (%s)", mode)

	scannedTagID, err := stash.GetOrCreateTag(s.graphqlClient, s.tagCache, s.config.ScannedTagName, defaultScannedTag)
	if err != nil {
		return fmt.Errorf("failed to get scanned tag: %w", err)
	}

	var filter *stash.ImageFilterType
	if newOnly {
		filter = stash.TagFilter([]graphql.ID{scannedTagID}, true)
	}

	var failedCount, successCount int
	err = s.processImageBatches(filter, newOnly, limit, func(image *stash.Image) error {
		if _, err := s.classifyAndTag(image); err != nil {
			failedCount++
			return err
		}
		successCount++
		return nil
	})
	if err != nil {
		return err
	}

	log.Infof("Batch classification complete: %d succeeded, %d failed", successCount, failedCount)
	return nil
}

// resetEmotionTags removes emotion and scanned tags from every image so the
// next run classifies them again
func (s *Service) resetEmotionTags(limit int) error {
	if s.stopping {
		return fmt.Errorf("operation cancelled")
	}

	tags, err := stash.FindTagsByPrefix(s.graphqlClient, s.config.TagPrefix)
	if err != nil {
		return fmt.Errorf("failed to find emotion tags: %w", err)
	}
	tagIDs := make([]graphql.ID, 0, len(tags)+2)
	for _, tag := range tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	names := []string{s.config.ScannedTagName}
	if u := s.config.UndeterminedTagName; u != "" && !strings.HasPrefix(u, s.config.TagPrefix) {
		names = append(names, u)
	}
	for _, name := range names {
		tagID, found, err := stash.FindTag(s.graphqlClient, s.tagCache, name)
		if err != nil {
			return fmt.Errorf("failed to find tag %s: %w", name, err)
		}
		if !found {
			log.Debugf("Tag '%s' does not exist, nothing to reset", name)
			continue
		}
		tagIDs = append(tagIDs, tagID)
	}
	if len(tagIDs) == 0 {
		log.Infof("No emotion tags found, nothing to reset")
		return nil
	}
	log.Infof("Resetting %d emotion tag(s)", len(tagIDs))

	// Tagged images leave the filter once reset, so batches restart at page 1
	resetCount := 0
	err = s.processImageBatches(stash.TagFilter(tagIDs, false), true, limit, func(image *stash.Image) error {
		if err := stash.RemoveTagsFromImage(s.graphqlClient, image, tagIDs...); err != nil {
			return err
		}
		resetCount++
		return nil
	})
	if err != nil {
		return err
	}

	log.Infof("Reset complete: %d images processed", resetCount)
	return nil
}

// processImageBatches pages through images matching filter and calls process
// for each. When shrinking is set, processed images drop out of the filter,
// so paging stays put until a page holds only images that already failed.
func (s *Service) processImageBatches(filter *stash.ImageFilterType, shrinking bool, limit int, process func(*stash.Image) error) error {
	batchSize := s.config.MaxBatchSize
	page := 1
	total := -1
	processedCount := 0
	failed := make(map[graphql.ID]bool)

	for {
		if s.stopping {
			return fmt.Errorf("operation cancelled")
		}

		images, count, err := stash.FindImages(s.graphqlClient, filter, page, batchSize)
		if err != nil {
			return err
		}
		if total < 0 {
			total = count
			if limit > 0 && limit < total {
				total = limit
			}
			log.Infof("Found %d images to process", count)
		}
		if len(images) == 0 || total == 0 {
			break
		}

		log.Infof("Processing batch (page %d): %d images", page, len(images))

		fresh := 0
		for i := range images {
			if s.stopping {
				return fmt.Errorf("operation cancelled")
			}
			image := &images[i]
			if failed[image.ID] {
				continue
			}
			if processedCount >= total {
				break
			}

			fresh++
			processedCount++
			log.Progress(float64(processedCount) / float64(total))
			log.Debugf("Processing image %d/%d: %s", processedCount, total, image.ID)

			if err := process(image); err != nil {
				log.Warnf("Failed to process image %s: %v", image.ID, err)
				failed[image.ID] = true
			}
		}

		if processedCount >= total || len(images) < batchSize {
			break
		}
		if !shrinking || fresh == 0 {
			page++
		}
		if fresh > 0 {
			s.applyCooldown()
		}
	}

	log.Progress(1.0)
	log.Infof("Processed %d images (%d failed)", processedCount, len(failed))
	return nil
}

// classifyBlendshapes classifies inline blendshape scores without touching
// Stash or the vision service
func (s *Service) classifyBlendshapes(b emotion.Blendshapes) (*FaceEmotion, error) {
	result, err := s.classifier.ClassifyBlendshapes(b)
	if err != nil {
		return nil, err
	}
	s.record("inline", result)

	face := s.evaluate(result)
	return &face, nil
}
