package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
	"github.com/smegmarip/stash-emotion-plugin/internal/vision"
)

// FaceOutput is the classification of one face
type FaceOutput struct {
	Face        int                `json:"face"`
	Label       string             `json:"label"`
	Confidence  float64            `json:"confidence"`
	Membership  float64            `json:"membership"`
	Memberships map[string]float64 `json:"memberships"`
	Accepted    bool               `json:"accepted"`
	Reason      string             `json:"reason"`
	RecordID    string             `json:"record_id,omitempty"`
}

// ClassifyOutput is the result of the classify command
type ClassifyOutput struct {
	Source string       `json:"source"`
	Policy string       `json:"policy"`
	Method string       `json:"method"`
	Faces  []FaceOutput `json:"faces"`
}

func newClassifyCmd(opts *options) *cobra.Command {
	var (
		input  string
		policy string
		method string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify blendshape scores read from a file or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if policy != "" {
				cfg.PolicyName = policy
			}
			if method != "" {
				cfg.DefuzzMethod = method
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			data, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			faces, err := parseBlendshapes(data)
			if err != nil {
				return err
			}

			classifier, err := cfg.BuildClassifier()
			if err != nil {
				return err
			}
			filter := emotion.NewEmotionFilterByName(cfg.PolicyName)

			history, err := openStore(cfg)
			if err != nil {
				return err
			}
			if history != nil {
				defer history.Close()
			}

			source := input
			if source == "-" {
				source = "stdin"
			}
			out := ClassifyOutput{
				Source: source,
				Policy: cfg.PolicyName,
				Method: cfg.DefuzzMethod,
				Faces:  make([]FaceOutput, 0, len(faces)),
			}
			for i, b := range faces {
				result, err := classifier.ClassifyBlendshapes(b)
				if err != nil {
					return fmt.Errorf("failed to classify face %d: %w", i, err)
				}
				decision := filter.ShouldTag(result)
				face := FaceOutput{
					Face:        i,
					Label:       result.Label,
					Confidence:  result.Confidence,
					Membership:  result.LabelMembership,
					Memberships: result.Memberships,
					Accepted:    decision.Accepted,
					Reason:      decision.Reason,
				}
				if history != nil {
					if face.RecordID, err = history.Save(source, result); err != nil {
						return err
					}
				}
				out.Faces = append(out.Faces, face)
			}

			w := cmd.OutOrStdout()
			if !opts.outputText {
				return outputJSON(w, out)
			}
			for _, face := range out.Faces {
				status := "rejected"
				if face.Accepted {
					status = "accepted"
				}
				fmt.Fprintf(w, "face %d: %s (confidence %.3f, membership %.3f) %s: %s\n",
					face.Face, face.Label, face.Confidence, face.Membership, status, face.Reason)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "-", "Blendshape JSON file, or - for stdin")
	flags.StringVar(&policy, "policy", "", "Tagging policy: strict, balanced or permissive")
	flags.StringVar(&method, "method", "", "Defuzzification method: centroid, bisector or mom")
	return cmd
}

// readInput reads JSON from stdin or a file
func readInput(stdin io.Reader, input string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if input == "-" || input == "" {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("no input provided")
	}
	return data, nil
}

// parseBlendshapes accepts a name to score object, a category list, or a
// vision service result holding several faces
func parseBlendshapes(data []byte) ([]emotion.Blendshapes, error) {
	text := strings.TrimSpace(string(data))

	if strings.HasPrefix(text, "[") {
		var categories []vision.Category
		if err := json.Unmarshal(data, &categories); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return []emotion.Blendshapes{vision.Face{Categories: categories}.Blendshapes()}, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if _, ok := probe["faces"]; ok {
		var results vision.BlendshapesResults
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("failed to parse faces: %w", err)
		}
		faces := make([]emotion.Blendshapes, len(results.Faces))
		for i, face := range results.Faces {
			faces[i] = face.Blendshapes()
		}
		return faces, nil
	}

	var b emotion.Blendshapes
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse blendshapes: %w", err)
	}
	return []emotion.Blendshapes{b}, nil
}
