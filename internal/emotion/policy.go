package emotion

import (
	"fmt"
	"strings"
)

// TaggingPolicy decides which classification results are confident enough to
// be written back as tags
type TaggingPolicy struct {
	// Minimum membership of the crisp output in the chosen label
	MinLabelMembership float64

	// Fuzzy boundary around MinLabelMembership (0.0 = hard cutoff)
	BoundaryRange float64

	// Inside the boundary zone, the lead over the runner-up label required to accept
	MinMargin float64

	// Accept "undetermined" results (no rule fired) as a label of their own
	TagUndetermined bool
}

// Predefined policies
var (
	PolicyStrict = TaggingPolicy{
		MinLabelMembership: 0.70,
		BoundaryRange:      0.03,
		MinMargin:          0.30,
		TagUndetermined:    false,
	}

	PolicyBalanced = TaggingPolicy{
		MinLabelMembership: 0.50,
		BoundaryRange:      0.05,
		MinMargin:          0.15,
		TagUndetermined:    false,
	}

	PolicyPermissive = TaggingPolicy{
		MinLabelMembership: 0.30,
		BoundaryRange:      0.10,
		MinMargin:          0.05,
		TagUndetermined:    true,
	}
)

// Decision contains the outcome of a tagging decision
type Decision struct {
	Accepted bool
	Label    string
	Reason   string
}

// EmotionFilter applies a TaggingPolicy to classification results
type EmotionFilter struct {
	policy TaggingPolicy
}

// NewEmotionFilter creates a filter with the given policy
func NewEmotionFilter(policy TaggingPolicy) *EmotionFilter {
	return &EmotionFilter{policy: policy}
}

// NewEmotionFilterByName creates a filter using a named policy
func NewEmotionFilterByName(policyName string) *EmotionFilter {
	var policy TaggingPolicy

	switch strings.ToLower(policyName) {
	case "strict":
		policy = PolicyStrict
	case "balanced", "":
		policy = PolicyBalanced
	case "permissive":
		policy = PolicyPermissive
	default:
		policy = PolicyBalanced
	}

	return &EmotionFilter{policy: policy}
}

// ShouldTag decides whether the result's label should be applied
func (ef *EmotionFilter) ShouldTag(result Result) Decision {
	decision := Decision{Label: result.Label}

	if result.Undetermined() {
		decision.Accepted = ef.policy.TagUndetermined
		if decision.Accepted {
			decision.Reason = "no_rule_fired_tagged"
		} else {
			decision.Reason = "no_rule_fired"
		}
		return decision
	}

	membership := result.LabelMembership
	threshold := ef.policy.MinLabelMembership
	boundary := ef.policy.BoundaryRange

	// Hard cutoff when the boundary is disabled
	if boundary == 0 {
		decision.Accepted = membership >= threshold
		decision.Reason = thresholdReason(decision.Accepted, membership, threshold)
		return decision
	}

	below, inZone, _ := inBoundaryZone(membership, threshold, boundary)
	switch {
	case below:
		decision.Reason = thresholdReason(false, membership, threshold)
	case inZone:
		// Boundary zone - let the lead over the runner-up decide
		margin := result.Margin()
		decision.Accepted = margin >= ef.policy.MinMargin
		if decision.Accepted {
			decision.Reason = fmt.Sprintf("fuzzy_upgraded_margin_%.3f", margin)
		} else {
			decision.Reason = fmt.Sprintf("fuzzy_degraded_margin_%.3f_below_%.3f", margin, ef.policy.MinMargin)
		}
	default:
		decision.Accepted = true
		decision.Reason = thresholdReason(true, membership, threshold)
	}
	return decision
}

// GetPolicy returns the current tagging policy
func (ef *EmotionFilter) GetPolicy() TaggingPolicy {
	return ef.policy
}

// SetPolicy updates the tagging policy
func (ef *EmotionFilter) SetPolicy(policy TaggingPolicy) {
	ef.policy = policy
}

// inBoundaryZone places value relative to the fuzzy zone around threshold
func inBoundaryZone(value, threshold, boundary float64) (below, in, above bool) {
	below = value < (threshold - boundary)
	above = value >= (threshold + boundary)
	in = !below && !above
	return
}

func thresholdReason(accepted bool, membership, threshold float64) string {
	if accepted {
		return fmt.Sprintf("membership_%.3f_meets_minimum_%.3f", membership, threshold)
	}
	return fmt.Sprintf("membership_%.3f_below_minimum_%.3f", membership, threshold)
}
