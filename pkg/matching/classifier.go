package matching

// Confidence thresholds that split scored pairs into outcomes. These are
// deliberately constants rather than configuration so that every
// environment classifies the same score the same way.
const (
	// AutoLinkThreshold and above merges without human review
	AutoLinkThreshold = 85
	// ReviewThreshold and above (below AutoLinkThreshold) queues for review
	ReviewThreshold = 60
)

// Outcome is the action a confidence score maps to
type Outcome string

const (
	OutcomeAutoLink Outcome = "auto_link"
	OutcomeReview   Outcome = "review"
	OutcomeNoMatch  Outcome = "no_match"
)

// Classify maps a confidence score to an outcome
func Classify(confidence int) Outcome {
	switch {
	case confidence >= AutoLinkThreshold:
		return OutcomeAutoLink
	case confidence >= ReviewThreshold:
		return OutcomeReview
	default:
		return OutcomeNoMatch
	}
}
