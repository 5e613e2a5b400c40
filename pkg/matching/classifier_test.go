package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		confidence int
		expected   Outcome
	}{
		{100, OutcomeAutoLink},
		{85, OutcomeAutoLink},
		{84, OutcomeReview},
		{60, OutcomeReview},
		{59, OutcomeNoMatch},
		{0, OutcomeNoMatch},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.confidence), "confidence %d", tt.confidence)
	}
}
