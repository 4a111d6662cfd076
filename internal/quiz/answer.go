package quiz

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// nearMissMinLength keeps single-character typo hints away from very short
// answers, where one edit is a different word rather than a typo.
const nearMissMinLength = 4

// AnswerResult is the outcome of grading one free-text answer.
type AnswerResult struct {
	Correct bool `json:"correct"`
	// NearMiss is set when the answer was wrong by a single edit. It is a
	// hint for the presentation layer and never affects grading.
	NearMiss bool `json:"near_miss"`
}

// CheckTextAnswer grades the learner's input against the expected answer.
// Comparison trims surrounding whitespace and ignores case; no width or
// kana normalization is applied.
func CheckTextAnswer(expected, given string) AnswerResult {
	want := strings.ToLower(strings.TrimSpace(expected))
	got := strings.ToLower(strings.TrimSpace(given))

	if got == want {
		return AnswerResult{Correct: true}
	}

	result := AnswerResult{}
	if len([]rune(want)) >= nearMissMinLength && levenshtein.ComputeDistance(got, want) == 1 {
		result.NearMiss = true
	}
	return result
}
