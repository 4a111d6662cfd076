package quiz

import "testing"

func TestCheckTextAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected string
		given    string
		correct  bool
		nearMiss bool
	}{
		{
			name:     "exact match",
			expected: "water",
			given:    "water",
			correct:  true,
		},
		{
			name:     "case is ignored",
			expected: "Water",
			given:    "wATER",
			correct:  true,
		},
		{
			name:     "surrounding whitespace is ignored",
			expected: "water",
			given:    "  water \n",
			correct:  true,
		},
		{
			name:     "kana answers compare exactly",
			expected: "ねこ",
			given:    "ねこ",
			correct:  true,
		},
		{
			name:     "wrong answer",
			expected: "water",
			given:    "fire",
		},
		{
			name:     "transposition is two edits and not a near miss",
			expected: "water",
			given:    "watre",
			nearMiss: false,
		},
		{
			name:     "single substitution flags a near miss",
			expected: "water",
			given:    "wader",
			nearMiss: true,
		},
		{
			name:     "missing letter flags a near miss",
			expected: "water",
			given:    "wter",
			nearMiss: true,
		},
		{
			name:     "short answers never flag near misses",
			expected: "cat",
			given:    "car",
			nearMiss: false,
		},
		{
			name:     "empty input",
			expected: "water",
			given:    "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := CheckTextAnswer(tt.expected, tt.given)
			if result.Correct != tt.correct {
				t.Errorf("Correct = %v, want %v", result.Correct, tt.correct)
			}
			if result.NearMiss != tt.nearMiss {
				t.Errorf("NearMiss = %v, want %v", result.NearMiss, tt.nearMiss)
			}
		})
	}
}
