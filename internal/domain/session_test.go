package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewSession(t *testing.T) {
	t.Parallel() // Enable parallel execution

	session, err := NewSession("N5_verbs", ModeFlashcard)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if session.SessionID != "N5_verbs" {
		t.Errorf("Expected session ID N5_verbs, got %s", session.SessionID)
	}

	if session.LastViewedIndex != 0 {
		t.Errorf("Expected zero last viewed index, got %d", session.LastViewedIndex)
	}

	if session.CompletionRatio != 0.0 {
		t.Errorf("Expected zero completion ratio, got %f", session.CompletionRatio)
	}

	if session.HasOrderSaved {
		t.Error("Expected hasOrderSaved to be false on a new session")
	}

	if session.LastAccessAt.IsZero() {
		t.Error("Expected non-zero LastAccessAt time")
	}

	_, err = NewSession("", ModeFlashcard)
	if err != ErrSessionIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrSessionIDEmpty, err)
	}

	_, err = NewSession("N5_verbs", SessionMode("bogus"))
	if err != ErrInvalidSessionMode {
		t.Errorf("Expected error %v, got %v", ErrInvalidSessionMode, err)
	}
}

func TestSessionModeValid(t *testing.T) {
	t.Parallel() // Enable parallel execution

	for _, mode := range []SessionMode{ModeFlashcard, ModeQuizChoice, ModeQuizText} {
		if !mode.Valid() {
			t.Errorf("Expected mode %s to be valid", mode)
		}
	}

	if SessionMode("").Valid() {
		t.Error("Expected empty mode to be invalid")
	}

	if ModeFlashcard.IsQuiz() {
		t.Error("Expected flashcard mode not to be a quiz mode")
	}

	if !ModeQuizChoice.IsQuiz() || !ModeQuizText.IsQuiz() {
		t.Error("Expected quiz modes to report IsQuiz")
	}
}

func TestSessionMarkAnswered(t *testing.T) {
	t.Parallel() // Enable parallel execution

	session, err := NewSession("N5_verbs", ModeQuizChoice)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cardID := uuid.New()

	if session.HasAnswered(cardID) {
		t.Error("Expected card not to be answered yet")
	}

	if !session.MarkAnswered(cardID) {
		t.Error("Expected first MarkAnswered to report an append")
	}

	// Marking again must be a no-op with set semantics.
	if session.MarkAnswered(cardID) {
		t.Error("Expected second MarkAnswered to be idempotent")
	}

	if len(session.AnsweredCardIDs) != 1 {
		t.Errorf("Expected 1 answered card, got %d", len(session.AnsweredCardIDs))
	}
}

func TestSessionRecordAnswer(t *testing.T) {
	t.Parallel() // Enable parallel execution

	session, err := NewSession("N5_verbs", ModeQuizText)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	session.RecordAnswer(true)
	session.RecordAnswer(true)
	session.RecordAnswer(false)

	if session.Score != 2 {
		t.Errorf("Expected score 2, got %d", session.Score)
	}

	if session.CorrectCount != 2 {
		t.Errorf("Expected 2 correct, got %d", session.CorrectCount)
	}

	if session.IncorrectCount != 1 {
		t.Errorf("Expected 1 incorrect, got %d", session.IncorrectCount)
	}

	if session.CurrentQuestionIndex != 0 {
		t.Error("Expected RecordAnswer not to advance the question index")
	}
}

func TestSessionAdvanceQuestionCapped(t *testing.T) {
	t.Parallel() // Enable parallel execution

	session, err := NewSession("N5_verbs", ModeQuizChoice)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	session.TotalQuestions = 2

	session.AdvanceQuestion()
	if session.CurrentQuestionIndex != 1 {
		t.Errorf("Expected index 1, got %d", session.CurrentQuestionIndex)
	}

	session.AdvanceQuestion()
	session.AdvanceQuestion()
	session.AdvanceQuestion()
	if session.CurrentQuestionIndex != 2 {
		t.Errorf("Expected index capped at 2, got %d", session.CurrentQuestionIndex)
	}

	if !session.QuizDone() {
		t.Error("Expected quiz to be done at the cap")
	}
}

func TestSessionResetQuizProgress(t *testing.T) {
	t.Parallel() // Enable parallel execution

	session, err := NewSession("N5_verbs", ModeQuizText)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	session.TotalQuestions = 5
	session.CurrentQuestionIndex = 3
	session.RecordAnswer(true)
	session.RecordAnswer(false)
	session.MarkAnswered(uuid.New())

	session.ResetQuizProgress()

	if session.CurrentQuestionIndex != 0 || session.Score != 0 ||
		session.CorrectCount != 0 || session.IncorrectCount != 0 {
		t.Error("Expected all quiz counters to be zeroed after reset")
	}

	if len(session.AnsweredCardIDs) != 0 {
		t.Errorf("Expected empty answered set after reset, got %d entries", len(session.AnsweredCardIDs))
	}

	if session.TotalQuestions != 5 {
		t.Errorf("Expected total questions to survive reset, got %d", session.TotalQuestions)
	}
}

func TestSessionDerivedCompletion(t *testing.T) {
	t.Parallel() // Enable parallel execution

	session, err := NewSession("N5_verbs", ModeFlashcard)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if session.FlashcardDone(10) {
		t.Error("Expected fresh session not to be done")
	}

	session.LastViewedIndex = 9
	if !session.FlashcardDone(10) {
		t.Error("Expected session at the last card to be done")
	}

	// Completion is derived, never trusted from a stored flag: an empty set
	// is never done.
	if session.FlashcardDone(0) {
		t.Error("Expected zero-card set never to be done")
	}
}

func TestSessionValidate(t *testing.T) {
	t.Parallel() // Enable parallel execution

	valid := Session{SessionID: "N5_verbs", Mode: ModeFlashcard}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := valid
	invalid.LastViewedIndex = -1
	if err := invalid.Validate(); err != ErrSessionIndexNegative {
		t.Errorf("Expected error %v, got %v", ErrSessionIndexNegative, err)
	}

	invalid = valid
	invalid.CompletionRatio = 1.5
	if err := invalid.Validate(); err != ErrCompletionOutOfRange {
		t.Errorf("Expected error %v, got %v", ErrCompletionOutOfRange, err)
	}
}
