package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session-specific validation errors
var (
	// ErrSessionIDEmpty is returned when a session ID is empty.
	ErrSessionIDEmpty = errors.New("session ID cannot be empty")

	// ErrSessionIndexNegative is returned when a stored position is negative.
	ErrSessionIndexNegative = errors.New("session index cannot be negative")

	// ErrCompletionOutOfRange is returned when a completion ratio is outside [0, 1].
	ErrCompletionOutOfRange = errors.New("completion ratio must be between 0.0 and 1.0")
)

// SessionMode distinguishes the study modes a learner can run against a set.
// Each mode keeps its own Session record for the same set.
type SessionMode string

const (
	// ModeFlashcard is the flip-card browsing mode.
	ModeFlashcard SessionMode = "flashcard"

	// ModeQuizChoice is the multiple-choice quiz mode.
	ModeQuizChoice SessionMode = "quiz_choice"

	// ModeQuizText is the free-text-input quiz mode.
	ModeQuizText SessionMode = "quiz_text"
)

// Valid reports whether the mode is one of the known study modes.
func (m SessionMode) Valid() bool {
	switch m {
	case ModeFlashcard, ModeQuizChoice, ModeQuizText:
		return true
	}
	return false
}

// IsQuiz reports whether the mode carries quiz bookkeeping (question index,
// score, answered set).
func (m SessionMode) IsQuiz() bool {
	return m == ModeQuizChoice || m == ModeQuizText
}

// SessionKey addresses exactly one Session (and its optional card order):
// the set-derived identifier plus the study mode.
type SessionKey struct {
	SessionID string
	Mode      SessionMode
}

// String renders the key for logging.
func (k SessionKey) String() string {
	return k.SessionID + "/" + string(k.Mode)
}

// Session is the mutable progress record for one learner's pass through one
// set in one mode. It is created lazily on first access, updated on every
// navigation or answer event, and deleted on explicit "clear progress".
//
// Completion is derived, never stored: FlashcardDone and QuizDone recompute
// it from the persisted position so a restart cannot trust a stale flag.
type Session struct {
	SessionID       string      `json:"session_id"`
	Mode            SessionMode `json:"mode"`
	LastViewedIndex int         `json:"last_viewed_index"`
	CompletionRatio float64     `json:"completion_ratio"`
	LastAccessAt    time.Time   `json:"last_access_at"`
	HasOrderSaved   bool        `json:"has_order_saved"`

	// Quiz bookkeeping, zero-valued for flashcard sessions.
	CurrentQuestionIndex int         `json:"current_question_index"`
	TotalQuestions       int         `json:"total_questions"`
	Score                int         `json:"score"`
	CorrectCount         int         `json:"correct_count"`
	IncorrectCount       int         `json:"incorrect_count"`
	AnsweredCardIDs      []uuid.UUID `json:"answered_card_ids,omitempty"`
}

// NewSession creates a new Session with zeroed counters for the given
// set identifier and mode. Returns an error if validation fails.
func NewSession(sessionID string, mode SessionMode) (*Session, error) {
	session := &Session{
		SessionID:    sessionID,
		Mode:         mode,
		LastAccessAt: time.Now().UTC(),
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the Session has valid data.
func (s *Session) Validate() error {
	if s.SessionID == "" {
		return ErrSessionIDEmpty
	}

	if !s.Mode.Valid() {
		return ErrInvalidSessionMode
	}

	if s.LastViewedIndex < 0 || s.CurrentQuestionIndex < 0 {
		return ErrSessionIndexNegative
	}

	if s.CompletionRatio < 0.0 || s.CompletionRatio > 1.0 {
		return ErrCompletionOutOfRange
	}

	return nil
}

// Key returns the SessionKey addressing this record.
func (s *Session) Key() SessionKey {
	return SessionKey{SessionID: s.SessionID, Mode: s.Mode}
}

// Touch refreshes the last-access timestamp.
func (s *Session) Touch() {
	s.LastAccessAt = time.Now().UTC()
}

// HasAnswered reports whether the card was already scored during this pass.
func (s *Session) HasAnswered(cardID uuid.UUID) bool {
	for _, id := range s.AnsweredCardIDs {
		if id == cardID {
			return true
		}
	}
	return false
}

// MarkAnswered appends the card to the answered set. It returns false when
// the card was already present, making repeated marking idempotent.
func (s *Session) MarkAnswered(cardID uuid.UUID) bool {
	if s.HasAnswered(cardID) {
		return false
	}
	s.AnsweredCardIDs = append(s.AnsweredCardIDs, cardID)
	return true
}

// RecordAnswer tallies one graded answer. It does not move the question
// index; advancing is a separate step so that checking and advancing stay
// independently retriable.
func (s *Session) RecordAnswer(correct bool) {
	if correct {
		s.Score++
		s.CorrectCount++
	} else {
		s.IncorrectCount++
	}
}

// AdvanceQuestion moves the question index forward by one, capped so it
// never exceeds TotalQuestions.
func (s *Session) AdvanceQuestion() {
	if s.CurrentQuestionIndex < s.TotalQuestions {
		s.CurrentQuestionIndex++
	}
}

// ResetQuizProgress zeroes the quiz counters and the answered set for a
// fresh pass through the same set.
func (s *Session) ResetQuizProgress() {
	s.CurrentQuestionIndex = 0
	s.Score = 0
	s.CorrectCount = 0
	s.IncorrectCount = 0
	s.AnsweredCardIDs = nil
}

// FlashcardDone reports whether the last card of the set has been viewed.
func (s *Session) FlashcardDone(totalCards int) bool {
	return totalCards > 0 && s.LastViewedIndex >= totalCards-1
}

// QuizDone reports whether every question of the pass has been consumed.
func (s *Session) QuizDone() bool {
	return s.TotalQuestions > 0 && s.CurrentQuestionIndex >= s.TotalQuestions
}
