package api

import (
	"time"

	"github.com/google/uuid"

	"kotoba/internal/domain"
	"kotoba/internal/quiz"
)

// CardResponse is one vocabulary card as returned to clients.
type CardResponse struct {
	ID          uuid.UUID `json:"id"`
	PrimaryText string    `json:"primary_text"`
	Reading     string    `json:"reading,omitempty"`
	Meaning     string    `json:"meaning,omitempty"`
}

// SessionResponse is the full progress record for one (set, mode) pair.
type SessionResponse struct {
	SessionID            string             `json:"session_id"`
	Mode                 domain.SessionMode `json:"mode"`
	LastViewedIndex      int                `json:"last_viewed_index"`
	CompletionRatio      float64            `json:"completion_ratio"`
	LastAccessAt         time.Time          `json:"last_access_at"`
	HasOrderSaved        bool               `json:"has_order_saved"`
	CurrentQuestionIndex int                `json:"current_question_index"`
	TotalQuestions       int                `json:"total_questions"`
	Score                int                `json:"score"`
	CorrectCount         int                `json:"correct_count"`
	IncorrectCount       int                `json:"incorrect_count"`
	AnsweredCardIDs      []uuid.UUID        `json:"answered_card_ids"`
}

// SetSummaryResponse is one catalog entry: a set plus the progress of every
// mode that has touched it.
type SetSummaryResponse struct {
	Level     string            `json:"level"`
	Name      string            `json:"name"`
	SessionID string            `json:"session_id"`
	CardCount int               `json:"card_count"`
	Sessions  []SessionResponse `json:"sessions,omitempty"`
}

// SessionRequest selects the mode for session-level operations.
type SessionRequest struct {
	Mode domain.SessionMode `json:"mode" validate:"required"`
}

// ProgressRequest reports the card the learner is currently viewing.
type ProgressRequest struct {
	Mode       domain.SessionMode `json:"mode"        validate:"required"`
	Index      int                `json:"index"       validate:"gte=0"`
	TotalCards int                `json:"total_cards" validate:"required,gt=0"`
}

// OrderRequest carries the shuffled card sequence to persist.
type OrderRequest struct {
	Mode    domain.SessionMode `json:"mode"     validate:"required"`
	CardIDs []uuid.UUID        `json:"card_ids" validate:"required,min=1"`
}

// QuizRequest asks for a freshly generated question batch.
type QuizRequest struct {
	Mode domain.SessionMode `json:"mode" validate:"required"`
	// Kind forces every question to one kind; empty means pick per card.
	Kind quiz.Kind `json:"kind,omitempty"`
}

// AnswerRequest records one answered question. Text-mode answers carry
// Expected and Given and are graded server-side; choice-mode answers carry
// Correct, already graded by the client against the index shipped with the
// question.
type AnswerRequest struct {
	Mode     domain.SessionMode `json:"mode"    validate:"required"`
	CardID   uuid.UUID          `json:"card_id" validate:"required"`
	Expected string             `json:"expected,omitempty"`
	Given    string             `json:"given,omitempty"`
	Correct  *bool              `json:"correct,omitempty"`
}

// QuizResponse is a generated question batch plus the session tracking it.
type QuizResponse struct {
	Session         SessionResponse       `json:"session"`
	ChoiceQuestions []quiz.ChoiceQuestion `json:"choice_questions,omitempty"`
	TextQuestions   []quiz.TextQuestion   `json:"text_questions,omitempty"`
}

// AnswerResponse is the grading outcome plus the updated session.
type AnswerResponse struct {
	Result  quiz.AnswerResult `json:"result"`
	Session SessionResponse   `json:"session"`
}

// OrderResponse is the stored card order resolved to full cards.
type OrderResponse struct {
	Cards []CardResponse `json:"cards"`
}

func toCardResponse(card domain.Card) CardResponse {
	return CardResponse{
		ID:          card.ID,
		PrimaryText: card.PrimaryText,
		Reading:     card.Reading,
		Meaning:     card.Meaning,
	}
}

func toSessionResponse(session *domain.Session) SessionResponse {
	answered := session.AnsweredCardIDs
	if answered == nil {
		answered = []uuid.UUID{}
	}
	return SessionResponse{
		SessionID:            session.SessionID,
		Mode:                 session.Mode,
		LastViewedIndex:      session.LastViewedIndex,
		CompletionRatio:      session.CompletionRatio,
		LastAccessAt:         session.LastAccessAt,
		HasOrderSaved:        session.HasOrderSaved,
		CurrentQuestionIndex: session.CurrentQuestionIndex,
		TotalQuestions:       session.TotalQuestions,
		Score:                session.Score,
		CorrectCount:         session.CorrectCount,
		IncorrectCount:       session.IncorrectCount,
		AnsweredCardIDs:      answered,
	}
}
