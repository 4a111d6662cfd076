package api

import (
	"log/slog"
	"math/rand"
	"net/http"

	"kotoba/internal/api/shared"
	"kotoba/internal/domain"
	"kotoba/internal/platform/logger"
	"kotoba/internal/quiz"
	"kotoba/internal/service"
	"kotoba/internal/store"
)

// QuizHandler serves quiz generation and grading.
type QuizHandler struct {
	manager *service.SessionManager
	content store.ContentStore
	logger  *slog.Logger

	// newGenerator is swappable so tests can pin the random sequence.
	newGenerator func() *quiz.Generator
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(
	manager *service.SessionManager,
	content store.ContentStore,
	logger *slog.Logger,
) *QuizHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizHandler{
		manager: manager,
		content: content,
		logger:  logger.With(slog.String("component", "quiz_handler")),
		newGenerator: func() *quiz.Generator {
			return quiz.NewGenerator(nil)
		},
	}
}

// quizSet resolves the path set and checks the requested mode is a quiz
// mode, writing the error response itself on failure.
func (h *QuizHandler) quizSet(
	w http.ResponseWriter,
	r *http.Request,
	mode domain.SessionMode,
) (*domain.Set, bool) {
	if !mode.IsQuiz() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "not a quiz mode")
		return nil, false
	}

	set, err := pathSet(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return nil, false
	}

	full, err := h.content.GetSet(r.Context(), set.Level, set.Name)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return nil, false
	}
	return full, true
}

// Generate handles POST /api/sets/{level}/{name}/quiz.
// Cards come out in the stored order when one is saved and still valid;
// otherwise a fresh shuffle is taken and saved. Cards that cannot form a
// question are dropped, and the session's question count reflects what was
// actually generated.
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	var req QuizRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Mode.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid session mode")
		return
	}
	if req.Kind != "" && !req.Kind.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid question kind")
		return
	}

	set, ok := h.quizSet(w, r, req.Mode)
	if !ok {
		return
	}
	if len(set.Cards) == 0 {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "set has no cards")
		return
	}

	sessionID := set.SessionID()

	cards := h.manager.LoadCardOrder(ctx, sessionID, req.Mode, set.Cards)
	if cards == nil {
		cards = append([]domain.Card(nil), set.Cards...)
		rand.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
		h.manager.SaveCardOrder(ctx, sessionID, req.Mode, cards)
	}

	gen := h.newGenerator()
	resp := QuizResponse{}
	var count int

	switch req.Mode {
	case domain.ModeQuizChoice:
		if req.Kind != "" {
			for _, card := range cards {
				if q, ok := gen.ChoiceOfKind(req.Kind, card, cards); ok {
					resp.ChoiceQuestions = append(resp.ChoiceQuestions, *q)
				}
			}
		} else {
			resp.ChoiceQuestions = gen.ChoiceBatch(cards)
		}
		count = len(resp.ChoiceQuestions)
	case domain.ModeQuizText:
		if req.Kind != "" {
			for _, card := range cards {
				if q, ok := gen.TextOfKind(req.Kind, card); ok {
					resp.TextQuestions = append(resp.TextQuestions, *q)
				}
			}
		} else {
			resp.TextQuestions = gen.TextBatch(cards)
		}
		count = len(resp.TextQuestions)
	}

	if count == 0 {
		log.Debug("no generatable questions",
			slog.String("set_id", sessionID),
			slog.String("mode", string(req.Mode)),
			slog.String("kind", string(req.Kind)))
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity,
			"no questions could be generated")
		return
	}

	session := h.manager.SetTotalQuestions(ctx, sessionID, req.Mode, count)
	resp.Session = toSessionResponse(session)

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Answer handles POST /api/sets/{level}/{name}/quiz/answer.
// Text answers are graded here; choice answers arrive pre-graded. Either
// way the card joins the answered set and the tallies move, but the
// question index does not.
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request")
		return
	}
	if !req.Mode.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid session mode")
		return
	}

	set, ok := h.quizSet(w, r, req.Mode)
	if !ok {
		return
	}
	sessionID := set.SessionID()

	var result quiz.AnswerResult
	switch {
	case req.Mode == domain.ModeQuizText:
		result = quiz.CheckTextAnswer(req.Expected, req.Given)
	case req.Correct != nil:
		result = quiz.AnswerResult{Correct: *req.Correct}
	default:
		shared.RespondWithError(w, r, http.StatusBadRequest, "missing answer outcome")
		return
	}

	session := h.manager.AnswerQuestion(ctx, sessionID, req.Mode, req.CardID, result.Correct)
	shared.RespondWithJSON(w, r, http.StatusOK, AnswerResponse{
		Result:  result,
		Session: toSessionResponse(session),
	})
}

// Advance handles POST /api/sets/{level}/{name}/quiz/advance.
func (h *QuizHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Mode.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid session mode")
		return
	}

	set, ok := h.quizSet(w, r, req.Mode)
	if !ok {
		return
	}

	session := h.manager.AdvanceQuestion(r.Context(), set.SessionID(), req.Mode)
	shared.RespondWithJSON(w, r, http.StatusOK, toSessionResponse(session))
}

// Restart handles POST /api/sets/{level}/{name}/quiz/restart.
// It zeroes the quiz counters and drops the saved question order so the
// next generation starts a fresh pass.
func (h *QuizHandler) Restart(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Mode.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid session mode")
		return
	}

	set, ok := h.quizSet(w, r, req.Mode)
	if !ok {
		return
	}

	session := h.manager.ResetQuizProgress(r.Context(), set.SessionID(), req.Mode)
	shared.RespondWithJSON(w, r, http.StatusOK, toSessionResponse(session))
}
