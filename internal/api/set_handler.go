package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kotoba/internal/api/shared"
	"kotoba/internal/domain"
	"kotoba/internal/platform/logger"
	"kotoba/internal/service"
	"kotoba/internal/store"
)

// SetHandler serves the vocabulary catalog.
type SetHandler struct {
	content store.ContentStore
	manager *service.SessionManager
	logger  *slog.Logger
}

// NewSetHandler creates a new SetHandler.
func NewSetHandler(
	content store.ContentStore,
	manager *service.SessionManager,
	logger *slog.Logger,
) *SetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SetHandler{
		content: content,
		manager: manager,
		logger:  logger.With(slog.String("component", "set_handler")),
	}
}

// pathSet resolves the {level}/{name} path parameters into a validated set
// key.
func pathSet(r *http.Request) (*domain.Set, error) {
	return domain.NewSet(chi.URLParam(r, "level"), chi.URLParam(r, "name"))
}

// ListSets handles GET /api/sets.
// It returns every set with the progress of each mode that has touched it.
func (h *SetHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	sets, err := h.content.ListSets(ctx)
	if err != nil {
		log.Error("failed to list sets", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			GetSafeErrorMessage(err), err)
		return
	}

	// Index sessions by set so each summary carries its own.
	bySet := make(map[string][]SessionResponse)
	for _, session := range h.manager.Sessions(ctx) {
		bySet[session.SessionID] = append(bySet[session.SessionID], toSessionResponse(session))
	}

	summaries := make([]SetSummaryResponse, 0, len(sets))
	for _, set := range sets {
		summaries = append(summaries, SetSummaryResponse{
			Level:     set.Level,
			Name:      set.Name,
			SessionID: set.SessionID(),
			CardCount: set.CardCount,
			Sessions:  bySet[set.SessionID()],
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summaries)
}

// ListCards handles GET /api/sets/{level}/{name}/cards.
func (h *SetHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	set, err := pathSet(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	full, err := h.content.GetSet(ctx, set.Level, set.Name)
	if err != nil {
		log.Debug("set lookup failed",
			slog.String("error", err.Error()),
			slog.String("set_id", set.SessionID()))
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	cards := make([]CardResponse, 0, len(full.Cards))
	for _, card := range full.Cards {
		cards = append(cards, toCardResponse(card))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cards)
}
