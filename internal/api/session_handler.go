package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"kotoba/internal/api/shared"
	"kotoba/internal/domain"
	"kotoba/internal/platform/logger"
	"kotoba/internal/service"
	"kotoba/internal/store"
)

// SessionHandler serves the study progress operations.
type SessionHandler struct {
	manager *service.SessionManager
	content store.ContentStore
	logger  *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(
	manager *service.SessionManager,
	content store.ContentStore,
	logger *slog.Logger,
) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		manager: manager,
		content: content,
		logger:  logger.With(slog.String("component", "session_handler")),
	}
}

// requireSet resolves the path parameters to a set that actually exists,
// writing the error response itself on failure.
func (h *SessionHandler) requireSet(w http.ResponseWriter, r *http.Request) (*domain.Set, bool) {
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

// decodeMode decodes a request body carrying a mode and checks it, writing
// the error response itself on failure.
func decodeMode(w http.ResponseWriter, r *http.Request, v interface{}, mode *domain.SessionMode) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request")
		return false
	}
	if !mode.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid session mode")
		return false
	}
	return true
}

// GetOrCreateSession handles POST /api/sets/{level}/{name}/session.
func (h *SessionHandler) GetOrCreateSession(w http.ResponseWriter, r *http.Request) {
	set, ok := h.requireSet(w, r)
	if !ok {
		return
	}

	var req SessionRequest
	if !decodeMode(w, r, &req, &req.Mode) {
		return
	}

	session := h.manager.GetOrCreateSession(r.Context(), set.SessionID(), req.Mode)
	shared.RespondWithJSON(w, r, http.StatusOK, toSessionResponse(session))
}

// UpdateProgress handles PUT /api/sets/{level}/{name}/session/progress.
func (h *SessionHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	set, ok := h.requireSet(w, r)
	if !ok {
		return
	}

	var req ProgressRequest
	if !decodeMode(w, r, &req, &req.Mode) {
		return
	}

	session := h.manager.UpdateProgress(
		r.Context(), set.SessionID(), req.Mode, req.Index, req.TotalCards)
	shared.RespondWithJSON(w, r, http.StatusOK, toSessionResponse(session))
}

// SaveOrder handles POST /api/sets/{level}/{name}/order.
// The card ids must all belong to the set.
func (h *SessionHandler) SaveOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	set, ok := h.requireSet(w, r)
	if !ok {
		return
	}

	var req OrderRequest
	if !decodeMode(w, r, &req, &req.Mode) {
		return
	}

	byID := make(map[uuid.UUID]domain.Card, len(set.Cards))
	for _, card := range set.Cards {
		byID[card.ID] = card
	}

	cards := make([]domain.Card, 0, len(req.CardIDs))
	for _, id := range req.CardIDs {
		card, found := byID[id]
		if !found {
			log.Debug("order rejected, card not in set",
				slog.String("set_id", set.SessionID()),
				slog.String("card_id", id.String()))
			shared.RespondWithError(w, r, http.StatusBadRequest, "card not in set")
			return
		}
		cards = append(cards, card)
	}

	h.manager.SaveCardOrder(ctx, set.SessionID(), req.Mode, cards)

	session := h.manager.GetOrCreateSession(ctx, set.SessionID(), req.Mode)
	shared.RespondWithJSON(w, r, http.StatusOK, toSessionResponse(session))
}

// LoadOrder handles GET /api/sets/{level}/{name}/order?mode=...
// It responds 204 when no usable order is stored, so the client shuffles.
func (h *SessionHandler) LoadOrder(w http.ResponseWriter, r *http.Request) {
	set, ok := h.requireSet(w, r)
	if !ok {
		return
	}

	mode := domain.SessionMode(r.URL.Query().Get("mode"))
	if !mode.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid session mode")
		return
	}

	ordered := h.manager.LoadCardOrder(r.Context(), set.SessionID(), mode, set.Cards)
	if ordered == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	cards := make([]CardResponse, 0, len(ordered))
	for _, card := range ordered {
		cards = append(cards, toCardResponse(card))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, OrderResponse{Cards: cards})
}

// ClearSession handles DELETE /api/sets/{level}/{name}/session.
// It wipes progress for every mode of the set.
func (h *SessionHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	set, err := pathSet(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	h.manager.ClearSession(r.Context(), set.SessionID())
	w.WriteHeader(http.StatusNoContent)
}

// ClearAllSessions handles DELETE /api/sessions.
func (h *SessionHandler) ClearAllSessions(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearAllSessions(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
