package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Order-specific validation errors
var (
	// ErrOrderSessionIDEmpty is returned when an order's session ID is empty.
	ErrOrderSessionIDEmpty = errors.New("card order session ID cannot be empty")

	// ErrOrderEmpty is returned when an order carries no card identifiers.
	ErrOrderEmpty = errors.New("card order cannot be empty")
)

// CardOrder is the persisted shuffle for one session: the card identifiers
// of a set in the sequence they were presented. It survives restarts so a
// learner resumes in the same order.
//
// An order is only trustworthy while every stored identifier still resolves
// against the live card pool; the session manager purges it otherwise.
type CardOrder struct {
	SessionID string      `json:"session_id"`
	Mode      SessionMode `json:"mode"`
	CardIDs   []uuid.UUID `json:"card_ids"`
	SavedAt   time.Time   `json:"saved_at"`
}

// NewCardOrder creates a CardOrder for the given session key from cards in
// the given sequence. Returns an error if validation fails.
func NewCardOrder(key SessionKey, cards []Card) (*CardOrder, error) {
	ids := make([]uuid.UUID, len(cards))
	for i, card := range cards {
		ids[i] = card.ID
	}

	order := &CardOrder{
		SessionID: key.SessionID,
		Mode:      key.Mode,
		CardIDs:   ids,
		SavedAt:   time.Now().UTC(),
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate checks if the CardOrder has valid data.
func (o *CardOrder) Validate() error {
	if o.SessionID == "" {
		return ErrOrderSessionIDEmpty
	}

	if !o.Mode.Valid() {
		return ErrInvalidSessionMode
	}

	if len(o.CardIDs) == 0 {
		return ErrOrderEmpty
	}

	return nil
}

// Key returns the SessionKey addressing this order.
func (o *CardOrder) Key() SessionKey {
	return SessionKey{SessionID: o.SessionID, Mode: o.Mode}
}

// Resolve maps the stored identifiers back onto live cards using a single
// identity lookup. The second return is false when any identifier is missing
// from the pool or the resolved count does not match the stored count; the
// caller must then treat the whole order as invalid.
func (o *CardOrder) Resolve(available []Card) ([]Card, bool) {
	byID := make(map[uuid.UUID]Card, len(available))
	for _, card := range available {
		byID[card.ID] = card
	}

	ordered := make([]Card, 0, len(o.CardIDs))
	for _, id := range o.CardIDs {
		card, ok := byID[id]
		if !ok {
			return nil, false
		}
		ordered = append(ordered, card)
	}

	if len(ordered) != len(o.CardIDs) {
		return nil, false
	}

	return ordered, true
}
