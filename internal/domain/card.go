package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardSetIDEmpty is returned when a card's owning set ID is empty.
	ErrCardSetIDEmpty = errors.New("card set ID cannot be empty")

	// ErrCardPromptEmpty is returned when a card's primary text is empty.
	ErrCardPromptEmpty = errors.New("card primary text cannot be empty")
)

// Card represents one immutable vocabulary unit inside a Set: a prompt glyph
// plus an optional phonetic reading and an optional translation. Cards are
// never mutated after import.
//
// Reading and Meaning are optional: a value that is empty after trimming
// whitespace counts as absent. HasReading and HasMeaning are the single
// source of truth for that check; the quiz generator relies on them to
// decide which question kinds are admissible for a card.
type Card struct {
	ID          uuid.UUID `json:"id"`
	SetID       string    `json:"set_id"`
	PrimaryText string    `json:"primary_text"`
	Reading     string    `json:"reading,omitempty"`
	Meaning     string    `json:"meaning,omitempty"`
}

// NewCard creates a new Card owned by the given set. It generates a new UUID
// for the card ID. Returns an error if validation fails.
func NewCard(setID, primaryText, reading, meaning string) (*Card, error) {
	card := &Card{
		ID:          uuid.New(),
		SetID:       setID,
		PrimaryText: primaryText,
		Reading:     reading,
		Meaning:     meaning,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.SetID == "" {
		return ErrCardSetIDEmpty
	}

	if strings.TrimSpace(c.PrimaryText) == "" {
		return ErrCardPromptEmpty
	}

	return nil
}

// HasReading reports whether the card carries a non-empty phonetic reading.
func (c Card) HasReading() bool {
	return strings.TrimSpace(c.Reading) != ""
}

// HasMeaning reports whether the card carries a non-empty translation.
func (c Card) HasMeaning() bool {
	return strings.TrimSpace(c.Meaning) != ""
}
