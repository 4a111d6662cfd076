package domain

import (
	"errors"
	"strings"
)

// Set-specific validation errors
var (
	// ErrSetLevelEmpty is returned when a set's level is empty.
	ErrSetLevelEmpty = errors.New("set level cannot be empty")

	// ErrSetNameEmpty is returned when a set's name is empty.
	ErrSetNameEmpty = errors.New("set name cannot be empty")
)

// Set is a named, leveled collection of vocabulary cards, e.g. level "N5",
// name "verbs". Sets are produced by content import and read-only afterwards.
type Set struct {
	Level string `json:"level"`
	Name  string `json:"name"`
	Cards []Card `json:"cards,omitempty"`

	// CardCount mirrors len(Cards) on list reads that skip loading the
	// cards themselves.
	CardCount int `json:"card_count,omitempty"`
}

// NewSet creates a new Set with the given level and name.
// Returns an error if validation fails.
func NewSet(level, name string) (*Set, error) {
	set := &Set{
		Level: level,
		Name:  name,
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}

	return set, nil
}

// Validate checks if the Set has valid data.
func (s *Set) Validate() error {
	if strings.TrimSpace(s.Level) == "" {
		return ErrSetLevelEmpty
	}

	if strings.TrimSpace(s.Name) == "" {
		return ErrSetNameEmpty
	}

	return nil
}

// SessionID derives the identifier that keys progress records for this set.
// Two sets with the same level and name share one identity; the importer
// enforces uniqueness of the pair.
func (s *Set) SessionID() string {
	return s.Level + "_" + s.Name
}
