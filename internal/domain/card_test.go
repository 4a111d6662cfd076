package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewCard(t *testing.T) {
	t.Parallel() // Enable parallel execution

	card, err := NewCard("N5_verbs", "猫", "ねこ", "cat")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if card.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if card.SetID != "N5_verbs" {
		t.Errorf("Expected set ID N5_verbs, got %s", card.SetID)
	}

	if card.PrimaryText != "猫" {
		t.Errorf("Expected primary text 猫, got %s", card.PrimaryText)
	}

	// Missing set ID
	_, err = NewCard("", "猫", "ねこ", "cat")
	if err != ErrCardSetIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrCardSetIDEmpty, err)
	}

	// Whitespace-only prompt
	_, err = NewCard("N5_verbs", "   ", "ねこ", "cat")
	if err != ErrCardPromptEmpty {
		t.Errorf("Expected error %v, got %v", ErrCardPromptEmpty, err)
	}
}

func TestCardOptionalFields(t *testing.T) {
	t.Parallel() // Enable parallel execution

	tests := []struct {
		name       string
		reading    string
		meaning    string
		hasReading bool
		hasMeaning bool
	}{
		{"both present", "ねこ", "cat", true, true},
		{"reading missing", "", "cat", false, true},
		{"meaning missing", "ねこ", "", true, false},
		{"both missing", "", "", false, false},
		{"whitespace counts as absent", "  ", "\t\n", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := NewCard("N5_verbs", "猫", tt.reading, tt.meaning)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			if card.HasReading() != tt.hasReading {
				t.Errorf("HasReading() = %v, want %v", card.HasReading(), tt.hasReading)
			}

			if card.HasMeaning() != tt.hasMeaning {
				t.Errorf("HasMeaning() = %v, want %v", card.HasMeaning(), tt.hasMeaning)
			}
		})
	}
}

func TestCardValidate(t *testing.T) {
	t.Parallel() // Enable parallel execution

	validCard := Card{
		ID:          uuid.New(),
		SetID:       "N5_verbs",
		PrimaryText: "猫",
	}

	if err := validCard.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalidCard := validCard
	invalidCard.ID = uuid.Nil
	if err := invalidCard.Validate(); err != ErrCardIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrCardIDEmpty, err)
	}
}
