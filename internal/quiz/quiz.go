// Package quiz synthesizes transient quiz questions from vocabulary cards.
// Nothing here is persisted; callers feed ordered cards in and get graded
// question objects out. Cards lacking the fields a question kind needs are
// skipped rather than reported as errors.
package quiz

import (
	"math/rand"
	"time"

	"kotoba/internal/domain"
)

// Kind identifies what a question asks for and which card field answers it.
type Kind string

const (
	// KindGlyphToMeaning shows the primary text and asks for the meaning.
	KindGlyphToMeaning Kind = "glyph_to_meaning"
	// KindMeaningToGlyph shows the meaning and asks for the primary text.
	KindMeaningToGlyph Kind = "meaning_to_glyph"
	// KindGlyphToReading shows the primary text and asks for the reading.
	KindGlyphToReading Kind = "glyph_to_reading"
)

// Valid checks whether the kind is one of the defined question kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindGlyphToMeaning, KindMeaningToGlyph, KindGlyphToReading:
		return true
	}
	return false
}

// choiceKinds are the kinds a multiple-choice question may take.
var choiceKinds = []Kind{KindGlyphToMeaning, KindMeaningToGlyph, KindGlyphToReading}

// textKinds are the kinds a free-text question may take. Asking the learner
// to type the glyph itself is not practical, so meaning_to_glyph is excluded.
var textKinds = []Kind{KindGlyphToReading, KindGlyphToMeaning}

// maxOptions caps a choice question at the correct answer plus three
// distractors.
const maxOptions = 4

// minOptions is the floor below which a choice question is discarded; a
// single-option question grades itself.
const minOptions = 2

// admissible reports whether the card carries the field the kind answers
// with.
func admissible(kind Kind, card domain.Card) bool {
	switch kind {
	case KindGlyphToMeaning, KindMeaningToGlyph:
		return card.HasMeaning()
	case KindGlyphToReading:
		return card.HasReading()
	}
	return false
}

// prompt returns the text shown to the learner for the given kind.
func prompt(kind Kind, card domain.Card) string {
	if kind == KindMeaningToGlyph {
		return card.Meaning
	}
	return card.PrimaryText
}

// answerField returns the card field value that answers the given kind.
func answerField(kind Kind, card domain.Card) string {
	switch kind {
	case KindGlyphToMeaning:
		return card.Meaning
	case KindMeaningToGlyph:
		return card.PrimaryText
	case KindGlyphToReading:
		return card.Reading
	}
	return ""
}

// ChoiceQuestion is a multiple-choice question built from one card and
// distractors drawn from its set.
type ChoiceQuestion struct {
	Card         domain.Card `json:"card"`
	Kind         Kind        `json:"kind"`
	Prompt       string      `json:"prompt"`
	Options      []string    `json:"options"`
	CorrectIndex int         `json:"correct_index"`
}

// TextQuestion is a free-text question; the learner's input is graded
// against Answer by the caller.
type TextQuestion struct {
	Card   domain.Card `json:"card"`
	Kind   Kind        `json:"kind"`
	Prompt string      `json:"prompt"`
	Answer string      `json:"answer"`
}

// Generator builds questions using an injected random source so tests can
// pin the sequence.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator. A nil rng gets a time-seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// pickKind chooses uniformly among the candidate kinds admissible for the
// card. Returns false when none is admissible.
func (g *Generator) pickKind(candidates []Kind, card domain.Card) (Kind, bool) {
	var usable []Kind
	for _, k := range candidates {
		if admissible(k, card) {
			usable = append(usable, k)
		}
	}
	if len(usable) == 0 {
		return "", false
	}
	return usable[g.rng.Intn(len(usable))], true
}

// Choice builds a multiple-choice question for the target card with a kind
// chosen at random among those the card supports. Returns false when the
// card supports no kind or no usable distractor exists.
func (g *Generator) Choice(target domain.Card, pool []domain.Card) (*ChoiceQuestion, bool) {
	kind, ok := g.pickKind(choiceKinds, target)
	if !ok {
		return nil, false
	}
	return g.buildChoice(kind, target, pool)
}

// ChoiceOfKind builds a multiple-choice question of exactly the given kind.
// A forced kind the card cannot answer fails outright; there is no fallback
// to another kind.
func (g *Generator) ChoiceOfKind(kind Kind, target domain.Card, pool []domain.Card) (*ChoiceQuestion, bool) {
	if !kind.Valid() || !admissible(kind, target) {
		return nil, false
	}
	return g.buildChoice(kind, target, pool)
}

func (g *Generator) buildChoice(kind Kind, target domain.Card, pool []domain.Card) (*ChoiceQuestion, bool) {
	correct := answerField(kind, target)

	// Candidate distractors: other cards whose answer field is non-empty
	// and differs from the correct answer.
	var candidates []string
	for _, c := range pool {
		if c.ID == target.ID {
			continue
		}
		v := answerField(kind, c)
		if v == "" || v == correct {
			continue
		}
		candidates = append(candidates, v)
	}

	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	options := []string{correct}
	seen := map[string]bool{correct: true}
	for _, v := range candidates {
		if len(options) == maxOptions {
			break
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		options = append(options, v)
	}

	if len(options) < minOptions {
		return nil, false
	}

	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	// Locate the correct answer after the shuffle; its pre-shuffle slot
	// means nothing.
	correctIndex := 0
	for i, v := range options {
		if v == correct {
			correctIndex = i
			break
		}
	}

	return &ChoiceQuestion{
		Card:         target,
		Kind:         kind,
		Prompt:       prompt(kind, target),
		Options:      options,
		CorrectIndex: correctIndex,
	}, true
}

// Text builds a free-text question for the target card with a kind chosen
// at random among those the card supports.
func (g *Generator) Text(target domain.Card) (*TextQuestion, bool) {
	kind, ok := g.pickKind(textKinds, target)
	if !ok {
		return nil, false
	}
	return g.buildText(kind, target), true
}

// TextOfKind builds a free-text question of exactly the given kind, failing
// when the card lacks the field or the kind is not a text-entry kind.
func (g *Generator) TextOfKind(kind Kind, target domain.Card) (*TextQuestion, bool) {
	textEntry := false
	for _, k := range textKinds {
		if k == kind {
			textEntry = true
			break
		}
	}
	if !textEntry || !admissible(kind, target) {
		return nil, false
	}
	return g.buildText(kind, target), true
}

func (g *Generator) buildText(kind Kind, target domain.Card) *TextQuestion {
	return &TextQuestion{
		Card:   target,
		Kind:   kind,
		Prompt: prompt(kind, target),
		Answer: answerField(kind, target),
	}
}

// ChoiceBatch builds one choice question per card, dropping cards for which
// no question could be formed. The result may be shorter than the input.
func (g *Generator) ChoiceBatch(cards []domain.Card) []ChoiceQuestion {
	questions := make([]ChoiceQuestion, 0, len(cards))
	for _, card := range cards {
		if q, ok := g.Choice(card, cards); ok {
			questions = append(questions, *q)
		}
	}
	return questions
}

// TextBatch builds one text question per card, dropping cards for which no
// question could be formed.
func (g *Generator) TextBatch(cards []domain.Card) []TextQuestion {
	questions := make([]TextQuestion, 0, len(cards))
	for _, card := range cards {
		if q, ok := g.Text(card); ok {
			questions = append(questions, *q)
		}
	}
	return questions
}
