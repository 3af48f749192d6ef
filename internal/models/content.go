package models

import "strings"

// Game mode identifiers
const (
	ModeCompleteWord = "complete-word"
	ModeFormSentence = "form-sentence"
)

// WordItem is a catalog word split into its canonical syllables
type WordItem struct {
	ID          string   `json:"id" yaml:"id"`
	Word        string   `json:"word" yaml:"word"`
	Syllables   []string `json:"syllables" yaml:"syllables"`
	ImageURL    string   `json:"imageUrl" yaml:"image_url"`
	Distractors []string `json:"distractors,omitempty" yaml:"distractors"`
	Level       int      `json:"level" yaml:"level"`
}

// SentenceItem is a catalog sentence split into its canonical words
type SentenceItem struct {
	ID          string   `json:"id" yaml:"id"`
	Words       []string `json:"words" yaml:"words"`
	ImageURL    string   `json:"imageUrl" yaml:"image_url"`
	Distractors []string `json:"distractors,omitempty" yaml:"distractors"`
	Level       int      `json:"level" yaml:"level"`
}

// Level describes a difficulty tier
type Level struct {
	ID              int    `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	Description     string `json:"description" yaml:"description"`
	WordsToComplete int    `json:"wordsToComplete" yaml:"words_to_complete"`
	MaxDistractors  int    `json:"maxDistractors" yaml:"max_distractors"`
}

// GameMode describes a playable mode
type GameMode struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	Instructions string `json:"instructions" yaml:"instructions"`
}

// ItemKind distinguishes word items from sentence items
type ItemKind string

const (
	KindWord     ItemKind = "word"
	KindSentence ItemKind = "sentence"
)

// PracticeItem is the mode-independent view of the item currently being played.
// Canonical holds the tiles in answer order.
type PracticeItem struct {
	ID        string   `json:"id"`
	Kind      ItemKind `json:"kind"`
	Display   string   `json:"display"`
	Canonical []string `json:"-"`
	Decoys    []string `json:"-"`
	ImageURL  string   `json:"imageUrl"`
	Level     int      `json:"level"`
}

// Item converts the word into a practice item
func (w WordItem) Item() PracticeItem {
	return PracticeItem{
		ID:        w.ID,
		Kind:      KindWord,
		Display:   w.Word,
		Canonical: append([]string(nil), w.Syllables...),
		Decoys:    append([]string(nil), w.Distractors...),
		ImageURL:  w.ImageURL,
		Level:     w.Level,
	}
}

// Item converts the sentence into a practice item
func (s SentenceItem) Item() PracticeItem {
	return PracticeItem{
		ID:        s.ID,
		Kind:      KindSentence,
		Display:   strings.Join(s.Words, " "),
		Canonical: append([]string(nil), s.Words...),
		Decoys:    append([]string(nil), s.Distractors...),
		ImageURL:  s.ImageURL,
		Level:     s.Level,
	}
}
