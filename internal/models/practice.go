package models

// AttemptState is the state of the item being played
type AttemptState string

const (
	AttemptEmpty     AttemptState = "empty"
	AttemptFilling   AttemptState = "filling"
	AttemptCorrect   AttemptState = "correct"
	AttemptIncorrect AttemptState = "incorrect"
)

// Tile is a draggable syllable or word
type Tile struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Used bool   `json:"used"`
}

// Slot is a position in the answer; TileID is empty while the slot is free
type Slot struct {
	ID     string `json:"id"`
	Text   string `json:"text,omitempty"`
	TileID string `json:"tileId,omitempty"`
}

// Filled reports whether a tile has been placed in the slot
func (s Slot) Filled() bool {
	return s.TileID != ""
}

// PracticeView is a read-only copy of the attempt in progress
type PracticeView struct {
	Item            *PracticeItem `json:"item,omitempty"`
	Slots           []Slot        `json:"slots"`
	Tiles           []Tile        `json:"tiles"`
	State           AttemptState  `json:"state"`
	HasInteracted   bool          `json:"hasInteracted"`
	Pending         bool          `json:"pending"`
	SessionFinished bool          `json:"sessionFinished"`
}
