package models

import (
	"slices"
	"time"
)

// DefaultParentPIN is the PIN accepted until a parent sets their own
const DefaultParentPIN = "1234"

// PlayerProgress is the persisted state of the player
type PlayerProgress struct {
	CurrentLevel            int             `json:"currentLevel"`
	CompletedWords          []string        `json:"completedWords"`
	CompletedSentences      []string        `json:"completedSentences"`
	Score                   int             `json:"score"`
	StreakCount             int             `json:"streakCount"`
	SessionsHistory         []SessionRecord `json:"sessionsHistory"`
	CurrentSessionStartTime *time.Time      `json:"currentSessionStartTime,omitempty"`
}

// SessionRecord is a finished session kept in the history
type SessionRecord struct {
	ID                 string    `json:"id"`
	Date               time.Time `json:"date"`
	Score              int       `json:"score"`
	CompletedWords     []string  `json:"completedWords"`
	CompletedSentences []string  `json:"completedSentences,omitempty"`
	TimeElapsed        int       `json:"timeElapsed"`
	Level              int       `json:"level"`
	Mode               string    `json:"mode,omitempty"`
}

// GameSettings holds the parent-controlled options
type GameSettings struct {
	ParentPIN       string   `json:"parentPin"`
	SoundEffects    bool     `json:"soundEffects"`
	BackgroundMusic bool     `json:"backgroundMusic"`
	HapticFeedback  bool     `json:"hapticFeedback"`
	DisabledWords   []string `json:"disabledWords"`
}

// NewPlayerProgress returns the zero state at level 1
func NewPlayerProgress() PlayerProgress {
	return PlayerProgress{
		CurrentLevel:       1,
		CompletedWords:     []string{},
		CompletedSentences: []string{},
		SessionsHistory:    []SessionRecord{},
	}
}

// DefaultGameSettings returns the settings used on first launch
func DefaultGameSettings() GameSettings {
	return GameSettings{
		ParentPIN:       DefaultParentPIN,
		SoundEffects:    true,
		BackgroundMusic: true,
		HapticFeedback:  true,
		DisabledWords:   []string{},
	}
}

// HasCompleted reports whether the item id is in the completed set for its kind
func (p *PlayerProgress) HasCompleted(kind ItemKind, id string) bool {
	if kind == KindSentence {
		return slices.Contains(p.CompletedSentences, id)
	}
	return slices.Contains(p.CompletedWords, id)
}

// CompletedCount returns the size of the completed set for the kind
func (p *PlayerProgress) CompletedCount(kind ItemKind) int {
	if kind == KindSentence {
		return len(p.CompletedSentences)
	}
	return len(p.CompletedWords)
}

// Clone returns a deep copy
func (p PlayerProgress) Clone() PlayerProgress {
	out := p
	out.CompletedWords = slices.Clone(p.CompletedWords)
	out.CompletedSentences = slices.Clone(p.CompletedSentences)
	out.SessionsHistory = make([]SessionRecord, len(p.SessionsHistory))
	for i, rec := range p.SessionsHistory {
		rec.CompletedWords = slices.Clone(rec.CompletedWords)
		rec.CompletedSentences = slices.Clone(rec.CompletedSentences)
		out.SessionsHistory[i] = rec
	}
	if p.CurrentSessionStartTime != nil {
		start := *p.CurrentSessionStartTime
		out.CurrentSessionStartTime = &start
	}
	return out
}

// IsWordDisabled reports whether the parent has switched the word off
func (s *GameSettings) IsWordDisabled(id string) bool {
	return slices.Contains(s.DisabledWords, id)
}

// Clone returns a deep copy
func (s GameSettings) Clone() GameSettings {
	out := s
	out.DisabledWords = slices.Clone(s.DisabledWords)
	if out.DisabledWords == nil {
		out.DisabledWords = []string{}
	}
	return out
}

// SettingsPatch is a partial update of GameSettings; nil fields are left unchanged
type SettingsPatch struct {
	ParentPIN       *string `json:"parentPin,omitempty"`
	SoundEffects    *bool   `json:"soundEffects,omitempty"`
	BackgroundMusic *bool   `json:"backgroundMusic,omitempty"`
	HapticFeedback  *bool   `json:"hapticFeedback,omitempty"`
}
