package models

import (
	"fmt"
	"time"
)

// Event types pushed to the front-end
const (
	EventSuccess         = "success"
	EventBadge           = "badge"
	EventFailure         = "failure"
	EventSlotsCleared    = "slots-cleared"
	EventAdvance         = "advance"
	EventSessionComplete = "session-complete"
	EventAlert           = "alert"
)

// GameEvent is a feedback notification for the presentation layer
type GameEvent struct {
	Type      string    `json:"type"`
	ItemID    string    `json:"itemId,omitempty"`
	Points    int       `json:"points,omitempty"`
	Badge     string    `json:"badge,omitempty"`
	Message   string    `json:"message,omitempty"`
	Score     int       `json:"score"`
	Streak    int       `json:"streak"`
	Timestamp time.Time `json:"timestamp"`
}

// Badge is a milestone reward
type Badge struct {
	Name      string `json:"name"`
	Message   string `json:"message"`
	Threshold int    `json:"threshold"`
}

var badges = []struct {
	name      string
	format    string
	threshold int
}{
	{name: "Iniciante", format: "Você completou %d %s! Continue assim!", threshold: 5},
	{name: "Aprendiz", format: "Você completou %d %s! Você está indo muito bem!", threshold: 10},
}

// BadgeFor returns the badge earned when the completed set of kind reaches n items
func BadgeFor(kind ItemKind, n int) (Badge, bool) {
	noun := "palavras"
	if kind == KindSentence {
		noun = "frases"
	}
	for _, b := range badges {
		if b.threshold == n {
			return Badge{Name: b.name, Message: fmt.Sprintf(b.format, n, noun), Threshold: n}, true
		}
	}
	return Badge{}, false
}
