package models

// LevelStats summarizes completion of one level
type LevelStats struct {
	Level          Level `json:"level"`
	Total          int   `json:"total"`
	Completed      int   `json:"completed"`
	Percentage     int   `json:"percentage"`
	IsCurrentLevel bool  `json:"isCurrentLevel"`
}

// WordStatus is one row of the parent word list
type WordStatus struct {
	ID        string `json:"id"`
	Word      string `json:"word"`
	Level     int    `json:"level"`
	Completed bool   `json:"completed"`
	Enabled   bool   `json:"enabled"`
}

// RankedSession is a history entry with its display fields
type RankedSession struct {
	SessionRecord
	Rank          int    `json:"rank"`
	FormattedTime string `json:"formattedTime"`
}

// Dashboard is the parent progress report
type Dashboard struct {
	Score             int             `json:"score"`
	Streak            int             `json:"streak"`
	CurrentLevel      int             `json:"currentLevel"`
	TotalWords        int             `json:"totalWords"`
	CompletedWords    int             `json:"completedWords"`
	OverallPercentage int             `json:"overallPercentage"`
	Levels            []LevelStats    `json:"levels"`
	Words             []WordStatus    `json:"words"`
	History           []RankedSession `json:"history"`
	BestSession       *RankedSession  `json:"bestSession,omitempty"`
	LatestIsRecord    bool            `json:"latestIsRecord"`
}
