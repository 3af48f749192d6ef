package service

import (
	"fmt"
	"slices"

	"alfabeta/internal/catalog"
	"alfabeta/internal/models"
)

// BuildDashboard summarizes word progress per level together with the ranked history
func BuildDashboard(c *catalog.Catalog, progress models.PlayerProgress, settings models.GameSettings) models.Dashboard {
	words := c.Words()
	d := models.Dashboard{
		Score:        progress.Score,
		Streak:       progress.StreakCount,
		CurrentLevel: progress.CurrentLevel,
		TotalWords:   len(words),
		Words:        make([]models.WordStatus, 0, len(words)),
	}

	for _, w := range words {
		completed := slices.Contains(progress.CompletedWords, w.ID)
		if completed {
			d.CompletedWords++
		}
		d.Words = append(d.Words, models.WordStatus{
			ID:        w.ID,
			Word:      w.Word,
			Level:     w.Level,
			Completed: completed,
			Enabled:   !settings.IsWordDisabled(w.ID),
		})
	}
	d.OverallPercentage = percentage(d.CompletedWords, d.TotalWords)

	for _, level := range c.Levels() {
		stats := models.LevelStats{Level: level, IsCurrentLevel: level.ID == progress.CurrentLevel}
		for _, w := range d.Words {
			if w.Level != level.ID {
				continue
			}
			stats.Total++
			if w.Completed {
				stats.Completed++
			}
		}
		stats.Percentage = percentage(stats.Completed, stats.Total)
		d.Levels = append(d.Levels, stats)
	}

	d.History = RankSessions(progress.SessionsHistory)
	if len(d.History) > 0 {
		best := d.History[0]
		d.BestSession = &best
		d.LatestIsRecord = isLatestRecord(progress.SessionsHistory, d.History)
	}
	return d
}

// RankSessions orders sessions by score descending, then by elapsed time ascending
func RankSessions(history []models.SessionRecord) []models.RankedSession {
	ranked := make([]models.RankedSession, len(history))
	for i, rec := range history {
		ranked[i] = models.RankedSession{SessionRecord: rec, FormattedTime: FormatElapsed(rec.TimeElapsed)}
	}
	slices.SortStableFunc(ranked, func(a, b models.RankedSession) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return a.TimeElapsed - b.TimeElapsed
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// isLatestRecord reports whether the most recent session tops the ranking with a strictly higher score
func isLatestRecord(history []models.SessionRecord, ranked []models.RankedSession) bool {
	if len(ranked) < 2 {
		return false
	}
	latest := history[len(history)-1]
	return ranked[0].ID == latest.ID && latest.Score > ranked[1].Score
}

// FormatElapsed renders seconds as mm:ss
func FormatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return (part*100 + total/2) / total
}
