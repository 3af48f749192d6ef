package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"alfabeta/internal/catalog"
	"alfabeta/internal/clock"
	"alfabeta/internal/metrics"
	"alfabeta/internal/models"
	"alfabeta/internal/random"
	"alfabeta/internal/security"
	"alfabeta/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnknownMode  = errors.New("unknown game mode")
	ErrUnknownLevel = errors.New("unknown level")
	ErrUnknownWord  = errors.New("unknown word")
	ErrNoActiveItem = errors.New("no active item")
)

const allWordsReenabledMessage = "Todas as palavras estavam desativadas. Todas foram reativadas."

// SessionOptions carries the collaborators of a SessionService. Zero values get defaults.
type SessionOptions struct {
	Clock     clock.Clock
	Random    random.Source
	Publisher EventPublisher
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// Completion is the outcome of recording a completed item
type Completion struct {
	ItemID    string
	Kind      models.ItemKind
	Recorded  bool
	Points    int
	Score     int
	Streak    int
	Completed int
	Badge     *models.Badge
}

// Snapshot is a read-only copy of the session state
type Snapshot struct {
	Mode            models.GameMode       `json:"mode"`
	Level           models.Level          `json:"level"`
	CurrentItem     *models.PracticeItem  `json:"currentItem,omitempty"`
	Progress        models.PlayerProgress `json:"progress"`
	Settings        models.GameSettings   `json:"settings"`
	SessionFinished bool                  `json:"sessionFinished"`
}

// SessionService owns the player progress, the settings and the current selection.
// It is the only writer of that state.
type SessionService struct {
	mu sync.Mutex

	catalog     *catalog.Catalog
	persistence *Persistence
	clock       clock.Clock
	rng         random.Source
	publisher   EventPublisher
	logger      *zap.Logger
	metrics     *metrics.Metrics

	progress models.PlayerProgress
	settings models.GameSettings
	mode     string
	level    int
	current  *models.PracticeItem
	finished bool
	// selection changes every time the current item is replaced
	selection uint64
}

// NewSessionService loads the persisted state and returns a service with no active item
func NewSessionService(ctx context.Context, c *catalog.Catalog, p *Persistence, opts SessionOptions) *SessionService {
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Random == nil {
		opts.Random = random.New()
	}
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	progress, settings := p.Load(ctx)

	modes := c.Modes()
	return &SessionService{
		catalog:     c,
		persistence: p,
		clock:       opts.Clock,
		rng:         opts.Random,
		publisher:   opts.Publisher,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		progress:    progress,
		settings:    settings,
		mode:        modes[0].ID,
		level:       progress.CurrentLevel,
	}
}

// StartSession selects the mode and level and picks the first item
func (s *SessionService) StartSession(modeID string, levelID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.startLocked(modeID, levelID)
}

func (s *SessionService) startLocked(modeID string, levelID int) error {
	if _, ok := s.catalog.Mode(modeID); !ok {
		s.logger.Warn("Rejected unknown game mode", zap.String("mode", modeID))
		return fmt.Errorf("%w: %s", ErrUnknownMode, modeID)
	}
	if _, ok := s.catalog.Level(levelID); !ok {
		s.logger.Warn("Rejected unknown level", zap.Int("level", levelID))
		return fmt.Errorf("%w: %d", ErrUnknownLevel, levelID)
	}

	pool, level := s.poolLocked(modeID, levelID)
	item, ok := random.Pick(s.rng, pool)
	if !ok {
		s.logger.Error("No playable items", zap.String("mode", modeID), zap.Int("level", levelID))
		return fmt.Errorf("%w: no items for mode %s", ErrNoActiveItem, modeID)
	}

	s.mode = modeID
	s.level = level
	s.progress.CurrentLevel = level
	s.current = &item
	s.selection++
	s.finished = false
	if s.progress.CurrentSessionStartTime == nil {
		now := s.clock.Now()
		s.progress.CurrentSessionStartTime = &now
	}

	s.logger.Debug("Session started",
		zap.String("mode", modeID),
		zap.Int("level", level),
		zap.String("item", item.ID),
	)
	s.persistLocked()
	return nil
}

// poolLocked returns the playable items of mode for level, re-targeting the
// level when it has none and re-enabling every word as a last resort.
func (s *SessionService) poolLocked(mode string, level int) ([]models.PracticeItem, int) {
	if mode == models.ModeFormSentence {
		sentences := s.catalog.SentencesByLevel(level)
		if len(sentences) == 0 {
			all := s.catalog.Sentences()
			if len(all) == 0 {
				return nil, level
			}
			level = all[0].Level
			sentences = s.catalog.SentencesByLevel(level)
		}
		return sentenceItems(sentences), level
	}

	words := s.catalog.WordsByLevel(level, s.settings.DisabledWords)
	if len(words) == 0 {
		if enabled := s.catalog.EnabledWords(s.settings.DisabledWords); len(enabled) > 0 {
			level = enabled[0].Level
			words = s.catalog.WordsByLevel(level, s.settings.DisabledWords)
		}
	}
	if len(words) == 0 && len(s.settings.DisabledWords) > 0 {
		s.logger.Warn("All words disabled, re-enabling every word",
			zap.Int("disabled", len(s.settings.DisabledWords)),
		)
		s.settings.DisabledWords = []string{}
		s.publishLocked(models.GameEvent{Type: models.EventAlert, Message: allWordsReenabledMessage})
		return s.poolLocked(mode, level)
	}
	return wordItems(words), level
}

// enabledItemsLocked returns every enabled item of the current mode across all levels
func (s *SessionService) enabledItemsLocked() []models.PracticeItem {
	if s.mode == models.ModeFormSentence {
		return sentenceItems(s.catalog.Sentences())
	}
	return wordItems(s.catalog.EnabledWords(s.settings.DisabledWords))
}

// Selection identifies the current item choice. It changes whenever the current
// item is replaced, even by the same item.
func (s *SessionService) Selection() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// SelectNext picks the next item, finishing the session once every enabled item is done
func (s *SessionService) SelectNext() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return nil
	}
	s.current = nil
	s.selection++

	all := s.enabledItemsLocked()
	if len(all) > 0 && s.allCompletedLocked(all) {
		s.completeLocked()
		return nil
	}

	pool, level := s.poolLocked(s.mode, s.level)
	var remaining []models.PracticeItem
	for _, item := range pool {
		if !s.progress.HasCompleted(item.Kind, item.ID) {
			remaining = append(remaining, item)
		}
	}

	item, ok := random.Pick(s.rng, remaining)
	if !ok {
		// level exhausted, serve it again
		item, ok = random.Pick(s.rng, pool)
	}
	if !ok {
		return fmt.Errorf("%w: no items for mode %s", ErrNoActiveItem, s.mode)
	}

	s.level = level
	s.progress.CurrentLevel = level
	s.current = &item
	s.persistLocked()
	return nil
}

func (s *SessionService) allCompletedLocked(items []models.PracticeItem) bool {
	for _, item := range items {
		if !s.progress.HasCompleted(item.Kind, item.ID) {
			return false
		}
	}
	return true
}

// RecordCompletion adds the item to the completed set and scores it. Recording an item
// twice is a no-op.
func (s *SessionService) RecordCompletion(itemID string) (Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind, ok := s.kindOf(itemID)
	if !ok {
		s.logger.Warn("Rejected completion of unknown item", zap.String("item", itemID))
		return Completion{}, fmt.Errorf("%w: %s", ErrUnknownWord, itemID)
	}

	result := Completion{ItemID: itemID, Kind: kind}
	if s.progress.HasCompleted(kind, itemID) {
		result.Score = s.progress.Score
		result.Streak = s.progress.StreakCount
		result.Completed = s.progress.CompletedCount(kind)
		return result, nil
	}

	if kind == models.KindSentence {
		s.progress.CompletedSentences = append(s.progress.CompletedSentences, itemID)
	} else {
		s.progress.CompletedWords = append(s.progress.CompletedWords, itemID)
	}
	s.progress.StreakCount++

	points := Points(kind, s.level, s.progress.StreakCount)
	s.progress.Score += points

	result.Recorded = true
	result.Points = points
	result.Score = s.progress.Score
	result.Streak = s.progress.StreakCount
	result.Completed = s.progress.CompletedCount(kind)
	if badge, ok := models.BadgeFor(kind, result.Completed); ok {
		result.Badge = &badge
	}

	s.metrics.Completion(string(kind))
	s.logger.Info("Item completed",
		zap.String("item", itemID),
		zap.Int("points", points),
		zap.Int("score", result.Score),
		zap.Int("streak", result.Streak),
	)
	s.persistLocked()
	return result, nil
}

// kindOf resolves an item id, preferring the kind of the current mode
func (s *SessionService) kindOf(itemID string) (models.ItemKind, bool) {
	_, isWord := s.catalog.WordByID(itemID)
	_, isSentence := s.catalog.SentenceByID(itemID)
	switch {
	case isWord && isSentence:
		if s.mode == models.ModeFormSentence {
			return models.KindSentence, true
		}
		return models.KindWord, true
	case isWord:
		return models.KindWord, true
	case isSentence:
		return models.KindSentence, true
	}
	return "", false
}

// Points returns the score for a completion at the given level with the streak
// already including that completion.
func Points(kind models.ItemKind, level, streak int) int {
	if kind == models.KindSentence {
		return 15*level + (streak/3)*8
	}
	return 10*level + (streak/3)*5
}

// CompleteSession appends the running session to the history and marks it finished
func (s *SessionService) CompleteSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completeLocked()
}

func (s *SessionService) completeLocked() {
	now := s.clock.Now()
	elapsed := 0
	if start := s.progress.CurrentSessionStartTime; start != nil {
		elapsed = max(int(now.Sub(*start)/time.Second), 0)
	}

	record := models.SessionRecord{
		ID:                 uuid.NewString(),
		Date:               now,
		Score:              s.progress.Score,
		CompletedWords:     append([]string{}, s.progress.CompletedWords...),
		CompletedSentences: append([]string{}, s.progress.CompletedSentences...),
		TimeElapsed:        elapsed,
		Level:              s.level,
		Mode:               s.mode,
	}
	s.progress.SessionsHistory = append(s.progress.SessionsHistory, record)
	s.progress.CurrentSessionStartTime = nil
	s.current = nil
	s.finished = true

	s.metrics.SessionCompleted()
	s.logger.Info("Session completed",
		zap.String("session", record.ID),
		zap.Int("score", record.Score),
		zap.Int("elapsed", elapsed),
	)
	s.publishLocked(models.GameEvent{
		Type:    models.EventSessionComplete,
		Message: fmt.Sprintf("Sessão concluída em %s!", FormatElapsed(elapsed)),
	})
	s.persistLocked()
}

// StartNewSession clears the running counters, keeps the history and restarts at level 1
func (s *SessionService) StartNewSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finished = false
	s.progress.CompletedWords = []string{}
	s.progress.CompletedSentences = []string{}
	s.progress.Score = 0
	s.progress.StreakCount = 0
	now := s.clock.Now()
	s.progress.CurrentSessionStartTime = &now

	return s.startLocked(s.mode, 1)
}

// ResetProgress erases all progress including the history and restarts at level 1
func (s *SessionService) ResetProgress() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Resetting player progress")
	s.progress = models.NewPlayerProgress()
	s.finished = false

	return s.startLocked(s.mode, 1)
}

// ChangeMode switches the game mode at the current level
func (s *SessionService) ChangeMode(modeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.startLocked(modeID, s.level)
}

// ChangeLevel switches level and clears the completed sets
func (s *SessionService) ChangeLevel(levelID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog.Level(levelID); !ok {
		s.logger.Warn("Rejected unknown level", zap.Int("level", levelID))
		return fmt.Errorf("%w: %d", ErrUnknownLevel, levelID)
	}
	s.progress.CompletedWords = []string{}
	s.progress.CompletedSentences = []string{}

	return s.startLocked(s.mode, levelID)
}

// UpdateSettings merges the patch into the settings. A new PIN is stored hashed.
func (s *SessionService) UpdateSettings(patch models.SettingsPatch) (models.GameSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings.Clone()
	if patch.ParentPIN != nil {
		if err := validation.ValidatePIN(*patch.ParentPIN); err != nil {
			return redacted(s.settings), err
		}
		hash, err := security.HashPIN(*patch.ParentPIN)
		if err != nil {
			return redacted(s.settings), fmt.Errorf("failed to hash PIN: %w", err)
		}
		next.ParentPIN = hash
	}
	if patch.SoundEffects != nil {
		next.SoundEffects = *patch.SoundEffects
	}
	if patch.BackgroundMusic != nil {
		next.BackgroundMusic = *patch.BackgroundMusic
	}
	if patch.HapticFeedback != nil {
		next.HapticFeedback = *patch.HapticFeedback
	}

	s.settings = next
	s.persistLocked()
	return redacted(s.settings), nil
}

// ToggleWordEnabled flips the disabled flag of a word and reports whether it is now enabled
func (s *SessionService) ToggleWordEnabled(wordID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog.WordByID(wordID); !ok {
		s.logger.Warn("Rejected toggle of unknown word", zap.String("word", wordID))
		return false, fmt.Errorf("%w: %s", ErrUnknownWord, wordID)
	}

	enabled := s.settings.IsWordDisabled(wordID)
	if enabled {
		disabled := make([]string, 0, len(s.settings.DisabledWords))
		for _, id := range s.settings.DisabledWords {
			if id != wordID {
				disabled = append(disabled, id)
			}
		}
		s.settings.DisabledWords = disabled
	} else {
		s.settings.DisabledWords = append(s.settings.DisabledWords, wordID)
	}

	s.persistLocked()
	return enabled, nil
}

// VerifyParentPIN checks a PIN, upgrading a legacy plaintext PIN to a hash on success
func (s *SessionService) VerifyParentPIN(pin string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, needsRehash := security.CheckPIN(s.settings.ParentPIN, pin)
	if match && needsRehash {
		hash, err := security.HashPIN(pin)
		if err != nil {
			s.logger.Error("Failed to upgrade parent PIN", zap.Error(err))
			return match
		}
		s.settings.ParentPIN = hash
		s.persistLocked()
	}
	return match
}

// Current returns the item being played
func (s *SessionService) Current() (models.PracticeItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return models.PracticeItem{}, false
	}
	return *s.current, true
}

// SoundEnabled reports whether sound effects are switched on
func (s *SessionService) SoundEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settings.SoundEffects
}

// Finished reports whether every enabled item has been completed
func (s *SessionService) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.finished
}

// Snapshot returns a copy of the session state with the parent PIN removed
func (s *SessionService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode, _ := s.catalog.Mode(s.mode)
	level, _ := s.catalog.Level(s.level)
	snap := Snapshot{
		Mode:            mode,
		Level:           level,
		Progress:        s.progress.Clone(),
		Settings:        redacted(s.settings),
		SessionFinished: s.finished,
	}
	if s.current != nil {
		item := *s.current
		snap.CurrentItem = &item
	}
	return snap
}

// Dashboard builds the parent progress report
func (s *SessionService) Dashboard() models.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	return BuildDashboard(s.catalog, s.progress, s.settings)
}

// Publish forwards an event stamped with the current score and streak
func (s *SessionService) Publish(event models.GameEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.publishLocked(event)
}

func (s *SessionService) publishLocked(event models.GameEvent) {
	event.Score = s.progress.Score
	event.Streak = s.progress.StreakCount
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	s.publisher.Publish(event)
}

// persistLocked saves the state; failures are logged by the adapter and otherwise ignored
func (s *SessionService) persistLocked() {
	if s.persistence == nil {
		return
	}
	_ = s.persistence.Save(context.Background(), s.progress, s.settings)
}

func redacted(settings models.GameSettings) models.GameSettings {
	out := settings.Clone()
	out.ParentPIN = ""
	return out
}

func wordItems(words []models.WordItem) []models.PracticeItem {
	items := make([]models.PracticeItem, len(words))
	for i, w := range words {
		items[i] = w.Item()
	}
	return items
}

func sentenceItems(sentences []models.SentenceItem) []models.PracticeItem {
	items := make([]models.PracticeItem, len(sentences))
	for i, st := range sentences {
		items[i] = st.Item()
	}
	return items
}
