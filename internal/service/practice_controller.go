package service

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"alfabeta/internal/clock"
	"alfabeta/internal/metrics"
	"alfabeta/internal/models"
	"alfabeta/internal/random"

	"go.uber.org/zap"
)

var (
	ErrSlotFilled    = errors.New("slot already filled")
	ErrTileUsed      = errors.New("tile already used")
	ErrUnknownSlot   = errors.New("unknown slot")
	ErrUnknownTile   = errors.New("unknown tile")
	ErrAttemptLocked = errors.New("attempt is locked")
)

const failureMessage = "Ops! Tente novamente."

// Delays are the pauses between feedback transitions
type Delays struct {
	Success     time.Duration
	Retry       time.Duration
	Celebration time.Duration
}

// DefaultDelays returns the standard feedback timing
func DefaultDelays() Delays {
	return Delays{
		Success:     500 * time.Millisecond,
		Retry:       1500 * time.Millisecond,
		Celebration: 3 * time.Second,
	}
}

// PracticeOptions carries the collaborators of a PracticeController. Zero values get defaults.
type PracticeOptions struct {
	Clock      clock.Clock
	Random     random.Source
	Pronouncer Pronouncer
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Delays     Delays
}

// PracticeController runs the attempt at the session's current item: tile placement,
// evaluation and the timed feedback that follows.
type PracticeController struct {
	mu sync.Mutex

	session    *SessionService
	clock      clock.Clock
	rng        random.Source
	pronouncer Pronouncer
	logger     *zap.Logger
	metrics    *metrics.Metrics
	delays     Delays

	item       *models.PracticeItem
	slots      []models.Slot
	tiles      []models.Tile
	state      models.AttemptState
	interacted bool
	pending    clock.Timer
	generation int
	// session selection the item was loaded under
	selection uint64
	closed    bool
}

// NewPracticeController creates a controller bound to the session
func NewPracticeController(session *SessionService, opts PracticeOptions) *PracticeController {
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Random == nil {
		opts.Random = random.New()
	}
	if opts.Pronouncer == nil {
		opts.Pronouncer = nopPronouncer{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Delays == (Delays{}) {
		opts.Delays = DefaultDelays()
	}

	return &PracticeController{
		session:    session,
		clock:      opts.Clock,
		rng:        opts.Random,
		pronouncer: opts.Pronouncer,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		delays:     opts.Delays,
		state:      models.AttemptEmpty,
	}
}

// Initialize prepares empty slots and a shuffled tile pool for item
func (c *PracticeController) Initialize(item models.PracticeItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.initializeLocked(item)
}

// Sync cancels any pending transition and loads the session's current item
func (c *PracticeController) Sync() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopPendingLocked()
	if item, ok := c.session.Current(); ok {
		c.initializeLocked(item)
		return
	}
	c.clearLocked()
}

func (c *PracticeController) initializeLocked(item models.PracticeItem) {
	c.stopPendingLocked()
	c.generation++
	c.selection = c.session.Selection()
	c.item = &item
	c.state = models.AttemptEmpty
	c.interacted = false

	c.slots = make([]models.Slot, len(item.Canonical))
	for i := range c.slots {
		c.slots[i] = models.Slot{ID: slotID(item, i)}
	}

	c.tiles = make([]models.Tile, 0, len(item.Canonical)+len(item.Decoys))
	for i, text := range item.Canonical {
		c.tiles = append(c.tiles, models.Tile{ID: canonicalTileID(item, i), Text: text})
	}
	for i, text := range item.Decoys {
		c.tiles = append(c.tiles, models.Tile{ID: decoyTileID(item, i), Text: text})
	}

	if item.Kind == models.KindSentence {
		random.Shuffle(random.ForKey(item.ID), c.tiles)
	} else {
		random.Shuffle(c.rng, c.tiles)
	}
}

func slotID(item models.PracticeItem, i int) string {
	if item.Kind == models.KindSentence {
		return fmt.Sprintf("drop_%d", i)
	}
	return fmt.Sprintf("dropzone-%s-%d", item.ID, i)
}

func canonicalTileID(item models.PracticeItem, i int) string {
	if item.Kind == models.KindSentence {
		return fmt.Sprintf("correct_%d", i)
	}
	return fmt.Sprintf("syllable-%s-%d", item.ID, i)
}

func decoyTileID(item models.PracticeItem, i int) string {
	if item.Kind == models.KindSentence {
		return fmt.Sprintf("distractor_%d", i)
	}
	return fmt.Sprintf("syllable-%s-%d", item.ID, len(item.Canonical)+i)
}

// PlaceTile drops a tile into a slot and evaluates the attempt
func (c *PracticeController) PlaceTile(slot, tileID string) (models.PracticeView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.item == nil {
		return c.viewLocked(), ErrNoActiveItem
	}
	if c.pending != nil || c.state == models.AttemptCorrect || c.closed {
		return c.viewLocked(), ErrAttemptLocked
	}

	si := slices.IndexFunc(c.slots, func(s models.Slot) bool { return s.ID == slot })
	if si < 0 {
		return c.viewLocked(), fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	ti := slices.IndexFunc(c.tiles, func(t models.Tile) bool { return t.ID == tileID })
	if ti < 0 {
		return c.viewLocked(), fmt.Errorf("%w: %s", ErrUnknownTile, tileID)
	}
	if c.slots[si].Filled() {
		return c.viewLocked(), fmt.Errorf("%w: %s", ErrSlotFilled, slot)
	}
	if c.tiles[ti].Used {
		return c.viewLocked(), fmt.Errorf("%w: %s", ErrTileUsed, tileID)
	}

	c.slots[si].Text = c.tiles[ti].Text
	c.slots[si].TileID = tileID
	c.tiles[ti].Used = true
	c.interacted = true
	c.state = models.AttemptFilling

	if c.session.SoundEnabled() {
		c.pronouncer.Pronounce(c.tiles[ti].Text)
	}

	c.evaluateLocked()
	return c.viewLocked(), nil
}

// Evaluate checks the arrangement and schedules the matching feedback
func (c *PracticeController) Evaluate() models.AttemptState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil && c.state != models.AttemptCorrect {
		c.evaluateLocked()
	}
	return c.state
}

func (c *PracticeController) evaluateLocked() {
	if c.item == nil || !c.interacted {
		return
	}

	filled := make([]string, 0, len(c.slots))
	for _, s := range c.slots {
		if !s.Filled() {
			c.state = models.AttemptFilling
			return
		}
		filled = append(filled, s.Text)
	}

	gen := c.generation
	if slices.Equal(filled, c.item.Canonical) {
		c.state = models.AttemptCorrect
		c.metrics.Attempt(true)
		c.pending = c.clock.AfterFunc(c.delays.Success, func() { c.onSuccess(gen) })
		return
	}

	c.state = models.AttemptIncorrect
	c.metrics.Attempt(false)
	c.logger.Debug("Incorrect arrangement", zap.String("item", c.item.ID), zap.Strings("slots", filled))
	c.session.Publish(models.GameEvent{Type: models.EventFailure, ItemID: c.item.ID, Message: failureMessage})
	c.pending = c.clock.AfterFunc(c.delays.Retry, func() { c.onRetry(gen) })
}

func (c *PracticeController) onSuccess(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation || c.item == nil {
		return
	}
	c.pending = nil
	if c.staleLocked() {
		return
	}

	item := *c.item
	completion, err := c.session.RecordCompletion(item.ID)
	if err != nil {
		c.logger.Error("Failed to record completion", zap.String("item", item.ID), zap.Error(err))
		return
	}

	if completion.Recorded {
		c.session.Publish(models.GameEvent{
			Type:    models.EventSuccess,
			ItemID:  item.ID,
			Points:  completion.Points,
			Message: fmt.Sprintf("Você ganhou %d pontos por completar \"%s\"!", completion.Points, item.Display),
		})
		if completion.Badge != nil {
			c.session.Publish(models.GameEvent{
				Type:    models.EventBadge,
				ItemID:  item.ID,
				Badge:   completion.Badge.Name,
				Message: completion.Badge.Message,
			})
		}
	}

	c.pending = c.clock.AfterFunc(c.delays.Celebration, func() { c.onCelebrationDone(gen) })
}

// staleLocked reports whether the session moved to another item since this one was loaded
func (c *PracticeController) staleLocked() bool {
	if c.session.Selection() == c.selection {
		return false
	}
	c.logger.Debug("Dropping transition for replaced item", zap.String("item", c.item.ID))
	return true
}

func (c *PracticeController) onCelebrationDone(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation {
		return
	}
	c.pending = nil
	if c.staleLocked() {
		return
	}
	c.advanceLocked()
}

func (c *PracticeController) onRetry(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation || c.item == nil {
		return
	}
	c.pending = nil

	for i := range c.slots {
		c.slots[i].Text = ""
		c.slots[i].TileID = ""
	}
	for i := range c.tiles {
		c.tiles[i].Used = false
	}
	c.state = models.AttemptFilling
	c.session.Publish(models.GameEvent{Type: models.EventSlotsCleared, ItemID: c.item.ID})
}

// Advance abandons the current attempt and moves to the next item. A correct
// attempt stays locked until its celebration ends.
func (c *PracticeController) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || (c.state == models.AttemptCorrect && c.pending != nil) {
		return ErrAttemptLocked
	}
	return c.advanceLocked()
}

func (c *PracticeController) advanceLocked() error {
	c.stopPendingLocked()
	c.clearLocked()

	if err := c.session.SelectNext(); err != nil {
		c.logger.Error("Failed to select next item", zap.Error(err))
		return err
	}

	item, ok := c.session.Current()
	if !ok {
		return nil
	}
	c.initializeLocked(item)
	c.session.Publish(models.GameEvent{Type: models.EventAdvance, ItemID: item.ID})
	return nil
}

// View returns a copy of the attempt for rendering
func (c *PracticeController) View() models.PracticeView {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.viewLocked()
}

func (c *PracticeController) viewLocked() models.PracticeView {
	view := models.PracticeView{
		Slots:           slices.Clone(c.slots),
		Tiles:           slices.Clone(c.tiles),
		State:           c.state,
		HasInteracted:   c.interacted,
		Pending:         c.pending != nil,
		SessionFinished: c.session.Finished(),
	}
	if view.Slots == nil {
		view.Slots = []models.Slot{}
	}
	if view.Tiles == nil {
		view.Tiles = []models.Tile{}
	}
	if c.item != nil {
		item := *c.item
		view.Item = &item
	}
	return view
}

// Close stops pending transitions; the controller rejects further placements
func (c *PracticeController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopPendingLocked()
	c.closed = true
}

func (c *PracticeController) clearLocked() {
	c.generation++
	c.item = nil
	c.slots = nil
	c.tiles = nil
	c.state = models.AttemptEmpty
	c.interacted = false
}

func (c *PracticeController) stopPendingLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}
