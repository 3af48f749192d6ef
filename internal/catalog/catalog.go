package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"alfabeta/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrInvalidCatalog is returned when catalog data fails validation
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog holds the immutable game content
type Catalog struct {
	levels    []models.Level
	modes     []models.GameMode
	words     []models.WordItem
	sentences []models.SentenceItem

	wordIndex     map[string]int
	sentenceIndex map[string]int
}

type catalogFile struct {
	Levels    []models.Level        `yaml:"levels"`
	Modes     []models.GameMode     `yaml:"modes"`
	Words     []models.WordItem     `yaml:"words"`
	Sentences []models.SentenceItem `yaml:"sentences"`
}

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, falling back to the built-in catalog when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates YAML catalog data
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	c := &Catalog{
		levels:        file.Levels,
		modes:         file.Modes,
		words:         file.Words,
		sentences:     file.Sentences,
		wordIndex:     make(map[string]int, len(file.Words)),
		sentenceIndex: make(map[string]int, len(file.Sentences)),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.levels) == 0 {
		return fmt.Errorf("%w: no levels defined", ErrInvalidCatalog)
	}
	if len(c.modes) == 0 {
		return fmt.Errorf("%w: no game modes defined", ErrInvalidCatalog)
	}

	seenLevels := make(map[int]bool, len(c.levels))
	for _, l := range c.levels {
		if l.ID < 1 {
			return fmt.Errorf("%w: level id %d must be positive", ErrInvalidCatalog, l.ID)
		}
		if seenLevels[l.ID] {
			return fmt.Errorf("%w: duplicate level %d", ErrInvalidCatalog, l.ID)
		}
		seenLevels[l.ID] = true
	}
	slices.SortFunc(c.levels, func(a, b models.Level) int { return a.ID - b.ID })

	seenModes := make(map[string]bool, len(c.modes))
	for _, m := range c.modes {
		if m.ID == "" || seenModes[m.ID] {
			return fmt.Errorf("%w: missing or duplicate mode id %q", ErrInvalidCatalog, m.ID)
		}
		seenModes[m.ID] = true
	}

	for i, w := range c.words {
		if w.ID == "" {
			return fmt.Errorf("%w: word at index %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.wordIndex[w.ID]; dup {
			return fmt.Errorf("%w: duplicate word id %s", ErrInvalidCatalog, w.ID)
		}
		if len(w.Syllables) == 0 {
			return fmt.Errorf("%w: word %s has no syllables", ErrInvalidCatalog, w.ID)
		}
		if !seenLevels[w.Level] {
			return fmt.Errorf("%w: word %s references unknown level %d", ErrInvalidCatalog, w.ID, w.Level)
		}
		c.wordIndex[w.ID] = i
	}

	for i, s := range c.sentences {
		if s.ID == "" {
			return fmt.Errorf("%w: sentence at index %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.sentenceIndex[s.ID]; dup {
			return fmt.Errorf("%w: duplicate sentence id %s", ErrInvalidCatalog, s.ID)
		}
		if len(s.Words) == 0 {
			return fmt.Errorf("%w: sentence %s has no words", ErrInvalidCatalog, s.ID)
		}
		if !seenLevels[s.Level] {
			return fmt.Errorf("%w: sentence %s references unknown level %d", ErrInvalidCatalog, s.ID, s.Level)
		}
		c.sentenceIndex[s.ID] = i
	}

	return nil
}

// Levels returns all levels ordered by id
func (c *Catalog) Levels() []models.Level {
	return slices.Clone(c.levels)
}

// Modes returns all game modes
func (c *Catalog) Modes() []models.GameMode {
	return slices.Clone(c.modes)
}

// Words returns every word in catalog order
func (c *Catalog) Words() []models.WordItem {
	return slices.Clone(c.words)
}

// Sentences returns every sentence in catalog order
func (c *Catalog) Sentences() []models.SentenceItem {
	return slices.Clone(c.sentences)
}

// Level looks up a level by id
func (c *Catalog) Level(id int) (models.Level, bool) {
	for _, l := range c.levels {
		if l.ID == id {
			return l, true
		}
	}
	return models.Level{}, false
}

// Mode looks up a game mode by id
func (c *Catalog) Mode(id string) (models.GameMode, bool) {
	for _, m := range c.modes {
		if m.ID == id {
			return m, true
		}
	}
	return models.GameMode{}, false
}

// WordByID looks up a word
func (c *Catalog) WordByID(id string) (models.WordItem, bool) {
	i, ok := c.wordIndex[id]
	if !ok {
		return models.WordItem{}, false
	}
	return c.words[i], true
}

// SentenceByID looks up a sentence
func (c *Catalog) SentenceByID(id string) (models.SentenceItem, bool) {
	i, ok := c.sentenceIndex[id]
	if !ok {
		return models.SentenceItem{}, false
	}
	return c.sentences[i], true
}

// WordsByLevel returns the words of a level that are not disabled
func (c *Catalog) WordsByLevel(level int, disabled []string) []models.WordItem {
	var out []models.WordItem
	for _, w := range c.words {
		if w.Level == level && !slices.Contains(disabled, w.ID) {
			out = append(out, w)
		}
	}
	return out
}

// EnabledWords returns every word across all levels that is not disabled
func (c *Catalog) EnabledWords(disabled []string) []models.WordItem {
	var out []models.WordItem
	for _, w := range c.words {
		if !slices.Contains(disabled, w.ID) {
			out = append(out, w)
		}
	}
	return out
}

// SentencesByLevel returns the sentences of a level
func (c *Catalog) SentencesByLevel(level int) []models.SentenceItem {
	var out []models.SentenceItem
	for _, s := range c.sentences {
		if s.Level == level {
			out = append(out, s)
		}
	}
	return out
}

// TileTexts returns every distinct tile text, canonical and decoy, in catalog order
func (c *Catalog) TileTexts() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(texts []string) {
		for _, t := range texts {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	for _, w := range c.words {
		add(w.Syllables)
		add(w.Distractors)
	}
	for _, s := range c.sentences {
		add(s.Words)
		add(s.Distractors)
	}
	return out
}
