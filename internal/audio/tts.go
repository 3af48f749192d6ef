package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	ttsRequestTimeout = 10 * time.Second
	googleTTSURL      = "https://translate.google.com/translate_tts"
	maxConcurrent     = 4
)

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// TTSService generates and caches spoken tiles as MP3 files
type TTSService struct {
	audioDir  string
	urlPrefix string
	language  string
	baseURL   string
	client    *http.Client
	logger    *zap.Logger

	wg  sync.WaitGroup
	sem chan struct{}
}

// NewTTSService creates a TTS service writing into audioDir. urlPrefix is the
// public path the directory is served under.
func NewTTSService(audioDir, urlPrefix, language string, logger *zap.Logger) *TTSService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TTSService{
		audioDir:  audioDir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		language:  language,
		baseURL:   googleTTSURL,
		client:    &http.Client{Timeout: ttsRequestTimeout},
		logger:    logger,
		sem:       make(chan struct{}, maxConcurrent),
	}
}

// Filename returns the cache file name used for text
func Filename(text string) string {
	sanitized := strings.ToLower(strings.TrimSpace(text))
	sanitized = unsafeFilenameChars.ReplaceAllString(sanitized, "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "blank"
	}
	return fmt.Sprintf("tile_%s.mp3", sanitized)
}

// AudioURL returns the public URL of the cached pronunciation
func (s *TTSService) AudioURL(text string) string {
	return s.urlPrefix + "/" + url.PathEscape(Filename(text))
}

// GenerateAudioFile converts text to speech and saves it as MP3.
// Returns the filename (not full path) on success.
func (s *TTSService) GenerateAudioFile(ctx context.Context, text string) (string, error) {
	filename := Filename(text)
	path := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	if err := s.fetch(ctx, text, path); err != nil {
		return "", fmt.Errorf("failed to generate audio for %q: %w", text, err)
	}
	return filename, nil
}

// Pronounce warms the cache for text in the background. Failures are logged
// and never reach the caller.
func (s *TTSService) Pronounce(text string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.sem <- struct{}{}
		defer func() { <-s.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), ttsRequestTimeout)
		defer cancel()

		if _, err := s.GenerateAudioFile(ctx, text); err != nil {
			s.logger.Warn("pronunciation unavailable", zap.String("text", text), zap.Error(err))
		}
	}()
}

// Wait blocks until background pronunciations have finished
func (s *TTSService) Wait() {
	s.wg.Wait()
}

// Warm generates audio for every text, stopping at the first failure
func (s *TTSService) Warm(ctx context.Context, texts []string) error {
	for _, text := range texts {
		if _, err := s.GenerateAudioFile(ctx, text); err != nil {
			return err
		}
	}
	return nil
}

func (s *TTSService) fetch(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.language)
	params.Set("client", "tw-ob")
	params.Set("ttsspeed", "0.8")
	params.Set("textlen", fmt.Sprintf("%d", len([]rune(text))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Write to a temp file first so a failed download never leaves a truncated cache entry
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".tts-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return os.Rename(tmp.Name(), outputPath)
}
