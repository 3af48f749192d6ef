package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"alfabeta/internal/audio"
)

const maxPronounceRunes = 64

// AudioHandler serves pronunciations of tile text
type AudioHandler struct {
	tts *audio.TTSService
}

// NewAudioHandler creates a new audio handler; a nil service disables pronunciation
func NewAudioHandler(tts *audio.TTSService) *AudioHandler {
	return &AudioHandler{tts: tts}
}

// Pronounce redirects to the cached MP3 for ?text=, generating it on first use
func (h *AudioHandler) Pronounce(w http.ResponseWriter, r *http.Request) {
	if h.tts == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Pronunciation disabled", "", nil)
		return
	}

	text := strings.TrimSpace(r.URL.Query().Get("text"))
	if text == "" || utf8.RuneCountInString(text) > maxPronounceRunes {
		respondWithError(w, http.StatusBadRequest, "Invalid text", "", nil)
		return
	}

	if _, err := h.tts.GenerateAudioFile(r.Context(), text); err != nil {
		respondWithError(w, http.StatusBadGateway, "Pronunciation unavailable", "Failed to generate audio", err)
		return
	}

	http.Redirect(w, r, h.tts.AudioURL(text), http.StatusFound)
}
