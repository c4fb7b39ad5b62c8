package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/resumebuilder/internal/multimodal"
)

const (
	maxTextBytes  = 64 << 10
	maxAudioBytes = 10 << 20
)

// Speech converts between text and audio in an application language.
type Speech interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
	Transcribe(ctx context.Context, audio []byte, filename, lang string) (string, error)
}

type SpeechHandler struct {
	speech Speech
}

func NewSpeechHandler(speech Speech) *SpeechHandler {
	return &SpeechHandler{speech: speech}
}

// Synthesize converts text to base64-encoded audio.
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		LangCode string `json:"lang_code"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "No text provided")
		return
	}

	audio, err := h.speech.Synthesize(r.Context(), req.Text, req.LangCode)
	if err != nil {
		slog.Error("tts failed", "lang", req.LangCode, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"audio_content": base64.StdEncoding.EncodeToString(audio),
	})
}

// Transcribe converts an uploaded audio clip to text.
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No audio file")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read audio file")
		return
	}

	lang := r.FormValue("lang_code")
	transcript, err := h.speech.Transcribe(r.Context(), audio, header.Filename, lang)
	switch {
	case errors.Is(err, multimodal.ErrNoSpeechDetected):
		writeError(w, http.StatusOK, "Could not recognize speech")
	case err != nil:
		slog.Error("stt failed", "lang", lang, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "transcript": transcript})
	}
}
