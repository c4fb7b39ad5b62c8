package multimodal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikhilbhutani/resumebuilder/internal/multimodal/stt"
	"github.com/nikhilbhutani/resumebuilder/internal/multimodal/tts"
)

// ErrNoSpeechDetected is returned when the recognizer produced no transcript.
var ErrNoSpeechDetected = errors.New("no speech detected")

// SynthesisError reports that both the requested locale and the English
// fallback failed.
type SynthesisError struct {
	Locale string
	Err    error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize speech (%s): %v", e.Locale, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// TranscriptionError reports an upstream recognizer failure.
type TranscriptionError struct {
	Locale string
	Err    error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribe speech (%s): %v", e.Locale, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// SpeechService maps application language codes onto the configured TTS and
// STT backends.
type SpeechService struct {
	tts    tts.TTSProvider
	stt    stt.STTProvider
	logger *slog.Logger
}

func NewSpeechService(synth tts.TTSProvider, rec stt.STTProvider, logger *slog.Logger) *SpeechService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeechService{tts: synth, stt: rec, logger: logger}
}

// Synthesize returns MP3 (or backend-native) audio for text. A failed first
// attempt is retried once with en-US.
func (s *SpeechService) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	locale := Locale(lang)

	result, err := s.tts.Synthesize(ctx, tts.SynthesisRequest{Input: text, LanguageCode: locale})
	if err == nil {
		return result.Audio, nil
	}

	s.logger.Warn("tts failed, retrying in english",
		"backend", s.tts.Name(),
		"locale", locale,
		"error", err,
	)

	result, err = s.tts.Synthesize(ctx, tts.SynthesisRequest{Input: text, LanguageCode: DefaultLocale})
	if err != nil {
		return nil, &SynthesisError{Locale: locale, Err: err}
	}
	return result.Audio, nil
}

// Transcribe returns the top transcript for audio in the given language.
func (s *SpeechService) Transcribe(ctx context.Context, audio []byte, filename, lang string) (string, error) {
	if len(audio) == 0 {
		return "", ErrNoSpeechDetected
	}

	locale := Locale(lang)
	resp, err := s.stt.Transcribe(ctx, stt.TranscriptionRequest{
		Audio:        audio,
		Filename:     filename,
		LanguageCode: locale,
	})
	if err != nil {
		return "", &TranscriptionError{Locale: locale, Err: err}
	}
	if resp == nil || resp.Text == "" {
		return "", ErrNoSpeechDetected
	}
	return resp.Text, nil
}
