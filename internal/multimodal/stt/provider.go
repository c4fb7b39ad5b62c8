package stt

import "context"

// TranscriptionRequest holds the audio and parameters for transcription.
type TranscriptionRequest struct {
	Audio        []byte
	Filename     string // original upload name, used for format sniffing by HTTP backends
	LanguageCode string // vendor locale, e.g. "ta-IN"
}

// TranscriptionResponse holds the transcription result. Text is empty when
// the backend recognized no speech.
type TranscriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// STTProvider is the interface for speech-to-text backends.
type STTProvider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}
