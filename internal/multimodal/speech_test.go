package multimodal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/resumebuilder/internal/multimodal/stt"
	"github.com/nikhilbhutani/resumebuilder/internal/multimodal/tts"
)

type mockTTS struct{ mock.Mock }

func (m *mockTTS) Synthesize(ctx context.Context, req tts.SynthesisRequest) (*tts.SynthesisResult, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*tts.SynthesisResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTTS) Name() string { return "mock-tts" }

type mockSTT struct{ mock.Mock }

func (m *mockSTT) Transcribe(ctx context.Context, req stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*stt.TranscriptionResponse); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSTT) Name() string { return "mock-stt" }

func forLocale(locale string) any {
	return mock.MatchedBy(func(req tts.SynthesisRequest) bool { return req.LanguageCode == locale })
}

func TestLocale(t *testing.T) {
	tests := map[string]string{
		"en":  "en-US",
		"hi":  "hi-IN",
		"ne":  "ne-NP",
		"kok": "kok-IN",
		"":    "en-US",
		"fr":  "fr-FR",
		"xx":  "xx-XX",
	}
	for in, want := range tests {
		assert.Equal(t, want, Locale(in), "Locale(%q)", in)
	}
}

func TestSynthesizeFirstAttempt(t *testing.T) {
	synth := &mockTTS{}
	synth.On("Synthesize", mock.Anything, forLocale("ta-IN")).
		Return(&tts.SynthesisResult{Audio: []byte("tamil")}, nil).Once()

	svc := NewSpeechService(synth, &mockSTT{}, nil)
	audio, err := svc.Synthesize(context.Background(), "vanakkam", "ta")
	require.NoError(t, err)
	assert.Equal(t, []byte("tamil"), audio)
	synth.AssertExpectations(t)
}

func TestSynthesizeFallsBackToEnglish(t *testing.T) {
	synth := &mockTTS{}
	synth.On("Synthesize", mock.Anything, forLocale("zz-ZZ")).
		Return(nil, errors.New("unsupported language")).Once()
	synth.On("Synthesize", mock.Anything, forLocale("en-US")).
		Return(&tts.SynthesisResult{Audio: []byte("english")}, nil).Once()

	svc := NewSpeechService(synth, &mockSTT{}, nil)
	audio, err := svc.Synthesize(context.Background(), "hello", "zz")
	require.NoError(t, err)
	assert.Equal(t, []byte("english"), audio)
	synth.AssertExpectations(t)
}

func TestSynthesizeBothAttemptsFail(t *testing.T) {
	synth := &mockTTS{}
	synth.On("Synthesize", mock.Anything, mock.Anything).
		Return(nil, errors.New("service down")).Twice()

	svc := NewSpeechService(synth, &mockSTT{}, nil)
	_, err := svc.Synthesize(context.Background(), "hello", "en")

	var synthErr *SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Equal(t, "en-US", synthErr.Locale)
	assert.ErrorContains(t, err, "service down")
	synth.AssertNumberOfCalls(t, "Synthesize", 2)
}

func TestTranscribe(t *testing.T) {
	rec := &mockSTT{}
	rec.On("Transcribe", mock.Anything, mock.MatchedBy(func(req stt.TranscriptionRequest) bool {
		return req.LanguageCode == "hi-IN" && string(req.Audio) == "wav" && req.Filename == "a.wav"
	})).Return(&stt.TranscriptionResponse{Text: "main plumber hoon"}, nil)

	svc := NewSpeechService(&mockTTS{}, rec, nil)
	text, err := svc.Transcribe(context.Background(), []byte("wav"), "a.wav", "hi")
	require.NoError(t, err)
	assert.Equal(t, "main plumber hoon", text)
}

func TestTranscribeNoSpeech(t *testing.T) {
	rec := &mockSTT{}
	rec.On("Transcribe", mock.Anything, mock.Anything).Return(&stt.TranscriptionResponse{}, nil)

	svc := NewSpeechService(&mockTTS{}, rec, nil)

	_, err := svc.Transcribe(context.Background(), []byte("silence"), "", "en")
	assert.ErrorIs(t, err, ErrNoSpeechDetected)

	_, err = svc.Transcribe(context.Background(), nil, "", "en")
	assert.ErrorIs(t, err, ErrNoSpeechDetected)
	rec.AssertNumberOfCalls(t, "Transcribe", 1)
}

func TestTranscribeUpstreamError(t *testing.T) {
	rec := &mockSTT{}
	rec.On("Transcribe", mock.Anything, mock.Anything).Return(nil, errors.New("permission denied"))

	svc := NewSpeechService(&mockTTS{}, rec, nil)
	_, err := svc.Transcribe(context.Background(), []byte("x"), "", "mr")

	var trErr *TranscriptionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, "mr-IN", trErr.Locale)
	assert.NotErrorIs(t, err, ErrNoSpeechDetected)
}
