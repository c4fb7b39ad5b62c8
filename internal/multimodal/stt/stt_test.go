package stt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	got  *speechpb.RecognizeRequest
	resp *speechpb.RecognizeResponse
	err  error
}

func (f *fakeRecognizer) Recognize(_ context.Context, req *speechpb.RecognizeRequest, _ ...gax.CallOption) (*speechpb.RecognizeResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeRecognizer) Close() error { return nil }

func TestGoogleSTTTranscribe(t *testing.T) {
	fake := &fakeRecognizer{resp: &speechpb.RecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{
				{Transcript: "I am a carpenter."},
				{Transcript: "I am a car painter."},
			}},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "ignored"}}},
		},
	}}
	g := &GoogleSTT{client: fake}

	resp, err := g.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("wav"), LanguageCode: "en-IN"})
	require.NoError(t, err)

	assert.Equal(t, "I am a carpenter.", resp.Text)
	assert.Equal(t, "en-IN", fake.got.GetConfig().GetLanguageCode())
	assert.True(t, fake.got.GetConfig().GetEnableAutomaticPunctuation())
	assert.Equal(t, []byte("wav"), fake.got.GetAudio().GetContent())
}

func TestGoogleSTTNoResults(t *testing.T) {
	g := &GoogleSTT{client: &fakeRecognizer{resp: &speechpb.RecognizeResponse{}}}

	resp, err := g.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("silence"), LanguageCode: "hi-IN"})
	require.NoError(t, err)
	assert.Empty(t, resp.Text)
}

func TestGoogleSTTError(t *testing.T) {
	g := &GoogleSTT{client: &fakeRecognizer{err: errors.New("quota exceeded")}}

	_, err := g.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("x"), LanguageCode: "ta-IN"})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestOpenAISTTTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "ta", r.FormValue("language"))
		assert.Empty(t, r.FormValue("prompt"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, ".wav", filepath.Ext(header.Filename))
		assert.NotEqual(t, "clip.wav", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"  vanakkam  ","language":"tamil","duration":1.5}`))
	}))
	defer srv.Close()

	o := NewOpenAISTT(OpenAISTTConfig{APIKey: "sk-test", BaseURL: srv.URL})
	resp, err := o.Transcribe(context.Background(), TranscriptionRequest{
		Audio:        []byte("RIFF"),
		Filename:     "clip.wav",
		LanguageCode: "ta-IN",
	})
	require.NoError(t, err)

	assert.Equal(t, "vanakkam", resp.Text)
	assert.Equal(t, "tamil", resp.Language)
	assert.InDelta(t, 1.5, resp.Duration, 0.001)
}

func TestOpenAISTTErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad audio"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	o := NewOpenAISTT(OpenAISTTConfig{BaseURL: srv.URL})
	_, err := o.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("x")})
	assert.ErrorContains(t, err, "status 400")
}

func TestLocalSTTUsesLocalServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"text":"hello"}`))
	}))
	defer srv.Close()

	l := NewLocalSTT(LocalSTTConfig{BaseURL: srv.URL})
	assert.Equal(t, "local-whisper", l.Name())

	resp, err := l.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("x"), LanguageCode: "en-US"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
}

func TestUploadName(t *testing.T) {
	assert.Equal(t, ".webm", filepath.Ext(uploadName("")))
	assert.Equal(t, ".mp3", filepath.Ext(uploadName("../../etc/voice.mp3")))
	assert.NotContains(t, uploadName("../../etc/voice.mp3"), "..")
}
