package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

type speechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

// GoogleTTS synthesizes MP3 speech with Google Cloud Text-to-Speech using a
// neutral voice for the requested locale.
type GoogleTTS struct {
	client speechSynthesizer
}

// NewGoogleTTS creates a client authenticated with the service-account key at credentialsFile.
func NewGoogleTTS(ctx context.Context, credentialsFile string) (*GoogleTTS, error) {
	client, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech client: %w", err)
	}
	return &GoogleTTS{client: client}, nil
}

func (g *GoogleTTS) Name() string { return "google-tts" }

func (g *GoogleTTS) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{InputSource: &texttospeechpb.SynthesisInput_Text{Text: req.Input}},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: req.LanguageCode,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
		},
		AudioConfig: &texttospeechpb.AudioConfig{AudioEncoding: texttospeechpb.AudioEncoding_MP3},
	})
	if err != nil {
		return nil, fmt.Errorf("google synthesize (%s): %w", req.LanguageCode, err)
	}

	return &SynthesisResult{
		Audio:       resp.GetAudioContent(),
		ContentType: "audio/mpeg",
	}, nil
}

func (g *GoogleTTS) Close() error {
	return g.client.Close()
}
