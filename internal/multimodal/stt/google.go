package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

type speechRecognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// GoogleSTT transcribes short audio clips with Google Cloud Speech-to-Text.
// The encoding is left unspecified so WAV and FLAC headers are auto-detected.
type GoogleSTT struct {
	client speechRecognizer
}

// NewGoogleSTT creates a client authenticated with the service-account key at credentialsFile.
func NewGoogleSTT(ctx context.Context, credentialsFile string) (*GoogleSTT, error) {
	client, err := speech.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &GoogleSTT{client: client}, nil
}

func (g *GoogleSTT) Name() string { return "google-stt" }

// Transcribe returns the top alternative of the first result.
func (g *GoogleSTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode:               req.LanguageCode,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: req.Audio},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("google recognize (%s): %w", req.LanguageCode, err)
	}

	out := &TranscriptionResponse{Language: req.LanguageCode}
	if results := resp.GetResults(); len(results) > 0 {
		if alts := results[0].GetAlternatives(); len(alts) > 0 {
			out.Text = alts[0].GetTranscript()
		}
	}
	return out, nil
}

func (g *GoogleSTT) Close() error {
	return g.client.Close()
}
