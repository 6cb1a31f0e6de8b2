package speech

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Transcriber turns a recorded voice note into text. An empty transcript with
// a nil error means no speech was recognized.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// GoogleSTT recognizes OGG_OPUS mono 16 kHz audio, the format Converter
// produces.
type GoogleSTT struct {
	client       *speech.Client
	languageCode string
	logger       *zap.Logger
}

func NewGoogleSTT(ctx context.Context, credentialsFile, languageCode string, logger *zap.Logger) (*GoogleSTT, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &GoogleSTT{client: client, languageCode: languageCode, logger: logger}, nil
}

func (s *GoogleSTT) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	resp, err := s.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_OGG_OPUS,
			SampleRateHertz:   16000,
			AudioChannelCount: 1,
			LanguageCode:      s.languageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to recognize speech: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}

	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

func (s *GoogleSTT) Close() error {
	return s.client.Close()
}
