// Package transcribe converts audio uploads to text with the OpenAI
// Whisper API.
package transcribe

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = openai.Whisper1

// transcriptionClient is the slice of the OpenAI client we use.
type transcriptionClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Service transcribes audio files.
type Service struct {
	client transcriptionClient
	model  string
}

// New creates a transcription service with the given API key.
func New(apiKey, model string) *Service {
	return NewWithClient(openai.NewClient(apiKey), model)
}

// NewWithClient creates a service around an existing client. Useful for
// testing.
func NewWithClient(client transcriptionClient, model string) *Service {
	if model == "" {
		model = defaultModel
	}
	return &Service{client: client, model: model}
}

// Transcribe sends the audio to Whisper and returns the recognized
// text. The filename's extension tells the API the audio format.
func (s *Service) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.model,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return resp.Text, nil
}
