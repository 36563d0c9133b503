package transcribe

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	gotRequest openai.AudioRequest
	text       string
	err        error
}

func (c *fakeClient) CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error) {
	c.gotRequest = request
	if c.err != nil {
		return openai.AudioResponse{}, c.err
	}
	return openai.AudioResponse{Text: c.text}, nil
}

func TestTranscribe(t *testing.T) {
	client := &fakeClient{text: "hello world"}
	service := NewWithClient(client, "")

	text, err := service.Transcribe(context.Background(), "voice.webm", strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)

	assert.Equal(t, openai.Whisper1, client.gotRequest.Model)
	assert.Equal(t, "voice.webm", client.gotRequest.FilePath)

	body, err := io.ReadAll(client.gotRequest.Reader)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(body))
}

func TestTranscribeFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("api down")}
	service := NewWithClient(client, "whisper-1")

	_, err := service.Transcribe(context.Background(), "voice.mp3", strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription failed")
}
