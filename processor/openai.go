package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/wardround/meddoc/models"
)

// OpenAIBackend is the fallback when only an OpenAI key is configured. It
// runs a two-stage pipeline: Whisper transcription of the raw audio, then a
// JSON-mode chat completion applying the extraction instruction to the
// transcript. Emotion and timestamps are inferred from text only, so the
// Gemini backend is preferred when available.
type OpenAIBackend struct {
	Client    *openai.Client
	ChatModel string
}

// NewOpenAI builds an OpenAIBackend from an API key.
func NewOpenAI(apiKey, chatModel string) *OpenAIBackend {
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	return &OpenAIBackend{
		Client:    openai.NewClient(apiKey),
		ChatModel: chatModel,
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

// ProcessURL is unsupported: the OpenAI audio API takes file payloads only.
func (b *OpenAIBackend) ProcessURL(ctx context.Context, url string) (*models.ProcessingResult, error) {
	return nil, errors.New("the openai backend cannot fetch URLs; upload the audio file instead or configure GOOGLE_API_KEY")
}

func (b *OpenAIBackend) ProcessAudio(ctx context.Context, audio io.Reader, filename, mimeType string) (*models.ProcessingResult, error) {
	start := time.Now()

	transcription, err := b.Client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   audio,
		FilePath: filename,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	log.Printf("openai: transcribed %q (%d chars)", filename, len(transcription.Text))

	resp, err := b.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcriptPreamble + transcription.Text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	result, err := models.ParseProcessingResult([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		return nil, err
	}
	result.ProcessingTime = time.Since(start).Seconds()
	return result, nil
}
