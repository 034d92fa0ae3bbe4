package processor

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/wardround/meddoc/gemini"
	"github.com/wardround/meddoc/models"
)

// GeminiBackend sends audio directly to the Gemini multimodal API, which
// does transcription, diarization and extraction in one call.
type GeminiBackend struct {
	client *gemini.Client
}

// NewGemini wraps a configured gemini.Client as a Backend.
func NewGemini(client *gemini.Client) *GeminiBackend {
	return &GeminiBackend{client: client}
}

func (b *GeminiBackend) Name() string { return "gemini" }

// ProcessURL points Gemini at a public media URL (YouTube links are
// consumed server-side by the model) together with the extraction prompt.
func (b *GeminiBackend) ProcessURL(ctx context.Context, url string) (*models.ProcessingResult, error) {
	start := time.Now()

	raw, err := b.client.GenerateFromURI(ctx, url, "", extractionPrompt, responseSchema)
	if err != nil {
		return nil, err
	}

	result, err := models.ParseProcessingResult(raw)
	if err != nil {
		return nil, err
	}
	result.ProcessingTime = time.Since(start).Seconds()
	return result, nil
}

// ProcessAudio uploads the audio to the Gemini files API, waits for it to
// become ACTIVE, runs generation against the uploaded resource, and removes
// the upload afterwards.
func (b *GeminiBackend) ProcessAudio(ctx context.Context, audio io.Reader, filename, mimeType string) (*models.ProcessingResult, error) {
	start := time.Now()

	file, err := b.client.UploadFile(ctx, audio, filename, mimeType)
	if err != nil {
		return nil, err
	}
	file, err = b.client.WaitForFile(ctx, file)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := b.client.DeleteFile(context.WithoutCancel(ctx), file.Name); err != nil {
			log.Printf("gemini file cleanup failed for %s: %v", file.Name, err)
		}
	}()

	raw, err := b.client.GenerateFromURI(ctx, file.URI, mimeType, extractionPrompt, responseSchema)
	if err != nil {
		return nil, err
	}

	result, err := models.ParseProcessingResult(raw)
	if err != nil {
		return nil, err
	}
	result.ProcessingTime = time.Since(start).Seconds()
	return result, nil
}
