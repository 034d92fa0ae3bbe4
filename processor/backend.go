// Package processor turns a hospital audio source into structured medical
// documentation by delegating the heavy lifting to a hosted AI model.
package processor

import (
	"context"
	"io"

	"github.com/wardround/meddoc/models"
)

// Backend is a pluggable analysis backend. Implementations shape the
// extraction prompt, invoke the remote model, and parse its JSON reply.
type Backend interface {
	// Name identifies the backend in the health endpoint and logs.
	Name() string
	// ProcessURL analyzes a reachable audio/video URL (e.g. YouTube).
	ProcessURL(ctx context.Context, url string) (*models.ProcessingResult, error)
	// ProcessAudio analyzes uploaded audio bytes.
	ProcessAudio(ctx context.Context, audio io.Reader, filename, mimeType string) (*models.ProcessingResult, error)
}
