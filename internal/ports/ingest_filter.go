package ports

import (
	"context"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// IngestFilter defines the interface for mail-stream ingest adapters
type IngestFilter interface {
	// ProcessMessage scans a raw message and returns the assessment
	ProcessMessage(ctx context.Context, rawMessage string) (*core.EmailAssessment, error)

	// Start starts the ingest service
	Start() error

	// Stop stops the ingest service
	Stop() error
}
