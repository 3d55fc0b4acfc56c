package consignment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for submission persistence
type Repository interface {
	// CreateSubmission creates a new submission
	CreateSubmission(ctx context.Context, submission *Submission) error

	// GetSubmissionByID retrieves a submission by its ID
	GetSubmissionByID(ctx context.Context, submissionID uuid.UUID) (*Submission, error)

	// ListByClientID retrieves a client's submissions, newest first
	ListByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Submission, error)

	// ListByStatus retrieves submissions in a given status (admin review queue)
	ListByStatus(ctx context.Context, status SubmissionStatus, limit, offset int) ([]*Submission, error)

	// UpdateStatus updates a submission's status
	UpdateStatus(ctx context.Context, submissionID uuid.UUID, status SubmissionStatus) error

	// AttachAnalysis stores the AI analysis payload
	AttachAnalysis(ctx context.Context, submissionID uuid.UUID, analysis *Analysis) error
}

// SourceRepository defines the interface for scrape-target configuration
type SourceRepository interface {
	CreateSource(ctx context.Context, source *Source) error
	GetSourceByID(ctx context.Context, sourceID uuid.UUID) (*Source, error)
	ListEnabledSources(ctx context.Context) ([]*Source, error)
	ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*Source, error)
	UpdateSource(ctx context.Context, source *Source) error
	DeleteSource(ctx context.Context, sourceID uuid.UUID) error
}

// Analyzer is the AI vision/pricing collaborator. No latency or availability
// guarantees; callers must tolerate failure.
type Analyzer interface {
	Analyze(ctx context.Context, images []string, text string) (*Analysis, error)
}
