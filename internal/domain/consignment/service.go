package consignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service errors
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSourceNotFound     = errors.New("source not found")
	ErrInvalidTitle       = errors.New("title is required")
	ErrNoPhotos           = errors.New("at least one photo is required")
	ErrInvalidTransition  = errors.New("invalid submission status transition")
	ErrNotOwner           = errors.New("submission belongs to a different client")
	ErrAnalysisFailed     = errors.New("analysis service unavailable")
)

// legal review-state transitions
var submissionTransitions = map[SubmissionStatus][]SubmissionStatus{
	StatusPending:   {StatusReviewing, StatusRejected},
	StatusReviewing: {StatusApproved, StatusRejected},
	StatusApproved:  {StatusListed, StatusRejected},
}

// Service implements the consignment portal logic
type Service struct {
	repo       Repository
	sourceRepo SourceRepository
	analyzer   Analyzer
	logger     *slog.Logger
}

// NewService creates a new consignment service
func NewService(repo Repository, sourceRepo SourceRepository, analyzer Analyzer, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		sourceRepo: sourceRepo,
		analyzer:   analyzer,
		logger:     logger,
	}
}

// Submit creates a new submission in pending status
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*Submission, error) {
	if cmd.Title == "" {
		return nil, ErrInvalidTitle
	}
	if len(cmd.Photos) == 0 {
		return nil, ErrNoPhotos
	}

	now := time.Now()
	submission := &Submission{
		ID:          uuid.New(),
		ClientID:    cmd.ClientID,
		Title:       cmd.Title,
		Description: cmd.Description,
		Photos:      cmd.Photos,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	return submission, nil
}

// GetSubmission retrieves a submission, enforcing client ownership unless
// the caller is an admin.
func (s *Service) GetSubmission(ctx context.Context, submissionID, callerID uuid.UUID, isAdmin bool) (*Submission, error) {
	submission, err := s.repo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, ErrSubmissionNotFound
	}
	if !isAdmin && submission.ClientID != callerID {
		return nil, ErrNotOwner
	}
	return submission, nil
}

// ListClientSubmissions retrieves a client's submissions, newest first
func (s *Service) ListClientSubmissions(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Submission, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := s.repo.ListByClientID(ctx, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return list, nil
}

// ListReviewQueue retrieves submissions awaiting admin review
func (s *Service) ListReviewQueue(ctx context.Context, status SubmissionStatus, limit, offset int) ([]*Submission, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := s.repo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list review queue: %w", err)
	}
	return list, nil
}

// UpdateStatus moves a submission along the review state machine
func (s *Service) UpdateStatus(ctx context.Context, submissionID uuid.UUID, next SubmissionStatus) (*Submission, error) {
	submission, err := s.repo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, ErrSubmissionNotFound
	}

	allowed := false
	for _, candidate := range submissionTransitions[submission.Status] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, submission.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, submissionID, next); err != nil {
		return nil, fmt.Errorf("failed to update submission status: %w", err)
	}

	submission.Status = next
	return submission, nil
}

// Analyze runs the AI identification/grading/valuation call and attaches
// the result. On failure the submission is left unchanged.
func (s *Service) Analyze(ctx context.Context, submissionID uuid.UUID) (*Submission, error) {
	submission, err := s.repo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, ErrSubmissionNotFound
	}

	analysis, err := s.analyzer.Analyze(ctx, submission.Photos, submission.Title+"\n"+submission.Description)
	if err != nil {
		s.logger.Error("Analysis call failed", "submission_id", submissionID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	if err := s.repo.AttachAnalysis(ctx, submissionID, analysis); err != nil {
		return nil, fmt.Errorf("failed to attach analysis: %w", err)
	}

	submission.Analysis = analysis
	return submission, nil
}

// CreateSource registers a scrape target for a client
func (s *Service) CreateSource(ctx context.Context, cmd CreateSourceCommand) (*Source, error) {
	if cmd.URL == "" {
		return nil, errors.New("url is required")
	}

	now := time.Now()
	source := &Source{
		ID:         uuid.New(),
		ClientID:   cmd.ClientID,
		SourceType: cmd.SourceType,
		URL:        cmd.URL,
		Schedule:   cmd.Schedule,
		Selectors:  cmd.Selectors,
		Enabled:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.sourceRepo.CreateSource(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}

	return source, nil
}

// ListClientSources retrieves a client's scrape targets
func (s *Service) ListClientSources(ctx context.Context, clientID uuid.UUID) ([]*Source, error) {
	list, err := s.sourceRepo.ListByClientID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return list, nil
}

// DeleteSource removes a scrape target, enforcing ownership
func (s *Service) DeleteSource(ctx context.Context, sourceID, clientID uuid.UUID) error {
	source, err := s.sourceRepo.GetSourceByID(ctx, sourceID)
	if err != nil {
		return ErrSourceNotFound
	}
	if source.ClientID != clientID {
		return ErrNotOwner
	}
	if err := s.sourceRepo.DeleteSource(ctx, sourceID); err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	return nil
}
