package consignment

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus is the review state of a consignor's submission.
type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusReviewing SubmissionStatus = "reviewing"
	StatusApproved  SubmissionStatus = "approved"
	StatusListed    SubmissionStatus = "listed"
	StatusRejected  SubmissionStatus = "rejected"
)

// Analysis is the AI identification/grading/valuation payload. It is
// attached to a submission only after the analysis call succeeds.
type Analysis struct {
	Identification string    `json:"identification"`
	Grade          string    `json:"grade"`
	ValuationLow   int64     `json:"valuation_low_cents"`
	ValuationHigh  int64     `json:"valuation_high_cents"`
	Notes          string    `json:"notes,omitempty"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}

// Submission is an item a client has consigned for review and sale.
type Submission struct {
	ID          uuid.UUID        `db:"id"`
	ClientID    uuid.UUID        `db:"client_id"`
	Title       string           `db:"title"`
	Description string           `db:"description"`
	Photos      []string         `db:"photos"`
	Status      SubmissionStatus `db:"status"`
	Analysis    *Analysis        `db:"analysis"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

// Source is a scrape-target configuration owned by a client: where to look
// for comparable sold listings and how often. Configuration data only; the
// worker interprets it.
type Source struct {
	ID         uuid.UUID         `db:"id"`
	ClientID   uuid.UUID         `db:"client_id"`
	SourceType string            `db:"source_type"`
	URL        string            `db:"url"`
	Schedule   string            `db:"schedule"` // cron expression
	Selectors  map[string]string `db:"selectors"`
	Enabled    bool              `db:"enabled"`
	CreatedAt  time.Time         `db:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at"`
}

// SubmitCommand represents the command to submit an item for consignment
type SubmitCommand struct {
	ClientID    uuid.UUID
	Title       string
	Description string
	Photos      []string
}

// CreateSourceCommand represents the command to register a scrape target
type CreateSourceCommand struct {
	ClientID   uuid.UUID
	SourceType string
	URL        string
	Schedule   string
	Selectors  map[string]string
}
