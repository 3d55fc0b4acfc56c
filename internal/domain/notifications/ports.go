package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository persists notifications plus the processed-event ledger that
// makes consumption idempotent under redelivery.
type Repository interface {
	CreateNotification(ctx context.Context, tx pgx.Tx, notification *Notification) error
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error

	IsEventProcessed(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (bool, error)
	MarkEventProcessed(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) error
}
