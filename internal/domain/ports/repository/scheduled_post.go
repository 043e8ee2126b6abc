package repository

import (
	"context"
	"time"

	"telegram-channel-broadcast/internal/domain/model"
)

// ScheduledPostRepository stores the schedule-for-later stub records. Nothing
// in this process reads them back for delivery; ListPending and MarkSent are
// the integration points a real scheduler would use.
type ScheduledPostRepository interface {
	Save(ctx context.Context, tx Tx, p *model.ScheduledPost) error
	ListPending(ctx context.Context, tx Tx, due time.Time) ([]model.ScheduledPost, error)
	MarkSent(ctx context.Context, tx Tx, id string, sentAt time.Time) error
}
