package model

import (
	"time"

	"github.com/google/uuid"

	"telegram-channel-broadcast/internal/domain"
)

// ScheduledPost is the durable record written when a principal chooses
// "schedule" instead of "send now": one row per pairing, carrying the stated
// future timestamp. No delivery process consumes these records yet; MarkSent
// exists on the repository for a future scheduler.
type ScheduledPost struct {
	ID           string
	ChannelID    string
	ChannelTitle string
	Post         Post
	ScheduledFor time.Time
	CreatedBy    int64
	CreatedAt    time.Time
	Sent         bool
	SentAt       *time.Time
}

func NewScheduledPost(channel Channel, post Post, scheduledFor time.Time, createdBy int64) (*ScheduledPost, error) {
	if channel.ID == "" || createdBy <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if !scheduledFor.After(time.Now().UTC()) {
		return nil, domain.ErrInvalidArgument
	}
	return &ScheduledPost{
		ID:           uuid.NewString(),
		ChannelID:    channel.ID,
		ChannelTitle: channel.Title,
		Post:         post,
		ScheduledFor: scheduledFor.UTC(),
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
