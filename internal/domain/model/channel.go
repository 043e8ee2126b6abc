package model

import (
	"time"

	"telegram-channel-broadcast/internal/domain"
)

// Channel is a registered broadcast target. The ID is the platform chat
// identifier kept as text (e.g. "-1001234567890"); it is the natural key and
// must stay unique among active channels.
type Channel struct {
	ID      string
	Title   string
	AddedBy int64
	AddedAt time.Time
	Active  bool
}

func NewChannel(id, title string, addedBy int64) (*Channel, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	if addedBy <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Channel{
		ID:      id,
		Title:   title,
		AddedBy: addedBy,
		AddedAt: time.Now().UTC(),
		Active:  true,
	}, nil
}

// DisplayTitle falls back to the raw id for channels whose title could not be
// resolved at registration time.
func (c *Channel) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.ID
}
