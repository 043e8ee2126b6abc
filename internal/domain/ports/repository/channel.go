package repository

import (
	"context"

	"telegram-channel-broadcast/internal/domain/model"
)

// ChannelRepository persists registered broadcast channels.
//
// Save must reject a second writer for an already-registered channel id with
// domain.ErrAlreadyExists (storage-level uniqueness, not a read-then-write
// check). ListActive returns channels most-recently-registered first; the
// ordering is part of the contract because sessions snapshot it.
type ChannelRepository interface {
	Save(ctx context.Context, tx Tx, ch *model.Channel) error
	FindByID(ctx context.Context, tx Tx, channelID string) (*model.Channel, error)
	ListActive(ctx context.Context, tx Tx) ([]model.Channel, error)
	CountActive(ctx context.Context, tx Tx) (int, error)
	// Delete removes the record entirely; domain.ErrNotFound when absent.
	Delete(ctx context.Context, tx Tx, channelID string) error
}
