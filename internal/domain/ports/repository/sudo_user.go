package repository

import (
	"context"

	"telegram-channel-broadcast/internal/domain/model"
)

// SudoUserRepository persists the authorized-user set. The owner principal is
// configuration, never a row here.
type SudoUserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.SudoUser) error
	FindByUserID(ctx context.Context, tx Tx, userID int64) (*model.SudoUser, error)
	List(ctx context.Context, tx Tx) ([]model.SudoUser, error)
	// Delete returns domain.ErrNotFound when no record matches.
	Delete(ctx context.Context, tx Tx, userID int64) error
}
