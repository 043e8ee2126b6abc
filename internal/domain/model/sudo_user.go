package model

import (
	"time"

	"telegram-channel-broadcast/internal/domain"
)

// SudoUser is a principal allowed to manage channels and run distributions.
// The bot owner is configured once at startup and is never stored as a record.
type SudoUser struct {
	UserID   int64
	Username string
	AddedBy  int64
	AddedAt  time.Time
}

func NewSudoUser(userID int64, username string, addedBy int64) (*SudoUser, error) {
	if userID <= 0 || addedBy <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &SudoUser{
		UserID:   userID,
		Username: username,
		AddedBy:  addedBy,
		AddedAt:  time.Now().UTC(),
	}, nil
}
