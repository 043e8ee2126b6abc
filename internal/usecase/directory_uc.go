package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-channel-broadcast/internal/domain"
	"telegram-channel-broadcast/internal/domain/model"
	"telegram-channel-broadcast/internal/domain/ports/repository"
)

// ErrChannelLimit is returned when the configured channel cap is reached.
var ErrChannelLimit = errors.New("channel limit reached")

// DirectoryUseCase manages the channel and sudo-user records. Each operation
// acts on a single logical record; uniqueness is resolved by the storage
// layer, so there are no transactions here.
type DirectoryUseCase struct {
	channels repository.ChannelRepository
	sudoers  repository.SudoUserRepository
	ownerID  int64
	maxChans int
	log      *zerolog.Logger
}

func NewDirectoryUseCase(
	channels repository.ChannelRepository,
	sudoers repository.SudoUserRepository,
	ownerID int64,
	maxChannels int,
	logger *zerolog.Logger,
) *DirectoryUseCase {
	l := logger.With().Str("component", "DirectoryUC").Logger()
	return &DirectoryUseCase{
		channels: channels,
		sudoers:  sudoers,
		ownerID:  ownerID,
		maxChans: maxChannels,
		log:      &l,
	}
}

// RegisterChannel stores a new broadcast target. A duplicate id fails with
// domain.ErrAlreadyExists and leaves the existing record untouched.
func (uc *DirectoryUseCase) RegisterChannel(ctx context.Context, channelID, title string, registrant int64) (*model.Channel, error) {
	if uc.maxChans > 0 {
		count, err := uc.channels.CountActive(ctx, repository.NoTX)
		if err != nil {
			return nil, fmt.Errorf("count channels: %w", err)
		}
		if count >= uc.maxChans {
			return nil, ErrChannelLimit
		}
	}
	ch, err := model.NewChannel(channelID, title, registrant)
	if err != nil {
		return nil, err
	}
	if err := uc.channels.Save(ctx, repository.NoTX, ch); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("save channel: %w", err)
	}
	uc.log.Info().Str("channel_id", ch.ID).Str("title", ch.Title).Int64("added_by", registrant).Msg("channel registered")
	return ch, nil
}

// ListChannels returns active channels, most recently registered first.
func (uc *DirectoryUseCase) ListChannels(ctx context.Context) ([]model.Channel, error) {
	return uc.channels.ListActive(ctx, repository.NoTX)
}

func (uc *DirectoryUseCase) FindChannel(ctx context.Context, channelID string) (*model.Channel, error) {
	return uc.channels.FindByID(ctx, repository.NoTX, channelID)
}

func (uc *DirectoryUseCase) RemoveChannel(ctx context.Context, channelID string) error {
	if err := uc.channels.Delete(ctx, repository.NoTX, channelID); err != nil {
		return err
	}
	uc.log.Info().Str("channel_id", channelID).Msg("channel removed")
	return nil
}

// RegisterSudoUser grants distribution rights. Only the owner may call this;
// the permission check happens at the command layer, but granting the owner
// itself is refused here to keep the owner out of the table.
func (uc *DirectoryUseCase) RegisterSudoUser(ctx context.Context, userID int64, username string, grantedBy int64) (*model.SudoUser, error) {
	if userID == uc.ownerID {
		return nil, domain.ErrInvalidArgument
	}
	u, err := model.NewSudoUser(userID, username, grantedBy)
	if err != nil {
		return nil, err
	}
	if err := uc.sudoers.Save(ctx, repository.NoTX, u); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("save sudo user: %w", err)
	}
	uc.log.Info().Int64("user_id", userID).Int64("granted_by", grantedBy).Msg("sudo user added")
	return u, nil
}

func (uc *DirectoryUseCase) RemoveSudoUser(ctx context.Context, userID int64) error {
	if err := uc.sudoers.Delete(ctx, repository.NoTX, userID); err != nil {
		return err
	}
	uc.log.Info().Int64("user_id", userID).Msg("sudo user removed")
	return nil
}

func (uc *DirectoryUseCase) ListSudoUsers(ctx context.Context) ([]model.SudoUser, error) {
	return uc.sudoers.List(ctx, repository.NoTX)
}

// IsAuthorized reports whether the principal may manage channels and run
// distributions: the owner always, otherwise anyone with a sudo record.
func (uc *DirectoryUseCase) IsAuthorized(ctx context.Context, userID int64) bool {
	if userID == uc.ownerID {
		return true
	}
	u, err := uc.sudoers.FindByUserID(ctx, repository.NoTX, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.log.Error().Err(err).Int64("user_id", userID).Msg("sudo lookup failed")
		}
		return false
	}
	return u != nil
}

// IsOwner reports whether the principal is the configured bot owner.
func (uc *DirectoryUseCase) IsOwner(userID int64) bool {
	return userID == uc.ownerID
}
