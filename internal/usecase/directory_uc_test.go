//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"telegram-channel-broadcast/internal/domain"
)

const ownerID = int64(1000)

func newDirectory(channels *memChannelRepo, sudoers *memSudoRepo, maxChannels int) *DirectoryUseCase {
	return NewDirectoryUseCase(channels, sudoers, ownerID, maxChannels, newTestLogger())
}

func TestDirectoryUseCase_RegisterChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a new channel", func(t *testing.T) {
		// --- Arrange ---
		repo := newMemChannelRepo()
		uc := newDirectory(repo, newMemSudoRepo(), 0)

		// --- Act ---
		ch, err := uc.RegisterChannel(ctx, "-1001", "news", ownerID)
		if err != nil {
			t.Fatalf("RegisterChannel failed: %v", err)
		}

		// --- Assert ---
		if ch.ID != "-1001" || !ch.Active {
			t.Errorf("unexpected channel state: %+v", ch)
		}
		if _, err := repo.FindByID(ctx, nil, "-1001"); err != nil {
			t.Errorf("channel not persisted: %v", err)
		}
	})

	t.Run("duplicate registration fails and keeps the original", func(t *testing.T) {
		// --- Arrange ---
		repo := newMemChannelRepo()
		uc := newDirectory(repo, newMemSudoRepo(), 0)
		if _, err := uc.RegisterChannel(ctx, "-1001", "original", ownerID); err != nil {
			t.Fatalf("first registration failed: %v", err)
		}

		// --- Act ---
		_, err := uc.RegisterChannel(ctx, "-1001", "impostor", ownerID)

		// --- Assert ---
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		kept, _ := repo.FindByID(ctx, nil, "-1001")
		if kept.Title != "original" {
			t.Errorf("existing record was modified: %+v", kept)
		}
	})

	t.Run("enforces the channel cap", func(t *testing.T) {
		// --- Arrange ---
		repo := newMemChannelRepo()
		uc := newDirectory(repo, newMemSudoRepo(), 2)
		seedChannels(repo, "-1001", "-1002")

		// --- Act ---
		_, err := uc.RegisterChannel(ctx, "-1003", "overflow", ownerID)

		// --- Assert ---
		if !errors.Is(err, ErrChannelLimit) {
			t.Fatalf("expected ErrChannelLimit, got %v", err)
		}
	})
}

func TestDirectoryUseCase_RemoveChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("removes an existing channel", func(t *testing.T) {
		repo := newMemChannelRepo()
		uc := newDirectory(repo, newMemSudoRepo(), 0)
		seedChannels(repo, "-1001")

		if err := uc.RemoveChannel(ctx, "-1001"); err != nil {
			t.Fatalf("RemoveChannel failed: %v", err)
		}
		if _, err := repo.FindByID(ctx, nil, "-1001"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("channel still present after removal")
		}
	})

	t.Run("removal of an unknown channel reports not found", func(t *testing.T) {
		uc := newDirectory(newMemChannelRepo(), newMemSudoRepo(), 0)

		err := uc.RemoveChannel(ctx, "-1009")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestDirectoryUseCase_ListChannels_Ordering(t *testing.T) {
	ctx := context.Background()
	repo := newMemChannelRepo()
	uc := newDirectory(repo, newMemSudoRepo(), 0)
	seedChannels(repo, "-1001", "-1002", "-1003") // -1003 registered last

	channels, err := uc.ListChannels(ctx)
	if err != nil {
		t.Fatalf("ListChannels failed: %v", err)
	}
	got := []string{channels[0].ID, channels[1].ID, channels[2].ID}
	want := []string{"-1003", "-1002", "-1001"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordering mismatch: got %v, want %v", got, want)
		}
	}
}

func TestDirectoryUseCase_SudoUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("grant and revoke", func(t *testing.T) {
		sudoers := newMemSudoRepo()
		uc := newDirectory(newMemChannelRepo(), sudoers, 0)

		if _, err := uc.RegisterSudoUser(ctx, 42, "alice", ownerID); err != nil {
			t.Fatalf("grant failed: %v", err)
		}
		if !uc.IsAuthorized(ctx, 42) {
			t.Error("granted user is not authorized")
		}

		if err := uc.RemoveSudoUser(ctx, 42); err != nil {
			t.Fatalf("revoke failed: %v", err)
		}
		if uc.IsAuthorized(ctx, 42) {
			t.Error("revoked user is still authorized")
		}
	})

	t.Run("owner is always authorized and never stored", func(t *testing.T) {
		uc := newDirectory(newMemChannelRepo(), newMemSudoRepo(), 0)

		if !uc.IsAuthorized(ctx, ownerID) {
			t.Error("owner is not authorized")
		}
		if _, err := uc.RegisterSudoUser(ctx, ownerID, "boss", ownerID); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument when granting the owner, got %v", err)
		}
	})

	t.Run("duplicate grant fails", func(t *testing.T) {
		uc := newDirectory(newMemChannelRepo(), newMemSudoRepo(), 0)
		if _, err := uc.RegisterSudoUser(ctx, 42, "alice", ownerID); err != nil {
			t.Fatalf("grant failed: %v", err)
		}
		if _, err := uc.RegisterSudoUser(ctx, 42, "alice", ownerID); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("unknown user is not authorized", func(t *testing.T) {
		uc := newDirectory(newMemChannelRepo(), newMemSudoRepo(), 0)
		if uc.IsAuthorized(ctx, 777) {
			t.Error("stranger passed authorization")
		}
	})
}
