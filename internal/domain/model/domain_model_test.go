//go:build !integration

package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"telegram-channel-broadcast/internal/domain"
)

func testChannels(n int) []Channel {
	out := make([]Channel, 0, n)
	base := time.Now().UTC()
	for i := 0; i < n; i++ {
		out = append(out, Channel{
			ID:      "-100" + strings.Repeat("1", i+1),
			Title:   "chan " + string(rune('A'+i)),
			AddedBy: 1,
			AddedAt: base,
			Active:  true,
		})
	}
	return out
}

// --- Channel Model Tests ---

func TestNewChannel(t *testing.T) {
	t.Run("should create a channel", func(t *testing.T) {
		ch, err := NewChannel("-1001234", "news", 42)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if !ch.Active {
			t.Error("new channel should be active")
		}
		if ch.AddedBy != 42 {
			t.Errorf("AddedBy = %d, want 42", ch.AddedBy)
		}
	})

	t.Run("should fail with empty id or bad registrant", func(t *testing.T) {
		if _, err := NewChannel("", "news", 42); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("empty id: got %v", err)
		}
		if _, err := NewChannel("-1001234", "news", 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("bad registrant: got %v", err)
		}
	})

	t.Run("display title falls back to the id", func(t *testing.T) {
		ch, _ := NewChannel("-1001234", "", 42)
		if ch.DisplayTitle() != "-1001234" {
			t.Errorf("DisplayTitle = %q", ch.DisplayTitle())
		}
	})
}

// --- Post Model Tests ---

func TestNewMediaPost(t *testing.T) {
	t.Run("requires a file id", func(t *testing.T) {
		if _, err := NewMediaPost(PostPhoto, "", "caption", 1); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("rejects non-media kinds", func(t *testing.T) {
		if _, err := NewMediaPost(PostText, "file", "caption", 1); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("got %v", err)
		}
	})
}

func TestTruncateRunes(t *testing.T) {
	t.Run("short strings pass through", func(t *testing.T) {
		if got := TruncateRunes("hello", 10); got != "hello" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("counts runes, not bytes", func(t *testing.T) {
		s := strings.Repeat("é", 10)
		got := TruncateRunes(s, 4)
		if len([]rune(got)) != 4 {
			t.Errorf("rune length = %d, want 4", len([]rune(got)))
		}
		if !strings.HasPrefix(s, got) {
			t.Errorf("truncation corrupted the string: %q", got)
		}
	})

	t.Run("exact limit is untouched", func(t *testing.T) {
		s := strings.Repeat("x", MaxCaptionRunes)
		if got := TruncateRunes(s, MaxCaptionRunes); got != s {
			t.Error("string at the limit was modified")
		}
	})
}

// --- Session Model Tests ---

func TestNewDistributionSession(t *testing.T) {
	t.Run("requires channels", func(t *testing.T) {
		if _, err := NewDistributionSession(1, 1, nil); !errors.Is(err, domain.ErrNoChannels) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("snapshots the channel slice", func(t *testing.T) {
		channels := testChannels(2)
		s, err := NewDistributionSession(1, 1, channels)
		if err != nil {
			t.Fatalf("got %v", err)
		}
		channels[0].ID = "mutated"
		if s.Channels()[0].ID == "mutated" {
			t.Error("session shares the caller's slice")
		}
	})
}

func TestDistributionSession_Collect(t *testing.T) {
	t.Run("walks need_more to ready", func(t *testing.T) {
		s, _ := NewDistributionSession(1, 1, testChannels(3))

		out := s.Collect(NewTextPost("a", 1))
		if out.Result != CollectNeedMore || out.Remaining != 2 {
			t.Fatalf("first: %+v", out)
		}
		out = s.Collect(NewTextPost("b", 2))
		if out.Result != CollectNeedMore || out.Remaining != 1 {
			t.Fatalf("second: %+v", out)
		}
		out = s.Collect(NewTextPost("c", 3))
		if out.Result != CollectReady {
			t.Fatalf("third: %+v", out)
		}
		if s.Phase() != PhaseReadyToSend {
			t.Errorf("phase = %s", s.Phase())
		}
	})

	t.Run("overflow leaves the session untouched", func(t *testing.T) {
		s, _ := NewDistributionSession(1, 1, testChannels(1))
		s.Collect(NewTextPost("only", 1))

		out := s.Collect(NewTextPost("extra", 2))
		if out.Result != CollectOverflow {
			t.Fatalf("got %+v", out)
		}
		if s.CollectedCount() != 1 {
			t.Errorf("collected = %d, want 1", s.CollectedCount())
		}
		if s.Phase() != PhaseReadyToSend {
			t.Errorf("phase = %s", s.Phase())
		}
	})

	t.Run("pairings preserve arrival order", func(t *testing.T) {
		channels := testChannels(3)
		s, _ := NewDistributionSession(1, 1, channels)
		s.Collect(NewTextPost("first", 1))
		s.Collect(NewTextPost("second", 2))
		s.Collect(NewTextPost("third", 3))

		pairs := s.Pairings()
		want := []string{"first", "second", "third"}
		for i := range want {
			if pairs[i].Post.Body != want[i] || pairs[i].Channel.ID != channels[i].ID {
				t.Errorf("pairing %d: got (%s, %q)", i, pairs[i].Channel.ID, pairs[i].Post.Body)
			}
		}
	})
}

func TestDistributionSession_PhaseMachine(t *testing.T) {
	ready := func(t *testing.T) *DistributionSession {
		t.Helper()
		s, _ := NewDistributionSession(1, 1, testChannels(1))
		s.Collect(NewTextPost("p", 1))
		return s
	}

	t.Run("begin sending requires ready", func(t *testing.T) {
		s, _ := NewDistributionSession(1, 1, testChannels(2))
		if err := s.BeginSending(); !errors.Is(err, domain.ErrNotReady) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("complete only applies while sending", func(t *testing.T) {
		s := ready(t)
		s.Complete() // ready, not sending: no-op
		if s.Phase() != PhaseReadyToSend {
			t.Fatalf("phase = %s", s.Phase())
		}
		if err := s.BeginSending(); err != nil {
			t.Fatalf("begin: %v", err)
		}
		s.Complete()
		if s.Phase() != PhaseCompleted {
			t.Errorf("phase = %s", s.Phase())
		}
	})

	t.Run("cancel before sending", func(t *testing.T) {
		s := ready(t)
		if err := s.Cancel(); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if s.Phase() != PhaseCancelled {
			t.Errorf("phase = %s", s.Phase())
		}
	})

	t.Run("cancel during sending is rejected", func(t *testing.T) {
		s := ready(t)
		if err := s.BeginSending(); err != nil {
			t.Fatalf("begin: %v", err)
		}
		if err := s.Cancel(); !errors.Is(err, domain.ErrSendingInProgress) {
			t.Fatalf("got %v", err)
		}
		if s.Phase() != PhaseSending {
			t.Errorf("phase moved to %s", s.Phase())
		}
	})

	t.Run("cancel on a terminal session reports no session", func(t *testing.T) {
		s := ready(t)
		_ = s.Cancel()
		if err := s.Cancel(); !errors.Is(err, domain.ErrNoSession) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("collecting after ready overflows", func(t *testing.T) {
		s := ready(t)
		if out := s.Collect(NewTextPost("late", 9)); out.Result != CollectOverflow {
			t.Fatalf("got %+v", out)
		}
	})
}

func TestDistributionSession_IdleSince(t *testing.T) {
	s, _ := NewDistributionSession(1, 1, testChannels(1))
	now := time.Now().UTC()

	if s.IdleSince(now, time.Hour) {
		t.Error("fresh session reported idle")
	}
	if !s.IdleSince(now.Add(2*time.Hour), time.Hour) {
		t.Error("stale session not reported idle")
	}

	// terminal sessions are never idle candidates
	_ = s.Cancel()
	if s.IdleSince(now.Add(2*time.Hour), time.Hour) {
		t.Error("cancelled session reported idle")
	}
}

// --- ScheduledPost Model Tests ---

func TestNewScheduledPost(t *testing.T) {
	ch := testChannels(1)[0]
	post := NewTextPost("later", 1)

	t.Run("requires a future timestamp", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Minute)
		if _, err := NewScheduledPost(ch, post, past, 1); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("captures the pairing", func(t *testing.T) {
		at := time.Now().UTC().Add(time.Hour)
		sp, err := NewScheduledPost(ch, post, at, 7)
		if err != nil {
			t.Fatalf("got %v", err)
		}
		if sp.ChannelID != ch.ID || sp.Post.Body != "later" || sp.CreatedBy != 7 {
			t.Errorf("bad record: %+v", sp)
		}
		if sp.Sent || sp.SentAt != nil {
			t.Error("new record must be unsent")
		}
	})
}
