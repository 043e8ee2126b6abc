package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-channel-broadcast/internal/usecase"
)

// SessionSweeper periodically cancels distribution sessions that have been
// idle past the TTL, so abandoned /post flows do not pile up in memory.
type SessionSweeper struct {
	interval  time.Duration
	ttl       time.Duration
	broadcast *usecase.BroadcastUseCase
	log       *zerolog.Logger
}

func NewSessionSweeper(interval, ttl time.Duration, broadcast *usecase.BroadcastUseCase, logger *zerolog.Logger) *SessionSweeper {
	l := logger.With().Str("component", "SessionSweeper").Logger()
	return &SessionSweeper{
		interval:  interval,
		ttl:       ttl,
		broadcast: broadcast,
		log:       &l,
	}
}

func (w *SessionSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("ttl", w.ttl).Msg("Starting session sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping session sweeper")
			return ctx.Err()
		case <-ticker.C:
			if n := w.broadcast.CancelExpired(time.Now().UTC(), w.ttl); n > 0 {
				w.log.Info().Int("count", n).Msg("idle sessions expired")
			}
		}
	}
}
