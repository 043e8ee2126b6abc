package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-channel-broadcast/internal/domain/model"
	"telegram-channel-broadcast/internal/domain/ports/adapter"
	"telegram-channel-broadcast/internal/infra/metrics"
)

// DefaultSendDelay spaces out sequential sends to stay inside the platform's
// rate limits. Fixed, not derived from response headers.
const DefaultSendDelay = 500 * time.Millisecond

// Dispatcher performs one pass over a ready session's pairings: the i-th
// collected post goes to the i-th snapshotted channel, strictly in order and
// strictly sequentially. A failed pairing is recorded and never aborts the
// rest of the pass.
type Dispatcher struct {
	gateway adapter.ChannelGateway
	delay   time.Duration
	log     *zerolog.Logger
}

func NewDispatcher(gateway adapter.ChannelGateway, delay time.Duration, logger *zerolog.Logger) *Dispatcher {
	if delay <= 0 {
		delay = DefaultSendDelay
	}
	l := logger.With().Str("component", "Dispatcher").Logger()
	return &Dispatcher{gateway: gateway, delay: delay, log: &l}
}

// Dispatch runs the pass and always brings the session to completed; the
// caller presents the report and clears the session. Once started, the pass
// runs to the end; there is no mid-loop cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, session *model.DistributionSession) model.DistributionReport {
	pairings := session.Pairings()
	report := model.DistributionReport{
		SessionID: session.ID,
		Total:     len(pairings),
		StartedAt: time.Now().UTC(),
	}

	for i, pair := range pairings {
		start := time.Now()
		err := d.sendOne(ctx, pair)
		metrics.ObserveChannelSend(string(pair.Post.Kind), time.Since(start), err == nil)
		if err != nil {
			d.log.Warn().Err(err).
				Str("channel_id", pair.Channel.ID).
				Str("kind", string(pair.Post.Kind)).
				Int("pairing", i).
				Msg("delivery failed")
			report.Failures = append(report.Failures, model.DeliveryFailure{
				ChannelID:    pair.Channel.ID,
				ChannelTitle: pair.Channel.DisplayTitle(),
				Reason:       err.Error(),
			})
		} else {
			report.Succeeded++
		}
		if i < len(pairings)-1 {
			time.Sleep(d.delay)
		}
	}

	session.Complete()
	report.FinishedAt = time.Now().UTC()
	metrics.ObserveDispatchPass(report.Total, report.Succeeded)
	d.log.Info().
		Str("session_id", session.ID).
		Int("total", report.Total).
		Int("succeeded", report.Succeeded).
		Int("failed", len(report.Failures)).
		Msg("dispatch pass finished")
	return report
}

// sendOne makes exactly one delivery attempt for a pairing, choosing the call
// by post kind and truncating text/captions to the platform limits first.
func (d *Dispatcher) sendOne(ctx context.Context, pair model.Pairing) error {
	switch pair.Post.Kind {
	case model.PostPhoto:
		return d.gateway.SendPhoto(ctx, pair.Channel.ID, pair.Post.FileID, model.TruncateRunes(pair.Post.Body, model.MaxCaptionRunes))
	case model.PostVideo:
		return d.gateway.SendVideo(ctx, pair.Channel.ID, pair.Post.FileID, model.TruncateRunes(pair.Post.Body, model.MaxCaptionRunes))
	case model.PostDocument:
		return d.gateway.SendDocument(ctx, pair.Channel.ID, pair.Post.FileID, model.TruncateRunes(pair.Post.Body, model.MaxCaptionRunes))
	default:
		return d.gateway.SendText(ctx, pair.Channel.ID, model.TruncateRunes(pair.Post.Body, model.MaxTextRunes))
	}
}
