package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-channel-broadcast/internal/domain"
	"telegram-channel-broadcast/internal/domain/model"
)

const scheduleLayout = "2006-01-02 15:04"

// handleCallback routes inline keyboard presses: channel removal from /list
// and the send-now / schedule / cancel choice on a ready session.
func (r *RealTelegramBotAdapter) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	// ack first so the client stops its spinner
	if _, err := r.bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		r.log.Warn().Err(err).Msg("callback ack failed")
	}
	if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
		return nil
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	if !r.directory.IsAuthorized(ctx, userID) {
		return nil
	}

	data := cq.Data
	switch {
	case strings.HasPrefix(data, "remove:"):
		return r.cbRemoveChannel(ctx, chatID, strings.TrimPrefix(data, "remove:"))
	case data == "post:send_now":
		return r.cbSendNow(ctx, chatID, userID)
	case data == "post:schedule":
		return r.cbAskSchedule(ctx, chatID, userID)
	case data == "post:cancel":
		return r.cancelFlow(ctx, chatID, userID)
	default:
		r.log.Debug().Str("data", data).Msg("unknown callback")
		return nil
	}
}

func (r *RealTelegramBotAdapter) cbRemoveChannel(ctx context.Context, chatID int64, channelID string) error {
	err := r.directory.RemoveChannel(ctx, channelID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return r.reply(chatID, "That channel is already gone.")
	case err != nil:
		r.log.Error().Err(err).Str("channel_id", channelID).Msg("channel removal failed")
		return r.reply(chatID, "Could not remove the channel. Try again later.")
	}
	return r.reply(chatID, fmt.Sprintf("Channel %s removed.", channelID))
}

func (r *RealTelegramBotAdapter) cbSendNow(ctx context.Context, chatID, userID int64) error {
	err := r.broadcast.SendNow(ctx, userID, func(report model.DistributionReport) {
		if err := r.reply(chatID, formatReport(report)); err != nil {
			r.log.Error().Err(err).Int64("principal", userID).Msg("report delivery failed")
		}
	})
	switch {
	case errors.Is(err, domain.ErrNoSession):
		return r.reply(chatID, "No broadcast in progress. Start one with /post.")
	case errors.Is(err, domain.ErrNotReady):
		return r.reply(chatID, "Not every post is collected yet.")
	case err != nil:
		r.log.Error().Err(err).Int64("principal", userID).Msg("send-now failed")
		return r.reply(chatID, "Could not start sending. Try again later.")
	}
	return r.reply(chatID, "Sending... I will report back when done.")
}

func (r *RealTelegramBotAdapter) cbAskSchedule(ctx context.Context, chatID, userID int64) error {
	session, ok := r.broadcast.Get(userID)
	if !ok {
		return r.reply(chatID, "No broadcast in progress. Start one with /post.")
	}
	if session.Phase() != model.PhaseReadyToSend {
		return r.reply(chatID, "Not every post is collected yet.")
	}
	r.setAwaitingSchedule(userID)
	return r.reply(chatID, "Send me the time as YYYY-MM-DD HH:MM (UTC), e.g. 2026-09-01 18:30.")
}

// handleScheduleInput consumes the timestamp message the schedule button asked
// for. A bad value re-arms the prompt instead of dropping the session.
func (r *RealTelegramBotAdapter) handleScheduleInput(ctx context.Context, msg *tgbotapi.Message) error {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	at, err := time.ParseInLocation(scheduleLayout, strings.TrimSpace(msg.Text), time.UTC)
	if err != nil {
		r.setAwaitingSchedule(userID)
		return r.reply(chatID, "I could not read that time. Use YYYY-MM-DD HH:MM (UTC), or /cancel.")
	}
	if !at.After(time.Now().UTC()) {
		r.setAwaitingSchedule(userID)
		return r.reply(chatID, "That time is in the past. Pick a future time, or /cancel.")
	}

	n, err := r.broadcast.Schedule(ctx, userID, at)
	switch {
	case errors.Is(err, domain.ErrNoSession):
		return r.reply(chatID, "The broadcast is gone. Start again with /post.")
	case errors.Is(err, domain.ErrNotReady):
		return r.reply(chatID, "Not every post is collected yet.")
	case err != nil:
		r.log.Error().Err(err).Int64("principal", userID).Msg("scheduling failed")
		return r.reply(chatID, "Could not store the schedule. Try again later.")
	}
	return r.reply(chatID, fmt.Sprintf(
		"Stored %d post(s) for %s UTC. Note: automatic delivery is not hooked up yet.",
		n, at.Format(scheduleLayout),
	))
}
