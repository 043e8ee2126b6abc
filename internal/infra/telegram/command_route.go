package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-channel-broadcast/internal/domain"
	"telegram-channel-broadcast/internal/domain/model"
	"telegram-channel-broadcast/internal/infra/metrics"
	"telegram-channel-broadcast/internal/usecase"
)

// Channel ids forwarded to /add must be the -100-prefixed supergroup/channel
// form Telegram uses everywhere else in the API.
var channelIDPattern = regexp.MustCompile(`^-100\d+$`)

const helpText = `Commands:
/add <channel_id> - register a channel (bot must be admin there)
/list - show registered channels
/post - start collecting posts for a broadcast
/cancel - discard the current broadcast
/sudo - list authorized users
/addsudo <user_id> [username] - grant access (owner only)
/removesudo <user_id> - revoke access (owner only)
/help - this message`

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start": r.handleStartCommand,
		"help":  r.handleHelpCommand,

		"add":    r.sudoOnly(r.handleAddChannelCommand),
		"list":   r.sudoOnly(r.handleListChannelsCommand),
		"post":   r.sudoOnly(r.handleStartPostCommand),
		"cancel": r.sudoOnly(r.handleCancelCommand),
		"sudo":   r.sudoOnly(r.handleListSudoCommand),

		"addsudo":    r.ownerOnly(r.handleAddSudoCommand),
		"removesudo": r.ownerOnly(r.handleRemoveSudoCommand),
	}
}

// sudoOnly admits the owner and granted sudo users.
func (r *RealTelegramBotAdapter) sudoOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if !r.directory.IsAuthorized(ctx, message.From.ID) {
			return r.reply(message.Chat.ID, "You are not authorized to use this bot.")
		}
		return next(ctx, message)
	}
}

// ownerOnly admits only the configured bot owner.
func (r *RealTelegramBotAdapter) ownerOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if !r.directory.IsOwner(message.From.ID) {
			return r.reply(message.Chat.ID, "Only the bot owner can do that.")
		}
		return next(ctx, message)
	}
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	command := msg.Command()
	metrics.IncTelegramCommand(command)
	if !r.allowCommand(ctx, msg.From.ID, command) {
		return r.reply(msg.Chat.ID, "Too many commands, slow down.")
	}

	handler, ok := r.commandRoutes()[command]
	if !ok {
		return r.reply(msg.Chat.ID, "Unknown command. Send /help for the list of commands.")
	}
	return handler(ctx, msg)
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, msg *tgbotapi.Message) error {
	return r.reply(msg.Chat.ID, "Channel broadcast bot. Use /help to see what I can do.")
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, msg *tgbotapi.Message) error {
	return r.reply(msg.Chat.ID, helpText)
}

func (r *RealTelegramBotAdapter) handleAddChannelCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 1 {
		return r.reply(chatID, "Usage: /add <channel_id>\nExample: /add -1001234567890")
	}
	channelID := args[0]
	if !channelIDPattern.MatchString(channelID) {
		return r.reply(chatID, "That does not look like a channel id. It must start with -100.")
	}

	info, err := r.gateway.ResolveChannel(ctx, channelID)
	if err != nil {
		r.log.Warn().Err(err).Str("channel_id", channelID).Msg("channel resolve failed")
		return r.reply(chatID, "I cannot see that channel. Add me to it first, then try again.")
	}
	if info.BotRole != "administrator" && info.BotRole != "creator" {
		return r.reply(chatID, "I am in that channel but not an admin. Promote me, then try again.")
	}

	ch, err := r.directory.RegisterChannel(ctx, channelID, info.Title, msg.From.ID)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return r.reply(chatID, "That channel is already registered.")
	case errors.Is(err, usecase.ErrChannelLimit):
		return r.reply(chatID, "Channel limit reached. Remove one before adding another.")
	case err != nil:
		r.log.Error().Err(err).Str("channel_id", channelID).Msg("channel registration failed")
		metrics.IncChannelRegistered("error")
		return r.reply(chatID, "Could not register the channel. Try again later.")
	}
	metrics.IncChannelRegistered("ok")
	return r.reply(chatID, fmt.Sprintf("Registered %q (%s).", ch.DisplayTitle(), ch.ID))
}

func (r *RealTelegramBotAdapter) handleListChannelsCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	channels, err := r.directory.ListChannels(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("list channels failed")
		return r.reply(chatID, "Could not load the channel list. Try again later.")
	}
	if len(channels) == 0 {
		return r.reply(chatID, "No channels registered yet. Use /add <channel_id> first.")
	}

	var b strings.Builder
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(channels))
	fmt.Fprintf(&b, "Registered channels (%d):\n", len(channels))
	for i, ch := range channels {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, ch.DisplayTitle(), ch.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Remove "+ch.DisplayTitle(), "remove:"+ch.ID),
		))
	}
	return r.replyWithMarkup(chatID, b.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (r *RealTelegramBotAdapter) handleStartPostCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	session, err := r.broadcast.Start(ctx, msg.From.ID, chatID)
	switch {
	case errors.Is(err, domain.ErrNoChannels):
		return r.reply(chatID, "No channels registered. Use /add <channel_id> first.")
	case errors.Is(err, domain.ErrSendingInProgress):
		return r.reply(chatID, "A broadcast is being sent right now. Wait for it to finish.")
	case err != nil:
		r.log.Error().Err(err).Int64("principal", msg.From.ID).Msg("session start failed")
		return r.reply(chatID, "Could not start a broadcast. Try again later.")
	}
	return r.reply(chatID, fmt.Sprintf(
		"Collecting posts for %d channel(s). Send me %d post(s), one per channel, in channel order (newest channel first). /cancel to abort.",
		session.RequiredCount(), session.RequiredCount(),
	))
}

func (r *RealTelegramBotAdapter) handleCancelCommand(ctx context.Context, msg *tgbotapi.Message) error {
	return r.cancelFlow(ctx, msg.Chat.ID, msg.From.ID)
}

// cancelFlow is shared between the /cancel command and the cancel button.
func (r *RealTelegramBotAdapter) cancelFlow(ctx context.Context, chatID, userID int64) error {
	r.clearAwaitingSchedule(userID)
	err := r.broadcast.Cancel(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNoSession):
		return r.reply(chatID, "Nothing to cancel.")
	case errors.Is(err, domain.ErrSendingInProgress):
		return r.reply(chatID, "Sending already started and cannot be cancelled.")
	case err != nil:
		return r.reply(chatID, "Could not cancel. Try again.")
	}
	return r.reply(chatID, "Broadcast cancelled.")
}

func (r *RealTelegramBotAdapter) handleListSudoCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	users, err := r.directory.ListSudoUsers(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("list sudo users failed")
		return r.reply(chatID, "Could not load the sudo list. Try again later.")
	}
	if len(users) == 0 {
		return r.reply(chatID, "No sudo users. Only the owner can use the bot.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Sudo users (%d):\n", len(users))
	for i, u := range users {
		name := u.Username
		if name == "" {
			name = "(no username)"
		}
		fmt.Fprintf(&b, "%d. %s - %d\n", i+1, name, u.UserID)
	}
	return r.reply(chatID, b.String())
}

func (r *RealTelegramBotAdapter) handleAddSudoCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return r.reply(chatID, "Usage: /addsudo <user_id> [username]")
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || userID <= 0 {
		return r.reply(chatID, "user_id must be a positive number.")
	}
	username := ""
	if len(args) > 1 {
		username = strings.TrimPrefix(args[1], "@")
	}

	_, err = r.directory.RegisterSudoUser(ctx, userID, username, msg.From.ID)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return r.reply(chatID, "That user already has access.")
	case errors.Is(err, domain.ErrInvalidArgument):
		return r.reply(chatID, "The owner always has access; no need to add them.")
	case err != nil:
		r.log.Error().Err(err).Int64("user_id", userID).Msg("sudo grant failed")
		return r.reply(chatID, "Could not add the user. Try again later.")
	}
	metrics.IncSudoChange("grant")
	return r.reply(chatID, fmt.Sprintf("User %d can now use the bot.", userID))
}

func (r *RealTelegramBotAdapter) handleRemoveSudoCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 1 {
		return r.reply(chatID, "Usage: /removesudo <user_id>")
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || userID <= 0 {
		return r.reply(chatID, "user_id must be a positive number.")
	}

	err = r.directory.RemoveSudoUser(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return r.reply(chatID, "That user does not have access.")
	case err != nil:
		r.log.Error().Err(err).Int64("user_id", userID).Msg("sudo revoke failed")
		return r.reply(chatID, "Could not remove the user. Try again later.")
	}
	metrics.IncSudoChange("revoke")
	return r.reply(chatID, fmt.Sprintf("User %d can no longer use the bot.", userID))
}

// handleCollect feeds a non-command message into the principal's collecting
// session as the next post.
func (r *RealTelegramBotAdapter) handleCollect(ctx context.Context, msg *tgbotapi.Message) error {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	post, ok := postFromMessage(msg)
	if !ok {
		if _, live := r.broadcast.Get(userID); live {
			return r.reply(chatID, "I can only broadcast text, photos, videos and documents.")
		}
		return nil
	}

	outcome, err := r.broadcast.Submit(ctx, userID, post)
	if errors.Is(err, domain.ErrNoSession) {
		// stray message outside a collection flow
		return nil
	}
	if err != nil {
		return err
	}

	switch outcome.Result {
	case model.CollectReady:
		return r.replyWithMarkup(chatID, "All posts collected. What now?", readyKeyboard())
	case model.CollectOverflow:
		return r.replyWithMarkup(chatID, "I already have every post for this broadcast. Send it or cancel.", readyKeyboard())
	default:
		return r.reply(chatID, fmt.Sprintf("Saved. %d more post(s) to go.", outcome.Remaining))
	}
}

// postFromMessage maps message content to a post, preferring media over text.
func postFromMessage(msg *tgbotapi.Message) (model.Post, bool) {
	switch {
	case len(msg.Photo) > 0:
		// last entry is the largest rendition
		fileID := msg.Photo[len(msg.Photo)-1].FileID
		p, err := model.NewMediaPost(model.PostPhoto, fileID, msg.Caption, msg.MessageID)
		return p, err == nil
	case msg.Video != nil:
		p, err := model.NewMediaPost(model.PostVideo, msg.Video.FileID, msg.Caption, msg.MessageID)
		return p, err == nil
	case msg.Document != nil:
		p, err := model.NewMediaPost(model.PostDocument, msg.Document.FileID, msg.Caption, msg.MessageID)
		return p, err == nil
	case msg.Text != "":
		return model.NewTextPost(msg.Text, msg.MessageID), true
	default:
		return model.Post{}, false
	}
}

func readyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Send now", "post:send_now"),
			tgbotapi.NewInlineKeyboardButtonData("Schedule", "post:schedule"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cancel", "post:cancel"),
		),
	)
}

func formatReport(report model.DistributionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Broadcast finished: %d/%d delivered.", report.Succeeded, report.Total)
	if len(report.Failures) > 0 {
		b.WriteString("\nFailed:")
		for _, f := range report.Failures {
			fmt.Fprintf(&b, "\n- %s (%s): %s", f.ChannelTitle, f.ChannelID, f.Reason)
		}
	}
	return b.String()
}
