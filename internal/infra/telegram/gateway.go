package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-channel-broadcast/internal/domain"
	"telegram-channel-broadcast/internal/domain/ports/adapter"
)

// Gateway implements adapter.ChannelGateway on top of tgbotapi. Channel ids
// cross the port as text and are parsed here, at the platform boundary.
type Gateway struct {
	bot *tgbotapi.BotAPI
}

var _ adapter.ChannelGateway = (*Gateway)(nil)

func NewGateway(bot *tgbotapi.BotAPI) *Gateway {
	return &Gateway{bot: bot}
}

func parseChatID(channelID string) (int64, error) {
	id, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse chat id %q: %w", channelID, domain.ErrInvalidArgument)
	}
	return id, nil
}

func (g *Gateway) SendText(ctx context.Context, channelID string, text string) error {
	chatID, err := parseChatID(channelID)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err = g.bot.Send(msg)
	return err
}

func (g *Gateway) SendPhoto(ctx context.Context, channelID string, fileID, caption string) error {
	chatID, err := parseChatID(channelID)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	_, err = g.bot.Send(msg)
	return err
}

func (g *Gateway) SendVideo(ctx context.Context, channelID string, fileID, caption string) error {
	chatID, err := parseChatID(channelID)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	_, err = g.bot.Send(msg)
	return err
}

func (g *Gateway) SendDocument(ctx context.Context, channelID string, fileID, caption string) error {
	chatID, err := parseChatID(channelID)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	_, err = g.bot.Send(msg)
	return err
}

// ResolveChannel fetches the chat title and the bot's own membership status.
// Registration requires "administrator" or "creator"; the caller decides.
func (g *Gateway) ResolveChannel(ctx context.Context, channelID string) (adapter.ChannelInfo, error) {
	chatID, err := parseChatID(channelID)
	if err != nil {
		return adapter.ChannelInfo{}, err
	}

	chat, err := g.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return adapter.ChannelInfo{}, fmt.Errorf("get chat %s: %w", channelID, err)
	}

	member, err := g.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: g.bot.Self.ID,
		},
	})
	if err != nil {
		return adapter.ChannelInfo{}, fmt.Errorf("get chat member %s: %w", channelID, err)
	}

	return adapter.ChannelInfo{Title: chat.Title, BotRole: member.Status}, nil
}
