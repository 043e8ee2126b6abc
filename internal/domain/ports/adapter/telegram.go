package adapter

import "context"

// ChannelInfo is what the platform reports about a chat the bot can see.
type ChannelInfo struct {
	Title string
	// Role of the bot within the chat: "administrator", "creator", "member", ...
	BotRole string
}

// ChannelGateway is the outbound port the dispatcher and the registration flow
// use to talk to the messaging platform. Every call is opaque, possibly
// failing I/O; the core does not know the transport.
type ChannelGateway interface {
	SendText(ctx context.Context, channelID string, text string) error
	SendPhoto(ctx context.Context, channelID string, fileID, caption string) error
	SendVideo(ctx context.Context, channelID string, fileID, caption string) error
	SendDocument(ctx context.Context, channelID string, fileID, caption string) error

	// ResolveChannel fetches the chat title and the bot's own role, used by the
	// registration flow to verify admin rights before a channel is accepted.
	ResolveChannel(ctx context.Context, channelID string) (ChannelInfo, error)
}
