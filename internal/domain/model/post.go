package model

import (
	"telegram-channel-broadcast/internal/domain"
)

// PostKind is the closed set of content kinds a session can collect.
type PostKind string

const (
	PostText     PostKind = "text"
	PostPhoto    PostKind = "photo"
	PostVideo    PostKind = "video"
	PostDocument PostKind = "document"
)

// Telegram payload limits. Oversized captions/text are truncated before the
// send call because the API rejects them outright.
const (
	MaxCaptionRunes = 1024
	MaxTextRunes    = 4096
)

// Post is one unit of collected content. FileID is the opaque platform media
// reference and is empty exactly when Kind is PostText. Posts are immutable
// once collected.
type Post struct {
	Kind            PostKind
	Body            string // text body, or caption for media kinds
	FileID          string
	OriginMessageID int
}

func NewTextPost(body string, originMessageID int) Post {
	return Post{Kind: PostText, Body: body, OriginMessageID: originMessageID}
}

func NewMediaPost(kind PostKind, fileID, caption string, originMessageID int) (Post, error) {
	switch kind {
	case PostPhoto, PostVideo, PostDocument:
	default:
		return Post{}, domain.ErrInvalidArgument
	}
	if fileID == "" {
		return Post{}, domain.ErrInvalidArgument
	}
	return Post{Kind: kind, Body: caption, FileID: fileID, OriginMessageID: originMessageID}, nil
}

// TruncateRunes cuts s down to at most limit runes. Counting runes, not
// bytes: the platform limits are expressed in characters.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
