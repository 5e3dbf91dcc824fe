package model

import "time"

// ChatContentType discriminates chat content
type ChatContentType string

const (
	ChatContentText    ChatContentType = "text"
	ChatContentSticker ChatContentType = "sticker"
	ChatContentImage   ChatContentType = "image"
)

// ChatContent is a tagged union. Text carries Markdown; sticker and image
// reference an uploaded asset.
type ChatContent struct {
	Type      ChatContentType `json:"type"`
	Markdown  string          `json:"markdown,omitempty"`
	AssetHash string          `json:"asset_hash,omitempty"`
}

// ChatMessage is a message posted to a group's chat. The ID is a
// snowflake and therefore sorts by creation time.
type ChatMessage struct {
	ID        string      `json:"id"`
	GroupID   string      `json:"group_id"`
	AuthorID  string      `json:"author_id"`
	Content   ChatContent `json:"content"`
	CreatedOn time.Time   `json:"created_on"`
}

// SendChatMessageRequest posts a message
type SendChatMessageRequest struct {
	Content ChatContent `json:"content"`
}

const (
	DefaultChatPageSize = 50
	MaxChatPageSize     = 200
)
