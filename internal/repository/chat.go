package repository

import (
	"context"
	"strconv"

	"github.com/forgo/hearth/api/internal/database"
	"github.com/forgo/hearth/api/internal/model"
)

// ChatRepository stores chat messages. seq is the numeric snowflake and
// orders a group's history.
type ChatRepository struct {
	db database.Database
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db database.Database) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create stores a message
func (r *ChatRepository) Create(ctx context.Context, msg *model.ChatMessage, seq int64) error {
	query := `
		CREATE chat_message CONTENT {
			seq: $seq,
			household: type::record($group),
			author: type::record($author),
			content: {
				type: $type,
				markdown: IF $markdown != "" THEN $markdown ELSE NONE END,
				asset_hash: IF $asset_hash != "" THEN $asset_hash ELSE NONE END
			},
			created_on: time::from::millis($created_ms)
		}
	`
	vars := map[string]any{
		"seq":        seq,
		"group":      msg.GroupID,
		"author":     msg.AuthorID,
		"type":       string(msg.Content.Type),
		"markdown":   msg.Content.Markdown,
		"asset_hash": msg.Content.AssetHash,
		"created_ms": msg.CreatedOn.UnixMilli(),
	}
	return r.db.Execute(ctx, query, vars)
}

// List returns up to limit messages older than before (0 for the latest),
// newest first
func (r *ChatRepository) List(ctx context.Context, groupID string, before int64, limit int) ([]*model.ChatMessage, error) {
	query := `
		SELECT * FROM chat_message
		WHERE household = type::record($group) AND ($before = 0 OR seq < $before)
		ORDER BY seq DESC
		LIMIT $limit
	`
	vars := map[string]any{"group": groupID, "before": before, "limit": limit}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	rows := database.Records(results, 0)
	msgs := make([]*model.ChatMessage, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, parseChatMessage(row))
	}
	return msgs, nil
}

func parseChatMessage(data map[string]any) *model.ChatMessage {
	msg := &model.ChatMessage{
		ID:        strconv.FormatInt(getInt64(data, "seq"), 10),
		GroupID:   recordID(data["household"]),
		AuthorID:  recordID(data["author"]),
		CreatedOn: getTime(data, "created_on"),
	}
	if content, ok := data["content"].(map[string]any); ok {
		msg.Content = model.ChatContent{
			Type:      model.ChatContentType(getString(content, "type")),
			Markdown:  getString(content, "markdown"),
			AssetHash: getString(content, "asset_hash"),
		}
	}
	return msg
}
