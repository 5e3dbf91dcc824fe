package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/forgo/hearth/api/internal/model"
)

// DefaultMaxMessageLength caps Markdown message bodies
const DefaultMaxMessageLength = 4000

// ChatRepository defines the interface for chat message storage.
// List returns messages with a snowflake below before (0 for no bound),
// newest first.
type ChatRepository interface {
	Create(ctx context.Context, msg *model.ChatMessage, seq int64) error
	List(ctx context.Context, groupID string, before int64, limit int) ([]*model.ChatMessage, error)
}

// ChatService handles group chat between members and users with an open
// channel to the group
type ChatService struct {
	chatRepo  ChatRepository
	relRepo   RelationshipRepository
	userRepo  UserReader
	groupRepo GroupReader
	assets    AssetChecker
	access    *AccessResolver
	events    *EventHub
	node      *snowflake.Node
	maxLength int
}

// ChatServiceConfig holds configuration for the chat service
type ChatServiceConfig struct {
	ChatRepo         ChatRepository
	RelationshipRepo RelationshipRepository
	UserRepo         UserReader
	GroupRepo        GroupReader
	AssetRepo        AssetChecker
	Access           *AccessResolver
	Events           *EventHub // optional
	Node             *snowflake.Node
	MaxLength        int // Default: 4000
}

// NewChatService creates a new chat service
func NewChatService(cfg ChatServiceConfig) *ChatService {
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultMaxMessageLength
	}
	return &ChatService{
		chatRepo:  cfg.ChatRepo,
		relRepo:   cfg.RelationshipRepo,
		userRepo:  cfg.UserRepo,
		groupRepo: cfg.GroupRepo,
		assets:    cfg.AssetRepo,
		access:    cfg.Access,
		events:    cfg.Events,
		node:      cfg.Node,
		maxLength: cfg.MaxLength,
	}
}

// ListGroups returns the groups the caller can chat with: their own group
// and every group that opened a channel to them.
func (s *ChatService) ListGroups(ctx context.Context, meID string) ([]model.GroupView, error) {
	me, err := s.me(ctx, meID)
	if err != nil {
		return nil, err
	}

	var views []model.GroupView
	add := func(groupID string, level model.AccessLevel) error {
		g, err := s.groupRepo.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return nil
		}
		v, err := ProjectGroup(level, g)
		if err != nil {
			return err
		}
		views = append(views, v)
		return nil
	}

	if me.GroupID != nil {
		if err := add(*me.GroupID, model.AccessHighest); err != nil {
			return nil, err
		}
	}
	open, err := s.relRepo.ListOpenByUser(ctx, meID)
	if err != nil {
		return nil, err
	}
	for _, rel := range open {
		if me.InGroup(rel.GroupID) {
			continue
		}
		if err := add(rel.GroupID, rel.Level); err != nil {
			return nil, err
		}
	}

	if views == nil {
		views = []model.GroupView{}
	}
	return views, nil
}

// Send posts a message to a group's chat
func (s *ChatService) Send(ctx context.Context, meID, groupID string, req model.SendChatMessageRequest) (*model.ChatMessage, error) {
	if err := s.authorize(ctx, meID, groupID); err != nil {
		return nil, err
	}
	content, err := s.validateContent(ctx, req.Content)
	if err != nil {
		return nil, err
	}

	id := s.node.Generate()
	msg := &model.ChatMessage{
		ID:        id.String(),
		GroupID:   groupID,
		AuthorID:  meID,
		Content:   content,
		CreatedOn: time.UnixMilli(id.Time()).UTC(),
	}
	if err := s.chatRepo.Create(ctx, msg, id.Int64()); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(&Event{Type: EventChatMessage, GroupID: groupID, Data: msg})
	}
	return msg, nil
}

// List returns a page of a group's messages, newest first. before is the
// id of the oldest message already seen, or empty for the latest page.
func (s *ChatService) List(ctx context.Context, meID, groupID, before string, limit int) ([]*model.ChatMessage, error) {
	if err := s.authorize(ctx, meID, groupID); err != nil {
		return nil, err
	}

	var bound int64
	if before != "" {
		id, err := snowflake.ParseString(before)
		if err != nil {
			return nil, ErrInvalidCursor
		}
		bound = id.Int64()
	}
	if limit <= 0 {
		limit = model.DefaultChatPageSize
	}
	limit = min(limit, model.MaxChatPageSize)

	return s.chatRepo.List(ctx, groupID, bound, limit)
}

// Subscribe registers an SSE subscriber for a group's chat after checking
// the caller may read it
func (s *ChatService) Subscribe(ctx context.Context, meID, groupID, subscriberID string) (*Subscriber, error) {
	if s.events == nil {
		return nil, fmt.Errorf("chat streaming is not configured")
	}
	if err := s.authorize(ctx, meID, groupID); err != nil {
		return nil, err
	}
	return s.events.Subscribe(groupID, subscriberID), nil
}

// Unsubscribe removes an SSE subscriber
func (s *ChatService) Unsubscribe(groupID, subscriberID string) {
	if s.events != nil {
		s.events.Unsubscribe(groupID, subscriberID)
	}
}

// authorize admits members of the group and users whose channel with the
// group is open
func (s *ChatService) authorize(ctx context.Context, meID, groupID string) error {
	me, err := s.me(ctx, meID)
	if err != nil {
		return err
	}
	if me.InGroup(groupID) {
		return nil
	}
	return s.access.AssertOpenChannel(ctx, meID, groupID)
}

func (s *ChatService) validateContent(ctx context.Context, c model.ChatContent) (model.ChatContent, error) {
	switch c.Type {
	case model.ChatContentText:
		text := strings.TrimSpace(c.Markdown)
		if text == "" {
			return model.ChatContent{}, fmt.Errorf("%w: text message is empty", ErrInvalidChatContent)
		}
		if utf8.RuneCountInString(text) > s.maxLength {
			return model.ChatContent{}, ErrMessageTooLong
		}
		return model.ChatContent{Type: c.Type, Markdown: text}, nil
	case model.ChatContentSticker, model.ChatContentImage:
		if c.AssetHash == "" {
			return model.ChatContent{}, fmt.Errorf("%w: asset_hash is required", ErrInvalidChatContent)
		}
		if err := assertAsset(ctx, s.assets, c.AssetHash); err != nil {
			return model.ChatContent{}, err
		}
		return model.ChatContent{Type: c.Type, AssetHash: c.AssetHash}, nil
	default:
		return model.ChatContent{}, fmt.Errorf("%w: unknown type %q", ErrInvalidChatContent, c.Type)
	}
}

func (s *ChatService) me(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
