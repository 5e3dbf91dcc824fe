package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/forgo/hearth/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatService(t *testing.T, m *memStore, hub *EventHub) *ChatService {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewChatService(ChatServiceConfig{
		ChatRepo:         memChat{m},
		RelationshipRepo: memRels{m},
		UserRepo:         memUsers{m},
		GroupRepo:        memGroups{m},
		AssetRepo:        memAssets{m},
		Access:           newResolver(m),
		Events:           hub,
		Node:             node,
		MaxLength:        20,
	})
}

func textMessage(s string) model.SendChatMessageRequest {
	return model.SendChatMessageRequest{Content: model.ChatContent{Type: model.ChatContentText, Markdown: s}}
}

func chatFixture() *memStore {
	m := newMemStore()
	m.addGroup("household:1", nil)
	m.addGroup("household:2", nil)
	m.addUser("user:member", strPtr("household:1"))
	m.addUser("user:open", nil)
	m.addUser("user:pending", nil)
	m.setRel("user:open", "household:1", model.AccessLevel2, true)
	m.setRel("user:pending", "household:1", model.AccessLevel1, false)
	return m
}

func TestChatSend_Authorization(t *testing.T) {
	t.Parallel()
	svc := newChatService(t, chatFixture(), nil)
	ctx := context.Background()

	msg, err := svc.Send(ctx, "user:member", "household:1", textMessage(" hello "))
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content.Markdown)
	assert.Equal(t, "user:member", msg.AuthorID)
	assert.WithinDuration(t, time.Now(), msg.CreatedOn, 5*time.Second)

	_, err = svc.Send(ctx, "user:open", "household:1", textMessage("hi"))
	assert.NoError(t, err)

	_, err = svc.Send(ctx, "user:pending", "household:1", textMessage("hi"))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Send(ctx, "user:member", "household:2", textMessage("hi"))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestChatSend_Content(t *testing.T) {
	t.Parallel()
	m := chatFixture()
	m.assets["sticker-1"] = &model.Asset{Hash: "sticker-1"}
	svc := newChatService(t, m, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		content model.ChatContent
		wantErr error
	}{
		{"blank text", model.ChatContent{Type: model.ChatContentText, Markdown: "  "}, ErrInvalidChatContent},
		{"long text", model.ChatContent{Type: model.ChatContentText, Markdown: strings.Repeat("x", 21)}, ErrMessageTooLong},
		{"sticker", model.ChatContent{Type: model.ChatContentSticker, AssetHash: "sticker-1"}, nil},
		{"image without hash", model.ChatContent{Type: model.ChatContentImage}, ErrInvalidChatContent},
		{"image unknown asset", model.ChatContent{Type: model.ChatContentImage, AssetHash: "nope"}, ErrInvalidAssetHash},
		{"unknown type", model.ChatContent{Type: "video"}, ErrInvalidChatContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, "user:member", "household:1", model.SendChatMessageRequest{Content: tt.content})
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestChatList_PagesNewestFirst(t *testing.T) {
	t.Parallel()
	svc := newChatService(t, chatFixture(), nil)
	ctx := context.Background()

	var sent []*model.ChatMessage
	for _, body := range []string{"one", "two", "three", "four", "five"} {
		msg, err := svc.Send(ctx, "user:member", "household:1", textMessage(body))
		require.NoError(t, err)
		sent = append(sent, msg)
	}

	page, err := svc.List(ctx, "user:open", "household:1", "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, sent[4].ID, page[0].ID)
	assert.Equal(t, sent[3].ID, page[1].ID)

	page, err = svc.List(ctx, "user:open", "household:1", page[1].ID, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, sent[2].ID, page[0].ID)
	assert.Equal(t, sent[1].ID, page[1].ID)

	_, err = svc.List(ctx, "user:open", "household:1", "not-a-snowflake", 2)
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = svc.List(ctx, "user:pending", "household:1", "", 2)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestChatListGroups(t *testing.T) {
	t.Parallel()
	m := chatFixture()
	m.setRel("user:member", "household:2", model.AccessLevel1, true)
	svc := newChatService(t, m, nil)

	groups, err := svc.ListGroups(context.Background(), "user:member")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "household:1", groups[0].ID)
	assert.Equal(t, model.AccessHighest, groups[0].AccessLevel)
	assert.Equal(t, "household:2", groups[1].ID)
	assert.Equal(t, model.AccessLevel1, groups[1].AccessLevel)

	groups, err = svc.ListGroups(context.Background(), "user:pending")
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestChatSubscribe_ReceivesMessages(t *testing.T) {
	t.Parallel()
	hub := NewEventHub(time.Hour)
	defer hub.Close()
	svc := newChatService(t, chatFixture(), hub)
	ctx := context.Background()

	_, err := svc.Subscribe(ctx, "user:pending", "household:1", "sub-x")
	require.ErrorIs(t, err, ErrPermissionDenied)

	sub, err := svc.Subscribe(ctx, "user:open", "household:1", "sub-1")
	require.NoError(t, err)

	msg, err := svc.Send(ctx, "user:member", "household:1", textMessage("ping"))
	require.NoError(t, err)

	select {
	case ev := <-sub.Events:
		assert.Equal(t, EventChatMessage, ev.Type)
		assert.Equal(t, msg, ev.Data)
	case <-time.After(time.Second):
		t.Fatal("expected chat event")
	}

	svc.Unsubscribe("household:1", "sub-1")
	assert.Equal(t, 0, hub.SubscriberCount("household:1"))
}
