package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	// Chat events
	EventChatMessage EventType = "chat.message"

	// Group events
	EventMemberJoined EventType = "group.member_joined"
	EventMemberLeft   EventType = "group.member_left"
	EventInterest     EventType = "group.interest"

	// User events
	EventInterestAccepted EventType = "user.interest_accepted"

	// System events
	EventHeartbeat EventType = "heartbeat"
)

// DefaultHeartbeatInterval keeps idle SSE connections open through proxies
const DefaultHeartbeatInterval = 30 * time.Second

// subscriberBuffer bounds how far a slow client may lag before events are dropped
const subscriberBuffer = 100

// Event represents a server-sent event
type Event struct {
	Type    EventType `json:"type"`
	Data    any       `json:"data"`
	GroupID string    `json:"-"` // routing only
}

// Format returns the SSE formatted string
func (e *Event) Format() string {
	data, _ := json.Marshal(e.Data)
	return "event: " + string(e.Type) + "\ndata: " + string(data) + "\n\n"
}

// Subscriber represents a connected SSE client
type Subscriber struct {
	ID     string
	Topic  string
	Events chan *Event
	Done   chan struct{}
}

// EventHub fans events out to SSE subscribers of a group or a user.
// Delivery is best effort: a subscriber whose buffer is full misses events.
//
// Group topics carry chat only, since anyone with an open channel may follow
// a group's chat. Membership news goes to members' personal topics through
// notifyMembers.
type EventHub struct {
	mu        sync.RWMutex
	groups    map[string]map[string]*Subscriber // groupID -> subscriberID -> subscriber
	users     map[string]map[string]*Subscriber // userID -> subscriberID -> subscriber
	heartbeat *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventHub creates a hub that sends heartbeats every interval.
// A non-positive interval uses DefaultHeartbeatInterval.
func NewEventHub(interval time.Duration) *EventHub {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	hub := &EventHub{
		groups:    make(map[string]map[string]*Subscriber),
		users:     make(map[string]map[string]*Subscriber),
		heartbeat: time.NewTicker(interval),
		done:      make(chan struct{}),
	}
	go hub.sendHeartbeats()
	return hub
}

// Subscribe registers a subscriber for a group's chat
func (h *EventHub) Subscribe(groupID, subscriberID string) *Subscriber {
	return h.add(h.groups, groupID, subscriberID)
}

// Unsubscribe removes a group subscriber
func (h *EventHub) Unsubscribe(groupID, subscriberID string) {
	h.remove(h.groups, groupID, subscriberID)
}

// SubscribeUser registers a subscriber for events addressed to a user
func (h *EventHub) SubscribeUser(userID, subscriberID string) *Subscriber {
	return h.add(h.users, userID, subscriberID)
}

// UnsubscribeUser removes a user subscriber
func (h *EventHub) UnsubscribeUser(userID, subscriberID string) {
	h.remove(h.users, userID, subscriberID)
}

// Publish sends an event to every subscriber of event.GroupID
func (h *EventHub) Publish(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fanOut(h.groups[event.GroupID], event)
}

// SendToUser sends an event to every subscriber of the user
func (h *EventHub) SendToUser(userID string, event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fanOut(h.users[userID], event)
}

// SubscriberCount returns the number of subscribers for a group
func (h *EventHub) SubscriberCount(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupID])
}

// Close stops heartbeats and disconnects every subscriber
func (h *EventHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.heartbeat.Stop()

		h.mu.Lock()
		defer h.mu.Unlock()
		for _, topics := range []map[string]map[string]*Subscriber{h.groups, h.users} {
			for topic, subs := range topics {
				for _, sub := range subs {
					close(sub.Done)
					close(sub.Events)
				}
				delete(topics, topic)
			}
		}
	})
}

// add registers a subscriber. Once the hub is closed the subscriber comes
// back already closed and is not registered.
func (h *EventHub) add(topics map[string]map[string]*Subscriber, topic, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:     subscriberID,
		Topic:  topic,
		Events: make(chan *Event, subscriberBuffer),
		Done:   make(chan struct{}),
	}
	select {
	case <-h.done:
		close(sub.Done)
		close(sub.Events)
		return sub
	default:
	}
	if topics[topic] == nil {
		topics[topic] = make(map[string]*Subscriber)
	}
	topics[topic][subscriberID] = sub
	return sub
}

func (h *EventHub) remove(topics map[string]map[string]*Subscriber, topic, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := topics[topic]
	if !ok {
		return
	}
	if sub, ok := subs[subscriberID]; ok {
		close(sub.Done)
		close(sub.Events)
		delete(subs, subscriberID)
	}
	if len(subs) == 0 {
		delete(topics, topic)
	}
}

// notifyMembers sends event to the personal topic of every current member
// of groupID. A failed member lookup drops the event.
func notifyMembers(ctx context.Context, hub *EventHub, users UserRepository, groupID string, event *Event) {
	if hub == nil {
		return
	}
	members, err := users.ListByGroup(ctx, groupID)
	if err != nil {
		slog.WarnContext(ctx, "member notification dropped",
			slog.String("group_id", groupID),
			slog.String("event", string(event.Type)),
			slog.String("error", err.Error()),
		)
		return
	}
	for _, m := range members {
		hub.SendToUser(m.ID, event)
	}
}

func fanOut(subs map[string]*Subscriber, event *Event) {
	for _, sub := range subs {
		select {
		case sub.Events <- event:
		default:
		}
	}
}

func (h *EventHub) sendHeartbeats() {
	for {
		select {
		case <-h.heartbeat.C:
			event := &Event{
				Type: EventHeartbeat,
				Data: map[string]string{"timestamp": time.Now().UTC().Format(time.RFC3339)},
			}
			h.mu.RLock()
			for _, subs := range h.groups {
				fanOut(subs, event)
			}
			for _, subs := range h.users {
				fanOut(subs, event)
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}
