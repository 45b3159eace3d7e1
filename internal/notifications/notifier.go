package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"townsquare/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	chatRoomPattern = "chat:room:*"

	// EvictionChannel carries membership revocations to every instance.
	EvictionChannel = "chat:evict"
)

// Eviction tells hubs to drop a user's live subscriptions to chatrooms.
type Eviction struct {
	UserID      uint   `json:"user_id"`
	ChatroomIDs []uint `json:"chatroom_ids"`
}

// ChatRoomChannel returns the Redis channel carrying a chatroom's live messages.
func ChatRoomChannel(chatroomID uint) string {
	return fmt.Sprintf("chat:room:%d", chatroomID)
}

// Notifier publishes chat events into Redis channels so every server instance can deliver them.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether a Redis client backs the notifier.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishChatMessage publishes an encoded frame to a chatroom channel.
func (n *Notifier) PublishChatMessage(ctx context.Context, chatroomID uint, payload []byte) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, ChatRoomChannel(chatroomID), payload).Err()
}

// PublishEviction announces that userID lost access to chatroomIDs.
func (n *Notifier) PublishEviction(ctx context.Context, ev Eviction) error {
	if !n.Enabled() {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, EvictionChannel, payload).Err()
}

// StartChatSubscriber subscribes to every chatroom channel and the eviction channel, calling onMessage
// for each incoming message until ctx is cancelled.
func (n *Notifier) StartChatSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, chatRoomPattern, EvictionChannel)
	// Wait for the subscription to be confirmed so publishes that follow are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", chatRoomPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in chat subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
