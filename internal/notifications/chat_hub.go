package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 12
	maxTotalConns   = 10000
)

// ErrConnectionLimit is returned by Register when a per-user or global limit is reached.
var ErrConnectionLimit = errors.New("websocket connection limit reached")

// ChatHub fans chatroom messages out to the sockets that joined each room.
// A user may hold several connections; joins are tracked per user.
type ChatHub struct {
	mu sync.RWMutex

	// chatroomID -> userIDs that joined it
	rooms map[uint]map[uint]struct{}

	// userID -> chatroomIDs the user joined
	userRooms map[uint]map[uint]struct{}

	// userID -> live clients
	userConns map[uint]map[*Client]struct{}

	totalConns int
	notifier   *Notifier
}

// NewChatHub creates a ChatHub. A nil or disabled notifier makes publishing local only.
func NewChatHub(notifier *Notifier) *ChatHub {
	return &ChatHub{
		rooms:     make(map[uint]map[uint]struct{}),
		userRooms: make(map[uint]map[uint]struct{}),
		userConns: make(map[uint]map[*Client]struct{}),
		notifier:  notifier,
	}
}

// Name returns a human-readable identifier for this hub.
func (h *ChatHub) Name() string { return "chat hub" }

// Register adds a connection for userID.
func (h *ChatHub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns || len(h.userConns[userID]) >= maxConnsPerUser {
		return nil, ErrConnectionLimit
	}
	if h.userConns[userID] == nil {
		h.userConns[userID] = make(map[*Client]struct{})
	}
	client := NewClient(h, conn, userID)
	h.userConns[userID][client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient removes a connection. When the user's last connection
// goes, their room subscriptions go with it.
func (h *ChatHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.userConns[client.UserID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	h.totalConns--
	observability.WebSocketConnectionsTotal.Dec()
	if len(clients) > 0 {
		return
	}

	delete(h.userConns, client.UserID)
	for roomID := range h.userRooms[client.UserID] {
		h.removeFromRoomLocked(client.UserID, roomID)
	}
	delete(h.userRooms, client.UserID)
}

// JoinRoom subscribes userID to live messages of a chatroom.
func (h *ChatHub) JoinRoom(userID, chatroomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[chatroomID] == nil {
		h.rooms[chatroomID] = make(map[uint]struct{})
	}
	h.rooms[chatroomID][userID] = struct{}{}
	if h.userRooms[userID] == nil {
		h.userRooms[userID] = make(map[uint]struct{})
	}
	h.userRooms[userID][chatroomID] = struct{}{}
}

// LeaveRoom unsubscribes userID from a chatroom.
func (h *ChatHub) LeaveRoom(userID, chatroomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomLocked(userID, chatroomID)
	if rooms, ok := h.userRooms[userID]; ok {
		delete(rooms, chatroomID)
		if len(rooms) == 0 {
			delete(h.userRooms, userID)
		}
	}
}

func (h *ChatHub) removeFromRoomLocked(userID, chatroomID uint) {
	if users, ok := h.rooms[chatroomID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(h.rooms, chatroomID)
		}
	}
}

// ActiveUsers returns the users currently subscribed to a chatroom.
func (h *ChatHub) ActiveUsers(chatroomID uint) []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uint, 0, len(h.rooms[chatroomID]))
	for id := range h.rooms[chatroomID] {
		users = append(users, id)
	}
	return users
}

// BroadcastToRoom delivers payload to every connection of every user in the chatroom.
func (h *ChatHub) BroadcastToRoom(chatroomID uint, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for userID := range h.rooms[chatroomID] {
		for client := range h.userConns[userID] {
			client.TrySend(payload)
			delivered++
		}
	}
	return delivered
}

// PublishMessage fans a persisted message out: through Redis when available
// so other instances see it, otherwise straight to local sockets.
func (h *ChatHub) PublishMessage(ctx context.Context, msg *models.Message) {
	payload := ReceiveMessageFrame(msg).Encode()
	if h.notifier.Enabled() {
		err := h.notifier.PublishChatMessage(ctx, msg.ChatroomID, payload)
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "chat publish failed, delivering locally",
			slog.Uint64("chatroom_id", uint64(msg.ChatroomID)),
			slog.String("error", err.Error()),
		)
	}
	h.BroadcastToRoom(msg.ChatroomID, payload)
}

// EvictUser drops userID's live subscriptions to chatroomIDs on this instance
// and, through Redis, on every other instance.
func (h *ChatHub) EvictUser(ctx context.Context, userID uint, chatroomIDs []uint) {
	if len(chatroomIDs) == 0 {
		return
	}
	h.evictLocal(userID, chatroomIDs)
	if err := h.notifier.PublishEviction(ctx, Eviction{UserID: userID, ChatroomIDs: chatroomIDs}); err != nil {
		middleware.Logger.WarnContext(ctx, "chat eviction publish failed",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}

// evictLocal unsubscribes userID and tells their sockets which rooms were revoked.
func (h *ChatHub) evictLocal(userID uint, chatroomIDs []uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, roomID := range chatroomIDs {
		if _, ok := h.rooms[roomID][userID]; !ok {
			continue
		}
		h.removeFromRoomLocked(userID, roomID)
		if rooms, ok := h.userRooms[userID]; ok {
			delete(rooms, roomID)
			if len(rooms) == 0 {
				delete(h.userRooms, userID)
			}
		}
		notice := ServerFrame{Type: FrameLeft, ChatroomID: roomID, Code: CodeMembershipRevoked}.Encode()
		for client := range h.userConns[userID] {
			client.TrySend(notice)
		}
	}
}

// StartWiring subscribes the hub to chatroom and eviction channels in Redis.
func (h *ChatHub) StartWiring(ctx context.Context) error {
	return h.notifier.StartChatSubscriber(ctx, func(channel, payload string) {
		if channel == EvictionChannel {
			var ev Eviction
			if err := json.Unmarshal([]byte(payload), &ev); err != nil || ev.UserID == 0 {
				middleware.Logger.Warn("invalid chat eviction", slog.String("payload", payload))
				return
			}
			h.evictLocal(ev.UserID, ev.ChatroomIDs)
			return
		}
		var chatroomID uint
		if _, err := fmt.Sscanf(channel, "chat:room:%d", &chatroomID); err != nil {
			middleware.Logger.Warn("invalid chat channel", slog.String("channel", channel))
			return
		}
		if !json.Valid([]byte(payload)) {
			middleware.Logger.Warn("invalid chat payload", slog.String("channel", channel))
			return
		}
		h.BroadcastToRoom(chatroomID, []byte(payload))
	})
}

// Shutdown notifies and closes every connection.
func (h *ChatHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	notice := []byte(`{"type":"server_shutdown"}`)
	for _, clients := range h.userConns {
		for client := range clients {
			if client.Conn != nil {
				_ = client.Conn.WriteMessage(websocket.TextMessage, notice)
				_ = client.Conn.Close()
			}
		}
	}
	observability.WebSocketConnectionsTotal.Sub(float64(h.totalConns))

	h.rooms = make(map[uint]map[uint]struct{})
	h.userRooms = make(map[uint]map[uint]struct{})
	h.userConns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
