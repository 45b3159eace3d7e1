package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"townsquare/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, hub *ChatHub, userID uint) *Client {
	t.Helper()
	client, err := hub.Register(userID, nil)
	require.NoError(t, err)
	return client
}

func receiveFrame(t *testing.T, client *Client) ServerFrame {
	t.Helper()
	select {
	case raw := <-client.Send:
		var frame ServerFrame
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return ServerFrame{}
	}
}

func testMessage(chatroomID uint) *models.Message {
	return &models.Message{
		ID:         9,
		Content:    "hello room",
		SentAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		SenderID:   1,
		Sender:     &models.User{ID: 1, Username: "alice"},
		ChatroomID: chatroomID,
	}
}

func TestChatHub_RegisterUnregister(t *testing.T) {
	hub := NewChatHub(nil)
	client := register(t, hub, 1)
	hub.JoinRoom(1, 10)
	assert.Equal(t, []uint{1}, hub.ActiveUsers(10))

	hub.UnregisterClient(client)
	assert.Empty(t, hub.ActiveUsers(10))
	hub.mu.RLock()
	assert.Empty(t, hub.userConns)
	assert.Equal(t, 0, hub.totalConns)
	hub.mu.RUnlock()

	// Unregistering twice is harmless.
	hub.UnregisterClient(client)
}

func TestChatHub_ConnectionLimit(t *testing.T) {
	hub := NewChatHub(nil)
	for i := 0; i < maxConnsPerUser; i++ {
		register(t, hub, 1)
	}
	_, err := hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrConnectionLimit)

	_, err = hub.Register(2, nil)
	assert.NoError(t, err)
	_ = hub.Shutdown(context.Background())
}

func TestChatHub_BroadcastToRoom_OnlyJoinedUsers(t *testing.T) {
	hub := NewChatHub(nil)
	alice := register(t, hub, 1)
	bob := register(t, hub, 2)
	carol := register(t, hub, 3)
	hub.JoinRoom(1, 10)
	hub.JoinRoom(2, 10)
	hub.JoinRoom(3, 11)

	hub.PublishMessage(context.Background(), testMessage(10))

	for _, c := range []*Client{alice, bob} {
		frame := receiveFrame(t, c)
		assert.Equal(t, FrameReceiveMessage, frame.Type)
		assert.Equal(t, uint(10), frame.ChatroomID)
		assert.Equal(t, "alice", frame.Sender)
		assert.Equal(t, "hello room", frame.Text)
		assert.True(t, frame.SentAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	}
	assert.Empty(t, carol.Send)

	hub.LeaveRoom(2, 10)
	assert.Equal(t, 1, hub.BroadcastToRoom(10, []byte(`{}`)))
}

func TestChatHub_MultiDeviceSupport(t *testing.T) {
	hub := NewChatHub(nil)
	phone := register(t, hub, 1)
	laptop := register(t, hub, 1)
	hub.JoinRoom(1, 10)

	assert.Equal(t, 2, hub.BroadcastToRoom(10, []byte(`{"type":"ping"}`)))
	<-phone.Send
	<-laptop.Send

	hub.UnregisterClient(phone)
	assert.Equal(t, []uint{1}, hub.ActiveUsers(10), "room kept while another device is connected")
}

func TestChatHub_Backpressure(t *testing.T) {
	hub := NewChatHub(nil)
	client := register(t, hub, 1)
	hub.JoinRoom(1, 10)

	for i := 0; i < sendBufferSize+5; i++ {
		hub.BroadcastToRoom(10, []byte(`{}`))
	}
	assert.Len(t, client.Send, sendBufferSize)
}

func TestChatHub_StartWiring_DeliversAcrossRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	// Two hubs sharing Redis stand in for two server instances.
	sender := NewChatHub(NewNotifier(rdb))
	receiver := NewChatHub(NewNotifier(rdb))
	require.NoError(t, receiver.StartWiring(ctx))

	client := register(t, receiver, 2)
	receiver.JoinRoom(2, 42)

	sender.PublishMessage(ctx, testMessage(42))

	frame := receiveFrame(t, client)
	assert.Equal(t, FrameReceiveMessage, frame.Type)
	assert.Equal(t, uint(42), frame.ChatroomID)
	assert.Equal(t, uint(9), frame.MessageID)
}

func TestChatHub_EvictUser_Local(t *testing.T) {
	hub := NewChatHub(nil)
	member := register(t, hub, 1)
	other := register(t, hub, 2)
	hub.JoinRoom(1, 10)
	hub.JoinRoom(1, 11)
	hub.JoinRoom(2, 10)

	hub.EvictUser(context.Background(), 1, []uint{10, 11, 12})

	assert.Equal(t, []uint{2}, hub.ActiveUsers(10))
	assert.Empty(t, hub.ActiveUsers(11))

	first := receiveFrame(t, member)
	assert.Equal(t, FrameLeft, first.Type)
	assert.Equal(t, CodeMembershipRevoked, first.Code)
	second := receiveFrame(t, member)
	assert.ElementsMatch(t, []uint{10, 11}, []uint{first.ChatroomID, second.ChatroomID})

	// Room 12 was never joined, so no notice for it.
	assert.Empty(t, member.Send)

	assert.Equal(t, 1, hub.BroadcastToRoom(10, []byte(`{}`)))
	assert.Empty(t, member.Send)
	assert.Len(t, other.Send, 1)
}

func TestChatHub_EvictUser_AcrossRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	origin := NewChatHub(NewNotifier(rdb))
	remote := NewChatHub(NewNotifier(rdb))
	require.NoError(t, remote.StartWiring(ctx))

	client := register(t, remote, 3)
	remote.JoinRoom(3, 42)

	origin.EvictUser(ctx, 3, []uint{42})

	frame := receiveFrame(t, client)
	assert.Equal(t, FrameLeft, frame.Type)
	assert.Equal(t, uint(42), frame.ChatroomID)
	assert.Empty(t, remote.ActiveUsers(42))

	// Later room traffic no longer reaches the evicted socket.
	origin.PublishMessage(ctx, testMessage(42))
	select {
	case raw := <-client.Send:
		t.Fatalf("unexpected frame after eviction: %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}
