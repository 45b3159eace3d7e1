package notifications

import (
	"encoding/json"
	"errors"
	"time"

	"townsquare/internal/models"
)

// Frame types exchanged on the chat socket.
const (
	FrameJoin           = "join"
	FrameLeave          = "leave"
	FrameSendMessage    = "send_message"
	FrameReceiveMessage = "receive_message"
	FrameJoined         = "joined"
	FrameLeft           = "left"
	FrameError          = "error"
)

// CodeMembershipRevoked marks a left frame the server sent because the
// user's chatroom membership was removed.
const CodeMembershipRevoked = "MEMBERSHIP_REVOKED"

var dropNotice = []byte(`{"type":"messages_dropped","reason":"buffer_full"}`)

// ClientFrame is a frame sent by a chat client.
type ClientFrame struct {
	Type       string `json:"type"`
	ChatroomID uint   `json:"chatroom_id"`
	Text       string `json:"text,omitempty"`
}

// ServerFrame is a frame sent to chat clients.
type ServerFrame struct {
	Type       string    `json:"type"`
	ChatroomID uint      `json:"chatroom_id,omitempty"`
	MessageID  uint      `json:"message_id,omitempty"`
	SenderID   uint      `json:"sender_id,omitempty"`
	Sender     string    `json:"sender,omitempty"`
	Text       string    `json:"text,omitempty"`
	SentAt     time.Time `json:"sent_at,omitzero"`
	Error      string    `json:"error,omitempty"`
	Code       string    `json:"code,omitempty"`
}

// ReceiveMessageFrame builds the receive_message event for a persisted message.
func ReceiveMessageFrame(msg *models.Message) ServerFrame {
	frame := ServerFrame{
		Type:       FrameReceiveMessage,
		ChatroomID: msg.ChatroomID,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		Text:       msg.Content,
		SentAt:     msg.SentAt.UTC(),
	}
	if msg.Sender != nil {
		frame.Sender = msg.Sender.Username
	}
	return frame
}

// ErrorFrame reports a failed client frame back to the sender.
func ErrorFrame(chatroomID uint, err error) ServerFrame {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return ServerFrame{Type: FrameError, ChatroomID: chatroomID, Error: appErr.Message, Code: appErr.Code}
	}
	return ServerFrame{Type: FrameError, ChatroomID: chatroomID, Error: err.Error()}
}

// Encode marshals f for the wire.
func (f ServerFrame) Encode() []byte {
	b, _ := json.Marshal(f)
	return b
}
