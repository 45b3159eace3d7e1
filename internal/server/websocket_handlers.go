package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"townsquare/internal/cache"
	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/notifications"
	"townsquare/internal/observability"
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// WSTicketResponse carries a single-use WebSocket ticket.
type WSTicketResponse struct {
	Ticket    string `json:"ticket"`
	ExpiresIn int    `json:"expires_in"`
}

// IssueWSTicket handles POST /api/ws/ticket
// @Summary Issue a WebSocket ticket
// @Description Returns a single-use ticket to pass as ?ticket= when opening /api/ws/chat.
// @Tags websocket
// @Produce json
// @Success 200 {object} WSTicketResponse
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "WebSocket tickets are unavailable; connect with a bearer token",
			Code:  "TICKETS_UNAVAILABLE",
		})
	}

	ticket := uuid.NewString()
	userID := callerID(c)
	if err := s.redis.Set(c.UserContext(), cache.WSTicketKey(ticket),
		strconv.FormatUint(uint64(userID), 10), cache.WSTicketTTL).Err(); err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(WSTicketResponse{
		Ticket:    ticket,
		ExpiresIn: int(cache.WSTicketTTL / time.Second),
	})
}

// WebSocketChatHandler handles WebSocket connections for real-time chat
func (s *Server) WebSocketChatHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)
		if userID == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.chatHub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("chat connection rejected",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage,
				notifications.ErrorFrame(0, models.NewConflictError(err.Error())).Encode())
			_ = conn.Close()
			return
		}
		observability.RecordWebSocketEvent("connect")
		middleware.Logger.Info("chat connected", slog.Uint64("user_id", uint64(userID)))

		client.IncomingHandler = func(c *notifications.Client, raw []byte) {
			ctx, cancel := context.WithTimeout(middleware.WithUserID(context.Background(), userID), 10*time.Second)
			defer cancel()
			if reply := s.handleChatFrame(ctx, userID, raw); reply != nil {
				c.TrySend(reply)
			}
		}

		go client.WritePump()
		client.ReadPump()

		observability.RecordWebSocketEvent("disconnect")
		middleware.Logger.Info("chat disconnected", slog.Uint64("user_id", uint64(userID)))
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}

// handleChatFrame applies one client frame and returns the reply for the
// sender, if any. Messages reach room members through the hub.
func (s *Server) handleChatFrame(ctx context.Context, userID uint, raw []byte) []byte {
	var frame notifications.ClientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return notifications.ErrorFrame(0, models.NewValidationError("Invalid frame")).Encode()
	}
	if frame.ChatroomID == 0 {
		return notifications.ErrorFrame(0, models.NewValidationError("chatroom_id is required")).Encode()
	}
	switch frame.Type {
	case notifications.FrameJoin:
		observability.RecordWebSocketEvent(frame.Type)
		room, err := s.chatroomRepo.Get(ctx, frame.ChatroomID)
		if err != nil {
			return notifications.ErrorFrame(frame.ChatroomID, err).Encode()
		}
		if !room.Active {
			return notifications.ErrorFrame(frame.ChatroomID, models.NewValidationError("Chatroom is not active")).Encode()
		}
		ok, err := s.chatroomService.CheckChatroomMember(ctx, frame.ChatroomID, userID)
		if err != nil {
			return notifications.ErrorFrame(frame.ChatroomID, err).Encode()
		}
		if !ok {
			observability.AccessDenied.WithLabelValues(service.GateChatroomMember).Inc()
			return notifications.ErrorFrame(frame.ChatroomID,
				models.NewForbiddenError("You are not a member of this chatroom")).Encode()
		}
		s.chatHub.JoinRoom(userID, frame.ChatroomID)
		return notifications.ServerFrame{Type: notifications.FrameJoined, ChatroomID: frame.ChatroomID}.Encode()

	case notifications.FrameLeave:
		observability.RecordWebSocketEvent(frame.Type)
		s.chatHub.LeaveRoom(userID, frame.ChatroomID)
		return notifications.ServerFrame{Type: notifications.FrameLeft, ChatroomID: frame.ChatroomID}.Encode()

	case notifications.FrameSendMessage:
		observability.RecordWebSocketEvent(frame.Type)
		allowed, err := middleware.CheckRateLimit(ctx, s.redis, "send_chat", fmt.Sprintf("user:%d", userID), 15, time.Minute)
		if err == nil && !allowed {
			return notifications.ServerFrame{
				Type:       notifications.FrameError,
				ChatroomID: frame.ChatroomID,
				Error:      "Rate limit exceeded. Please wait a moment.",
				Code:       "RATE_LIMITED",
			}.Encode()
		}
		if _, err := s.chatroomService.PostMessage(ctx, frame.ChatroomID, userID, frame.Text); err != nil {
			if models.ErrorCode(err) == models.CodeInternal || models.ErrorCode(err) == "" {
				middleware.Logger.ErrorContext(ctx, "chat message failed",
					slog.Uint64("chatroom_id", uint64(frame.ChatroomID)),
					slog.String("error", err.Error()),
				)
			}
			return notifications.ErrorFrame(frame.ChatroomID, err).Encode()
		}
		return nil

	default:
		return notifications.ErrorFrame(frame.ChatroomID,
			models.NewValidationError("Unknown frame type "+strconv.Quote(frame.Type))).Encode()
	}
}
