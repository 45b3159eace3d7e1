package server

import (
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PostMessageRequest is the body of POST /api/chatrooms/:id/messages.
type PostMessageRequest struct {
	Content string `json:"content"`
}

// GetChatroom handles GET /api/chatrooms/:id
// @Summary Get a chatroom
// @Description Chatroom members only. Returns members and the latest messages, oldest first.
// @Tags chatrooms
// @Produce json
// @Param id path int true "Chatroom ID"
// @Success 200 {object} service.ChatroomDetail
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /chatrooms/{id} [get]
func (s *Server) GetChatroom(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	room, err := s.chatroomService.GetChatroom(c.UserContext(), id, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(room)
}

// UpdateChatroom handles PUT /api/chatrooms/:id
// @Summary Rename a chatroom
// @Tags chatrooms
// @Accept json
// @Produce json
// @Param id path int true "Chatroom ID"
// @Param request body service.NameInput true "Changes"
// @Success 200 {object} models.Chatroom
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /chatrooms/{id} [put]
func (s *Server) UpdateChatroom(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.NameInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	room, err := s.chatroomService.EditChatroom(c.UserContext(), id, callerID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(room)
}

// DeleteChatroom handles DELETE /api/chatrooms/:id
// @Summary Soft-delete a chatroom
// @Tags chatrooms
// @Param id path int true "Chatroom ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /chatrooms/{id} [delete]
func (s *Server) DeleteChatroom(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.chatroomService.DeleteChatroom(c.UserContext(), id, callerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RestoreChatroom handles POST /api/chatrooms/:id/restore
// @Summary Restore a chatroom
// @Tags chatrooms
// @Param id path int true "Chatroom ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /chatrooms/{id}/restore [post]
func (s *Server) RestoreChatroom(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.chatroomService.RestoreChatroom(c.UserContext(), id, callerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// JoinChatroom handles POST /api/chatrooms/:id/join
// @Summary Join a chatroom
// @Tags chatrooms
// @Param id path int true "Chatroom ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /chatrooms/{id}/join [post]
func (s *Server) JoinChatroom(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.chatroomService.JoinChatroom(c.UserContext(), id, callerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LeaveChatroom handles DELETE /api/chatrooms/:id/members/me
// @Summary Leave a chatroom
// @Tags chatrooms
// @Param id path int true "Chatroom ID"
// @Success 204
// @Security BearerAuth
// @Router /chatrooms/{id}/members/me [delete]
func (s *Server) LeaveChatroom(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.chatroomService.LeaveChatroom(c.UserContext(), id, callerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMessages handles GET /api/chatrooms/:id/messages
// @Summary Page through chatroom history
// @Description Chatroom members only. Returns up to limit messages older than before, oldest first.
// @Tags chatrooms
// @Produce json
// @Param id path int true "Chatroom ID"
// @Param before query int false "Return messages older than this message ID"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} service.MessagePage
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /chatrooms/{id}/messages [get]
func (s *Server) ListMessages(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, maxPaginationLimit)
	before := c.QueryInt("before", 0)
	if before < 0 {
		before = 0
	}
	result, err := s.chatroomService.ListMessages(c.UserContext(), id, callerID(c), uint(before), page.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// PostMessage handles POST /api/chatrooms/:id/messages
// @Summary Post a message
// @Description Persists the message and fans it out to connected room members.
// @Tags chatrooms
// @Accept json
// @Produce json
// @Param id path int true "Chatroom ID"
// @Param request body PostMessageRequest true "Message"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /chatrooms/{id}/messages [post]
func (s *Server) PostMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req PostMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.chatroomService.PostMessage(c.UserContext(), id, callerID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
