package server

import (
	"townsquare/internal/repository"
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CascadeResponse reports how many children a delete or restore touched.
type CascadeResponse struct {
	CommunityID  uint  `json:"community_id"`
	Active       bool  `json:"active"`
	Marketplaces int64 `json:"marketplaces"`
	Chatrooms    int64 `json:"chatrooms"`
}

func toCascadeResponse(id uint, active bool, r repository.CascadeResult) CascadeResponse {
	return CascadeResponse{
		CommunityID:  id,
		Active:       active,
		Marketplaces: r.Marketplaces,
		Chatrooms:    r.Chatrooms,
	}
}

// ListCommunities handles GET /api/communities
// @Summary List communities
// @Description Active communities flagged with the caller's membership.
// @Tags communities
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} service.CommunitySummary
// @Security BearerAuth
// @Router /communities [get]
func (s *Server) ListCommunities(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	list, err := s.communityService.ListCommunities(c.UserContext(), callerID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// ListMyCommunities handles GET /api/communities/mine
// @Summary Communities I belong to
// @Tags communities
// @Produce json
// @Success 200 {array} models.Community
// @Security BearerAuth
// @Router /communities/mine [get]
func (s *Server) ListMyCommunities(c *fiber.Ctx) error {
	list, err := s.communityService.ListMyCommunities(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// ListManagedCommunities handles GET /api/communities/manage
// @Summary Communities I created
// @Description Includes deleted communities so they can be restored.
// @Tags communities
// @Produce json
// @Success 200 {array} models.Community
// @Security BearerAuth
// @Router /communities/manage [get]
func (s *Server) ListManagedCommunities(c *fiber.Ctx) error {
	list, err := s.communityService.ListCreatedCommunities(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// CreateCommunity handles POST /api/communities
// @Summary Create a community
// @Tags communities
// @Accept json
// @Produce json
// @Param request body service.CreateCommunityInput true "Community"
// @Success 201 {object} models.Community
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /communities [post]
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	var in service.CreateCommunityInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	community, err := s.communityService.CreateCommunity(c.UserContext(), callerID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(community)
}

// GetCommunity handles GET /api/communities/:id
// @Summary Get a community
// @Description Members only. Non-creators see active marketplaces and chatrooms only.
// @Tags communities
// @Produce json
// @Param id path int true "Community ID"
// @Success 200 {object} service.CommunitySummary
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /communities/{id} [get]
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	community, err := s.communityService.GetCommunity(c.UserContext(), id, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(community)
}

// UpdateCommunity handles PUT /api/communities/:id
// @Summary Edit a community
// @Tags communities
// @Accept json
// @Produce json
// @Param id path int true "Community ID"
// @Param request body service.EditCommunityInput true "Changes"
// @Success 200 {object} models.Community
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /communities/{id} [put]
func (s *Server) UpdateCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.EditCommunityInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	community, err := s.communityService.EditCommunity(c.UserContext(), id, callerID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(community)
}

// DeleteCommunity handles DELETE /api/communities/:id
// @Summary Soft-delete a community
// @Description Deactivates the community with its marketplaces and chatrooms in one transaction.
// @Tags communities
// @Produce json
// @Param id path int true "Community ID"
// @Success 200 {object} CascadeResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /communities/{id} [delete]
func (s *Server) DeleteCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.communityService.DeleteCommunity(c.UserContext(), id, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCascadeResponse(id, false, result))
}

// RestoreCommunity handles POST /api/communities/:id/restore
// @Summary Restore a community
// @Description Reactivates the community and exactly the children its delete suspended.
// @Tags communities
// @Produce json
// @Param id path int true "Community ID"
// @Success 200 {object} CascadeResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /communities/{id}/restore [post]
func (s *Server) RestoreCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.communityService.RestoreCommunity(c.UserContext(), id, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCascadeResponse(id, true, result))
}

// JoinCommunity handles POST /api/communities/:id/join
// @Summary Join a community
// @Tags communities
// @Param id path int true "Community ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /communities/{id}/join [post]
func (s *Server) JoinCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.communityService.JoinCommunity(c.UserContext(), id, callerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LeaveCommunity handles DELETE /api/communities/:id/members/me
// @Summary Leave a community
// @Tags communities
// @Param id path int true "Community ID"
// @Success 204
// @Security BearerAuth
// @Router /communities/{id}/members/me [delete]
func (s *Server) LeaveCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.communityService.LeaveCommunity(c.UserContext(), id, callerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMarketplaces handles GET /api/communities/:id/marketplaces
// @Summary List a community's marketplaces
// @Tags marketplaces
// @Produce json
// @Param id path int true "Community ID"
// @Success 200 {array} models.Marketplace
// @Security BearerAuth
// @Router /communities/{id}/marketplaces [get]
func (s *Server) ListMarketplaces(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	list, err := s.marketplaceService.ListMarketplaces(c.UserContext(), id, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// AddMarketplace handles POST /api/communities/:id/marketplaces
// @Summary Add a marketplace
// @Tags marketplaces
// @Accept json
// @Produce json
// @Param id path int true "Community ID"
// @Param request body service.NameInput true "Marketplace"
// @Success 201 {object} models.Marketplace
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /communities/{id}/marketplaces [post]
func (s *Server) AddMarketplace(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.NameInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	mp, err := s.communityService.AddMarketplace(c.UserContext(), id, callerID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mp)
}

// ListChatrooms handles GET /api/communities/:id/chatrooms
// @Summary List a community's chatrooms
// @Tags chatrooms
// @Produce json
// @Param id path int true "Community ID"
// @Success 200 {array} service.ChatroomSummary
// @Security BearerAuth
// @Router /communities/{id}/chatrooms [get]
func (s *Server) ListChatrooms(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	list, err := s.chatroomService.ListChatrooms(c.UserContext(), id, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// AddChatroom handles POST /api/communities/:id/chatrooms
// @Summary Add a chatroom
// @Tags chatrooms
// @Accept json
// @Produce json
// @Param id path int true "Community ID"
// @Param request body service.NameInput true "Chatroom"
// @Success 201 {object} models.Chatroom
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /communities/{id}/chatrooms [post]
func (s *Server) AddChatroom(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.NameInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	room, err := s.communityService.AddChatroom(c.UserContext(), id, callerID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}
