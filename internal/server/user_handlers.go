package server

import (
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUser handles POST /api/users
// @Summary Register a profile
// @Description Create the profile record communities refer to. Credentials are managed by the identity provider.
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.CreateUserInput true "Profile"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var in service.CreateUserInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	user, err := s.userService.CreateUser(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// ListUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetMyProfile handles GET /api/users/me
// @Summary Get current user profile
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update current user profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.EditUserInput true "Changes"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var in service.EditUserInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	me := callerID(c)
	user, err := s.userService.EditUser(c.UserContext(), me, me, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me
// @Summary Deactivate current user
// @Tags users
// @Success 204
// @Security BearerAuth
// @Router /users/me [delete]
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	me := callerID(c)
	if err := s.userService.DeleteUser(c.UserContext(), me, me); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
