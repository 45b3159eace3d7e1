package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetCart handles GET /api/cart
// @Summary Get my cart
// @Tags cart
// @Produce json
// @Success 200 {object} service.Cart
// @Security BearerAuth
// @Router /cart [get]
func (s *Server) GetCart(c *fiber.Ctx) error {
	cart, err := s.cartService.GetCart(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// RemoveFromCart handles DELETE /api/cart/:productId
// @Summary Remove a product from my cart
// @Tags cart
// @Param productId path int true "Product ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /cart/{productId} [delete]
func (s *Server) RemoveFromCart(c *fiber.Ctx) error {
	productID, err := s.parseID(c, "productId")
	if err != nil {
		return nil
	}
	if err := s.cartService.RemoveFromCart(c.UserContext(), productID, callerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PayCart handles POST /api/cart/pay
// @Summary Pay for my cart
// @Description Finalizes every product in the caller's cart in one transaction.
// @Tags cart
// @Produce json
// @Success 200 {object} service.Receipt
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /cart/pay [post]
func (s *Server) PayCart(c *fiber.Ctx) error {
	receipt, err := s.cartService.Pay(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(receipt)
}
