package server

import (
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMarketplace handles GET /api/marketplaces/:id
// @Summary Get a marketplace
// @Description Members only. Lists the products still open for purchase.
// @Tags marketplaces
// @Produce json
// @Param id path int true "Marketplace ID"
// @Success 200 {object} service.MarketplaceDetail
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /marketplaces/{id} [get]
func (s *Server) GetMarketplace(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	mp, err := s.marketplaceService.GetMarketplace(c.UserContext(), id, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(mp)
}

// UpdateMarketplace handles PUT /api/marketplaces/:id
// @Summary Rename a marketplace
// @Tags marketplaces
// @Accept json
// @Produce json
// @Param id path int true "Marketplace ID"
// @Param request body service.NameInput true "Changes"
// @Success 200 {object} models.Marketplace
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /marketplaces/{id} [put]
func (s *Server) UpdateMarketplace(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.NameInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	mp, err := s.marketplaceService.EditMarketplace(c.UserContext(), id, callerID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(mp)
}

// DeleteMarketplace handles DELETE /api/marketplaces/:id
// @Summary Soft-delete a marketplace
// @Tags marketplaces
// @Param id path int true "Marketplace ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /marketplaces/{id} [delete]
func (s *Server) DeleteMarketplace(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.marketplaceService.DeleteMarketplace(c.UserContext(), id, callerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RestoreMarketplace handles POST /api/marketplaces/:id/restore
// @Summary Restore a marketplace
// @Tags marketplaces
// @Param id path int true "Marketplace ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /marketplaces/{id}/restore [post]
func (s *Server) RestoreMarketplace(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.marketplaceService.RestoreMarketplace(c.UserContext(), id, callerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SellProduct handles POST /api/marketplaces/:id/products
// @Summary List a product for sale
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Marketplace ID"
// @Param request body service.CreateProductInput true "Product"
// @Success 201 {object} models.Product
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /marketplaces/{id}/products [post]
func (s *Server) SellProduct(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.CreateProductInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	product, err := s.marketplaceService.CreateProduct(c.UserContext(), id, callerID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// ListMyProducts handles GET /api/products/mine
// @Summary Products I listed
// @Tags products
// @Produce json
// @Success 200 {array} models.Product
// @Security BearerAuth
// @Router /products/mine [get]
func (s *Server) ListMyProducts(c *fiber.Ctx) error {
	products, err := s.marketplaceService.ListSellerProducts(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// GetProduct handles GET /api/products/:id
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Product
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [get]
func (s *Server) GetProduct(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	product, err := s.marketplaceService.GetProduct(c.UserContext(), id, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// UpdateProduct handles PUT /api/products/:id
// @Summary Edit a listing
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body service.EditProductInput true "Changes"
// @Success 200 {object} models.Product
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [put]
func (s *Server) UpdateProduct(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.EditProductInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	product, err := s.marketplaceService.EditProduct(c.UserContext(), id, callerID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// DeleteProduct handles DELETE /api/products/:id
// @Summary Withdraw a listing
// @Tags products
// @Param id path int true "Product ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [delete]
func (s *Server) DeleteProduct(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.marketplaceService.DeleteProduct(c.UserContext(), id, callerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BuyProduct handles POST /api/products/:id/buy
// @Summary Put a product in my cart
// @Description Reserves the product for the caller. A product another buyer reserved first yields 409.
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Product
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/buy [post]
func (s *Server) BuyProduct(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	product, err := s.marketplaceService.BuyProduct(c.UserContext(), id, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}
