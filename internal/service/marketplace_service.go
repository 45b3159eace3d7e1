package service

import (
	"context"
	"log/slog"
	"strings"

	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/observability"
	"townsquare/internal/repository"
	"townsquare/internal/validation"

	"github.com/shopspring/decimal"
)

// MarketplaceService provides marketplace moderation and product listing logic.
type MarketplaceService struct {
	marketplaceRepo repository.MarketplaceRepository
	productRepo     repository.ProductRepository
	communityRepo   repository.CommunityRepository
}

// CreateProductInput is the input for listing a product for sale.
type CreateProductInput struct {
	Name        string          `json:"name" validate:"notblank,max=120"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price" validate:"price"`
	ImageRef    string          `json:"image_ref" validate:"max=512"`
}

// EditProductInput carries the fields a seller may change. Nil fields are left alone.
type EditProductInput struct {
	Name        *string          `json:"name" validate:"omitempty,notblank,max=120"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,price"`
	ImageRef    *string          `json:"image_ref" validate:"omitempty,max=512"`
}

// MarketplaceDetail is a marketplace with the products still open for purchase.
type MarketplaceDetail struct {
	models.Marketplace
	Products []models.Product `json:"products"`
}

// NewMarketplaceService returns a new MarketplaceService.
func NewMarketplaceService(
	marketplaceRepo repository.MarketplaceRepository,
	productRepo repository.ProductRepository,
	communityRepo repository.CommunityRepository,
) *MarketplaceService {
	return &MarketplaceService{
		marketplaceRepo: marketplaceRepo,
		productRepo:     productRepo,
		communityRepo:   communityRepo,
	}
}

// ListMarketplaces lists a community's marketplaces for a member. The creator also sees deleted ones.
func (s *MarketplaceService) ListMarketplaces(ctx context.Context, communityID, callerID uint) ([]models.Marketplace, error) {
	community, err := s.communityRepo.Get(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.communityRepo, communityID, callerID); err != nil {
		return nil, err
	}
	return s.marketplaceRepo.ListByCommunity(ctx, communityID, community.IsCreator(callerID))
}

// GetMarketplace returns the marketplace and its available products.
func (s *MarketplaceService) GetMarketplace(ctx context.Context, id, callerID uint) (*MarketplaceDetail, error) {
	mp, community, err := s.loadMarketplace(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mp.Active && !community.IsCreator(callerID) {
		return nil, models.NewNotFoundError("Marketplace", id)
	}
	if err := requireMember(ctx, s.communityRepo, mp.CommunityID, callerID); err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListAvailable(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MarketplaceDetail{Marketplace: *mp, Products: products}, nil
}

// EditMarketplace renames a marketplace. Community creator only.
func (s *MarketplaceService) EditMarketplace(ctx context.Context, id, callerID uint, in NameInput) (*models.Marketplace, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	mp, err := s.requireMarketplaceCreator(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if !mp.Active {
		return nil, models.NewValidationError("Marketplace is deleted; restore it first")
	}
	if err := s.marketplaceRepo.Update(ctx, id, map[string]interface{}{"name": strings.TrimSpace(in.Name)}); err != nil {
		return nil, err
	}
	return s.marketplaceRepo.Get(ctx, id)
}

// DeleteMarketplace soft-deletes one marketplace. Community creator only.
func (s *MarketplaceService) DeleteMarketplace(ctx context.Context, id, callerID uint) error {
	mp, err := s.requireMarketplaceCreator(ctx, id, callerID)
	if err != nil {
		return err
	}
	if !mp.Active {
		return models.NewValidationError("Marketplace is already deleted")
	}
	return s.marketplaceRepo.Delete(ctx, id)
}

// RestoreMarketplace reactivates a marketplace inside an active community.
func (s *MarketplaceService) RestoreMarketplace(ctx context.Context, id, callerID uint) error {
	mp, err := s.requireMarketplaceCreator(ctx, id, callerID)
	if err != nil {
		return err
	}
	if mp.Active {
		return models.NewValidationError("Marketplace is not deleted")
	}
	community, err := s.communityRepo.Get(ctx, mp.CommunityID)
	if err != nil {
		return err
	}
	if !community.Active {
		return models.NewValidationError("Restore the community before its marketplaces")
	}
	return s.marketplaceRepo.Restore(ctx, id)
}

// CreateProduct lists a product for sale. The seller must belong to the community.
func (s *MarketplaceService) CreateProduct(ctx context.Context, marketplaceID, sellerID uint, in CreateProductInput) (*models.Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	mp, _, err := s.loadMarketplace(ctx, marketplaceID)
	if err != nil {
		return nil, err
	}
	if !mp.Active {
		return nil, models.NewValidationError("Marketplace is not active")
	}
	if err := requireMember(ctx, s.communityRepo, mp.CommunityID, sellerID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		Price:         in.Price.Round(2),
		ImageRef:      strings.TrimSpace(in.ImageRef),
		SellerID:      sellerID,
		MarketplaceID: marketplaceID,
		Active:        true,
	}
	if err := s.productRepo.Add(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns a product to members of its community.
func (s *MarketplaceService) GetProduct(ctx context.Context, id, callerID uint) (*models.Product, error) {
	product, err := s.productRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	mp, err := s.marketplaceRepo.Get(ctx, product.MarketplaceID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != callerID {
		if err := requireMember(ctx, s.communityRepo, mp.CommunityID, callerID); err != nil {
			return nil, err
		}
	}
	product.Marketplace = mp
	return product, nil
}

// ListSellerProducts lists everything the seller has listed, sold items included.
func (s *MarketplaceService) ListSellerProducts(ctx context.Context, sellerID uint) ([]models.Product, error) {
	return s.productRepo.ListBySeller(ctx, sellerID)
}

// EditProduct updates an open listing. Seller only; reserved or finalized products are frozen.
func (s *MarketplaceService) EditProduct(ctx context.Context, id, callerID uint, in EditProductInput) (*models.Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	product, err := s.requireSeller(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, models.NewValidationError("Product is no longer listed")
	}
	if product.BuyerID != nil {
		return nil, models.NewValidationError("Product is in a buyer's cart")
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		fields["price"] = in.Price.Round(2)
	}
	if in.ImageRef != nil {
		fields["image_ref"] = strings.TrimSpace(*in.ImageRef)
	}
	if len(fields) == 0 {
		return product, nil
	}
	if err := s.productRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.productRepo.Get(ctx, id)
}

// DeleteProduct withdraws an unreserved listing. Seller only.
func (s *MarketplaceService) DeleteProduct(ctx context.Context, id, callerID uint) error {
	product, err := s.requireSeller(ctx, id, callerID)
	if err != nil {
		return err
	}
	if !product.Active {
		return models.NewValidationError("Product is no longer listed")
	}
	if product.BuyerID != nil {
		return models.NewValidationError("Product is in a buyer's cart")
	}
	return s.productRepo.Delete(ctx, id)
}

// BuyProduct places the product in the buyer's cart. Only one buyer can win a product.
func (s *MarketplaceService) BuyProduct(ctx context.Context, productID, buyerID uint) (product *models.Product, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "MarketplaceService", "BuyProduct",
		observability.IDAttr("product", productID))
	defer func() {
		result := "ok"
		if err != nil {
			result = strings.ToLower(models.ErrorCode(err))
		}
		observability.ProductPurchases.WithLabelValues(result).Inc()
		observability.EndSpan(span, err)
	}()

	product, err = s.productRepo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active || product.BuyerID != nil {
		return nil, models.NewConflictError("Product is no longer available")
	}
	if product.SellerID == buyerID {
		return nil, models.NewValidationError("You cannot buy your own product")
	}
	mp, _, err := s.loadMarketplace(ctx, product.MarketplaceID)
	if err != nil {
		return nil, err
	}
	if !mp.Active {
		return nil, models.NewValidationError("Marketplace is not active")
	}
	if err := requireMember(ctx, s.communityRepo, mp.CommunityID, buyerID); err != nil {
		return nil, err
	}

	won, err := s.productRepo.AssignBuyer(ctx, productID, buyerID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, models.NewConflictError("Product is no longer available")
	}
	middleware.Logger.InfoContext(ctx, "product added to cart",
		slog.Uint64("product_id", uint64(productID)),
		slog.Uint64("buyer_id", uint64(buyerID)),
	)
	product.BuyerID = &buyerID
	return product, nil
}

func (s *MarketplaceService) loadMarketplace(ctx context.Context, id uint) (*models.Marketplace, *models.Community, error) {
	mp, err := s.marketplaceRepo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	community, err := s.communityRepo.Get(ctx, mp.CommunityID)
	if err != nil {
		return nil, nil, err
	}
	return mp, community, nil
}

func (s *MarketplaceService) requireMarketplaceCreator(ctx context.Context, id, callerID uint) (*models.Marketplace, error) {
	mp, err := s.marketplaceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := requireCreator(ctx, s.communityRepo, mp.CommunityID, callerID); err != nil {
		return nil, err
	}
	return mp, nil
}

func (s *MarketplaceService) requireSeller(ctx context.Context, id, callerID uint) (*models.Product, error) {
	product, err := s.productRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != callerID {
		return nil, denied(GateOwner, "Only the seller can change this product")
	}
	return product, nil
}
