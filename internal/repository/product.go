package repository

import (
	"context"

	"townsquare/internal/models"
	"townsquare/internal/observability"

	"gorm.io/gorm"
)

// ProductRepository defines persistence operations for products and shopping carts.
type ProductRepository interface {
	Repository[models.Product]
	ListAvailable(ctx context.Context, marketplaceID uint) ([]models.Product, error)
	ListBySeller(ctx context.Context, sellerID uint) ([]models.Product, error)
	ListCart(ctx context.Context, buyerID uint) ([]models.Product, error)
	AssignBuyer(ctx context.Context, productID, buyerID uint) (bool, error)
	ClearBuyer(ctx context.Context, productID, buyerID uint) (bool, error)
	PayCart(ctx context.Context, buyerID uint) ([]models.Product, error)
}

type productRepository struct {
	*gormRepository[models.Product]
}

// NewProductRepository returns a new ProductRepository implementation.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{newGormRepository[models.Product](db, "Product")}
}

// ListAvailable returns products still open for purchase.
func (r *productRepository) ListAvailable(ctx context.Context, marketplaceID uint) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Seller").
		Where("marketplace_id = ? AND active = ? AND buyer_id IS NULL", marketplaceID, true).
		Order("created_at DESC, id DESC").
		Find(&products).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return products, nil
}

func (r *productRepository) ListBySeller(ctx context.Context, sellerID uint) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Marketplace").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC, id DESC").
		Find(&products).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return products, nil
}

// ListCart returns the buyer's reserved, unpaid products.
func (r *productRepository) ListCart(ctx context.Context, buyerID uint) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Seller").
		Where("buyer_id = ? AND active = ?", buyerID, true).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return products, nil
}

// AssignBuyer reserves the product only if nobody holds it; false means another buyer won.
func (r *productRepository) AssignBuyer(ctx context.Context, productID, buyerID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND buyer_id IS NULL AND active = ?", productID, true).
		Updates(map[string]interface{}{"buyer_id": buyerID})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ClearBuyer returns an unpaid product to the marketplace. The active flag is untouched.
func (r *productRepository) ClearBuyer(ctx context.Context, productID, buyerID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND buyer_id = ? AND active = ?", productID, buyerID, true).
		Updates(map[string]interface{}{"buyer_id": gorm.Expr("NULL")})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// PayCart finalizes exactly the buyer's current cart in one transaction and
// returns the paid items. An empty cart returns no items and changes nothing.
func (r *productRepository) PayCart(ctx context.Context, buyerID uint) ([]models.Product, error) {
	defer observability.TrackQuery("pay_cart", "products")()
	var items []models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("buyer_id = ? AND active = ?", buyerID, true).
			Order("id ASC").
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		ids := make([]uint, len(items))
		for i, item := range items {
			ids[i] = item.ID
		}
		res := tx.Model(&models.Product{}).
			Where("id IN ? AND buyer_id = ? AND active = ?", ids, buyerID, true).
			Updates(map[string]interface{}{"active": false})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(items)) {
			return models.NewConflictError("cart changed during payment")
		}
		return nil
	})
	if err != nil {
		return nil, translateError(err, "Product", nil)
	}
	for i := range items {
		items[i].Active = false
	}
	return items, nil
}
