package repository

import (
	"context"

	"townsquare/internal/models"

	"gorm.io/gorm"
)

// MarketplaceRepository defines persistence operations for marketplaces.
type MarketplaceRepository interface {
	Repository[models.Marketplace]
	ListByCommunity(ctx context.Context, communityID uint, includeInactive bool) ([]models.Marketplace, error)
	Restore(ctx context.Context, id uint) error
}

type marketplaceRepository struct {
	*gormRepository[models.Marketplace]
}

// NewMarketplaceRepository returns a new MarketplaceRepository implementation.
func NewMarketplaceRepository(db *gorm.DB) MarketplaceRepository {
	return &marketplaceRepository{newGormRepository[models.Marketplace](db, "Marketplace")}
}

func (r *marketplaceRepository) ListByCommunity(ctx context.Context, communityID uint, includeInactive bool) ([]models.Marketplace, error) {
	var marketplaces []models.Marketplace
	q := r.db.WithContext(ctx).Where("community_id = ?", communityID)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	if err := q.Order("name ASC").Find(&marketplaces).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return marketplaces, nil
}

// Delete deactivates a single marketplace. It is no longer tied to a community cascade.
func (r *marketplaceRepository) Delete(ctx context.Context, id uint) error {
	return r.Update(ctx, id, map[string]interface{}{"active": false, "suspended_with_community": false})
}

func (r *marketplaceRepository) Restore(ctx context.Context, id uint) error {
	return r.Update(ctx, id, map[string]interface{}{"active": true, "suspended_with_community": false})
}
