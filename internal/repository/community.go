package repository

import (
	"context"

	"townsquare/internal/cache"
	"townsquare/internal/models"
	"townsquare/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CascadeResult reports how many child rows a community cascade changed.
type CascadeResult struct {
	Marketplaces int64
	Chatrooms    int64
}

// CommunityRepository defines persistence operations for communities and their memberships.
type CommunityRepository interface {
	Repository[models.Community]
	GetWithChildren(ctx context.Context, id uint, includeInactive bool) (*models.Community, error)
	ListActive(ctx context.Context, limit, offset int) ([]models.Community, error)
	ListByMember(ctx context.Context, userID uint) ([]models.Community, error)
	ListByCreator(ctx context.Context, userID uint) ([]models.Community, error)
	CreateWithCreator(ctx context.Context, community *models.Community) error
	AddMember(ctx context.Context, communityID, userID uint) (bool, error)
	RemoveMember(ctx context.Context, communityID, userID uint) error
	IsMember(ctx context.Context, communityID, userID uint) (bool, error)
	IsCreator(ctx context.Context, communityID, userID uint) (bool, error)
	CountMembersUnderAge(ctx context.Context, communityID uint, age int) (int64, error)
	MemberCommunityIDs(ctx context.Context, userID uint) (map[uint]bool, error)
	Deactivate(ctx context.Context, id uint) (CascadeResult, error)
	Restore(ctx context.Context, id uint) (CascadeResult, error)
}

type communityRepository struct {
	*gormRepository[models.Community]
}

// NewCommunityRepository returns a new CommunityRepository implementation.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{newGormRepository[models.Community](db, "Community")}
}

// Get serves the bare community row through the cache.
func (r *communityRepository) Get(ctx context.Context, id uint) (*models.Community, error) {
	var community models.Community
	err := cache.Aside(ctx, cache.CommunityKey(id), &community, cache.CommunityTTL, func() error {
		found, err := r.gormRepository.Get(ctx, id)
		if err != nil {
			return err
		}
		community = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if err := r.gormRepository.Update(ctx, id, fields); err != nil {
		return err
	}
	cache.InvalidateCommunity(ctx, id)
	return nil
}

// Delete routes the generic soft delete through the cascade.
func (r *communityRepository) Delete(ctx context.Context, id uint) error {
	_, err := r.Deactivate(ctx, id)
	return err
}

func (r *communityRepository) GetWithChildren(ctx context.Context, id uint, includeInactive bool) (*models.Community, error) {
	if id == 0 {
		return nil, models.NewNotFoundError("Community", id)
	}
	scope := func(db *gorm.DB) *gorm.DB {
		if !includeInactive {
			db = db.Where("active = ?", true)
		}
		return db.Order("name ASC")
	}

	var community models.Community
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Marketplaces", scope).
		Preload("Chatrooms", scope).
		First(&community, id).Error
	if err != nil {
		return nil, translateError(err, "Community", id)
	}
	return &community, nil
}

func (r *communityRepository) ListActive(ctx context.Context, limit, offset int) ([]models.Community, error) {
	var communities []models.Community
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&communities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return communities, nil
}

func (r *communityRepository) ListByMember(ctx context.Context, userID uint) ([]models.Community, error) {
	var communities []models.Community
	if err := r.db.WithContext(ctx).
		Joins("JOIN community_members cm ON cm.community_id = communities.id").
		Where("cm.user_id = ? AND communities.active = ?", userID, true).
		Order("communities.name ASC").
		Find(&communities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return communities, nil
}

// ListByCreator includes inactive communities so creators can restore them.
func (r *communityRepository) ListByCreator(ctx context.Context, userID uint) ([]models.Community, error) {
	var communities []models.Community
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&communities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return communities, nil
}

// CreateWithCreator inserts the community and the creator's membership atomically.
func (r *communityRepository) CreateWithCreator(ctx context.Context, community *models.Community) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		member := models.CommunityMember{CommunityID: community.ID, UserID: community.CreatorID}
		return tx.Create(&member).Error
	})
	return translateError(err, "Community", nil)
}

// AddMember is idempotent; it reports whether a new row was written.
func (r *communityRepository) AddMember(ctx context.Context, communityID, userID uint) (bool, error) {
	member := models.CommunityMember{CommunityID: communityID, UserID: userID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&member)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RemoveMember drops the community membership and every chatroom membership inside it.
func (r *communityRepository) RemoveMember(ctx context.Context, communityID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := tx.Model(&models.Chatroom{}).Select("id").Where("community_id = ?", communityID)
		if err := tx.Where("user_id = ? AND chatroom_id IN (?)", userID, rooms).
			Delete(&models.ChatroomMember{}).Error; err != nil {
			return err
		}
		return tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&models.CommunityMember{}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CountMembersUnderAge counts the community's members younger than age.
func (r *communityRepository) CountMembersUnderAge(ctx context.Context, communityID uint, age int) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CommunityMember{}).
		Joins("JOIN users ON users.id = community_members.user_id").
		Where("community_members.community_id = ? AND users.age < ?", communityID, age).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *communityRepository) IsMember(ctx context.Context, communityID, userID uint) (bool, error) {
	if communityID == 0 || userID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *communityRepository) IsCreator(ctx context.Context, communityID, userID uint) (bool, error) {
	if communityID == 0 || userID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Community{}).
		Where("id = ? AND creator_id = ?", communityID, userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *communityRepository) MemberCommunityIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.CommunityMember{}).
		Where("user_id = ?", userID).
		Pluck("community_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Deactivate soft-deletes the community and, in the same transaction, every active
// marketplace and chatroom it owns. Children are flagged so Restore can find them.
func (r *communityRepository) Deactivate(ctx context.Context, id uint) (CascadeResult, error) {
	defer observability.TrackQuery("cascade_deactivate", "communities")()
	var result CascadeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Community{}).Where("id = ?", id).
			Updates(map[string]interface{}{"active": false})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Community", id)
		}

		suspend := map[string]interface{}{"active": false, "suspended_with_community": true}
		res = tx.Model(&models.Marketplace{}).
			Where("community_id = ? AND active = ?", id, true).
			Updates(suspend)
		if res.Error != nil {
			return res.Error
		}
		result.Marketplaces = res.RowsAffected

		res = tx.Model(&models.Chatroom{}).
			Where("community_id = ? AND active = ?", id, true).
			Updates(suspend)
		if res.Error != nil {
			return res.Error
		}
		result.Chatrooms = res.RowsAffected
		return nil
	})
	if err != nil {
		return CascadeResult{}, translateError(err, "Community", id)
	}
	cache.InvalidateCommunity(ctx, id)
	return result, nil
}

// Restore reactivates the community and exactly the children Deactivate suspended.
func (r *communityRepository) Restore(ctx context.Context, id uint) (CascadeResult, error) {
	defer observability.TrackQuery("cascade_restore", "communities")()
	var result CascadeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Community{}).Where("id = ?", id).
			Updates(map[string]interface{}{"active": true})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Community", id)
		}

		resume := map[string]interface{}{"active": true, "suspended_with_community": false}
		res = tx.Model(&models.Marketplace{}).
			Where("community_id = ? AND suspended_with_community = ?", id, true).
			Updates(resume)
		if res.Error != nil {
			return res.Error
		}
		result.Marketplaces = res.RowsAffected

		res = tx.Model(&models.Chatroom{}).
			Where("community_id = ? AND suspended_with_community = ?", id, true).
			Updates(resume)
		if res.Error != nil {
			return res.Error
		}
		result.Chatrooms = res.RowsAffected
		return nil
	})
	if err != nil {
		return CascadeResult{}, translateError(err, "Community", id)
	}
	cache.InvalidateCommunity(ctx, id)
	return result, nil
}
