package repository

import (
	"context"

	"townsquare/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatroomRepository defines persistence operations for chatrooms, their members and messages.
type ChatroomRepository interface {
	Repository[models.Chatroom]
	GetWithMembers(ctx context.Context, id uint) (*models.Chatroom, error)
	ListByCommunity(ctx context.Context, communityID uint, includeInactive bool) ([]models.Chatroom, error)
	Restore(ctx context.Context, id uint) error
	AddMember(ctx context.Context, chatroomID, userID uint) (bool, error)
	RemoveMember(ctx context.Context, chatroomID, userID uint) error
	IsMember(ctx context.Context, chatroomID, userID uint) (bool, error)
	MemberChatroomIDs(ctx context.Context, userID uint) (map[uint]bool, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, chatroomID, beforeID uint, limit int) ([]models.Message, error)
}

type chatroomRepository struct {
	*gormRepository[models.Chatroom]
}

// NewChatroomRepository creates a new chatroom repository
func NewChatroomRepository(db *gorm.DB) ChatroomRepository {
	return &chatroomRepository{newGormRepository[models.Chatroom](db, "Chatroom")}
}

func (r *chatroomRepository) GetWithMembers(ctx context.Context, id uint) (*models.Chatroom, error) {
	if id == 0 {
		return nil, models.NewNotFoundError("Chatroom", id)
	}
	var room models.Chatroom
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		Preload("Members.User").
		First(&room, id).Error
	if err != nil {
		return nil, translateError(err, "Chatroom", id)
	}
	return &room, nil
}

func (r *chatroomRepository) ListByCommunity(ctx context.Context, communityID uint, includeInactive bool) ([]models.Chatroom, error) {
	var rooms []models.Chatroom
	q := r.db.WithContext(ctx).Where("community_id = ?", communityID)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	if err := q.Order("name ASC").Find(&rooms).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return rooms, nil
}

// Delete deactivates a single chatroom outside any community cascade.
func (r *chatroomRepository) Delete(ctx context.Context, id uint) error {
	return r.Update(ctx, id, map[string]interface{}{"active": false, "suspended_with_community": false})
}

func (r *chatroomRepository) Restore(ctx context.Context, id uint) error {
	return r.Update(ctx, id, map[string]interface{}{"active": true, "suspended_with_community": false})
}

// AddMember is idempotent; it reports whether a new row was written.
func (r *chatroomRepository) AddMember(ctx context.Context, chatroomID, userID uint) (bool, error) {
	member := models.ChatroomMember{ChatroomID: chatroomID, UserID: userID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&member)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *chatroomRepository) RemoveMember(ctx context.Context, chatroomID, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("chatroom_id = ? AND user_id = ?", chatroomID, userID).
		Delete(&models.ChatroomMember{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *chatroomRepository) IsMember(ctx context.Context, chatroomID, userID uint) (bool, error) {
	if chatroomID == 0 || userID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ChatroomMember{}).
		Where("chatroom_id = ? AND user_id = ?", chatroomID, userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *chatroomRepository) MemberChatroomIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.ChatroomMember{}).
		Where("user_id = ?", userID).
		Pluck("chatroom_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *chatroomRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return translateError(err, "Message", nil)
	}
	return nil
}

// ListMessages returns up to limit messages, oldest first. With beforeID set
// it returns the page that ends just before that message.
func (r *chatroomRepository) ListMessages(ctx context.Context, chatroomID, beforeID uint, limit int) ([]models.Message, error) {
	q := r.db.WithContext(ctx).Where("chatroom_id = ?", chatroomID)
	if beforeID != 0 {
		var cursor models.Message
		err := r.db.WithContext(ctx).
			Select("id", "sent_at").
			Where("id = ? AND chatroom_id = ?", beforeID, chatroomID).
			First(&cursor).Error
		if err != nil {
			return nil, translateError(err, "Message", beforeID)
		}
		q = q.Where("(sent_at < ? OR (sent_at = ? AND id < ?))", cursor.SentAt, cursor.SentAt, cursor.ID)
	}

	var messages []models.Message
	err := q.Preload("Sender").
		Order("sent_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	// Fetched newest first to apply the limit; callers read chronologically.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
