package models

import "time"

// Community is the top-level group owning marketplaces and chatrooms.
type Community struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:120;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	AgeRestricted bool      `gorm:"not null" json:"age_restricted"`
	CreatorID     uint      `gorm:"not null;index" json:"creator_id"`
	Creator       *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Active        bool      `gorm:"not null;index" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Marketplaces []Marketplace     `gorm:"foreignKey:CommunityID" json:"marketplaces,omitempty"`
	Chatrooms    []Chatroom        `gorm:"foreignKey:CommunityID" json:"chatrooms,omitempty"`
	Members      []CommunityMember `gorm:"foreignKey:CommunityID" json:"members,omitempty"`
}

// TableName specifies the table name for GORM.
func (Community) TableName() string {
	return "communities"
}

// IsCreator reports whether userID created the community.
func (c *Community) IsCreator(userID uint) bool {
	return c != nil && userID != 0 && c.CreatorID == userID
}

// CommunityMember maps users to communities. The composite key makes joins idempotent.
type CommunityMember struct {
	CommunityID uint      `gorm:"primaryKey;autoIncrement:false" json:"community_id"`
	UserID      uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// TableName specifies the table name for GORM.
func (CommunityMember) TableName() string {
	return "community_members"
}
