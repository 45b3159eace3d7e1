package models

import "time"

// Chatroom is a community-scoped discussion channel with persisted history.
type Chatroom struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	Name                   string     `gorm:"size:120;not null" json:"name"`
	CommunityID            uint       `gorm:"not null;index" json:"community_id"`
	Community              *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	Active                 bool       `gorm:"not null" json:"active"`
	SuspendedWithCommunity bool       `gorm:"not null" json:"-"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`

	Messages []Message        `gorm:"foreignKey:ChatroomID" json:"messages,omitempty"`
	Members  []ChatroomMember `gorm:"foreignKey:ChatroomID" json:"members,omitempty"`
}

// TableName specifies the table name for GORM.
func (Chatroom) TableName() string {
	return "chatrooms"
}

// ChatroomMember tracks user participation in chatrooms.
type ChatroomMember struct {
	ChatroomID uint      `gorm:"primaryKey;autoIncrement:false" json:"chatroom_id"`
	UserID     uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	JoinedAt   time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// TableName specifies the table name for GORM.
func (ChatroomMember) TableName() string {
	return "chatroom_members"
}

// Message represents a chat message
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	SentAt     time.Time `gorm:"not null;index" json:"sent_at"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	Sender     *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ChatroomID uint      `gorm:"not null;index" json:"chatroom_id"`
}

// TableName specifies the table name for GORM.
func (Message) TableName() string {
	return "messages"
}
