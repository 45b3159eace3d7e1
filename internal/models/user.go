// Package models contains data structures for the application's domain models.
package models

import "time"

// MinRestrictedAge is the age a user must have reached to join an age-restricted community.
const MinRestrictedAge = 18

// User represents a member of the platform. Identities are issued elsewhere;
// this row holds the profile the communities reference.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Age       int       `gorm:"not null" json:"age"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
