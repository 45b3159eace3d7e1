package database

import "townsquare/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Community{},
		&models.CommunityMember{},
		&models.Marketplace{},
		&models.Product{},
		&models.Chatroom{},
		&models.ChatroomMember{},
		&models.Message{},
	}
}
