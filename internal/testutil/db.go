// Package testutil provides shared test databases and fixtures for backend tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"townsquare/internal/database"
	"townsquare/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Uint64

// NewTestDB opens a migrated in-memory SQLite database private to the test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	// Shared-cache name keeps every pooled connection on the same in-memory DB.
	dsn := fmt.Sprintf("file:townsquare_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts an active user with a unique username.
func CreateUser(t testing.TB, db *gorm.DB, username string, age int) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Age:      age,
		Active:   true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateCommunity inserts an active community and its creator membership.
func CreateCommunity(t testing.TB, db *gorm.DB, creator *models.User, name string) *models.Community {
	t.Helper()
	community := &models.Community{
		Name:        name,
		Description: name + " description",
		CreatorID:   creator.ID,
		Active:      true,
	}
	require.NoError(t, db.Create(community).Error)
	AddCommunityMember(t, db, community.ID, creator.ID)
	return community
}

// AddCommunityMember inserts a membership row.
func AddCommunityMember(t testing.TB, db *gorm.DB, communityID, userID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.CommunityMember{CommunityID: communityID, UserID: userID}).Error)
}

// CreateMarketplace inserts an active marketplace.
func CreateMarketplace(t testing.TB, db *gorm.DB, communityID uint, name string) *models.Marketplace {
	t.Helper()
	mp := &models.Marketplace{Name: name, CommunityID: communityID, Active: true}
	require.NoError(t, db.Create(mp).Error)
	return mp
}

// CreateChatroom inserts an active chatroom.
func CreateChatroom(t testing.TB, db *gorm.DB, communityID uint, name string) *models.Chatroom {
	t.Helper()
	room := &models.Chatroom{Name: name, CommunityID: communityID, Active: true}
	require.NoError(t, db.Create(room).Error)
	return room
}

// AddChatroomMember inserts a chatroom membership row.
func AddChatroomMember(t testing.TB, db *gorm.DB, chatroomID, userID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.ChatroomMember{ChatroomID: chatroomID, UserID: userID}).Error)
}

// CreateProduct inserts an active, unsold product.
func CreateProduct(t testing.TB, db *gorm.DB, marketplaceID, sellerID uint, name, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          name,
		Description:   name + " description",
		Price:         decimal.RequireFromString(price),
		SellerID:      sellerID,
		MarketplaceID: marketplaceID,
		Active:        true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
