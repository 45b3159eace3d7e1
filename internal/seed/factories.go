// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"townsquare/internal/middleware"
	"townsquare/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		nextID: 1000,
	}
}

func (f *Factory) create(kind string, v any, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		middleware.Logger.Debug(fmt.Sprintf("[dry-run] create %s id=%d", kind, *id))
		return nil
	}
	return f.db.Create(v).Error
}

// pastTime spreads created_at values over the configured window.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back).UTC()
}

// BuildUser constructs a user without persisting it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	handle := strings.ToLower(gofakeit.Username())
	user := &models.User{
		Username:  fmt.Sprintf("%s%d", sanitizeHandle(handle), gofakeit.Number(100, 999)),
		Email:     fmt.Sprintf("%s.%s@example.com", sanitizeHandle(handle), gofakeit.LetterN(6)),
		Age:       gofakeit.Number(models.MinRestrictedAge, 80),
		Active:    true,
		CreatedAt: f.pastTime(),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.create("user", user, &user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCommunity persists a community and its creator's membership.
func (f *Factory) CreateCommunity(creator *models.User, overrides ...func(*models.Community)) (*models.Community, error) {
	community := &models.Community{
		Name:        fmt.Sprintf("%s %s", gofakeit.City(), communitySuffixes[f.rng.Intn(len(communitySuffixes))]),
		Description: gofakeit.Sentence(12),
		CreatorID:   creator.ID,
		Active:      true,
		CreatedAt:   f.pastTime(),
	}
	for _, override := range overrides {
		override(community)
	}

	if f.opts.DryRun {
		return community, f.create("community", community, &community.ID)
	}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		return tx.Create(&models.CommunityMember{CommunityID: community.ID, UserID: creator.ID}).Error
	})
	if err != nil {
		return nil, err
	}
	return community, nil
}

// JoinCommunity adds user to community. Existing memberships are kept.
func (f *Factory) JoinCommunity(community *models.Community, user *models.User) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Where(models.CommunityMember{CommunityID: community.ID, UserID: user.ID}).
		FirstOrCreate(&models.CommunityMember{}).Error
}

// CreateMarketplace persists an active marketplace in community.
func (f *Factory) CreateMarketplace(community *models.Community, name string) (*models.Marketplace, error) {
	mp := &models.Marketplace{Name: name, CommunityID: community.ID, Active: true}
	if err := f.create("marketplace", mp, &mp.ID); err != nil {
		return nil, err
	}
	return mp, nil
}

// BuildProduct constructs a listing without persisting it.
func (f *Factory) BuildProduct(mp *models.Marketplace, seller *models.User, overrides ...func(*models.Product)) *models.Product {
	product := &models.Product{
		Name:          gofakeit.ProductName(),
		Description:   gofakeit.ProductDescription(),
		Price:         decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
		ImageRef:      fmt.Sprintf("https://picsum.photos/seed/%s/600/600", gofakeit.UUID()),
		SellerID:      seller.ID,
		MarketplaceID: mp.ID,
		Active:        true,
		CreatedAt:     f.pastTime(),
	}
	for _, override := range overrides {
		override(product)
	}
	return product
}

// CreateProduct constructs and persists a listing.
func (f *Factory) CreateProduct(mp *models.Marketplace, seller *models.User, overrides ...func(*models.Product)) (*models.Product, error) {
	product := f.BuildProduct(mp, seller, overrides...)
	if err := f.create("product", product, &product.ID); err != nil {
		return nil, err
	}
	return product, nil
}

// CreateChatroom persists an active chatroom in community.
func (f *Factory) CreateChatroom(community *models.Community, name string) (*models.Chatroom, error) {
	room := &models.Chatroom{Name: name, CommunityID: community.ID, Active: true}
	if err := f.create("chatroom", room, &room.ID); err != nil {
		return nil, err
	}
	return room, nil
}

// JoinChatroom adds user to room. Existing memberships are kept.
func (f *Factory) JoinChatroom(room *models.Chatroom, user *models.User) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Where(models.ChatroomMember{ChatroomID: room.ID, UserID: user.ID}).
		FirstOrCreate(&models.ChatroomMember{}).Error
}

// CreateMessage persists a chat message from sender in room.
func (f *Factory) CreateMessage(room *models.Chatroom, sender *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	msg := &models.Message{
		Content:    gofakeit.Sentence(gofakeit.Number(3, 16)),
		SentAt:     f.pastTime(),
		SenderID:   sender.ID,
		ChatroomID: room.ID,
	}
	for _, override := range overrides {
		override(msg)
	}
	if err := f.create("message", msg, &msg.ID); err != nil {
		return nil, err
	}
	return msg, nil
}

var communitySuffixes = []string{
	"Makers", "Gardeners", "Runners", "Book Club", "Swap Meet", "Collectors", "Cyclists", "Neighbors",
}

func sanitizeHandle(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() < 3 {
		return "user"
	}
	if b.Len() > 40 {
		return b.String()[:40]
	}
	return b.String()
}
