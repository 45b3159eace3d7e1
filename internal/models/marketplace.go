package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Marketplace is a community-scoped listing of products for sale.
type Marketplace struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:120;not null" json:"name"`
	CommunityID uint       `gorm:"not null;index" json:"community_id"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	Active      bool       `gorm:"not null" json:"active"`
	// SuspendedWithCommunity marks rows deactivated by a community delete so a
	// restore flips back only those.
	SuspendedWithCommunity bool      `gorm:"not null" json:"-"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`

	Products []Product `gorm:"foreignKey:MarketplaceID" json:"products,omitempty"`
}

// TableName specifies the table name for GORM.
func (Marketplace) TableName() string {
	return "marketplaces"
}

// Product is a sellable item. BuyerID is set while the product sits in a cart;
// Active=false means paid or withdrawn by the seller.
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:120;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
	ImageRef      string          `gorm:"size:512" json:"image_ref"`
	SellerID      uint            `gorm:"not null;index" json:"seller_id"`
	Seller        *User           `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	BuyerID       *uint           `gorm:"index" json:"buyer_id"`
	Buyer         *User           `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	MarketplaceID uint            `gorm:"not null;index" json:"marketplace_id"`
	Marketplace   *Marketplace    `gorm:"foreignKey:MarketplaceID" json:"marketplace,omitempty"`
	Active        bool            `gorm:"not null" json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Product) TableName() string {
	return "products"
}

// InCart reports whether the product is reserved by a buyer but not yet paid.
func (p *Product) InCart() bool {
	return p.BuyerID != nil && p.Active
}
