package service

import (
	"context"
	"log/slog"
	"time"

	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/observability"
	"townsquare/internal/repository"

	"github.com/shopspring/decimal"
)

// ShoppingCartService manages products reserved by a buyer and their payment.
type ShoppingCartService struct {
	productRepo repository.ProductRepository
	now         func() time.Time
}

// Cart is the buyer's reserved, unpaid products and their total.
type Cart struct {
	Items []models.Product `json:"items"`
	Count int              `json:"count"`
	Total decimal.Decimal  `json:"total"`
}

// Receipt describes a completed payment.
type Receipt struct {
	BuyerID uint             `json:"buyer_id"`
	Items   []models.Product `json:"items"`
	Count   int              `json:"count"`
	Total   decimal.Decimal  `json:"total"`
	PaidAt  time.Time        `json:"paid_at"`
}

// NewShoppingCartService returns a new ShoppingCartService.
func NewShoppingCartService(productRepo repository.ProductRepository) *ShoppingCartService {
	return &ShoppingCartService{productRepo: productRepo, now: time.Now}
}

// CartTotal sums product prices at two decimal places.
func CartTotal(items []models.Product) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total.Round(2)
}

// GetCart returns the buyer's cart with its total.
func (s *ShoppingCartService) GetCart(ctx context.Context, buyerID uint) (*Cart, error) {
	items, err := s.productRepo.ListCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return &Cart{Items: items, Count: len(items), Total: CartTotal(items)}, nil
}

// RemoveFromCart returns a reserved product to its marketplace. Only its buyer may do this.
func (s *ShoppingCartService) RemoveFromCart(ctx context.Context, productID, callerID uint) error {
	product, err := s.productRepo.Get(ctx, productID)
	if err != nil {
		return err
	}
	if product.BuyerID == nil {
		return models.NewValidationError("Product is not in a cart")
	}
	if *product.BuyerID != callerID {
		return denied(GateOwner, "Product is not in your cart")
	}
	if !product.Active {
		return models.NewValidationError("Product has already been paid for")
	}

	cleared, err := s.productRepo.ClearBuyer(ctx, productID, callerID)
	if err != nil {
		return err
	}
	if !cleared {
		return models.NewConflictError("Cart changed; reload and try again")
	}
	return nil
}

// Pay finalizes every product in the buyer's cart in one transaction.
func (s *ShoppingCartService) Pay(ctx context.Context, buyerID uint) (receipt *Receipt, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ShoppingCartService", "Pay",
		observability.IDAttr("buyer", buyerID))
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		observability.CartPayments.WithLabelValues(result).Inc()
		observability.EndSpan(span, err)
	}()

	items, err := s.productRepo.PayCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, models.NewValidationError("Your cart is empty")
	}

	receipt = &Receipt{
		BuyerID: buyerID,
		Items:   items,
		Count:   len(items),
		Total:   CartTotal(items),
		PaidAt:  s.now().UTC(),
	}
	observability.CartItemsPaid.Add(float64(receipt.Count))
	middleware.Logger.InfoContext(ctx, "cart paid",
		slog.Uint64("buyer_id", uint64(buyerID)),
		slog.Int("items", receipt.Count),
		slog.String("total", receipt.Total.StringFixed(2)),
	)
	return receipt, nil
}
