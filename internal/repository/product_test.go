package repository

import (
	"context"
	"testing"

	"townsquare/internal/models"
	"townsquare/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_BuyAndRemove(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seller := testutil.CreateUser(t, db, "seller", 40)
	alice := testutil.CreateUser(t, db, "alice", 30)
	bob := testutil.CreateUser(t, db, "bob", 30)
	c := testutil.CreateCommunity(t, db, seller, "Market town")
	mp := testutil.CreateMarketplace(t, db, c.ID, "Stalls")
	lamp := testutil.CreateProduct(t, db, mp.ID, seller.ID, "Lamp", "19.99")

	won, err := repo.AssignBuyer(ctx, lamp.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.AssignBuyer(ctx, lamp.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, won, "a reserved product cannot be bought twice")

	available, err := repo.ListAvailable(ctx, mp.ID)
	require.NoError(t, err)
	assert.Empty(t, available)

	cleared, err := repo.ClearBuyer(ctx, lamp.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, cleared, "only the buyer can remove the product from their cart")

	cleared, err = repo.ClearBuyer(ctx, lamp.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, cleared)

	got, err := repo.Get(ctx, lamp.ID)
	require.NoError(t, err)
	assert.Nil(t, got.BuyerID)
	assert.True(t, got.Active, "removal does not touch the active flag")
	assert.True(t, decimal.RequireFromString("19.99").Equal(got.Price))
}

func TestProductRepository_PayCart(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seller := testutil.CreateUser(t, db, "seller", 40)
	alice := testutil.CreateUser(t, db, "alice", 30)
	bob := testutil.CreateUser(t, db, "bob", 30)
	c := testutil.CreateCommunity(t, db, seller, "Market town")
	mp := testutil.CreateMarketplace(t, db, c.ID, "Stalls")

	a1 := testutil.CreateProduct(t, db, mp.ID, seller.ID, "Chair", "10.50")
	a2 := testutil.CreateProduct(t, db, mp.ID, seller.ID, "Table", "20.25")
	b1 := testutil.CreateProduct(t, db, mp.ID, seller.ID, "Rug", "5.00")
	for _, p := range []*models.Product{a1, a2} {
		ok, err := repo.AssignBuyer(ctx, p.ID, alice.ID)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := repo.AssignBuyer(ctx, b1.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, ok)

	cart, err := repo.ListCart(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, cart, 2)

	paid, err := repo.PayCart(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, paid, 2)
	for _, p := range paid {
		assert.False(t, p.Active)
	}

	cart, err = repo.ListCart(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	bobCart, err := repo.ListCart(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobCart, 1, "other buyers' carts are untouched")

	got, err := repo.Get(ctx, a1.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BuyerID)
	assert.Equal(t, alice.ID, *got.BuyerID, "paid products keep their buyer")

	paid, err = repo.PayCart(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, paid)
}

func TestProductRepository_ListBySellerIncludesSold(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seller := testutil.CreateUser(t, db, "seller", 40)
	c := testutil.CreateCommunity(t, db, seller, "Market town")
	mp := testutil.CreateMarketplace(t, db, c.ID, "Stalls")
	p := testutil.CreateProduct(t, db, mp.ID, seller.ID, "Vase", "3.10")
	testutil.CreateProduct(t, db, mp.ID, seller.ID, "Bowl", "4.00")
	require.NoError(t, repo.Delete(ctx, p.ID))

	mine, err := repo.ListBySeller(ctx, seller.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	available, err := repo.ListAvailable(ctx, mp.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Bowl", available[0].Name)
	require.NotNil(t, available[0].Seller)
}
