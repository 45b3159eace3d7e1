package seed

import (
	"testing"

	"townsquare/internal/models"
	"townsquare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_DryRunAssignsSyntheticIDs(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, RandomSeed: 9})

	u1, err := f.CreateUser()
	require.NoError(t, err)
	u2, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, u1.ID)
	assert.Greater(t, u2.ID, u1.ID)

	c, err := f.CreateCommunity(u1)
	require.NoError(t, err)
	assert.Equal(t, u1.ID, c.CreatorID)
	assert.NoError(t, f.JoinCommunity(c, u2))
}

func TestFactory_ProductDefaults(t *testing.T) {
	db := testutil.NewTestDB(t)
	f := NewFactory(db, Options{RandomSeed: 11})

	seller, err := f.CreateUser()
	require.NoError(t, err)
	community, err := f.CreateCommunity(seller)
	require.NoError(t, err)
	mp, err := f.CreateMarketplace(community, "Stalls")
	require.NoError(t, err)

	product, err := f.CreateProduct(mp, seller)
	require.NoError(t, err)
	assert.True(t, product.Active)
	assert.Nil(t, product.BuyerID)
	assert.True(t, product.Price.IsPositive())
	assert.Equal(t, product.Price.String(), product.Price.Round(2).String())

	var stored models.Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, seller.ID, stored.SellerID)
}

func TestSanitizeHandle(t *testing.T) {
	assert.Equal(t, "jane_doe42", sanitizeHandle("jane_doe42"))
	assert.Equal(t, "janedoe", sanitizeHandle("jane.doe"))
	assert.Equal(t, "user", sanitizeHandle("!!"))
	assert.Len(t, sanitizeHandle("abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"), 40)
}
