package service

import (
	"context"
	"errors"
	"testing"

	"townsquare/internal/models"
	"townsquare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getFn           func(context.Context, uint) (*models.User, error)
	addFn           func(context.Context, *models.User) error
	updateFn        func(context.Context, uint, map[string]interface{}) error
	deleteFn        func(context.Context, uint) error
	getByUsernameFn func(context.Context, string) (*models.User, error)
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.getFn(ctx, id)
}
func (s *userRepoStub) Add(ctx context.Context, u *models.User) error { return s.addFn(ctx, u) }
func (s *userRepoStub) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.updateFn(ctx, id, fields)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *userRepoStub) Find(context.Context, string, ...interface{}) ([]models.User, error) {
	return nil, nil
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user", Age: 30, Active: true}, nil
		},
		addFn:    func(context.Context, *models.User) error { return nil },
		updateFn: func(context.Context, uint, map[string]interface{}) error { return nil },
		deleteFn: func(context.Context, uint) error { return nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", nil)
		},
		listFn: func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

type productRepoStub struct {
	getFn         func(context.Context, uint) (*models.Product, error)
	listCartFn    func(context.Context, uint) ([]models.Product, error)
	assignBuyerFn func(context.Context, uint, uint) (bool, error)
	clearBuyerFn  func(context.Context, uint, uint) (bool, error)
	payCartFn     func(context.Context, uint) ([]models.Product, error)
}

var _ repository.ProductRepository = (*productRepoStub)(nil)

func (s *productRepoStub) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.getFn(ctx, id)
}
func (s *productRepoStub) Add(context.Context, *models.Product) error { return nil }
func (s *productRepoStub) Update(context.Context, uint, map[string]interface{}) error {
	return nil
}
func (s *productRepoStub) Delete(context.Context, uint) error { return nil }
func (s *productRepoStub) Find(context.Context, string, ...interface{}) ([]models.Product, error) {
	return nil, nil
}
func (s *productRepoStub) ListAvailable(context.Context, uint) ([]models.Product, error) {
	return nil, nil
}
func (s *productRepoStub) ListBySeller(context.Context, uint) ([]models.Product, error) {
	return nil, nil
}
func (s *productRepoStub) ListCart(ctx context.Context, buyerID uint) ([]models.Product, error) {
	return s.listCartFn(ctx, buyerID)
}
func (s *productRepoStub) AssignBuyer(ctx context.Context, productID, buyerID uint) (bool, error) {
	return s.assignBuyerFn(ctx, productID, buyerID)
}
func (s *productRepoStub) ClearBuyer(ctx context.Context, productID, buyerID uint) (bool, error) {
	return s.clearBuyerFn(ctx, productID, buyerID)
}
func (s *productRepoStub) PayCart(ctx context.Context, buyerID uint) ([]models.Product, error) {
	return s.payCartFn(ctx, buyerID)
}

func noopProductRepo() *productRepoStub {
	return &productRepoStub{
		getFn: func(_ context.Context, id uint) (*models.Product, error) {
			return &models.Product{ID: id, Active: true}, nil
		},
		listCartFn:    func(context.Context, uint) ([]models.Product, error) { return nil, nil },
		assignBuyerFn: func(context.Context, uint, uint) (bool, error) { return true, nil },
		clearBuyerFn:  func(context.Context, uint, uint) (bool, error) { return true, nil },
		payCartFn:     func(context.Context, uint) ([]models.Product, error) { return nil, nil },
	}
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}
