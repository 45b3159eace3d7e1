// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"townsquare/internal/models"
	"townsquare/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository is the generic persistence contract shared by the aggregate repositories.
// Delete is a soft delete: rows are deactivated, never removed.
type Repository[T any] interface {
	Get(ctx context.Context, id uint) (*T, error)
	Add(ctx context.Context, entity *T) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	Find(ctx context.Context, query string, args ...interface{}) ([]T, error)
}

type gormRepository[T any] struct {
	db       *gorm.DB
	resource string
}

func newGormRepository[T any](db *gorm.DB, resource string) *gormRepository[T] {
	return &gormRepository[T]{db: db, resource: resource}
}

func (r *gormRepository[T]) Get(ctx context.Context, id uint) (*T, error) {
	if id == 0 {
		return nil, models.NewNotFoundError(r.resource, id)
	}
	defer observability.TrackQuery("select", r.resource)()
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, translateError(err, r.resource, id)
	}
	return &entity, nil
}

func (r *gormRepository[T]) Add(ctx context.Context, entity *T) error {
	defer observability.TrackQuery("insert", r.resource)()
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return translateError(err, r.resource, nil)
	}
	return nil
}

func (r *gormRepository[T]) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	defer observability.TrackQuery("update", r.resource)()
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translateError(res.Error, r.resource, id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(r.resource, id)
	}
	return nil
}

func (r *gormRepository[T]) Delete(ctx context.Context, id uint) error {
	return r.Update(ctx, id, map[string]interface{}{"active": false})
}

func (r *gormRepository[T]) Find(ctx context.Context, query string, args ...interface{}) ([]T, error) {
	var out []T
	if err := r.db.WithContext(ctx).Where(query, args...).Order("id ASC").Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// translateError maps driver errors to AppError kinds.
func translateError(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	if isUniqueConstraintError(err) {
		conflict := models.NewConflictError(resource + " already exists")
		conflict.Err = err
		return conflict
	}
	return models.NewInternalError(err)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
