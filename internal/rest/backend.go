package rest

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"
)

var (
	// ErrNotFound signals a fetch-by-id or lookup miss.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidDocument signals a document-store structural validation
	// failure; resources map it to 400 alongside ordinary input errors.
	ErrInvalidDocument = errors.New("document failed collection validation")
)

// Filters is an equality filter map taken from validated query parameters.
type Filters map[string]interface{}

// Backend abstracts object storage for a resource. Relational and document
// implementations share this contract; concrete resources compose a
// backend instead of inheriting verb implementations.
type Backend[T any] interface {
	FetchOne(ctx context.Context, id string) (*T, error)
	FetchMany(ctx context.Context, filters Filters, page PageParams) ([]T, int64, error)
	Create(ctx context.Context, obj *T) error
	Update(ctx context.Context, id string, obj *T) error
	Delete(ctx context.Context, id string) error
}

// GormBackend serves resources persisted through gorm.
type GormBackend[T any] struct {
	db *gorm.DB
}

func NewGormBackend[T any](db *gorm.DB) *GormBackend[T] {
	return &GormBackend[T]{db: db}
}

// DB exposes the underlying handle for resource-level query overrides.
func (b *GormBackend[T]) DB() *gorm.DB {
	return b.db
}

func (b *GormBackend[T]) FetchOne(ctx context.Context, id string) (*T, error) {
	pk, err := parsePK(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var obj T
	if err := b.db.WithContext(ctx).First(&obj, pk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &obj, nil
}

func (b *GormBackend[T]) FetchMany(ctx context.Context, filters Filters, page PageParams) ([]T, int64, error) {
	query := b.db.WithContext(ctx).Model(new(T))
	if len(filters) > 0 {
		query = query.Where(map[string]interface{}(filters))
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	paging := ComputePaging(total, page)

	var items []T
	err := query.Session(&gorm.Session{}).
		Limit(paging.PageSize).
		Offset(paging.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (b *GormBackend[T]) Create(ctx context.Context, obj *T) error {
	return b.db.WithContext(ctx).Create(obj).Error
}

func (b *GormBackend[T]) Update(ctx context.Context, id string, obj *T) error {
	if _, err := parsePK(id); err != nil {
		return ErrNotFound
	}
	return b.db.WithContext(ctx).Save(obj).Error
}

func (b *GormBackend[T]) Delete(ctx context.Context, id string) error {
	pk, err := parsePK(id)
	if err != nil {
		return ErrNotFound
	}

	result := b.db.WithContext(ctx).Delete(new(T), pk)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func parsePK(id string) (uint, error) {
	pk, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(pk), nil
}
