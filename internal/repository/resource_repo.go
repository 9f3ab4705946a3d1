package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/huxiangculture/platform/internal/model"
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *model.CulturalResource) error
	FindByID(ctx context.Context, id uint) (*model.CulturalResource, error)
	FindAll(ctx context.Context, category, search string, offset, limit int) ([]*model.CulturalResource, int64, error)
	Delete(ctx context.Context, id uint) error
	IncrementViewCount(ctx context.Context, id uint) error
	IncrementLikeCount(ctx context.Context, id uint) (int, error)
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, resource *model.CulturalResource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *resourceRepository) FindByID(ctx context.Context, id uint) (*model.CulturalResource, error) {
	var resource model.CulturalResource
	if err := r.db.WithContext(ctx).First(&resource, id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepository) FindAll(ctx context.Context, category, search string, offset, limit int) ([]*model.CulturalResource, int64, error) {
	var resources []*model.CulturalResource
	var total int64

	query := r.db.WithContext(ctx).Model(&model.CulturalResource{})

	if category != "" {
		query = query.Where("category = ?", category)
	}

	if search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("priority DESC").Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&resources).Error; err != nil {
		return nil, 0, err
	}

	return resources, total, nil
}

func (r *resourceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.CulturalResource{}, id).Error
}

// IncrementViewCount bumps the counter in a single UPDATE so concurrent
// reads never lose an increment.
func (r *resourceRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&model.CulturalResource{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *resourceRepository) IncrementLikeCount(ctx context.Context, id uint) (int, error) {
	err := r.db.WithContext(ctx).
		Model(&model.CulturalResource{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	if err != nil {
		return 0, err
	}

	var likeCount int
	err = r.db.WithContext(ctx).
		Model(&model.CulturalResource{}).
		Where("id = ?", id).
		Pluck("like_count", &likeCount).Error
	return likeCount, err
}
