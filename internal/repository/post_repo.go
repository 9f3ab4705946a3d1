package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/huxiangculture/platform/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.CommunityPost) error
	FindByID(ctx context.Context, id uint) (*model.CommunityPost, error)
	FindPublished(ctx context.Context, category, sortBy string, offset, limit int) ([]*model.CommunityPost, int64, error)
	FindRelated(ctx context.Context, postID uint, category string, limit int) ([]*model.CommunityPost, error)
	Update(ctx context.Context, post *model.CommunityPost) error
	DeleteWithComments(ctx context.Context, id uint) error
	IncrementViewCount(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, postID uint) (bool, int, error)
	IsLikedBy(ctx context.Context, userID, postID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.CommunityPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uint) (*model.CommunityPost, error) {
	var post model.CommunityPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindPublished(ctx context.Context, category, sortBy string, offset, limit int) ([]*model.CommunityPost, int64, error) {
	var posts []*model.CommunityPost
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.CommunityPost{}).
		Where("status = ?", model.PostStatusPublished)

	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch sortBy {
	case "popular":
		query = query.Order("(like_count + comment_count) DESC")
	case "comments":
		query = query.Order("comment_count DESC")
	default:
		query = query.Order("created_at DESC")
	}

	if err := query.Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) FindRelated(ctx context.Context, postID uint, category string, limit int) ([]*model.CommunityPost, error) {
	var posts []*model.CommunityPost
	err := r.db.WithContext(ctx).
		Where("id <> ?", postID).
		Where("status = ?", model.PostStatusPublished).
		Where("category = ?", category).
		Order("(like_count + comment_count) DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Update(ctx context.Context, post *model.CommunityPost) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// DeleteWithComments removes the post, all of its comments (every level) and
// its like rows in one transaction.
func (r *postRepository) DeleteWithComments(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.CommunityPost{}, id).Error
	})
}

func (r *postRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&model.CommunityPost{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// ToggleLike flips the (user, post) membership in the liked-by relation and
// keeps like_count equal to its cardinality. The post row is locked for the
// duration so concurrent toggles by the same user serialize instead of
// double-inserting or double-decrementing.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, int, error) {
	var liked bool
	var likeCount int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.CommunityPost
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, postID).Error; err != nil {
			return err
		}

		var existing []model.PostLike
		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			Limit(1).Find(&existing).Error; err != nil {
			return err
		}

		if len(existing) > 0 {
			if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).
				Delete(&model.PostLike{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.CommunityPost{}).
				Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("GREATEST(like_count - 1, 0)")).Error; err != nil {
				return err
			}
			liked = false
		} else {
			if err := tx.Create(&model.PostLike{UserID: userID, PostID: postID}).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.CommunityPost{}).
				Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
				return err
			}
			liked = true
		}

		return tx.Model(&model.CommunityPost{}).
			Where("id = ?", postID).
			Pluck("like_count", &likeCount).Error
	})

	return liked, likeCount, err
}

func (r *postRepository) IsLikedBy(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}
