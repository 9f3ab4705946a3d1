package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/huxiangculture/platform/internal/model"
)

type CommentRepository interface {
	CreateWithCount(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id uint) (*model.Comment, error)
	FindTopLevelByPost(ctx context.Context, postID uint) ([]*model.Comment, error)
	FindReplies(ctx context.Context, parentIDs []uint) ([]*model.Comment, error)
	DeleteWithReplies(ctx context.Context, comment *model.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// CreateWithCount inserts the comment and bumps the post's comment_count in
// the same transaction; a failure leaves both untouched.
func (r *commentRepository) CreateWithCount(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.CommunityPost{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
}

func (r *commentRepository) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindTopLevelByPost(ctx context.Context, postID uint) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) FindReplies(ctx context.Context, parentIDs []uint) ([]*model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var replies []*model.Comment
	err := r.db.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("created_at ASC").
		Find(&replies).Error
	return replies, err
}

// DeleteWithReplies removes the comment and its direct replies, then
// subtracts the removed rows from the post's comment_count, all in one
// transaction. comment_count stays the count of all comments incl. replies.
func (r *commentRepository) DeleteWithReplies(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("parent_id = ?", comment.ID).Delete(&model.Comment{})
		if res.Error != nil {
			return res.Error
		}
		removed := res.RowsAffected + 1

		if err := tx.Delete(&model.Comment{}, comment.ID).Error; err != nil {
			return err
		}

		return tx.Model(&model.CommunityPost{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("GREATEST(comment_count - ?, 0)", removed)).Error
	})
}
