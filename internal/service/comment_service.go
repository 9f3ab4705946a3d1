package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/huxiangculture/platform/internal/dto"
	"github.com/huxiangculture/platform/internal/model"
	"github.com/huxiangculture/platform/internal/repository"
	"github.com/huxiangculture/platform/pkg/apperror"
)

type CommentService interface {
	ListComments(ctx context.Context, postID uint) ([]dto.CommentDetail, int, error)
	AddComment(ctx context.Context, postID, authorID uint, req dto.CreateCommentRequest) (*dto.CommentDetail, error)
	DeleteComment(ctx context.Context, commentID, callerID uint) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, userRepo repository.UserRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

func (s *commentService) ListComments(ctx context.Context, postID uint) ([]dto.CommentDetail, int, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, 0, err
	}

	topLevel, err := s.commentRepo.FindTopLevelByPost(ctx, postID)
	if err != nil {
		return nil, 0, err
	}

	parentIDs := make([]uint, 0, len(topLevel))
	for _, comment := range topLevel {
		parentIDs = append(parentIDs, comment.ID)
	}

	replies, err := s.commentRepo.FindReplies(ctx, parentIDs)
	if err != nil {
		return nil, 0, err
	}

	authors := newAuthorCache(s.userRepo)

	repliesByParent := make(map[uint][]dto.CommentDetail)
	for _, reply := range replies {
		repliesByParent[*reply.ParentID] = append(repliesByParent[*reply.ParentID], dto.CommentDetail{
			ID:        reply.ID,
			Content:   reply.Content,
			Author:    authors.info(ctx, reply.AuthorID),
			CreatedAt: reply.CreatedAt.Format(time.RFC3339),
		})
	}

	result := make([]dto.CommentDetail, 0, len(topLevel))
	for _, comment := range topLevel {
		result = append(result, dto.CommentDetail{
			ID:        comment.ID,
			Content:   comment.Content,
			Author:    authors.info(ctx, comment.AuthorID),
			Replies:   repliesByParent[comment.ID],
			CreatedAt: comment.CreatedAt.Format(time.RFC3339),
		})
	}

	// count mirrors len(result): replies are nested, not counted separately.
	return result, len(topLevel), nil
}

func (s *commentService) AddComment(ctx context.Context, postID, authorID uint, req dto.CreateCommentRequest) (*dto.CommentDetail, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("comment content is required: %w", apperror.ErrValidation)
	}

	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.FindByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("parent comment not found: %w", apperror.ErrNotFound)
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, fmt.Errorf("parent comment not found: %w", apperror.ErrNotFound)
		}
	}

	comment := &model.Comment{
		Content:  req.Content,
		PostID:   postID,
		AuthorID: authorID,
		ParentID: req.ParentID,
	}

	if err := s.commentRepo.CreateWithCount(ctx, comment); err != nil {
		return nil, err
	}

	authors := newAuthorCache(s.userRepo)
	return &dto.CommentDetail{
		ID:        comment.ID,
		Content:   comment.Content,
		Author:    authors.info(ctx, authorID),
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *commentService) DeleteComment(ctx context.Context, commentID, callerID uint) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	caller, err := s.userRepo.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if !canModify(comment.AuthorID, caller) {
		return fmt.Errorf("no permission to delete this comment: %w", apperror.ErrForbidden)
	}

	return s.commentRepo.DeleteWithReplies(ctx, comment)
}
