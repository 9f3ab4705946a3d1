package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/huxiangculture/platform/internal/dto"
	"github.com/huxiangculture/platform/internal/model"
	"github.com/huxiangculture/platform/internal/repository"
	"github.com/huxiangculture/platform/pkg/apperror"
)

const (
	summaryLength = 100
	previewLength = 150
)

type PostService interface {
	ListPosts(ctx context.Context, query dto.ListQuery) ([]dto.PostSummary, dto.Pagination, error)
	GetPost(ctx context.Context, id uint, callerID *uint) (*dto.PostDetail, error)
	CreatePost(ctx context.Context, authorID uint, req dto.CreatePostRequest) (*model.CommunityPost, error)
	UpdatePost(ctx context.Context, id, callerID uint, req dto.UpdatePostRequest) (*model.CommunityPost, error)
	DeletePost(ctx context.Context, id, callerID uint) error
	ToggleLike(ctx context.Context, postID, callerID uint) (*dto.ToggleLikeResponse, error)
	RelatedPosts(ctx context.Context, postID uint, limit int) ([]dto.PostSummary, error)
}

type postService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	redisClient *redis.Client
	cooldown    time.Duration
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, userRepo repository.UserRepository, redisClient *redis.Client, cooldown time.Duration) PostService {
	return &postService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		redisClient: redisClient,
		cooldown:    cooldown,
	}
}

func (s *postService) ListPosts(ctx context.Context, query dto.ListQuery) ([]dto.PostSummary, dto.Pagination, error) {
	query.Normalize()

	posts, total, err := s.postRepo.FindPublished(ctx, query.Category, query.SortBy, query.Offset(), query.Limit)
	if err != nil {
		return nil, dto.Pagination{}, err
	}

	authors := newAuthorCache(s.userRepo)
	summaries := make([]dto.PostSummary, 0, len(posts))
	for _, post := range posts {
		summaries = append(summaries, dto.PostSummary{
			ID:           post.ID,
			Title:        post.Title,
			Summary:      truncate(post.Content, summaryLength),
			Author:       authors.info(ctx, post.AuthorID),
			Category:     post.Category,
			ViewCount:    post.ViewCount,
			LikeCount:    post.LikeCount,
			CommentCount: post.CommentCount,
			CreatedAt:    post.CreatedAt.Format(time.RFC3339),
		})
	}

	return summaries, dto.NewPagination(query.Page, query.Limit, total), nil
}

func (s *postService) GetPost(ctx context.Context, id uint, callerID *uint) (*dto.PostDetail, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if post.Status != model.PostStatusPublished {
		if callerID == nil || *callerID != post.AuthorID {
			return nil, fmt.Errorf("no permission to view this post: %w", apperror.ErrForbidden)
		}
	}

	// Every successful read counts, including the author's own.
	if err := s.postRepo.IncrementViewCount(ctx, id); err != nil {
		return nil, err
	}
	post.ViewCount++

	likedByCurrentUser := false
	if callerID != nil {
		likedByCurrentUser, err = s.postRepo.IsLikedBy(ctx, *callerID, id)
		if err != nil {
			return nil, err
		}
	}

	authors := newAuthorCache(s.userRepo)
	comments, err := s.buildCommentTree(ctx, id, authors)
	if err != nil {
		return nil, err
	}

	detail := &dto.PostDetail{
		ID:                 post.ID,
		Title:              post.Title,
		Content:            post.Content,
		Category:           post.Category,
		ViewCount:          post.ViewCount,
		LikeCount:          post.LikeCount,
		CommentCount:       post.CommentCount,
		CreatedAt:          post.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          post.UpdatedAt.Format(time.RFC3339),
		LikedByCurrentUser: likedByCurrentUser,
		Comments:           comments,
	}

	info := authors.info(ctx, post.AuthorID)
	detail.Author = dto.PostAuthor{ID: info.ID, Username: info.Username, Avatar: info.Avatar}
	if author, err := s.userRepo.FindByID(ctx, post.AuthorID); err == nil {
		detail.Author.Bio = author.Bio
	}

	return detail, nil
}

func (s *postService) CreatePost(ctx context.Context, authorID uint, req dto.CreatePostRequest) (*model.CommunityPost, error) {
	if req.Title == "" || req.Content == "" || req.Category == "" {
		return nil, fmt.Errorf("title, content and category are required: %w", apperror.ErrValidation)
	}

	allowed, err := s.checkPostCooldown(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("you are posting too fast: %w", apperror.ErrRateLimitExceeded)
	}

	post := &model.CommunityPost{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: authorID,
		Category: req.Category,
		Status:   model.PostStatusPublished,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, id, callerID uint, req dto.UpdatePostRequest) (*model.CommunityPost, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	caller, err := s.userRepo.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !canModify(post.AuthorID, caller) {
		return nil, fmt.Errorf("no permission to edit this post: %w", apperror.ErrForbidden)
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Category != nil {
		post.Category = *req.Category
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, id, callerID uint) error {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("post not found: %w", apperror.ErrNotFound)
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

	if !canModify(post.AuthorID, caller) {
		return fmt.Errorf("no permission to delete this post: %w", apperror.ErrForbidden)
	}

	return s.postRepo.DeleteWithComments(ctx, id)
}

func (s *postService) ToggleLike(ctx context.Context, postID, callerID uint) (*dto.ToggleLikeResponse, error) {
	liked, likeCount, err := s.postRepo.ToggleLike(ctx, callerID, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	return &dto.ToggleLikeResponse{Liked: liked, LikeCount: likeCount}, nil
}

func (s *postService) RelatedPosts(ctx context.Context, postID uint, limit int) ([]dto.PostSummary, error) {
	if limit < 1 {
		limit = 2
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	related, err := s.postRepo.FindRelated(ctx, postID, post.Category, limit)
	if err != nil {
		return nil, err
	}

	authors := newAuthorCache(s.userRepo)
	summaries := make([]dto.PostSummary, 0, len(related))
	for _, p := range related {
		summaries = append(summaries, dto.PostSummary{
			ID:           p.ID,
			Title:        p.Title,
			Content:      truncate(p.Content, previewLength),
			Author:       authors.info(ctx, p.AuthorID),
			Category:     p.Category,
			ViewCount:    p.ViewCount,
			LikeCount:    p.LikeCount,
			CommentCount: p.CommentCount,
			CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		})
	}

	return summaries, nil
}

func (s *postService) buildCommentTree(ctx context.Context, postID uint, authors *authorCache) ([]dto.CommentDetail, error) {
	topLevel, err := s.commentRepo.FindTopLevelByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	parentIDs := make([]uint, 0, len(topLevel))
	for _, comment := range topLevel {
		parentIDs = append(parentIDs, comment.ID)
	}

	replies, err := s.commentRepo.FindReplies(ctx, parentIDs)
	if err != nil {
		return nil, err
	}

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

	return result, nil
}

// checkPostCooldown enforces a per-user cooldown on post creation via redis
// SetNX. Without redis the limiter is disabled.
func (s *postService) checkPostCooldown(ctx context.Context, userID uint) (bool, error) {
	if s.redisClient == nil || s.cooldown <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:user:%d:create_post", userID)
	wasSet, err := s.redisClient.SetNX(ctx, key, "locked", s.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
