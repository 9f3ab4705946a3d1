package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/huxiangculture/platform/internal/dto"
	"github.com/huxiangculture/platform/internal/model"
	"github.com/huxiangculture/platform/internal/repository"
	"github.com/huxiangculture/platform/pkg/apperror"
)

type ResourceService interface {
	List(ctx context.Context, query dto.ListQuery) ([]dto.ResourceSummary, dto.Pagination, error)
	Get(ctx context.Context, id uint) (*dto.ResourceDetail, error)
	Like(ctx context.Context, id uint) (int, error)
	Create(ctx context.Context, req dto.CreateResourceRequest) (*model.CulturalResource, error)
	Delete(ctx context.Context, id uint) error
}

type resourceService struct {
	repo repository.ResourceRepository
}

func NewResourceService(repo repository.ResourceRepository) ResourceService {
	return &resourceService{repo: repo}
}

func (s *resourceService) List(ctx context.Context, query dto.ListQuery) ([]dto.ResourceSummary, dto.Pagination, error) {
	query.Normalize()

	resources, total, err := s.repo.FindAll(ctx, query.Category, query.Search, query.Offset(), query.Limit)
	if err != nil {
		return nil, dto.Pagination{}, err
	}

	summaries := make([]dto.ResourceSummary, 0, len(resources))
	for _, resource := range resources {
		summaries = append(summaries, buildResourceSummary(resource))
	}

	return summaries, dto.NewPagination(query.Page, query.Limit, total), nil
}

// Get returns the resource and, as an observable side effect, bumps its view
// counter on every successful read. No dedup by caller.
func (s *resourceService) Get(ctx context.Context, id uint) (*dto.ResourceDetail, error) {
	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cultural resource not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		return nil, err
	}
	resource.ViewCount++

	detail := &dto.ResourceDetail{
		ResourceSummary: buildResourceSummary(resource),
		Content:         resource.Content,
		Source:          resource.Source,
		MediaURL:        resource.MediaURL,
		UpdatedAt:       resource.UpdatedAt.Format(time.RFC3339),
	}
	return detail, nil
}

// Like is a plain applause counter: unconditional increment, no per-user
// tracking and no undo. Auth is required at the route, ownership is not.
func (s *resourceService) Like(ctx context.Context, id uint) (int, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("cultural resource not found: %w", apperror.ErrNotFound)
		}
		return 0, err
	}
	return s.repo.IncrementLikeCount(ctx, id)
}

func (s *resourceService) Create(ctx context.Context, req dto.CreateResourceRequest) (*model.CulturalResource, error) {
	if req.Title == "" || req.Content == "" || req.Type == "" || req.Category == "" {
		return nil, fmt.Errorf("title, content, type and category are required: %w", apperror.ErrValidation)
	}

	resource := &model.CulturalResource{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Type:        req.Type,
		Category:    req.Category,
		Tags:        model.JoinTags(req.Tags),
		Author:      req.Author,
		Source:      req.Source,
		CoverImage:  req.CoverImage,
		MediaURL:    req.MediaURL,
		Status:      model.ResourceStatusPublished,
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, err
	}

	return resource, nil
}

// Delete removes a catalog entry. Routing restricts this to admins; the
// catalog has no per-entry owner to check against.
func (s *resourceService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cultural resource not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

func buildResourceSummary(resource *model.CulturalResource) dto.ResourceSummary {
	return dto.ResourceSummary{
		ID:          resource.ID,
		Title:       resource.Title,
		Description: resource.Description,
		Type:        resource.Type,
		Category:    resource.Category,
		Tags:        resource.TagList(),
		Author:      resource.Author,
		CoverImage:  resource.CoverImage,
		ViewCount:   resource.ViewCount,
		LikeCount:   resource.LikeCount,
		CreatedAt:   resource.CreatedAt.Format(time.RFC3339),
	}
}
