package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/huxiangculture/platform/internal/dto"
	"github.com/huxiangculture/platform/internal/service"
	"github.com/huxiangculture/platform/pkg/apperror"
	"github.com/huxiangculture/platform/pkg/response"
	"github.com/huxiangculture/platform/pkg/validator"
)

type ResourceHandler struct {
	resourceService service.ResourceService
}

func NewResourceHandler(resourceService service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService}
}

func (h *ResourceHandler) List(c *gin.Context) {
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrValidation))
		return
	}

	resources, pagination, err := h.resourceService.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, resources, pagination)
}

func (h *ResourceHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	resource, err := h.resourceService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, resource)
}

func (h *ResourceHandler) Like(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	likeCount, err := h.resourceService.Like(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"like_count": likeCount})
}

func (h *ResourceHandler) Create(c *gin.Context) {
	var req dto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrValidation))
		return
	}

	resource, err := h.resourceService.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "cultural resource created", resource)
}

func (h *ResourceHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.resourceService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, "cultural resource deleted")
}
