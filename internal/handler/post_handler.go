package handler

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/huxiangculture/platform/internal/dto"
	"github.com/huxiangculture/platform/internal/metrics"
	"github.com/huxiangculture/platform/internal/service"
	"github.com/huxiangculture/platform/pkg/apperror"
	"github.com/huxiangculture/platform/pkg/response"
	"github.com/huxiangculture/platform/pkg/validator"
)

type PostHandler struct {
	postService service.PostService
	cooldown    time.Duration
}

func NewPostHandler(postService service.PostService, cooldown time.Duration) *PostHandler {
	return &PostHandler{postService: postService, cooldown: cooldown}
}

func (h *PostHandler) List(c *gin.Context) {
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrValidation))
		return
	}

	posts, pagination, err := h.postService.ListPosts(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, posts, pagination)
}

func (h *PostHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	post, err := h.postService.GetPost(c.Request.Context(), id, response.GetOptionalUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, post)
}

func (h *PostHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrValidation))
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, apperror.ErrRateLimitExceeded) {
			metrics.IncRateLimit("create_post")
			c.Header("Retry-After", strconv.Itoa(int(h.cooldown.Seconds())))
		}
		response.Error(c, err)
		return
	}

	response.Created(c, "post published", post)
}

func (h *PostHandler) Update(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrValidation))
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), id, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, "post deleted")
}

func (h *PostHandler) ToggleLike(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.postService.ToggleLike(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}

func (h *PostHandler) Related(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "2"))

	posts, err := h.postService.RelatedPosts(c.Request.Context(), id, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, posts)
}
