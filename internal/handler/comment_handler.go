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

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) List(c *gin.Context) {
	postID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	comments, count, err := h.commentService.ListComments(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"comments": comments, "count": count})
}

func (h *CommentHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	postID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrValidation))
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), postID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "comment added", comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	commentID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), commentID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, "comment deleted")
}
