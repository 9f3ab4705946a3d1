package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huxiangculture/platform/internal/dto"
	"github.com/huxiangculture/platform/internal/service"
	"github.com/huxiangculture/platform/pkg/apperror"
	"github.com/huxiangculture/platform/pkg/response"
	"github.com/huxiangculture/platform/pkg/validator"
)

type AuthHandler struct {
	authService    service.AuthService
	maxUploadBytes int64
}

func NewAuthHandler(authService service.AuthService, maxUploadBytes int64) *AuthHandler {
	return &AuthHandler{authService: authService, maxUploadBytes: maxUploadBytes}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrValidation))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "registration successful", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrValidation))
		return
	}

	auth, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, auth)
}

// Logout is a no-op: tokens are stateless and simply expire. The endpoint
// exists so clients have a uniform call to clear their session against.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Message(c, "logged out")
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, profile)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrValidation))
		return
	}

	if err := h.authService.UpdateProfile(c.Request.Context(), userID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, "profile updated")
}

func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, fmt.Errorf("avatar file is required: %w", apperror.ErrValidation))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer file.Close()

	url, err := h.authService.UploadAvatar(c.Request.Context(), userID, file, fileHeader.Filename)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"avatar": url})
}
