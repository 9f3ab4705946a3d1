package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/huxiangculture/platform/internal/dto"
	"github.com/huxiangculture/platform/internal/model"
	"github.com/huxiangculture/platform/internal/repository"
	"github.com/huxiangculture/platform/pkg/apperror"
	"github.com/huxiangculture/platform/pkg/storage"
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

var allowedAvatarExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, userID uint) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) error
	UploadAvatar(ctx context.Context, userID uint, r io.Reader, fileName string) (string, error)
}

type authService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
	secret       string
	tokenTTL     time.Duration
}

func NewAuthService(repo repository.UserRepository, imageStorage storage.ImageStorage, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:         repo,
		imageStorage: imageStorage,
		secret:       secret,
		tokenTTL:     tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	if len(req.Username) < 3 {
		return nil, fmt.Errorf("username must be at least 3 characters: %w", apperror.ErrValidation)
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, fmt.Errorf("invalid email format: %w", apperror.ErrValidation)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", apperror.ErrValidation)
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("username or email is already registered: %w", apperror.ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         model.RoleUser,
		IsActive:     true,
	}

	// The default avatar is derived from username initial + assigned id, so
	// it is filled in inside the same transaction once the id is known.
	err = s.repo.CreateWithAvatar(ctx, user, func(id uint) string {
		return DefaultAvatarURL(user.Username, id)
	})
	if err != nil {
		return nil, err
	}

	return &dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Avatar:   user.Avatar,
	}, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	identifier := req.Identifier()
	if identifier == "" || req.Password == "" {
		return nil, fmt.Errorf("username/email and password are required: %w", apperror.ErrValidation)
	}

	user, err := s.repo.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("account is disabled: %w", apperror.ErrUnauthorized)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		User: dto.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
			Avatar:   user.Avatar,
		},
	}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	return &dto.ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Bio:       user.Bio,
		Avatar:    user.Avatar,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if req.Username != nil && *req.Username != user.Username {
		if len(*req.Username) < 3 {
			return fmt.Errorf("username must be at least 3 characters: %w", apperror.ErrValidation)
		}
		taken, err := s.repo.UsernameTaken(ctx, *req.Username, userID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("username is already taken: %w", apperror.ErrConflict)
		}
		user.Username = *req.Username
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	return s.repo.Update(ctx, user)
}

func (s *authService) UploadAvatar(ctx context.Context, userID uint, r io.Reader, fileName string) (string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedAvatarExtensions[ext] {
		return "", fmt.Errorf("unsupported file format: %w", apperror.ErrValidation)
	}

	url, err := s.imageStorage.UploadImage(ctx, r, "avatars", fileName)
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	user.Avatar = url
	if err := s.repo.Update(ctx, user); err != nil {
		return "", err
	}

	return url, nil
}

func (s *authService) generateToken(user *model.User) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// DefaultAvatarURL builds the deterministic placeholder avatar from the
// username's upper-cased initial and the user id.
func DefaultAvatarURL(username string, userID uint) string {
	initial := "U"
	if username != "" {
		runes := []rune(username)
		initial = strings.ToUpper(string(runes[0]))
	}
	return fmt.Sprintf("https://picsum.photos/seed/%s%d/100", initial, userID)
}

// FallbackAvatarURL is used when the author record itself is missing.
func FallbackAvatarURL(authorID uint) string {
	return fmt.Sprintf("https://picsum.photos/seed/default%d/100", authorID)
}
