package service

import (
	"context"

	"github.com/huxiangculture/platform/internal/dto"
	"github.com/huxiangculture/platform/internal/repository"
)

// authorCache memoizes author lookups so that building a comment tree or a
// post listing hits the database at most once per distinct author.
type authorCache struct {
	userRepo repository.UserRepository
	cache    map[uint]dto.AuthorInfo
}

func newAuthorCache(userRepo repository.UserRepository) *authorCache {
	return &authorCache{
		userRepo: userRepo,
		cache:    make(map[uint]dto.AuthorInfo),
	}
}

func (a *authorCache) info(ctx context.Context, authorID uint) dto.AuthorInfo {
	if info, ok := a.cache[authorID]; ok {
		return info
	}

	info := dto.AuthorInfo{
		Username: "anonymous",
		Avatar:   FallbackAvatarURL(authorID),
	}

	if user, err := a.userRepo.FindByID(ctx, authorID); err == nil {
		id := user.ID
		info.ID = &id
		info.Username = user.Username
		info.Avatar = user.Avatar
		if info.Avatar == "" {
			info.Avatar = DefaultAvatarURL(user.Username, user.ID)
		}
	}

	a.cache[authorID] = info
	return info
}
