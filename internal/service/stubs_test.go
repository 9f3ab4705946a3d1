package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/huxiangculture/platform/internal/model"
)

// Hand-rolled in-memory repositories. Timestamps are derived from the
// assigned id so creation order and created_at order always agree.

type userRepoStub struct {
	users     map[uint]*model.User
	nextID    uint
	createErr error
	findErr   error
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: map[uint]*model.User{}}
}

func (s *userRepoStub) Create(_ context.Context, user *model.User) error {
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = stubTime(user.ID)
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *userRepoStub) CreateWithAvatar(ctx context.Context, user *model.User, avatarURL func(id uint) string) error {
	if s.createErr != nil {
		return s.createErr
	}
	if err := s.Create(ctx, user); err != nil {
		return err
	}
	user.Avatar = avatarURL(user.ID)
	s.users[user.ID].Avatar = user.Avatar
	return nil
}

func (s *userRepoStub) FindByID(_ context.Context, id uint) (*model.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *userRepoStub) FindByUsernameOrEmail(_ context.Context, identifier string) (*model.User, error) {
	for _, user := range s.users {
		if user.Username == identifier || user.Email == identifier {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *userRepoStub) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, user := range s.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *userRepoStub) UsernameTaken(_ context.Context, username string, excludeID uint) (bool, error) {
	for _, user := range s.users {
		if user.ID != excludeID && user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *userRepoStub) Update(_ context.Context, user *model.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

type postRepoStub struct {
	posts   map[uint]*model.CommunityPost
	likes   map[[2]uint]bool
	nextID  uint
	findErr error
}

func newPostRepoStub() *postRepoStub {
	return &postRepoStub{
		posts: map[uint]*model.CommunityPost{},
		likes: map[[2]uint]bool{},
	}
}

func (s *postRepoStub) Create(_ context.Context, post *model.CommunityPost) error {
	s.nextID++
	post.ID = s.nextID
	post.CreatedAt = stubTime(post.ID)
	post.UpdatedAt = post.CreatedAt
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *postRepoStub) FindByID(_ context.Context, id uint) (*model.CommunityPost, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	post, ok := s.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *post
	return &cp, nil
}

func (s *postRepoStub) FindPublished(_ context.Context, category, sortBy string, offset, limit int) ([]*model.CommunityPost, int64, error) {
	var matched []*model.CommunityPost
	for _, post := range s.posts {
		if post.Status != model.PostStatusPublished {
			continue
		}
		if category != "" && post.Category != category {
			continue
		}
		cp := *post
		matched = append(matched, &cp)
	}

	switch sortBy {
	case "popular":
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].LikeCount+matched[i].CommentCount > matched[j].LikeCount+matched[j].CommentCount
		})
	case "comments":
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CommentCount > matched[j].CommentCount
		})
	default:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *postRepoStub) FindRelated(_ context.Context, postID uint, category string, limit int) ([]*model.CommunityPost, error) {
	var matched []*model.CommunityPost
	for _, post := range s.posts {
		if post.ID == postID || post.Status != model.PostStatusPublished || post.Category != category {
			continue
		}
		cp := *post
		matched = append(matched, &cp)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].LikeCount+matched[i].CommentCount > matched[j].LikeCount+matched[j].CommentCount
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *postRepoStub) Update(_ context.Context, post *model.CommunityPost) error {
	if _, ok := s.posts[post.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *postRepoStub) DeleteWithComments(_ context.Context, id uint) error {
	delete(s.posts, id)
	for key := range s.likes {
		if key[1] == id {
			delete(s.likes, key)
		}
	}
	return nil
}

func (s *postRepoStub) IncrementViewCount(_ context.Context, id uint) error {
	post, ok := s.posts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	post.ViewCount++
	return nil
}

func (s *postRepoStub) ToggleLike(_ context.Context, userID, postID uint) (bool, int, error) {
	post, ok := s.posts[postID]
	if !ok {
		return false, 0, gorm.ErrRecordNotFound
	}

	key := [2]uint{userID, postID}
	if s.likes[key] {
		delete(s.likes, key)
		if post.LikeCount > 0 {
			post.LikeCount--
		}
		return false, post.LikeCount, nil
	}

	s.likes[key] = true
	post.LikeCount++
	return true, post.LikeCount, nil
}

func (s *postRepoStub) IsLikedBy(_ context.Context, userID, postID uint) (bool, error) {
	return s.likes[[2]uint{userID, postID}], nil
}

type commentRepoStub struct {
	comments map[uint]*model.Comment
	posts    *postRepoStub
	nextID   uint
}

func newCommentRepoStub(posts *postRepoStub) *commentRepoStub {
	return &commentRepoStub{
		comments: map[uint]*model.Comment{},
		posts:    posts,
	}
}

func (s *commentRepoStub) CreateWithCount(_ context.Context, comment *model.Comment) error {
	s.nextID++
	comment.ID = s.nextID
	comment.CreatedAt = stubTime(comment.ID)
	cp := *comment
	s.comments[comment.ID] = &cp
	if post, ok := s.posts.posts[comment.PostID]; ok {
		post.CommentCount++
	}
	return nil
}

func (s *commentRepoStub) FindByID(_ context.Context, id uint) (*model.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *comment
	return &cp, nil
}

func (s *commentRepoStub) FindTopLevelByPost(_ context.Context, postID uint) ([]*model.Comment, error) {
	var matched []*model.Comment
	for _, comment := range s.comments {
		if comment.PostID == postID && comment.ParentID == nil {
			cp := *comment
			matched = append(matched, &cp)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *commentRepoStub) FindReplies(_ context.Context, parentIDs []uint) ([]*model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	wanted := map[uint]bool{}
	for _, id := range parentIDs {
		wanted[id] = true
	}
	var matched []*model.Comment
	for _, comment := range s.comments {
		if comment.ParentID != nil && wanted[*comment.ParentID] {
			cp := *comment
			matched = append(matched, &cp)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *commentRepoStub) DeleteWithReplies(_ context.Context, comment *model.Comment) error {
	removed := 1
	for id, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == comment.ID {
			delete(s.comments, id)
			removed++
		}
	}
	delete(s.comments, comment.ID)

	if post, ok := s.posts.posts[comment.PostID]; ok {
		post.CommentCount -= removed
		if post.CommentCount < 0 {
			post.CommentCount = 0
		}
	}
	return nil
}

type resourceRepoStub struct {
	resources map[uint]*model.CulturalResource
	nextID    uint
	findErr   error
}

func newResourceRepoStub() *resourceRepoStub {
	return &resourceRepoStub{resources: map[uint]*model.CulturalResource{}}
}

func (s *resourceRepoStub) Create(_ context.Context, resource *model.CulturalResource) error {
	s.nextID++
	resource.ID = s.nextID
	resource.CreatedAt = stubTime(resource.ID)
	resource.UpdatedAt = resource.CreatedAt
	cp := *resource
	s.resources[resource.ID] = &cp
	return nil
}

func (s *resourceRepoStub) FindByID(_ context.Context, id uint) (*model.CulturalResource, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	resource, ok := s.resources[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *resource
	return &cp, nil
}

func (s *resourceRepoStub) FindAll(_ context.Context, category, search string, offset, limit int) ([]*model.CulturalResource, int64, error) {
	// Case-insensitive substring match on title or description, mirroring
	// the ILIKE filter in the real repository.
	needle := strings.ToLower(search)
	var matched []*model.CulturalResource
	for _, resource := range s.resources {
		if category != "" && resource.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(resource.Title), needle) &&
			!strings.Contains(strings.ToLower(resource.Description), needle) {
			continue
		}
		cp := *resource
		matched = append(matched, &cp)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *resourceRepoStub) Delete(_ context.Context, id uint) error {
	delete(s.resources, id)
	return nil
}

func (s *resourceRepoStub) IncrementViewCount(_ context.Context, id uint) error {
	resource, ok := s.resources[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	resource.ViewCount++
	return nil
}

func (s *resourceRepoStub) IncrementLikeCount(_ context.Context, id uint) (int, error) {
	resource, ok := s.resources[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	resource.LikeCount++
	return resource.LikeCount, nil
}

type storageStub struct {
	uploads []string
}

func (s *storageStub) UploadImage(_ context.Context, _ io.Reader, folder, fileName string) (string, error) {
	url := "/static/" + folder + "/" + fileName
	s.uploads = append(s.uploads, url)
	return url, nil
}

func (s *storageStub) DeleteImage(context.Context, string) error {
	return nil
}

func stubTime(id uint) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute)
}
