package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huxiangculture/platform/internal/dto"
	"github.com/huxiangculture/platform/internal/model"
	"github.com/huxiangculture/platform/pkg/apperror"
)

type postServiceFixture struct {
	svc      PostService
	posts    *postRepoStub
	comments *commentRepoStub
	users    *userRepoStub
}

func newPostServiceFixture(t *testing.T) *postServiceFixture {
	t.Helper()

	users := newUserRepoStub()
	posts := newPostRepoStub()
	comments := newCommentRepoStub(posts)

	return &postServiceFixture{
		svc:      NewPostService(posts, comments, users, nil, 0),
		posts:    posts,
		comments: comments,
		users:    users,
	}
}

func (f *postServiceFixture) addUser(t *testing.T, username, role string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@example.com", Role: role, IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *postServiceFixture) addPost(t *testing.T, authorID uint, title, status string) *model.CommunityPost {
	t.Helper()
	post := &model.CommunityPost{
		Title:    title,
		Content:  "content of " + title,
		AuthorID: authorID,
		Category: "文化讨论",
		Status:   status,
	}
	require.NoError(t, f.posts.Create(context.Background(), post))
	return post
}

func TestListPostsOnlyPublished(t *testing.T) {
	f := newPostServiceFixture(t)
	author := f.addUser(t, "zhangsan", model.RoleUser)

	f.addPost(t, author.ID, "visible", model.PostStatusPublished)
	f.addPost(t, author.ID, "hidden draft", model.PostStatusDraft)

	posts, pagination, err := f.svc.ListPosts(context.Background(), dto.ListQuery{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "visible", posts[0].Title)
	assert.Equal(t, int64(1), pagination.Total)
	assert.Equal(t, 1, pagination.Pages)
}

func TestListPostsSummaryTruncation(t *testing.T) {
	f := newPostServiceFixture(t)
	author := f.addUser(t, "zhangsan", model.RoleUser)

	long := strings.Repeat("湘", 150)
	post := &model.CommunityPost{
		Title: "long", Content: long, AuthorID: author.ID,
		Category: "文化讨论", Status: model.PostStatusPublished,
	}
	require.NoError(t, f.posts.Create(context.Background(), post))

	posts, _, err := f.svc.ListPosts(context.Background(), dto.ListQuery{})
	require.NoError(t, err)
	require.Len(t, posts, 1)

	summary := []rune(posts[0].Summary)
	assert.Len(t, summary, 103)
	assert.True(t, strings.HasSuffix(posts[0].Summary, "..."))
	assert.Equal(t, strings.Repeat("湘", 100), string(summary[:100]))
}

func TestListPostsPaginationBeyondLastPage(t *testing.T) {
	f := newPostServiceFixture(t)
	author := f.addUser(t, "zhangsan", model.RoleUser)
	for i := 0; i < 15; i++ {
		f.addPost(t, author.ID, "post", model.PostStatusPublished)
	}

	posts, pagination, err := f.svc.ListPosts(context.Background(), dto.ListQuery{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, posts, 5)
	assert.Equal(t, 2, pagination.Pages)

	posts, pagination, err = f.svc.ListPosts(context.Background(), dto.ListQuery{Page: 5, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, int64(15), pagination.Total)
}

func TestGetPostIncrementsViews(t *testing.T) {
	f := newPostServiceFixture(t)
	author := f.addUser(t, "zhangsan", model.RoleUser)
	post := f.addPost(t, author.ID, "hello", model.PostStatusPublished)

	detail, err := f.svc.GetPost(context.Background(), post.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.ViewCount)
	assert.False(t, detail.LikedByCurrentUser)

	// The author's own read counts too.
	detail, err = f.svc.GetPost(context.Background(), post.ID, &author.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.ViewCount)
	require.NotNil(t, detail.Author.ID)
	assert.Equal(t, author.ID, *detail.Author.ID)
}

func TestGetPostDraftVisibility(t *testing.T) {
	f := newPostServiceFixture(t)
	author := f.addUser(t, "zhangsan", model.RoleUser)
	other := f.addUser(t, "lisi", model.RoleUser)
	post := f.addPost(t, author.ID, "draft", model.PostStatusDraft)

	_, err := f.svc.GetPost(context.Background(), post.ID, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.GetPost(context.Background(), post.ID, &other.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	detail, err := f.svc.GetPost(context.Background(), post.ID, &author.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", detail.Title)
}

func TestGetPostMissing(t *testing.T) {
	f := newPostServiceFixture(t)
	_, err := f.svc.GetPost(context.Background(), 99, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetPostStoreFailure(t *testing.T) {
	f := newPostServiceFixture(t)
	author := f.addUser(t, "zhangsan", model.RoleUser)
	post := f.addPost(t, author.ID, "a post", model.PostStatusPublished)

	// Only a missing row maps to not-found; other store errors pass through.
	f.posts.findErr = errors.New("driver: bad connection")
	_, err := f.svc.GetPost(context.Background(), post.ID, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorContains(t, err, "bad connection")
}

func TestCreatePost(t *testing.T) {
	f := newPostServiceFixture(t)
	author := f.addUser(t, "zhangsan", model.RoleUser)

	post, err := f.svc.CreatePost(context.Background(), author.ID, dto.CreatePostRequest{
		Title: "标题", Content: "内容", Category: "文化讨论",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusPublished, post.Status)
	assert.Equal(t, author.ID, post.AuthorID)

	_, err = f.svc.CreatePost(context.Background(), author.ID, dto.CreatePostRequest{Title: "only title"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdatePostOwnership(t *testing.T) {
	f := newPostServiceFixture(t)
	author := f.addUser(t, "zhangsan", model.RoleUser)
	other := f.addUser(t, "lisi", model.RoleUser)
	admin := f.addUser(t, "admin", model.RoleAdmin)
	post := f.addPost(t, author.ID, "original", model.PostStatusPublished)

	newTitle := "renamed"
	_, err := f.svc.UpdatePost(context.Background(), post.ID, other.ID, dto.UpdatePostRequest{Title: &newTitle})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := f.svc.UpdatePost(context.Background(), post.ID, author.ID, dto.UpdatePostRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "content of original", updated.Content)

	adminTitle := "admin renamed"
	updated, err = f.svc.UpdatePost(context.Background(), post.ID, admin.ID, dto.UpdatePostRequest{Title: &adminTitle})
	require.NoError(t, err)
	assert.Equal(t, "admin renamed", updated.Title)
}

func TestDeletePostOwnership(t *testing.T) {
	f := newPostServiceFixture(t)
	author := f.addUser(t, "zhangsan", model.RoleUser)
	other := f.addUser(t, "lisi", model.RoleUser)
	post := f.addPost(t, author.ID, "doomed", model.PostStatusPublished)

	err := f.svc.DeletePost(context.Background(), post.ID, other.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, f.svc.DeletePost(context.Background(), post.ID, author.ID))

	err = f.svc.DeletePost(context.Background(), post.ID, author.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	f := newPostServiceFixture(t)
	author := f.addUser(t, "zhangsan", model.RoleUser)
	liker := f.addUser(t, "lisi", model.RoleUser)
	post := f.addPost(t, author.ID, "likeable", model.PostStatusPublished)

	result, err := f.svc.ToggleLike(context.Background(), post.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.LikeCount)

	result, err = f.svc.ToggleLike(context.Background(), post.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Equal(t, 0, result.LikeCount)

	_, err = f.svc.ToggleLike(context.Background(), 99, liker.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRelatedPosts(t *testing.T) {
	f := newPostServiceFixture(t)
	author := f.addUser(t, "zhangsan", model.RoleUser)
	post := f.addPost(t, author.ID, "anchor", model.PostStatusPublished)

	for i := 0; i < 3; i++ {
		f.addPost(t, author.ID, "sibling", model.PostStatusPublished)
	}
	otherCategory := &model.CommunityPost{
		Title: "stranger", Content: "x", AuthorID: author.ID,
		Category: "其他", Status: model.PostStatusPublished,
	}
	require.NoError(t, f.posts.Create(context.Background(), otherCategory))

	related, err := f.svc.RelatedPosts(context.Background(), post.ID, 0)
	require.NoError(t, err)
	assert.Len(t, related, 2)
	for _, p := range related {
		assert.NotEqual(t, post.ID, p.ID)
		assert.Equal(t, "文化讨论", p.Category)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
	assert.Equal(t, "湖湘...", truncate("湖湘文化", 2))
}
