package service

import "github.com/huxiangculture/platform/internal/model"

// canModify is the shared ownership check: the author of an entity or an
// admin may change it. Applied uniformly to post and comment update/delete.
func canModify(authorID uint, caller *model.User) bool {
	if caller == nil {
		return false
	}
	return authorID == caller.ID || caller.IsAdmin()
}
