package services

import "github.com/diaryhub/api-go/models"

// The predicates below decide every read and write in the core. They have no
// side effects; callers turn a false result into a Forbidden or
// Unauthenticated failure before touching the store.

// CanRead reports whether actor may see the diary and its comments.
func CanRead(actor Actor, diary *models.Diary) bool {
	return diary.IsPublic || actor.is(diary.UserID)
}

// CanWrite reports whether actor may edit, delete or re-publish the diary.
func CanWrite(actor Actor, diary *models.Diary) bool {
	return actor.is(diary.UserID)
}

// CanModerate reports whether actor may delete other people's comments on
// the diary.
func CanModerate(actor Actor, diary *models.Diary) bool {
	return actor.is(diary.UserID)
}

// CanComment requires a public diary and a signed-in actor.
func CanComment(actor Actor, diary *models.Diary) bool {
	return diary.IsPublic && !actor.IsGuest()
}

// CanReact applies to the diary itself and to any comment under it.
func CanReact(actor Actor, diary *models.Diary) bool {
	return diary.IsPublic && !actor.IsGuest()
}

func CanEditComment(actor Actor, comment *models.Comment) bool {
	return actor.is(comment.UserID)
}

func CanDeleteComment(actor Actor, comment *models.Comment, diary *models.Diary) bool {
	return actor.is(comment.UserID) || CanModerate(actor, diary)
}
