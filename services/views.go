package services

import "github.com/diaryhub/api-go/models"

// AuthorView is the public identity shown next to diaries and comments.
type AuthorView struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

func newAuthorView(u *models.User) AuthorView {
	return AuthorView{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
	}
}

type DiaryView struct {
	models.Diary
	Author AuthorView `json:"author"`
	ReactionView
	CommentCount *int64 `json:"commentCount,omitempty"`
}

func newDiaryView(d *models.Diary, reactions ReactionSet, actor Actor) DiaryView {
	if d.Tags == nil {
		d.Tags = models.TagList{}
	}
	return DiaryView{
		Diary:        *d,
		Author:       newAuthorView(&d.Owner),
		ReactionView: newReactionView(reactions, actor),
	}
}

type CommentView struct {
	models.Comment
	Author AuthorView `json:"author"`
	ReactionView
}

func newCommentView(c *models.Comment, reactions ReactionSet, actor Actor) CommentView {
	return CommentView{
		Comment:      *c,
		Author:       newAuthorView(&c.Author),
		ReactionView: newReactionView(reactions, actor),
	}
}

// ThreadView is a top-level comment with its replies, oldest reply first.
type ThreadView struct {
	CommentView
	Replies []CommentView `json:"replies"`
}
