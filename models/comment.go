package models

import (
	"time"
)

const MaxCommentLength = 1000

// Comment belongs to a diary. ParentCommentID is nil for top-level comments
// and points at a top-level comment for replies; a reply never has replies.
type Comment struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Content         string    `gorm:"size:1000;not null" json:"content"`
	DiaryID         uint      `gorm:"not null;index:idx_comments_diary_created,priority:1" json:"diaryId"`
	UserID          uint      `gorm:"not null;index" json:"authorId"`
	Author          User      `gorm:"foreignKey:UserID" json:"-"`
	ParentCommentID *uint     `gorm:"index" json:"parentComment"`
	CreatedAt       time.Time `gorm:"index:idx_comments_diary_created,priority:2" json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}
