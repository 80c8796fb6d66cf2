package models

import (
	"time"
)

const MaxDiaryTitleLength = 200

// Diary is a single diary entry. Only its owner may change it; IsPublic
// decides whether anybody else may read, comment on or react to it.
type Diary struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index:idx_diaries_author_created,priority:1" json:"authorId"`
	Owner     User      `gorm:"foreignKey:UserID" json:"-"`
	IsPublic  bool      `gorm:"not null;default:false;index:idx_diaries_public_created,priority:1" json:"isPublic"`
	Tags      TagList   `json:"tags"`
	CreatedAt time.Time `gorm:"index:idx_diaries_author_created,priority:2;index:idx_diaries_public_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *Diary) OwnedBy(userID uint) bool {
	return d.UserID == userID
}
