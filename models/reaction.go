package models

import (
	"time"
)

type ReactionTarget string

const (
	ReactionTargetDiary   ReactionTarget = "diary"
	ReactionTargetComment ReactionTarget = "comment"
)

// Reaction is one user's emoji on a diary or a comment. The unique index
// keeps at most one reaction per user per target.
type Reaction struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"-"`
	TargetType ReactionTarget `gorm:"size:16;not null;uniqueIndex:idx_reactions_target_user,priority:1" json:"-"`
	TargetID   uint           `gorm:"not null;uniqueIndex:idx_reactions_target_user,priority:2" json:"-"`
	UserID     uint           `gorm:"not null;uniqueIndex:idx_reactions_target_user,priority:3" json:"user"`
	Emoji      string         `gorm:"size:16;not null" json:"emoji"`
	CreatedAt  time.Time      `json:"createdAt"`
}
