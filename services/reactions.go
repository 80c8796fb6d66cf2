package services

import (
	"context"
	"fmt"
	"time"

	"github.com/diaryhub/api-go/models"
	"github.com/diaryhub/api-go/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Target names the diary or comment a reaction is attached to.
type Target struct {
	Kind models.ReactionTarget
	ID   uint
}

func DiaryTarget(id uint) Target {
	return Target{Kind: models.ReactionTargetDiary, ID: id}
}

func CommentTarget(id uint) Target {
	return Target{Kind: models.ReactionTargetComment, ID: id}
}

// ReactionSet is the ordered reactions held on one target.
type ReactionSet []models.Reaction

// Summary counts holders per emoji. It is derived on every read.
func (s ReactionSet) Summary() map[string]int {
	summary := make(map[string]int)
	for _, r := range s {
		summary[r.Emoji]++
	}
	return summary
}

// EmojiOf returns the emoji userID holds on the target, if any.
func (s ReactionSet) EmojiOf(userID uint) *string {
	for _, r := range s {
		if r.UserID == userID {
			emoji := r.Emoji
			return &emoji
		}
	}
	return nil
}

// Toggle returns the set after userID toggles emoji: an identical reaction is
// removed, otherwise any reaction by userID is replaced by emoji at the end.
// Applying the same toggle twice restores the original set.
func (s ReactionSet) Toggle(userID uint, emoji string, now time.Time) ReactionSet {
	out := make(ReactionSet, 0, len(s)+1)
	removed := false
	for _, r := range s {
		if r.UserID == userID && r.Emoji == emoji && !removed {
			removed = true
			continue
		}
		out = append(out, r)
	}
	if removed {
		return out
	}

	out = out[:0]
	for _, r := range s {
		if r.UserID != userID {
			out = append(out, r)
		}
	}
	return append(out, models.Reaction{UserID: userID, Emoji: emoji, CreatedAt: now})
}

// ReactionView is the shape returned after reading or toggling reactions.
type ReactionView struct {
	Reactions       ReactionSet    `json:"reactions"`
	ReactionSummary map[string]int `json:"reactionSummary"`
	UserReaction    *string        `json:"userReaction"`
}

func newReactionView(set ReactionSet, actor Actor) ReactionView {
	if set == nil {
		set = ReactionSet{}
	}
	view := ReactionView{
		Reactions:       set,
		ReactionSummary: set.Summary(),
	}
	if id, ok := actor.ID(); ok {
		view.UserReaction = set.EmojiOf(id)
	}
	return view
}

// ReactionLedger persists reaction sets for diaries and comments alike.
type ReactionLedger struct {
	DB *gorm.DB
}

func NewReactionLedger(db *gorm.DB) *ReactionLedger {
	return &ReactionLedger{DB: db}
}

func validateEmoji(emoji string) error {
	if !types.IsAllowedEmoji(emoji) {
		return invalid("Invalid emoji. Allowed: %s", types.AllowedEmojiList())
	}
	return nil
}

// Toggle applies the toggle rule for userID on target. Each user's reaction
// lives in its own row keyed by (target, user), so toggles by different
// users never overwrite each other; the upsert keeps the one-per-user
// invariant when the same user races with themselves.
func (l *ReactionLedger) Toggle(ctx context.Context, target Target, userID uint, emoji string) (ReactionSet, error) {
	if err := validateEmoji(emoji); err != nil {
		return nil, err
	}

	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("target_type = ? AND target_id = ? AND user_id = ? AND emoji = ?",
			target.Kind, target.ID, userID, emoji).
			Delete(&models.Reaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		reaction := models.Reaction{
			TargetType: target.Kind,
			TargetID:   target.ID,
			UserID:     userID,
			Emoji:      emoji,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "target_type"},
				{Name: "target_id"},
				{Name: "user_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"emoji", "created_at"}),
		}).Create(&reaction).Error
	})
	if err != nil {
		return nil, fmt.Errorf("toggle %s reaction: %w", target.Kind, err)
	}

	return l.Load(ctx, target)
}

func (l *ReactionLedger) Load(ctx context.Context, target Target) (ReactionSet, error) {
	var set ReactionSet
	err := l.DB.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", target.Kind, target.ID).
		Order("created_at ASC, id ASC").
		Find(&set).Error
	if err != nil {
		return nil, fmt.Errorf("load %s reactions: %w", target.Kind, err)
	}
	return set, nil
}

// LoadMany fetches the reaction sets of many targets of one kind in a
// single query.
func (l *ReactionLedger) LoadMany(ctx context.Context, kind models.ReactionTarget, ids []uint) (map[uint]ReactionSet, error) {
	sets := make(map[uint]ReactionSet, len(ids))
	if len(ids) == 0 {
		return sets, nil
	}

	var rows []models.Reaction
	err := l.DB.WithContext(ctx).
		Where("target_type = ? AND target_id IN ?", kind, ids).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load %s reactions: %w", kind, err)
	}
	for _, r := range rows {
		sets[r.TargetID] = append(sets[r.TargetID], r)
	}
	return sets, nil
}

// purgeReactions removes all reactions on the given targets inside tx.
func purgeReactions(tx *gorm.DB, kind models.ReactionTarget, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("target_type = ? AND target_id IN ?", kind, ids).
		Delete(&models.Reaction{}).Error
}
