package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/diaryhub/api-go/models"
	"github.com/diaryhub/api-go/types"
	"gorm.io/gorm"
)

// CommentService keeps two-level comment threads under diaries.
type CommentService struct {
	DB        *gorm.DB
	Diaries   *DiaryService
	Reactions *ReactionLedger
}

func NewCommentService(db *gorm.DB, diaries *DiaryService, reactions *ReactionLedger) *CommentService {
	return &CommentService{DB: db, Diaries: diaries, Reactions: reactions}
}

func normalizeCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalid("Comment content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return "", invalid("Comment must be at most %d characters", models.MaxCommentLength)
	}
	return content, nil
}

func (s *CommentService) load(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.DB.WithContext(ctx).Preload("Author").First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Comment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load comment %d: %w", id, err)
	}
	return &comment, nil
}

// loadInDiary loads the comment and checks it hangs under diaryID.
func (s *CommentService) loadInDiary(ctx context.Context, diaryID, id uint) (*models.Comment, error) {
	comment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.DiaryID != diaryID {
		return nil, invalid("Comment does not belong to this diary")
	}
	return comment, nil
}

// Add posts a top-level comment, or a reply when parentID is set.
func (s *CommentService) Add(ctx context.Context, actor Actor, diaryID uint, content string, parentID *uint) (*CommentView, error) {
	user, err := actor.requireUser()
	if err != nil {
		return nil, err
	}
	diary, err := s.Diaries.load(ctx, diaryID)
	if err != nil {
		return nil, err
	}
	if !CanComment(actor, diary) {
		return nil, forbidden("Cannot comment on a private diary")
	}

	if parentID != nil {
		var parent models.Comment
		err := s.DB.WithContext(ctx).First(&parent, *parentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && parent.DiaryID != diary.ID) {
			return nil, invalid("Parent comment not found in this diary")
		}
		if err != nil {
			return nil, fmt.Errorf("load parent comment %d: %w", *parentID, err)
		}
		if parent.IsReply() {
			return nil, invalid("Cannot reply to a reply. Reply to the original comment instead.")
		}
	}

	content, err = normalizeCommentContent(content)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		Content:         content,
		DiaryID:         diary.ID,
		UserID:          user.ID,
		ParentCommentID: parentID,
	}
	if err := s.DB.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.Author = *user

	view := newCommentView(&comment, nil, actor)
	return &view, nil
}

// List returns a page of top-level comments, newest first, each carrying
// all of its replies oldest first.
func (s *CommentService) List(ctx context.Context, actor Actor, diaryID uint, page types.PageQuery) ([]ThreadView, types.PaginationMeta, error) {
	diary, err := s.Diaries.load(ctx, diaryID)
	if err != nil {
		return nil, types.PaginationMeta{}, err
	}
	if !CanRead(actor, diary) {
		return nil, types.PaginationMeta{}, forbidden("This diary is private")
	}

	page = page.Normalize(types.DefaultCommentPageSize)
	topLevel := s.DB.WithContext(ctx).Model(&models.Comment{}).
		Where("diary_id = ? AND parent_comment_id IS NULL", diary.ID)

	var total int64
	if err := topLevel.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, types.PaginationMeta{}, fmt.Errorf("count comments: %w", err)
	}

	var comments []models.Comment
	err = topLevel.Session(&gorm.Session{}).
		Preload("Author").
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&comments).Error
	if err != nil {
		return nil, types.PaginationMeta{}, fmt.Errorf("list comments: %w", err)
	}

	ids := make([]uint, 0, len(comments))
	for i := range comments {
		ids = append(ids, comments[i].ID)
	}

	var replies []models.Comment
	if len(ids) > 0 {
		err = s.DB.WithContext(ctx).
			Preload("Author").
			Where("diary_id = ? AND parent_comment_id IN ?", diary.ID, ids).
			Order("created_at ASC, id ASC").
			Find(&replies).Error
		if err != nil {
			return nil, types.PaginationMeta{}, fmt.Errorf("list replies: %w", err)
		}
	}

	allIDs := ids
	for i := range replies {
		allIDs = append(allIDs, replies[i].ID)
	}
	reactions, err := s.Reactions.LoadMany(ctx, models.ReactionTargetComment, allIDs)
	if err != nil {
		return nil, types.PaginationMeta{}, err
	}

	byParent := make(map[uint][]CommentView, len(ids))
	for i := range replies {
		parent := *replies[i].ParentCommentID
		byParent[parent] = append(byParent[parent], newCommentView(&replies[i], reactions[replies[i].ID], actor))
	}

	threads := make([]ThreadView, len(comments))
	for i := range comments {
		threads[i] = ThreadView{
			CommentView: newCommentView(&comments[i], reactions[comments[i].ID], actor),
			Replies:     byParent[comments[i].ID],
		}
		if threads[i].Replies == nil {
			threads[i].Replies = []CommentView{}
		}
	}
	return threads, types.NewPaginationMeta(page, total), nil
}

// Update rewrites the body of a comment. Only its author may do so, even
// the diary owner may not.
func (s *CommentService) Update(ctx context.Context, actor Actor, diaryID, commentID uint, content string) (*CommentView, error) {
	if _, err := actor.requireUser(); err != nil {
		return nil, err
	}
	content, err := normalizeCommentContent(content)
	if err != nil {
		return nil, err
	}
	comment, err := s.loadInDiary(ctx, diaryID, commentID)
	if err != nil {
		return nil, err
	}
	if !CanEditComment(actor, comment) {
		return nil, forbidden("Not authorized to edit this comment")
	}

	err = s.DB.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", comment.ID).Update("content", content).Error
	if err != nil {
		return nil, fmt.Errorf("update comment %d: %w", commentID, err)
	}
	if comment, err = s.load(ctx, comment.ID); err != nil {
		return nil, err
	}

	reactions, err := s.Reactions.Load(ctx, CommentTarget(comment.ID))
	if err != nil {
		return nil, err
	}
	view := newCommentView(comment, reactions, actor)
	return &view, nil
}

// Delete removes a comment. The author or the diary owner may delete it;
// deleting a top-level comment takes its replies and all their reactions
// with it.
func (s *CommentService) Delete(ctx context.Context, actor Actor, diaryID, commentID uint) error {
	if _, err := actor.requireUser(); err != nil {
		return err
	}
	comment, err := s.loadInDiary(ctx, diaryID, commentID)
	if err != nil {
		return err
	}
	diary, err := s.Diaries.load(ctx, comment.DiaryID)
	if err != nil {
		return err
	}
	if !CanDeleteComment(actor, comment, diary) {
		return forbidden("Not authorized to delete this comment")
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !comment.IsReply() {
			var replyIDs []uint
			if err := tx.Model(&models.Comment{}).Where("parent_comment_id = ?", comment.ID).Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
			if err := purgeReactions(tx, models.ReactionTargetComment, replyIDs); err != nil {
				return err
			}
			if err := tx.Where("parent_comment_id = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := purgeReactions(tx, models.ReactionTargetComment, []uint{comment.ID}); err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, comment.ID).Error
	})
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	return nil
}

// React toggles actor's emoji on a comment. The comment's diary must be
// public.
func (s *CommentService) React(ctx context.Context, actor Actor, diaryID, commentID uint, emoji string) (*ReactionView, error) {
	user, err := actor.requireUser()
	if err != nil {
		return nil, err
	}
	if err := validateEmoji(emoji); err != nil {
		return nil, err
	}
	comment, err := s.loadInDiary(ctx, diaryID, commentID)
	if err != nil {
		return nil, err
	}
	diary, err := s.Diaries.load(ctx, comment.DiaryID)
	if err != nil {
		return nil, err
	}
	if !CanReact(actor, diary) {
		return nil, forbidden("Cannot react to a comment on a private diary")
	}

	set, err := s.Reactions.Toggle(ctx, CommentTarget(comment.ID), user.ID, emoji)
	if err != nil {
		return nil, err
	}
	view := newReactionView(set, actor)
	return &view, nil
}
