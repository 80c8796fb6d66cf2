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

// DiaryService is the entry store. Every read and write passes through the
// visibility predicates before the store is touched.
type DiaryService struct {
	DB        *gorm.DB
	Reactions *ReactionLedger
}

func NewDiaryService(db *gorm.DB, reactions *ReactionLedger) *DiaryService {
	return &DiaryService{DB: db, Reactions: reactions}
}

type CreateDiaryInput struct {
	Title    string
	Content  string
	IsPublic bool
	Tags     []string
}

// UpdateDiaryInput holds a partial update; nil fields are left unchanged.
type UpdateDiaryInput struct {
	Title    *string
	Content  *string
	IsPublic *bool
	Tags     *[]string
}

type DiaryFilter struct {
	types.PageQuery
	Search   string
	IsPublic *bool
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("Title is required")
	}
	if utf8.RuneCountInString(title) > models.MaxDiaryTitleLength {
		return "", invalid("Title must be at most %d characters", models.MaxDiaryTitleLength)
	}
	return title, nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return invalid("Content is required")
	}
	return nil
}

func normalizeTags(tags []string) models.TagList {
	out := make(models.TagList, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func applyTitleSearch(q *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return q
	}
	return q.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(search))+"%")
}

func (s *DiaryService) load(ctx context.Context, id uint) (*models.Diary, error) {
	var diary models.Diary
	err := s.DB.WithContext(ctx).Preload("Owner").First(&diary, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Diary not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load diary %d: %w", id, err)
	}
	return &diary, nil
}

func (s *DiaryService) view(ctx context.Context, diary *models.Diary, actor Actor) (*DiaryView, error) {
	reactions, err := s.Reactions.Load(ctx, DiaryTarget(diary.ID))
	if err != nil {
		return nil, err
	}
	view := newDiaryView(diary, reactions, actor)
	return &view, nil
}

func (s *DiaryService) Create(ctx context.Context, actor Actor, in CreateDiaryInput) (*DiaryView, error) {
	user, err := actor.requireUser()
	if err != nil {
		return nil, err
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}

	diary := models.Diary{
		Title:    title,
		Content:  in.Content,
		UserID:   user.ID,
		IsPublic: in.IsPublic,
		Tags:     normalizeTags(in.Tags),
	}
	if err := s.DB.WithContext(ctx).Create(&diary).Error; err != nil {
		return nil, fmt.Errorf("create diary: %w", err)
	}
	diary.Owner = *user

	view := newDiaryView(&diary, nil, actor)
	return &view, nil
}

// Get returns the diary when actor may read it. A private diary requested by
// anyone but its owner fails Forbidden, which does reveal that it exists.
func (s *DiaryService) Get(ctx context.Context, actor Actor, id uint) (*DiaryView, error) {
	diary, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanRead(actor, diary) {
		return nil, forbidden("This diary is private")
	}
	return s.view(ctx, diary, actor)
}

func (s *DiaryService) Update(ctx context.Context, actor Actor, id uint, in UpdateDiaryInput) (*DiaryView, error) {
	if _, err := actor.requireUser(); err != nil {
		return nil, err
	}
	diary, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanWrite(actor, diary) {
		return nil, forbidden("Not authorized to update this diary")
	}

	updates := make(map[string]interface{})
	if in.Title != nil {
		title, err := normalizeTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if in.Content != nil {
		if err := validateContent(*in.Content); err != nil {
			return nil, err
		}
		updates["content"] = *in.Content
	}
	if in.IsPublic != nil {
		updates["is_public"] = *in.IsPublic
	}
	if in.Tags != nil {
		updates["tags"] = normalizeTags(*in.Tags)
	}

	if len(updates) > 0 {
		err := s.DB.WithContext(ctx).Model(&models.Diary{}).Where("id = ?", diary.ID).Updates(updates).Error
		if err != nil {
			return nil, fmt.Errorf("update diary %d: %w", id, err)
		}
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, updated, actor)
}

// Delete removes the diary together with its comments and every reaction
// on either, children first, in one transaction.
func (s *DiaryService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := actor.requireUser(); err != nil {
		return err
	}
	diary, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !CanWrite(actor, diary) {
		return forbidden("Not authorized to delete this diary")
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("diary_id = ?", diary.ID).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if err := purgeReactions(tx, models.ReactionTargetComment, commentIDs); err != nil {
			return err
		}
		if err := tx.Where("diary_id = ?", diary.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := purgeReactions(tx, models.ReactionTargetDiary, []uint{diary.ID}); err != nil {
			return err
		}
		return tx.Delete(&models.Diary{}, diary.ID).Error
	})
	if err != nil {
		return fmt.Errorf("delete diary %d: %w", id, err)
	}
	return nil
}

func (s *DiaryService) ToggleVisibility(ctx context.Context, actor Actor, id uint) (*DiaryView, error) {
	if _, err := actor.requireUser(); err != nil {
		return nil, err
	}
	diary, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanWrite(actor, diary) {
		return nil, forbidden("Not authorized")
	}

	// Flip in SQL so two concurrent toggles both take effect.
	err = s.DB.WithContext(ctx).Model(&models.Diary{}).Where("id = ?", diary.ID).
		Update("is_public", gorm.Expr("NOT is_public")).Error
	if err != nil {
		return nil, fmt.Errorf("toggle diary %d: %w", id, err)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, updated, actor)
}

// React toggles actor's emoji on a public diary.
func (s *DiaryService) React(ctx context.Context, actor Actor, id uint, emoji string) (*ReactionView, error) {
	user, err := actor.requireUser()
	if err != nil {
		return nil, err
	}
	if err := validateEmoji(emoji); err != nil {
		return nil, err
	}
	diary, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanReact(actor, diary) {
		return nil, forbidden("Cannot react to a private diary")
	}

	set, err := s.Reactions.Toggle(ctx, DiaryTarget(diary.ID), user.ID, emoji)
	if err != nil {
		return nil, err
	}
	view := newReactionView(set, actor)
	return &view, nil
}

// ListPublic is the public feed: public diaries only, newest first, each with
// the number of comments on it at both thread levels.
func (s *DiaryService) ListPublic(ctx context.Context, actor Actor, filter DiaryFilter) ([]DiaryView, types.PaginationMeta, error) {
	q := s.DB.WithContext(ctx).Model(&models.Diary{}).Where("is_public = ?", true)
	q = applyTitleSearch(q, filter.Search)
	return s.list(ctx, actor, q, filter.PageQuery, true)
}

// ListByAuthor returns the public diaries of one user.
func (s *DiaryService) ListByAuthor(ctx context.Context, actor Actor, authorID uint, page types.PageQuery) ([]DiaryView, types.PaginationMeta, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return nil, types.PaginationMeta{}, fmt.Errorf("load user %d: %w", authorID, err)
	}
	if count == 0 {
		return nil, types.PaginationMeta{}, notFound("User not found")
	}

	q := s.DB.WithContext(ctx).Model(&models.Diary{}).
		Where("user_id = ? AND is_public = ?", authorID, true)
	return s.list(ctx, actor, q, page, true)
}

// ListOwned returns the actor's own diaries, private ones included.
func (s *DiaryService) ListOwned(ctx context.Context, actor Actor, filter DiaryFilter) ([]DiaryView, types.PaginationMeta, error) {
	user, err := actor.requireUser()
	if err != nil {
		return nil, types.PaginationMeta{}, err
	}
	q := s.DB.WithContext(ctx).Model(&models.Diary{}).Where("user_id = ?", user.ID)
	if filter.IsPublic != nil {
		q = q.Where("is_public = ?", *filter.IsPublic)
	}
	q = applyTitleSearch(q, filter.Search)
	return s.list(ctx, actor, q, filter.PageQuery, false)
}

func (s *DiaryService) list(ctx context.Context, actor Actor, q *gorm.DB, page types.PageQuery, withCommentCount bool) ([]DiaryView, types.PaginationMeta, error) {
	page = page.Normalize(types.DefaultDiaryPageSize)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, types.PaginationMeta{}, fmt.Errorf("count diaries: %w", err)
	}

	var diaries []models.Diary
	err := q.Session(&gorm.Session{}).
		Preload("Owner").
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&diaries).Error
	if err != nil {
		return nil, types.PaginationMeta{}, fmt.Errorf("list diaries: %w", err)
	}

	ids := make([]uint, len(diaries))
	for i := range diaries {
		ids[i] = diaries[i].ID
	}
	reactions, err := s.Reactions.LoadMany(ctx, models.ReactionTargetDiary, ids)
	if err != nil {
		return nil, types.PaginationMeta{}, err
	}
	var counts map[uint]int64
	if withCommentCount {
		if counts, err = s.commentCounts(ctx, ids); err != nil {
			return nil, types.PaginationMeta{}, err
		}
	}

	views := make([]DiaryView, len(diaries))
	for i := range diaries {
		views[i] = newDiaryView(&diaries[i], reactions[diaries[i].ID], actor)
		if withCommentCount {
			n := counts[diaries[i].ID]
			views[i].CommentCount = &n
		}
	}
	return views, types.NewPaginationMeta(page, total), nil
}

// commentCounts counts top-level comments and replies together.
func (s *DiaryService) commentCounts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		DiaryID uint
		Count   int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Comment{}).
		Select("diary_id, COUNT(*) AS count").
		Where("diary_id IN ?", ids).
		Group("diary_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	for _, r := range rows {
		counts[r.DiaryID] = r.Count
	}
	return counts, nil
}
