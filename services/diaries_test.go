package services

import (
	"context"
	"strings"
	"testing"

	"github.com/diaryhub/api-go/models"
	"github.com/diaryhub/api-go/types"
)

func TestCreateDiaryValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")

	tcs := []struct {
		name string
		in   CreateDiaryInput
	}{
		{"blank title", CreateDiaryInput{Title: "   ", Content: "x"}},
		{"long title", CreateDiaryInput{Title: strings.Repeat("a", 201), Content: "x"}},
		{"empty content", CreateDiaryInput{Title: "ok", Content: ""}},
		{"blank content", CreateDiaryInput{Title: "ok", Content: " \n "}},
	}
	for _, tc := range tcs {
		_, err := env.diaries.Create(ctx, alice, tc.in)
		if KindOf(err) != KindValidation {
			t.Errorf("%s: error = %v, want validation", tc.name, err)
		}
	}
	if n := env.count(t, &models.Diary{}, "1 = 1"); n != 0 {
		t.Fatalf("expected nothing stored, got %d diaries", n)
	}

	_, err := env.diaries.Create(ctx, Guest(), CreateDiaryInput{Title: "t", Content: "c"})
	requireKind(t, err, ErrUnauthenticated)
}

func TestCreateDiaryNormalizesTitleAndTags(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	d, err := env.diaries.Create(context.Background(), alice, CreateDiaryInput{
		Title:   "  Monday  ",
		Content: "rainy",
		Tags:    []string{" work ", "", "  ", "home"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.Title != "Monday" {
		t.Fatalf("title = %q, want %q", d.Title, "Monday")
	}
	if len(d.Tags) != 2 || d.Tags[0] != "work" || d.Tags[1] != "home" {
		t.Fatalf("tags = %v", d.Tags)
	}
	if d.IsPublic {
		t.Fatal("diaries should default to private")
	}
	if d.Author.Username != "alice" {
		t.Fatalf("author = %+v", d.Author)
	}

	got, err := env.diaries.Get(context.Background(), alice, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "home" {
		t.Fatalf("stored tags = %v", got.Tags)
	}
}

func TestGetPrivateDiary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	d := env.diary(t, alice, "secret", false)

	if _, err := env.diaries.Get(ctx, alice, d.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	_, err := env.diaries.Get(ctx, bob, d.ID)
	requireKind(t, err, ErrForbidden)
	_, err = env.diaries.Get(ctx, Guest(), d.ID)
	requireKind(t, err, ErrForbidden)
	_, err = env.diaries.Get(ctx, alice, d.ID+100)
	requireKind(t, err, ErrNotFound)
}

func TestUpdateDiary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	d := env.diary(t, alice, "draft", false)

	_, err := env.diaries.Update(ctx, bob, d.ID, UpdateDiaryInput{Title: strPtr("mine now")})
	requireKind(t, err, ErrForbidden)

	_, err = env.diaries.Update(ctx, alice, d.ID, UpdateDiaryInput{Title: strPtr(" ")})
	requireKind(t, err, ErrValidation)

	tags := []string{"a"}
	updated, err := env.diaries.Update(ctx, alice, d.ID, UpdateDiaryInput{
		Title:    strPtr("final"),
		IsPublic: boolPtr(true),
		Tags:     &tags,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "final" || !updated.IsPublic || len(updated.Tags) != 1 {
		t.Fatalf("unexpected diary after update: %+v", updated.Diary)
	}
	if updated.Content != "body of draft" {
		t.Fatalf("content should be unchanged, got %q", updated.Content)
	}
	if updated.UserID != alice.User().ID {
		t.Fatal("owner must not change")
	}
}

func TestToggleVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	d := env.diary(t, alice, "t", false)

	_, err := env.diaries.ToggleVisibility(ctx, bob, d.ID)
	requireKind(t, err, ErrForbidden)

	got, err := env.diaries.ToggleVisibility(ctx, alice, d.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !got.IsPublic {
		t.Fatal("expected diary to be public")
	}
	got, err = env.diaries.ToggleVisibility(ctx, alice, d.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got.IsPublic {
		t.Fatal("expected diary to be private again")
	}
}

// TestDeleteDiaryCascades ensures comments at both levels and every
// reaction go with the diary, and other diaries are untouched.
func TestDeleteDiaryCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	d := env.diary(t, alice, "doomed", true)
	keep := env.diary(t, alice, "kept", true)

	c1 := env.comment(t, bob, d.ID, "hi", nil)
	env.comment(t, alice, d.ID, "hello", uintPtr(c1.ID))
	kept := env.comment(t, bob, keep.ID, "stay", nil)
	if _, err := env.diaries.React(ctx, bob, d.ID, "❤️"); err != nil {
		t.Fatalf("react: %v", err)
	}
	if _, err := env.comments.React(ctx, alice, d.ID, c1.ID, "😂"); err != nil {
		t.Fatalf("react comment: %v", err)
	}
	if _, err := env.comments.React(ctx, alice, keep.ID, kept.ID, "😂"); err != nil {
		t.Fatalf("react comment: %v", err)
	}

	err := env.diaries.Delete(ctx, bob, d.ID)
	requireKind(t, err, ErrForbidden)
	if n := env.count(t, &models.Comment{}, "diary_id = ?", d.ID); n != 2 {
		t.Fatalf("forbidden delete touched comments: %d left", n)
	}

	if err := env.diaries.Delete(ctx, alice, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = env.diaries.Get(ctx, alice, d.ID)
	requireKind(t, err, ErrNotFound)
	if n := env.count(t, &models.Comment{}, "diary_id = ?", d.ID); n != 0 {
		t.Fatalf("expected comments removed, %d left", n)
	}
	if n := env.count(t, &models.Reaction{}, "1 = 1"); n != 1 {
		t.Fatalf("expected only the kept comment's reaction, got %d", n)
	}
	if n := env.count(t, &models.Comment{}, "diary_id = ?", keep.ID); n != 1 {
		t.Fatalf("other diary lost comments: %d left", n)
	}
}

func TestReactToDiary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	public := env.diary(t, alice, "open", true)
	private := env.diary(t, alice, "closed", false)

	_, err := env.diaries.React(ctx, Guest(), public.ID, "❤️")
	requireKind(t, err, ErrUnauthenticated)
	_, err = env.diaries.React(ctx, alice, private.ID, "❤️")
	requireKind(t, err, ErrForbidden)
	_, err = env.diaries.React(ctx, bob, public.ID, "nope")
	requireKind(t, err, ErrValidation)

	view, err := env.diaries.React(ctx, bob, public.ID, "❤️")
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if view.UserReaction == nil || *view.UserReaction != "❤️" || view.ReactionSummary["❤️"] != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}

	// The same request twice is a toggle, not a no-op.
	view, err = env.diaries.React(ctx, bob, public.ID, "❤️")
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if view.UserReaction != nil || len(view.Reactions) != 0 {
		t.Fatalf("expected reaction removed, got %+v", view)
	}

	// A then B yields only B.
	if _, err := env.diaries.React(ctx, bob, public.ID, "😂"); err != nil {
		t.Fatalf("react: %v", err)
	}
	view, err = env.diaries.React(ctx, bob, public.ID, "😮")
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if len(view.Reactions) != 1 || view.Reactions[0].Emoji != "😮" {
		t.Fatalf("expected only 😮, got %+v", view.Reactions)
	}

	got, err := env.diaries.Get(ctx, alice, public.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserReaction != nil || got.ReactionSummary["😮"] != 1 {
		t.Fatalf("owner view = %+v", got.ReactionView)
	}
}

func TestListPublicOnlyPublicWithCommentCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	older := env.diary(t, alice, "older", true)
	env.diary(t, alice, "hidden", false)
	newer := env.diary(t, bob, "newer", true)

	c1 := env.comment(t, bob, older.ID, "one", nil)
	env.comment(t, alice, older.ID, "two", uintPtr(c1.ID))
	env.comment(t, alice, older.ID, "three", nil)

	views, meta, err := env.diaries.ListPublic(ctx, Guest(), DiaryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 || meta.Total != 2 {
		t.Fatalf("expected 2 public diaries, got %d (total %d)", len(views), meta.Total)
	}
	if views[0].ID != newer.ID || views[1].ID != older.ID {
		t.Fatalf("expected newest first, got %d then %d", views[0].ID, views[1].ID)
	}
	if views[1].CommentCount == nil || *views[1].CommentCount != 3 {
		t.Fatalf("commentCount = %v, want 3 (both levels)", views[1].CommentCount)
	}
	if views[0].CommentCount == nil || *views[0].CommentCount != 0 {
		t.Fatalf("commentCount = %v, want 0", views[0].CommentCount)
	}
	if meta.Page != 1 || meta.Limit != types.DefaultDiaryPageSize || meta.Pages != 1 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestListPublicPaginationAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	for _, title := range []string{"Summer trip", "summer rain", "Winter", "100% done", "a_b"} {
		env.diary(t, alice, title, true)
	}

	views, meta, err := env.diaries.ListPublic(ctx, Guest(), DiaryFilter{
		PageQuery: types.PageQuery{Page: 2, Limit: 2},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 || meta.Total != 5 || meta.Pages != 3 || meta.Page != 2 {
		t.Fatalf("page 2: %d views, meta %+v", len(views), meta)
	}

	views, _, err = env.diaries.ListPublic(ctx, Guest(), DiaryFilter{Search: "SUMMER"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 summer diaries, got %d", len(views))
	}

	views, _, err = env.diaries.ListPublic(ctx, Guest(), DiaryFilter{Search: "%"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(views) != 1 || views[0].Title != "100% done" {
		t.Fatalf("expected literal %% match, got %d views", len(views))
	}

	views, _, err = env.diaries.ListPublic(ctx, Guest(), DiaryFilter{Search: "_"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(views) != 1 || views[0].Title != "a_b" {
		t.Fatalf("expected literal _ match, got %d views", len(views))
	}
}

func TestListOwnedIncludesPrivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	env.diary(t, alice, "mine public", true)
	env.diary(t, alice, "mine private", false)
	env.diary(t, bob, "not mine", true)

	views, meta, err := env.diaries.ListOwned(ctx, alice, DiaryFilter{})
	if err != nil {
		t.Fatalf("list owned: %v", err)
	}
	if len(views) != 2 || meta.Total != 2 {
		t.Fatalf("expected 2 own diaries, got %d", len(views))
	}

	views, _, err = env.diaries.ListOwned(ctx, alice, DiaryFilter{IsPublic: boolPtr(false)})
	if err != nil {
		t.Fatalf("list owned: %v", err)
	}
	if len(views) != 1 || views[0].Title != "mine private" {
		t.Fatalf("expected the private diary only, got %d", len(views))
	}

	_, _, err = env.diaries.ListOwned(ctx, Guest(), DiaryFilter{})
	requireKind(t, err, ErrUnauthenticated)
}

func TestListByAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	env.diary(t, alice, "shared", true)
	env.diary(t, alice, "kept", false)

	views, meta, err := env.diaries.ListByAuthor(ctx, Guest(), alice.User().ID, types.PageQuery{})
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if len(views) != 1 || meta.Total != 1 || views[0].Title != "shared" {
		t.Fatalf("expected only the public diary, got %d", len(views))
	}

	_, _, err = env.diaries.ListByAuthor(ctx, Guest(), 999, types.PageQuery{})
	requireKind(t, err, ErrNotFound)
}
