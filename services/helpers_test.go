package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/diaryhub/api-go/config"
	"github.com/diaryhub/api-go/models"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	ledger   *ReactionLedger
	diaries  *DiaryService
	comments *CommentService
	identity *IdentityService
	avatars  *fakeAvatarStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := config.OpenSQLite(filepath.Join(t.TempDir(), "diary.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	profiles, err := NewProfileCache(16, time.Minute)
	if err != nil {
		t.Fatalf("profile cache: %v", err)
	}
	avatars := &fakeAvatarStore{objects: map[string]bool{}}
	ledger := NewReactionLedger(db)
	diaries := NewDiaryService(db, ledger)
	return &testEnv{
		db:       db,
		ledger:   ledger,
		diaries:  diaries,
		comments: NewCommentService(db, diaries, ledger),
		identity: NewIdentityService(db, NewTokenIssuer("test-secret", time.Hour), 24*time.Hour, avatars, profiles),
		avatars:  avatars,
	}
}

// user inserts an account directly and returns it as an actor.
func (e *testEnv) user(t *testing.T, username string) Actor {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", Provider: models.ProviderEmail}
	if err := e.db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return Authenticated(&u)
}

func (e *testEnv) diary(t *testing.T, owner Actor, title string, public bool) *DiaryView {
	t.Helper()
	d, err := e.diaries.Create(context.Background(), owner, CreateDiaryInput{
		Title:    title,
		Content:  "body of " + title,
		IsPublic: public,
	})
	if err != nil {
		t.Fatalf("create diary %q: %v", title, err)
	}
	return d
}

func (e *testEnv) comment(t *testing.T, author Actor, diaryID uint, content string, parent *uint) *CommentView {
	t.Helper()
	c, err := e.comments.Add(context.Background(), author, diaryID, content, parent)
	if err != nil {
		t.Fatalf("add comment %q: %v", content, err)
	}
	return c
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func requireKind(t *testing.T, err error, want *Error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("error = %v (kind %q), want kind %q", err, KindOf(err), want.Kind)
	}
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

type fakeAvatarStore struct {
	objects   map[string]bool
	confirmed []string
}

func (f *fakeAvatarStore) PresignUpload(_ context.Context, req AvatarUploadRequest) (*AvatarUploadTicket, error) {
	key := tempAvatarKey(req.FileName, time.Unix(1700000000, 0))
	f.objects[key] = true
	return &AvatarUploadTicket{UploadURL: "https://upload.example/" + key, TempKey: key, ExpiresIn: 3600}, nil
}

func (f *fakeAvatarStore) Confirm(_ context.Context, userID uint, tempKey string) (string, error) {
	if !f.objects[tempKey] {
		return "", notFound("Temporary avatar file not found")
	}
	delete(f.objects, tempKey)
	key := avatarKey(userID, tempKey, time.Unix(1700000000, 0))
	f.confirmed = append(f.confirmed, key)
	return "https://cdn.example/" + key, nil
}

func (f *fakeAvatarStore) Discard(_ context.Context, tempKey string) error {
	delete(f.objects, tempKey)
	return nil
}
