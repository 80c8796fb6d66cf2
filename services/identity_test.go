package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/diaryhub/api-go/models"
)

func register(t *testing.T, env *testEnv, username, email string) *AuthResult {
	t.Helper()
	res, err := env.identity.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return res
}

func TestRegisterLoginResolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := register(t, env, "alice", " Alice@Example.com ")
	if res.TokenType != "Bearer" || res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("unexpected auth result: %+v", res)
	}
	if res.User.Email != "alice@example.com" {
		t.Fatalf("email = %q, want normalized", res.User.Email)
	}

	login, err := env.identity.Login(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	user, err := env.identity.Resolve(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.ID != res.User.ID {
		t.Fatalf("resolved user %d, want %d", user.ID, res.User.ID)
	}

	_, err = env.identity.Login(ctx, "alice@example.com", "wrong")
	requireKind(t, err, ErrUnauthenticated)
	_, err = env.identity.Login(ctx, "nobody@example.com", "secret123")
	requireKind(t, err, ErrUnauthenticated)
	_, err = env.identity.Resolve(ctx, "garbage")
	requireKind(t, err, ErrUnauthenticated)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	register(t, env, "alice", "alice@example.com")

	tcs := []struct {
		name string
		in   RegisterInput
		want *Error
	}{
		{"short username", RegisterInput{Username: "al", Email: "x@example.com", Password: "secret123"}, ErrValidation},
		{"digit first", RegisterInput{Username: "1alice", Email: "x@example.com", Password: "secret123"}, ErrValidation},
		{"bad chars", RegisterInput{Username: "al-ice", Email: "x@example.com", Password: "secret123"}, ErrValidation},
		{"reserved", RegisterInput{Username: "Admin", Email: "x@example.com", Password: "secret123"}, ErrValidation},
		{"bad email", RegisterInput{Username: "bobby", Email: "not-an-email", Password: "secret123"}, ErrValidation},
		{"short password", RegisterInput{Username: "bobby", Email: "x@example.com", Password: "12345"}, ErrValidation},
		{"taken email", RegisterInput{Username: "bobby", Email: "ALICE@example.com", Password: "secret123"}, ErrConflict},
		{"taken username", RegisterInput{Username: "alice", Email: "x@example.com", Password: "secret123"}, ErrConflict},
	}
	for _, tc := range tcs {
		_, err := env.identity.Register(ctx, tc.in)
		if KindOf(err) != tc.want.Kind {
			t.Errorf("%s: error = %v, want kind %s", tc.name, err, tc.want.Kind)
		}
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := register(t, env, "alice", "alice@example.com")

	next, err := env.identity.Refresh(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == res.RefreshToken {
		t.Fatal("refresh token should rotate")
	}
	_, err = env.identity.Refresh(ctx, res.RefreshToken)
	requireKind(t, err, ErrUnauthenticated)

	actor := Authenticated(next.User)
	if err := env.identity.Logout(ctx, actor, next.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := env.identity.Logout(ctx, actor, next.RefreshToken); err != nil {
		t.Fatalf("second logout should be a no-op: %v", err)
	}
	_, err = env.identity.Refresh(ctx, next.RefreshToken)
	requireKind(t, err, ErrUnauthenticated)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := register(t, env, "alice", "alice@example.com")

	env.identity.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err := env.identity.Refresh(ctx, res.RefreshToken)
	requireKind(t, err, ErrUnauthenticated)
	if n := env.count(t, &models.RefreshToken{}, "token = ?", res.RefreshToken); n != 0 {
		t.Fatal("expired refresh token should be deleted")
	}
}

func TestLoginWithGoogle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	existing := register(t, env, "alice", "alice@example.com")

	linked, err := env.identity.LoginWithGoogle(ctx, GoogleAccount{
		Subject: "g-1",
		Email:   "Alice@example.com",
		Picture: "https://pics.example/a.png",
	})
	if err != nil {
		t.Fatalf("google link: %v", err)
	}
	if linked.User.ID != existing.User.ID {
		t.Fatalf("expected account linked by email, got user %d", linked.User.ID)
	}

	again, err := env.identity.LoginWithGoogle(ctx, GoogleAccount{Subject: "g-1", Email: "changed@example.com"})
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if again.User.ID != existing.User.ID {
		t.Fatal("expected lookup by google id")
	}

	created, err := env.identity.LoginWithGoogle(ctx, GoogleAccount{
		Subject: "g-2",
		Email:   "alice@other.example",
		Name:    "Alice Two",
	})
	if err != nil {
		t.Fatalf("google create: %v", err)
	}
	if created.User.ID == existing.User.ID || created.User.Provider != models.ProviderGoogle {
		t.Fatalf("expected a new google account, got %+v", created.User)
	}
	if created.User.Username != "alice1" {
		t.Fatalf("username = %q, want alice1", created.User.Username)
	}
	if created.User.DisplayName != "Alice Two" {
		t.Fatalf("display name = %q", created.User.DisplayName)
	}
}

func TestUsernameBase(t *testing.T) {
	tcs := map[string]string{
		"john.doe@example.com":              "johndoe",
		"42@example.com":                    "u42",
		"x@example.com":                     "x__",
		"averyveryverylongname@example.com": "averyveryverylongnam",
	}
	for email, want := range tcs {
		if got := usernameBase(email); got != want {
			t.Errorf("usernameBase(%q) = %q, want %q", email, got, want)
		}
	}
}

func TestPublicProfileCacheInvalidatedOnUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := register(t, env, "alice", "alice@example.com")
	actor := Authenticated(res.User)

	profile, err := env.identity.PublicProfile(ctx, res.User.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.DisplayName != "" {
		t.Fatalf("display name = %q", profile.DisplayName)
	}

	if _, err := env.identity.UpdateProfile(ctx, actor, UpdateProfileInput{DisplayName: strPtr("  Alice A.  ")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	profile, err = env.identity.PublicProfile(ctx, res.User.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.DisplayName != "Alice A." {
		t.Fatalf("stale profile served: %q", profile.DisplayName)
	}

	_, err = env.identity.UpdateProfile(ctx, actor, UpdateProfileInput{DisplayName: strPtr(strings.Repeat("n", 101))})
	requireKind(t, err, ErrValidation)
	_, err = env.identity.PublicProfile(ctx, 999)
	requireKind(t, err, ErrNotFound)
}

func TestAvatarUploadFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := register(t, env, "alice", "alice@example.com")
	actor := Authenticated(res.User)

	_, err := env.identity.RequestAvatarUpload(ctx, actor, AvatarUploadRequest{
		FileName: "a.gif", ContentType: "image/gif", FileSize: 10,
	})
	requireKind(t, err, ErrValidation)
	_, err = env.identity.RequestAvatarUpload(ctx, actor, AvatarUploadRequest{
		FileName: "a.png", ContentType: "image/png", FileSize: MaxAvatarSize + 1,
	})
	requireKind(t, err, ErrValidation)

	ticket, err := env.identity.RequestAvatarUpload(ctx, actor, AvatarUploadRequest{
		FileName: "me.png", ContentType: "image/png", FileSize: 1024,
	})
	if err != nil {
		t.Fatalf("request upload: %v", err)
	}
	if !strings.HasPrefix(ticket.TempKey, "temp/avatars/") || !strings.HasSuffix(ticket.TempKey, ".png") {
		t.Fatalf("temp key = %q", ticket.TempKey)
	}

	_, err = env.identity.UpdateProfile(ctx, actor, UpdateProfileInput{AvatarTempKey: strPtr("users/2/avatar/x.png")})
	requireKind(t, err, ErrValidation)

	user, err := env.identity.UpdateProfile(ctx, actor, UpdateProfileInput{AvatarTempKey: &ticket.TempKey})
	if err != nil {
		t.Fatalf("update avatar: %v", err)
	}
	want := "https://cdn.example/users/1/avatar/1700000000_avatar.png"
	if user.Avatar != want {
		t.Fatalf("avatar = %q, want %q", user.Avatar, want)
	}

	_, err = env.identity.UpdateProfile(ctx, actor, UpdateProfileInput{AvatarTempKey: &ticket.TempKey})
	requireKind(t, err, ErrNotFound)
}

func TestAvatarUploadsDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.identity.Avatars = nil
	res := register(t, env, "alice", "alice@example.com")

	_, err := env.identity.RequestAvatarUpload(context.Background(), Authenticated(res.User), AvatarUploadRequest{
		FileName: "me.png", ContentType: "image/png", FileSize: 1024,
	})
	requireKind(t, err, ErrValidation)
}

func TestAvailabilityChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	register(t, env, "alice", "alice@example.com")

	if ok, err := env.identity.UsernameAvailable(ctx, "alice"); err != nil || ok {
		t.Fatalf("UsernameAvailable(alice) = %v, %v", ok, err)
	}
	if ok, err := env.identity.UsernameAvailable(ctx, "bobby"); err != nil || !ok {
		t.Fatalf("UsernameAvailable(bobby) = %v, %v", ok, err)
	}
	if _, err := env.identity.UsernameAvailable(ctx, "root"); KindOf(err) != KindValidation {
		t.Fatalf("reserved name error = %v", err)
	}
	if ok, err := env.identity.EmailAvailable(ctx, "ALICE@example.com"); err != nil || ok {
		t.Fatalf("EmailAvailable = %v, %v", ok, err)
	}
}
