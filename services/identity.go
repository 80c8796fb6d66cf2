package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/diaryhub/api-go/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minUsernameLength  = 3
	maxUsernameLength  = 20
	minPasswordLength  = 6
	maxDisplayNameSize = 100
)

var (
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	reservedUsernames = map[string]bool{
		"admin": true, "root": true, "api": true, "www": true, "mail": true, "ftp": true,
		"test": true, "demo": true, "user": true, "guest": true, "null": true, "undefined": true,
	}
)

// validateUsername checks format and reserved names.
func validateUsername(username string) error {
	switch {
	case len(username) < minUsernameLength:
		return invalid("Username must be at least %d characters long", minUsernameLength)
	case len(username) > maxUsernameLength:
		return invalid("Username must be no more than %d characters long", maxUsernameLength)
	case !usernamePattern.MatchString(username[:1]):
		return invalid("Username must start with a letter")
	case !usernamePattern.MatchString(username):
		return invalid("Username can only contain letters, numbers, and underscores")
	case reservedUsernames[strings.ToLower(username)]:
		return invalid("This username is reserved and cannot be used")
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("Please provide a valid email")
	}
	return email, nil
}

type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	DisplayName   string
	AvatarTempKey string
}

// GoogleAccount is a verified Google identity.
type GoogleAccount struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type UpdateProfileInput struct {
	DisplayName   *string
	AvatarTempKey *string
}

// AuthResult is returned by every sign-in path.
type AuthResult struct {
	TokenType    string       `json:"token_type"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         *models.User `json:"user"`
}

// PublicProfile is what anyone may see about a user.
type PublicProfile struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Avatar      string    `json:"avatar"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IdentityService turns credentials into actors and manages accounts.
type IdentityService struct {
	DB         *gorm.DB
	Tokens     *TokenIssuer
	RefreshTTL time.Duration
	Avatars    AvatarStore
	Profiles   *ProfileCache
	now        func() time.Time
}

func NewIdentityService(db *gorm.DB, tokens *TokenIssuer, refreshTTL time.Duration, avatars AvatarStore, profiles *ProfileCache) *IdentityService {
	return &IdentityService{
		DB:         db,
		Tokens:     tokens,
		RefreshTTL: refreshTTL,
		Avatars:    avatars,
		Profiles:   profiles,
		now:        time.Now,
	}
}

func (s *IdentityService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, invalid("Password must be at least %d characters", minPasswordLength)
	}
	displayName, err := normalizeDisplayName(in.DisplayName)
	if err != nil {
		return nil, err
	}

	var existing models.User
	err = s.DB.WithContext(ctx).Where("email = ? OR username = ?", email, username).First(&existing).Error
	switch {
	case err == nil && existing.Email == email:
		return nil, conflict("Email already registered")
	case err == nil:
		return nil, conflict("Username already taken")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	password := string(hashed)

	user := models.User{
		Username:    username,
		Email:       email,
		Password:    &password,
		DisplayName: displayName,
		Provider:    models.ProviderEmail,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("Username or email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if in.AvatarTempKey != "" {
		if url, err := s.confirmAvatar(ctx, user.ID, in.AvatarTempKey); err != nil {
			log.Printf("Could not confirm avatar for user %d: %v", user.ID, err)
		} else if err := s.DB.WithContext(ctx).Model(&user).Update("avatar", url).Error; err != nil {
			log.Printf("Could not save avatar for user %d: %v", user.ID, err)
		}
	}

	return s.startSession(ctx, &user)
}

func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthenticated("Invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.Password == nil {
		return nil, unauthenticated("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)); err != nil {
		return nil, unauthenticated("Invalid email or password")
	}
	return s.startSession(ctx, &user)
}

// LoginWithGoogle signs in the account linked to the Google identity,
// linking by email or creating a new account when there is none.
func (s *IdentityService) LoginWithGoogle(ctx context.Context, acct GoogleAccount) (*AuthResult, error) {
	if acct.Subject == "" || acct.Email == "" {
		return nil, unauthenticated("Invalid Google token")
	}
	email := strings.ToLower(strings.TrimSpace(acct.Email))

	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("google_id = ?", acct.Subject).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Where("email = ?", email).First(&user).Error
		if err == nil {
			updates := map[string]interface{}{"google_id": acct.Subject}
			if user.Avatar == "" && acct.Picture != "" {
				updates["avatar"] = acct.Picture
			}
			return tx.Model(&user).Updates(updates).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		username, err := uniqueUsername(tx, email)
		if err != nil {
			return err
		}
		subject := acct.Subject
		displayName, _ := normalizeDisplayName(truncateRunes(acct.Name, maxDisplayNameSize))
		user = models.User{
			Username:    username,
			Email:       email,
			GoogleID:    &subject,
			DisplayName: displayName,
			Avatar:      acct.Picture,
			Provider:    models.ProviderGoogle,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, fmt.Errorf("google sign-in: %w", err)
	}
	s.Profiles.Invalidate(user.ID)

	return s.startSession(ctx, &user)
}

func (s *IdentityService) startSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	access, expires, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	refresh := models.RefreshToken{
		UserID:         user.ID,
		Token:          uuid.NewString(),
		ExpirationDate: s.clock().Add(s.RefreshTTL),
	}
	if err := s.DB.WithContext(ctx).Create(&refresh).Error; err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &AuthResult{
		TokenType:    "Bearer",
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresAt:    expires,
		User:         user,
	}, nil
}

// Resolve turns a bearer token into the user it was issued for.
func (s *IdentityService) Resolve(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, unauthenticated("Not authorized, token failed")
	}
	var user models.User
	err = s.DB.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthenticated("Not authorized, user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return &user, nil
}

// Refresh rotates a stored refresh token and issues a new access token.
func (s *IdentityService) Refresh(ctx context.Context, token string) (*AuthResult, error) {
	var stored models.RefreshToken
	err := s.DB.WithContext(ctx).Where("token = ?", token).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthenticated("Invalid refresh token")
	}
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}

	now := s.clock()
	if stored.Expired(now) {
		if err := s.DB.WithContext(ctx).Delete(&stored).Error; err != nil {
			log.Printf("Could not delete expired refresh token %d: %v", stored.ID, err)
		}
		return nil, unauthenticated("Refresh token expired")
	}

	var user models.User
	err = s.DB.WithContext(ctx).First(&user, stored.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthenticated("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", stored.UserID, err)
	}

	// Match on the old token so a token presented twice rotates only once.
	next := uuid.NewString()
	res := s.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND token = ?", stored.ID, token).
		Updates(map[string]interface{}{"token": next, "expiration_date": now.Add(s.RefreshTTL)})
	if res.Error != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, unauthenticated("Invalid refresh token")
	}

	access, expires, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		TokenType:    "Bearer",
		AccessToken:  access,
		RefreshToken: next,
		ExpiresAt:    expires,
		User:         &user,
	}, nil
}

// Logout forgets the refresh token. Unknown tokens are ignored.
func (s *IdentityService) Logout(ctx context.Context, actor Actor, token string) error {
	user, err := actor.requireUser()
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).
		Where("token = ? AND user_id = ?", token, user.ID).
		Delete(&models.RefreshToken{}).Error
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *IdentityService) Me(actor Actor) (*models.User, error) {
	return actor.requireUser()
}

func (s *IdentityService) PublicProfile(ctx context.Context, userID uint) (*PublicProfile, error) {
	if profile, ok := s.Profiles.Get(userID); ok {
		return profile, nil
	}

	var user models.User
	err := s.DB.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	profile := &PublicProfile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
		CreatedAt:   user.CreatedAt,
	}
	s.Profiles.Set(profile)
	return profile, nil
}

func (s *IdentityService) UpdateProfile(ctx context.Context, actor Actor, in UpdateProfileInput) (*models.User, error) {
	user, err := actor.requireUser()
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.DisplayName != nil {
		name, err := normalizeDisplayName(*in.DisplayName)
		if err != nil {
			return nil, err
		}
		updates["display_name"] = name
	}
	if in.AvatarTempKey != nil {
		url, err := s.confirmAvatar(ctx, user.ID, *in.AvatarTempKey)
		if err != nil {
			return nil, err
		}
		updates["avatar"] = url
	}

	var updated models.User
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update user %d: %w", user.ID, err)
		}
		s.Profiles.Invalidate(user.ID)
	}
	if err := s.DB.WithContext(ctx).First(&updated, user.ID).Error; err != nil {
		return nil, fmt.Errorf("load user %d: %w", user.ID, err)
	}
	return &updated, nil
}

// RequestAvatarUpload hands out a presigned URL for a new avatar file.
func (s *IdentityService) RequestAvatarUpload(ctx context.Context, actor Actor, req AvatarUploadRequest) (*AvatarUploadTicket, error) {
	if _, err := actor.requireUser(); err != nil {
		return nil, err
	}
	if s.Avatars == nil {
		return nil, invalid("Avatar uploads are not configured")
	}
	if err := validateAvatarFile(req); err != nil {
		return nil, err
	}
	return s.Avatars.PresignUpload(ctx, req)
}

func (s *IdentityService) DiscardAvatarUpload(ctx context.Context, actor Actor, tempKey string) error {
	if _, err := actor.requireUser(); err != nil {
		return err
	}
	if s.Avatars == nil {
		return invalid("Avatar uploads are not configured")
	}
	if !isTempAvatarKey(tempKey) {
		return invalid("Invalid temp key format")
	}
	return s.Avatars.Discard(ctx, tempKey)
}

func (s *IdentityService) confirmAvatar(ctx context.Context, userID uint, tempKey string) (string, error) {
	if s.Avatars == nil {
		return "", invalid("Avatar uploads are not configured")
	}
	if !isTempAvatarKey(tempKey) {
		return "", invalid("Invalid temp key format")
	}
	return s.Avatars.Confirm(ctx, userID, tempKey)
}

// UsernameAvailable reports whether username is well-formed and unused.
func (s *IdentityService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return false, err
	}
	return s.available(ctx, "username = ?", username)
}

func (s *IdentityService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	return s.available(ctx, "email = ?", email)
}

func (s *IdentityService) available(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return count == 0, nil
}

func normalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxDisplayNameSize {
		return "", invalid("Display name must be at most %d characters", maxDisplayNameSize)
	}
	return name, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// usernameBase derives a valid username stem from an email address.
func usernameBase(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range local {
		if r < 128 && (r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')) {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" || !usernamePattern.MatchString(base[:1]) {
		base = "u" + base
	}
	for len(base) < minUsernameLength {
		base += "_"
	}
	if len(base) > maxUsernameLength {
		base = base[:maxUsernameLength]
	}
	return base
}

func uniqueUsername(tx *gorm.DB, email string) (string, error) {
	base := usernameBase(email)
	for i := 0; i < 50; i++ {
		candidate := base
		if i > 0 {
			suffix := strconv.Itoa(i)
			if len(base)+len(suffix) > maxUsernameLength {
				candidate = base[:maxUsernameLength-len(suffix)]
			}
			candidate += suffix
		}
		if validateUsername(candidate) != nil {
			continue
		}
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "u" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12], nil
}
