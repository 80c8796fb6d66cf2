package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var ErrInvalidGoogleToken = errors.New("invalid google token")

type GoogleConfig struct {
	Config     *oauth2.Config
	HTTPClient *http.Client
}

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// Subject returns the stable Google account id. The tokeninfo endpoint
// reports it as "sub", the userinfo endpoint as "id".
func (u *GoogleUserInfo) Subject() string {
	if u.ID != "" {
		return u.ID
	}
	return u.Sub
}

// GoogleLoginRequest carries whichever credential the client obtained.
type GoogleLoginRequest struct {
	IDToken     string `json:"id_token"`
	AccessToken string `json:"access_token"`
	Code        string `json:"code"`
}

// NewGoogleConfig returns nil when Google sign-in is not configured.
func NewGoogleConfig(g GoogleOAuthConfig) *GoogleConfig {
	if !g.Enabled() {
		return nil
	}
	return &GoogleConfig{
		Config: &oauth2.Config{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			RedirectURL:  g.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Identify resolves the request to a Google account, preferring the
// authorization code flow, then an ID token, then a raw access token.
func (g *GoogleConfig) Identify(ctx context.Context, req GoogleLoginRequest) (*GoogleUserInfo, error) {
	switch {
	case req.Code != "":
		token, err := g.Config.Exchange(ctx, req.Code)
		if err != nil {
			return nil, fmt.Errorf("exchange code: %w", err)
		}
		return g.fetch(ctx, g.Config.Client(ctx, token), googleUserInfoURL)
	case req.IDToken != "":
		return g.fetch(ctx, g.HTTPClient, googleTokenInfoURL+"?id_token="+url.QueryEscape(req.IDToken))
	case req.AccessToken != "":
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: req.AccessToken})
		client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, g.HTTPClient), src)
		return g.fetch(ctx, client, googleUserInfoURL)
	default:
		return nil, fmt.Errorf("%w: one of code, id_token or access_token is required", ErrInvalidGoogleToken)
	}
}

func (g *GoogleConfig) fetch(ctx context.Context, client *http.Client, endpoint string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query google: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidGoogleToken
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if info.Subject() == "" || info.Email == "" {
		return nil, ErrInvalidGoogleToken
	}
	return &info, nil
}
