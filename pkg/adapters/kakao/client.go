package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wadjakorntonsri/gift-bundle/pkg/config"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/kakao"
)

const DefaultProfileURL = "https://kapi.kakao.com/v2/user/me"

type Client struct {
	oauthConfig *oauth2.Config
	profileURL  string
}

type userMe struct {
	ID         int64 `json:"id"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
	KakaoAccount struct {
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.KakaoClientID,
			ClientSecret: cfg.KakaoClientSecret,
			RedirectURL:  cfg.KakaoRedirectURL,
			Scopes:       []string{"profile_nickname", "profile_image"},
			Endpoint:     kakao.Endpoint,
		},
		profileURL: DefaultProfileURL,
	}
}

// WithEndpoints points the client at another authorization server, for tests.
func (c *Client) WithEndpoints(endpoint oauth2.Endpoint, profileURL string) *Client {
	c.oauthConfig.Endpoint = endpoint
	c.profileURL = profileURL
	return c
}

func (c *Client) AuthCodeURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state)
}

// FetchProfile exchanges the authorization code and reads the user's profile.
func (c *Client) FetchProfile(ctx context.Context, code string) (*domain.KakaoProfile, error) {
	if code == "" {
		return nil, domain.ErrOAuthFailed.Enrich("missing authorization code")
	}

	token, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", domain.ErrOAuthFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: user info: %v", domain.ErrOAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: user info status %d", domain.ErrOAuthFailed, resp.StatusCode)
	}

	var me userMe
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, fmt.Errorf("%w: decode user info: %v", domain.ErrOAuthFailed, err)
	}
	if me.ID == 0 {
		return nil, domain.ErrOAuthFailed.Enrich("user info has no id")
	}

	profile := &domain.KakaoProfile{
		ID:              me.ID,
		Nickname:        me.KakaoAccount.Profile.Nickname,
		ProfileImageURL: me.KakaoAccount.Profile.ProfileImageURL,
	}
	if profile.Nickname == "" {
		profile.Nickname = me.Properties.Nickname
	}
	if profile.ProfileImageURL == "" {
		profile.ProfileImageURL = me.Properties.ProfileImage
	}
	return profile, nil
}

var _ ports.OAuthProvider = (*Client)(nil)
