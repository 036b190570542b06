package oauth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iheartbourbon/bourbon/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type Google struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogle(client config.OAuthClient, redirectURL string) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *Google) Name() string { return "google" }

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (g *Google) Identity(ctx context.Context, r *http.Request) (Identity, error) {
	code, err := callbackCode(r)

	if err != nil {
		return Identity{}, err
	}

	token, err := g.config.Exchange(ctx, code)

	if err != nil {
		return Identity{}, fmt.Errorf("google token exchange: %w", err)
	}

	var info googleUserInfo

	if err := fetchJSON(g.config.Client(ctx, token), g.userInfoURL, &info); err != nil {
		return Identity{}, err
	}

	return Identity{
		Email:      info.Email,
		ProviderID: info.ID,
		Name:       info.Name,
		AvatarURL:  info.Picture,
	}, nil
}
