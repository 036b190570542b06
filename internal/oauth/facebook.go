package oauth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iheartbourbon/bourbon/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const facebookGraphURL = "https://graph.facebook.com/v19.0/me"

type Facebook struct {
	config   *oauth2.Config
	graphURL string
}

func NewFacebook(client config.OAuthClient, redirectURL string) *Facebook {
	return &Facebook{
		config: &oauth2.Config{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		},
		graphURL: facebookGraphURL,
	}
}

func (f *Facebook) Name() string { return "facebook" }

func (f *Facebook) AuthCodeURL(state string) string {
	return f.config.AuthCodeURL(state)
}

type facebookProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func (f *Facebook) Identity(ctx context.Context, r *http.Request) (Identity, error) {
	code, err := callbackCode(r)

	if err != nil {
		return Identity{}, err
	}

	token, err := f.config.Exchange(ctx, code)

	if err != nil {
		return Identity{}, fmt.Errorf("facebook token exchange: %w", err)
	}

	client := f.config.Client(ctx, token)

	var profile facebookProfile

	if err := fetchJSON(client, f.graphURL+"?fields=id,name,email,picture.type(large)", &profile); err != nil {
		return Identity{}, err
	}

	// The combined profile request sometimes omits email even when the
	// scope was granted; asking for it alone is more reliable.
	if profile.Email == "" {
		var emailOnly struct {
			Email string `json:"email"`
		}

		if err := fetchJSON(client, f.graphURL+"?fields=email", &emailOnly); err == nil {
			profile.Email = emailOnly.Email
		}
	}

	return Identity{
		Email:      profile.Email,
		ProviderID: profile.ID,
		Name:       profile.Name,
		AvatarURL:  profile.Picture.Data.URL,
	}, nil
}
