package oauth

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/iheartbourbon/bourbon/internal/config"
	"golang.org/x/oauth2"
)

const appleIssuer = "https://appleid.apple.com"

var appleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://appleid.apple.com/auth/authorize",
	TokenURL:  "https://appleid.apple.com/auth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// Apple has no static client secret. Each token exchange uses a short lived
// ES256 JWT signed with the developer key.
type Apple struct {
	config *oauth2.Config
	teamID string
	keyID  string
	key    *ecdsa.PrivateKey
	now    func() time.Time
}

func NewApple(client config.AppleClient, redirectURL string) (*Apple, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(client.PrivateKey))

	if err != nil {
		return nil, fmt.Errorf("parse APPLE_PRIVATE_KEY: %w", err)
	}

	return &Apple{
		config: &oauth2.Config{
			ClientID:    client.ClientID,
			RedirectURL: redirectURL,
			Scopes:      []string{"name", "email"},
			Endpoint:    appleEndpoint,
		},
		teamID: client.TeamID,
		keyID:  client.KeyID,
		key:    key,
		now:    time.Now,
	}, nil
}

func (a *Apple) Name() string { return "apple" }

// AuthCodeURL requests a form_post response, which Apple requires whenever
// the name or email scope is asked for.
func (a *Apple) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.SetAuthURLParam("response_mode", "form_post"))
}

func (a *Apple) clientSecret() (string, error) {
	now := a.now()

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.RegisteredClaims{
		Issuer:    a.teamID,
		Subject:   a.config.ClientID,
		Audience:  jwt.ClaimStrings{appleIssuer},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
	})
	token.Header["kid"] = a.keyID

	return token.SignedString(a.key)
}

type appleClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// appleUser is posted alongside the code on the first authorization only.
type appleUser struct {
	Name struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"name"`
	Email string `json:"email"`
}

func (a *Apple) Identity(ctx context.Context, r *http.Request) (Identity, error) {
	code, err := callbackCode(r)

	if err != nil {
		return Identity{}, err
	}

	secret, err := a.clientSecret()

	if err != nil {
		return Identity{}, fmt.Errorf("sign apple client secret: %w", err)
	}

	cfg := *a.config
	cfg.ClientSecret = secret

	token, err := cfg.Exchange(ctx, code)

	if err != nil {
		return Identity{}, fmt.Errorf("apple token exchange: %w", err)
	}

	rawIDToken, _ := token.Extra("id_token").(string)

	if rawIDToken == "" {
		return Identity{}, errors.New("apple token response has no id_token")
	}

	claims, err := a.parseIDToken(rawIDToken)

	if err != nil {
		return Identity{}, err
	}

	identity := Identity{
		Email:      claims.Email,
		ProviderID: claims.Subject,
	}

	if raw := r.FormValue("user"); raw != "" {
		var user appleUser

		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			identity.Name = strings.TrimSpace(user.Name.FirstName + " " + user.Name.LastName)

			if identity.Email == "" {
				identity.Email = user.Email
			}
		}
	}

	return identity, nil
}

// parseIDToken reads the claims of an id_token received directly from
// Apple's token endpoint over TLS, so the signature is not re-verified. The
// issuer and audience must still name this client.
func (a *Apple) parseIDToken(raw string) (*appleClaims, error) {
	claims := &appleClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("parse apple id_token: %w", err)
	}

	if claims.Issuer != appleIssuer {
		return nil, fmt.Errorf("apple id_token issuer %q", claims.Issuer)
	}

	audienceOK := false

	for _, aud := range claims.Audience {
		if aud == a.config.ClientID {
			audienceOK = true
		}
	}

	if !audienceOK {
		return nil, errors.New("apple id_token audience does not match client id")
	}

	if claims.Subject == "" {
		return nil, errors.New("apple id_token has no subject")
	}

	return claims, nil
}
