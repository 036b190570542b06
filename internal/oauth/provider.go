package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/iheartbourbon/bourbon/internal/config"
)

// Identity is what a provider vouches for after a successful login.
type Identity struct {
	Email      string
	ProviderID string
	Name       string
	AvatarURL  string
}

type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	// Identity exchanges the callback's authorization code and resolves the
	// account behind it.
	Identity(ctx context.Context, r *http.Request) (Identity, error)
}

// Registry holds the providers that have credentials configured.
type Registry map[string]Provider

func NewRegistry(cfg *config.Config) (Registry, error) {
	registry := Registry{}

	if cfg.Google.Enabled() {
		registry.Add(NewGoogle(cfg.Google, callbackURL(cfg.BaseURL, "google")))
	}

	if cfg.Facebook.Enabled() {
		registry.Add(NewFacebook(cfg.Facebook, callbackURL(cfg.BaseURL, "facebook")))
	}

	if cfg.Apple.Enabled() {
		apple, err := NewApple(cfg.Apple, callbackURL(cfg.BaseURL, "apple"))

		if err != nil {
			return nil, err
		}

		registry.Add(apple)
	}

	return registry, nil
}

func (r Registry) Add(p Provider) {
	r[p.Name()] = p
}

func (r Registry) Get(name string) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}

// GenerateState returns a random value for the OAuth state parameter.
func GenerateState() (string, error) {
	b := make([]byte, 32)

	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

var errMissingCode = errors.New("callback has no authorization code")

// callbackCode reads the code from the query string or, for form_post
// responses, the request body.
func callbackCode(r *http.Request) (string, error) {
	code := r.FormValue("code")

	if code == "" {
		return "", errMissingCode
	}

	return code, nil
}

func callbackURL(baseURL, provider string) string {
	return baseURL + "/auth/" + provider + "/callback"
}

func fetchJSON(client *http.Client, url string, dest any) error {
	resp, err := client.Get(url)

	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code from %s: %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}

	return nil
}
